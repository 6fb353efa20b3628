package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/supplysetu/internal/models"
)

func TestExportOrdersXLSX(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p-potato", Quantity: decimal.NewFromInt(10), Unit: "kg", Price: models.MustMoney("20")},
		{ProductID: "p-onion", Quantity: decimal.NewFromInt(5), Unit: "kg", Price: models.MustMoney("30")},
	}
	order := models.Order{
		VendorID:     "v-1",
		Items:        items,
		TotalAmount:  models.OrderTotal(items),
		Status:       models.OrderPending,
		DeliveryType: models.FrequencyWeekly,
	}
	order.ID = "o-1"
	order.CreatedAt = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

	data, err := ExportOrdersXLSX([]models.Order{order}, map[string]string{"p-potato": "Potatoes"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(orderSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, OrderExportHeader, rows[0])
	assert.Equal(t, "Potatoes", rows[1][6])
	assert.Equal(t, "200.00", rows[1][10])
	assert.Equal(t, "p-onion", rows[2][6])
	assert.Equal(t, "350.00", rows[2][11])
}
