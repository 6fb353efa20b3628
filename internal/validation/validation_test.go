package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/supplysetu/internal/models"
)

type line struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

type sample struct {
	Phone    string        `json:"phone_number" validate:"required"`
	Category string        `json:"category" validate:"required,oneof=perishable non_perishable"`
	Price    *models.Money `json:"price" validate:"required,gte=0"`
	Items    []line        `json:"items" validate:"required,min=1,dive"`
}

func validSample() sample {
	price := models.MustMoney("20.00")
	return sample{
		Phone:    "1122334455",
		Category: models.CategoryPerishable,
		Price:    &price,
		Items:    []line{{ProductID: "p1", Quantity: decimal.NewFromInt(2)}},
	}
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(validSample()))
}

func TestStruct_NamesJSONField(t *testing.T) {
	s := validSample()
	s.Phone = ""

	err := Struct(s)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone_number", verr.Field)
	assert.Equal(t, "phone_number is required", verr.Error())
}

func TestStruct_Enum(t *testing.T) {
	s := validSample()
	s.Category = "frozen"

	err := Struct(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category must be one of")
}

func TestStruct_NegativeMoney(t *testing.T) {
	s := validSample()
	negative := models.MustMoney("-1")
	s.Price = &negative

	err := Struct(s)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}

func TestStruct_NestedDecimal(t *testing.T) {
	s := validSample()
	s.Items[0].Quantity = decimal.Zero

	err := Struct(s)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items[0].quantity", verr.Field)
	assert.Equal(t, "gt", verr.Tag)
}
