package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/example/supplysetu/internal/models"
)

// OrderExportHeader is the header row of the supplier order sheet.
var OrderExportHeader = []string{
	"Order ID",
	"Placed At",
	"Vendor ID",
	"Status",
	"Delivery Type",
	"Delivery Date",
	"Product",
	"Quantity",
	"Unit",
	"Unit Price",
	"Line Total",
	"Order Total",
}

const orderSheet = "Orders"

// ExportOrdersXLSX renders one row per order line. productNames maps product
// ids to display names; unknown ids are written as-is.
func ExportOrdersXLSX(orders []models.Order, productNames map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(orderSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(orderSheet, "A1", &OrderExportHeader); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(OrderExportHeader), 1)
	if err := f.SetCellStyle(orderSheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	row := 2
	for _, order := range orders {
		deliveryDate := ""
		if order.DeliveryDate != nil {
			deliveryDate = order.DeliveryDate.Format("2006-01-02")
		}
		for _, item := range order.Items {
			name := productNames[item.ProductID]
			if name == "" {
				name = item.ProductID
			}
			values := []interface{}{
				order.ID,
				order.CreatedAt.Format("2006-01-02 15:04"),
				order.VendorID,
				order.Status,
				order.DeliveryType,
				deliveryDate,
				name,
				item.Quantity.String(),
				item.Unit,
				item.Price.String(),
				item.LineTotal().String(),
				order.TotalAmount.String(),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(orderSheet, cell, &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	if err := f.SetColWidth(orderSheet, "A", "C", 38); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
