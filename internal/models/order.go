package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderRejected  = "rejected"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Delivery cadences shared by orders and subscriptions.
const (
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

var orderTransitions = map[string][]string{
	OrderPending:  {OrderAccepted, OrderRejected, OrderCancelled},
	OrderAccepted: {OrderDelivered, OrderCancelled},
}

// CanTransitionOrder reports whether an order may move from one status to another.
// Re-applying the current status is always allowed.
func CanTransitionOrder(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is an immutable priced line of an order.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Price     Money           `json:"price"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() Money {
	return i.Price.Mul(i.Quantity)
}

// Order links one vendor to one supplier.
type Order struct {
	BaseModel
	VendorID     string      `gorm:"type:uuid;index;not null" json:"vendor_id"`
	SupplierID   string      `gorm:"type:uuid;index;not null" json:"supplier_id"`
	Items        []OrderItem `gorm:"serializer:json;type:jsonb;not null" json:"items"`
	TotalAmount  Money       `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status       string      `gorm:"index" json:"status"`
	DeliveryDate *time.Time  `json:"delivery_date"`
	DeliveryType string      `gorm:"not null" json:"delivery_type"`
}

// OrderTotal sums the line totals in fixed-point arithmetic.
func OrderTotal(items []OrderItem) Money {
	total := Money{Decimal: decimal.Zero}
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// NextDeliveryAfter returns the next delivery date for a cadence.
func NextDeliveryAfter(from time.Time, frequency string) time.Time {
	if frequency == FrequencyMonthly {
		return from.AddDate(0, 1, 0)
	}
	return from.AddDate(0, 0, 7)
}
