package models

import "time"

// Delivery statuses.
const (
	DeliveryScheduled = "scheduled"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

var deliveryRank = map[string]int{
	DeliveryScheduled: 0,
	DeliveryInTransit: 1,
	DeliveryDelivered: 2,
	DeliveryFailed:    2,
}

// CanAdvanceDelivery reports whether a delivery may move to the given status.
// Statuses only move forward and delivered/failed are final.
func CanAdvanceDelivery(from, to string) bool {
	if from == to {
		return true
	}
	if from == DeliveryDelivered || from == DeliveryFailed {
		return false
	}
	return deliveryRank[to] > deliveryRank[from]
}

// Delivery is a scheduled drop-off for an order.
type Delivery struct {
	BaseModel
	OrderID       string     `gorm:"type:uuid;index;not null" json:"order_id"`
	ScheduledDate time.Time  `gorm:"not null" json:"scheduled_date"`
	ActualDate    *time.Time `json:"actual_date"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
}

// DeliveryPause suspends a vendor's deliveries over a date range.
type DeliveryPause struct {
	BaseModel
	VendorID  string    `gorm:"type:uuid;index;not null" json:"vendor_id"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Reason    string    `json:"reason"`
	IsActive  bool      `gorm:"index" json:"is_active"`
}

// Covers reports whether the pause is active at t. The end date is
// inclusive: the pause lasts through the whole of that calendar day.
func (p DeliveryPause) Covers(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartDate) && t.Before(p.until())
}

// Ended reports whether now is past the last day of the pause.
func (p DeliveryPause) Ended(now time.Time) bool {
	return !now.Before(p.until())
}

// until is midnight after the end date, in the end date's location.
func (p DeliveryPause) until() time.Time {
	y, m, d := p.EndDate.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, p.EndDate.Location())
}
