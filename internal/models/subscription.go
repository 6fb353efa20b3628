package models

import "time"

// Subscription is a recurring supply agreement created at checkout.
type Subscription struct {
	BaseModel
	VendorID          string       `gorm:"type:uuid;index;not null" json:"vendor_id"`
	SupplierID        string       `gorm:"type:uuid;index;not null" json:"supplier_id"`
	BundleID          *string      `gorm:"type:uuid" json:"bundle_id"`
	CustomItems       []BundleItem `gorm:"serializer:json;type:jsonb" json:"custom_items"`
	DeliveryFrequency string       `gorm:"not null" json:"delivery_frequency"`
	IsActive          bool         `gorm:"index" json:"is_active"`
	StartDate         time.Time    `json:"start_date"`
	NextDelivery      *time.Time   `json:"next_delivery"`
}
