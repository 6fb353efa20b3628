package models

import "github.com/lib/pq"

// Vendor is the onboarding profile of a street-food stall operator.
type Vendor struct {
	BaseModel
	UserID      string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	StallTypeID string `gorm:"type:uuid;index" json:"stall_type_id"`
	Location    string `json:"location"`
	IsOnboarded bool   `json:"is_onboarded"`
}

// Supplier is the onboarding profile of a raw-material seller.
type Supplier struct {
	BaseModel
	UserID        string         `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	DeliveryZones pq.StringArray `gorm:"type:text[]" json:"delivery_zones"`
	IsVerified    bool           `json:"is_verified"`
}
