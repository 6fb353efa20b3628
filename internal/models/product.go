package models

import "github.com/shopspring/decimal"

// Product categories.
const (
	CategoryPerishable    = "perishable"
	CategoryNonPerishable = "non_perishable"
)

// Freshness classifications of a product image.
const (
	FreshnessFresh      = "fresh"
	FreshnessBlurred    = "blurred"
	FreshnessLowQuality = "low_quality"
)

// Product is a raw material listed by a supplier.
type Product struct {
	BaseModel
	SupplierID       string `gorm:"type:uuid;index;not null" json:"supplier_id"`
	Name             string `gorm:"not null" json:"name"`
	NameHindi        string `gorm:"not null" json:"name_hindi"`
	Category         string `gorm:"not null" json:"category"`
	Price            Money  `gorm:"type:numeric(10,2);not null" json:"price"`
	Unit             string `gorm:"not null" json:"unit"`
	StockLevel       int    `json:"stock_level"`
	ImageURL         string `json:"image_url"`
	FreshnessStatus  string `json:"freshness_status"`
	Description      string `json:"description"`
	DescriptionHindi string `json:"description_hindi"`
}

// BundleItem is a product reference inside a bundle or subscription.
type BundleItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

// Bundle is a pre-composed set of products recommended for a stall type.
type Bundle struct {
	BaseModel
	StallTypeID   string       `gorm:"type:uuid;index;not null" json:"stall_type_id"`
	Name          string       `gorm:"not null" json:"name"`
	NameHindi     string       `gorm:"not null" json:"name_hindi"`
	Items         []BundleItem `gorm:"serializer:json;type:jsonb;not null" json:"items"`
	TotalCost     Money        `gorm:"type:numeric(10,2)" json:"total_cost"`
	IsRecommended bool         `json:"is_recommended"`
}
