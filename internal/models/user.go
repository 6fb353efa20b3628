package models

// Roles a user can take in the marketplace.
const (
	RoleVendor   = "vendor"
	RoleSupplier = "supplier"
)

// User represents an account identified by phone number.
type User struct {
	BaseModel
	PhoneNumber  string `gorm:"uniqueIndex;not null" json:"phone_number"`
	Role         string `gorm:"not null" json:"role"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	IsVerified   bool   `json:"is_verified"`
}

// StallType is a category of food stall used to drive bundle recommendations.
type StallType struct {
	BaseModel
	Slug             string `gorm:"uniqueIndex" json:"slug"`
	Name             string `gorm:"not null" json:"name"`
	NameHindi        string `gorm:"not null" json:"name_hindi"`
	Description      string `json:"description"`
	DescriptionHindi string `json:"description_hindi"`
	Icon             string `json:"icon"`
}
