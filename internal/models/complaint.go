package models

import "time"

// Complaint statuses.
const (
	ComplaintOpen       = "open"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
	ComplaintClosed     = "closed"
)

// Complaint is a vendor-raised issue, optionally about an order.
type Complaint struct {
	BaseModel
	VendorID    string     `gorm:"type:uuid;index;not null" json:"vendor_id"`
	OrderID     *string    `gorm:"type:uuid" json:"order_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	ImageURL    string     `json:"image_url"`
	Status      string     `json:"status"`
	Response    string     `json:"response"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// DeriveResolution keeps ResolvedAt set exactly once: on the first save where
// the status is resolved. Later saves carry the original timestamp forward.
func DeriveResolution(prev, next *Complaint, now time.Time) {
	if prev.ResolvedAt != nil {
		resolved := *prev.ResolvedAt
		next.ResolvedAt = &resolved
		return
	}
	if next.Status == ComplaintResolved {
		next.ResolvedAt = &now
		return
	}
	next.ResolvedAt = nil
}
