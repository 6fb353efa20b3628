package models

// Notification types.
const (
	NotificationDelivery  = "delivery"
	NotificationOrder     = "order"
	NotificationComplaint = "complaint"
	NotificationGeneral   = "general"
)

// Notification is a message for one user.
type Notification struct {
	BaseModel
	UserID       string `gorm:"type:uuid;index;not null" json:"user_id"`
	Title        string `gorm:"not null" json:"title"`
	TitleHindi   string `json:"title_hindi"`
	Message      string `gorm:"not null" json:"message"`
	MessageHindi string `json:"message_hindi"`
	Type         string `gorm:"not null" json:"type"`
	IsRead       bool   `json:"is_read"`
}
