package models

// Notification is a per-user message created as a side effect of
// recording an expense.
type Notification struct {
	Base
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Message string `gorm:"not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`
}
