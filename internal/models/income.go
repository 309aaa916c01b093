package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income represents an earning record. Its category must be of type
// "income"; deleting the category cascades to dependent incomes.
type Income struct {
	Base
	UserID             uint            `gorm:"not null;index" json:"user_id"`
	Title              string          `gorm:"size:255;not null" json:"title"`
	CategoryID         uint            `gorm:"not null;index" json:"category_id"`
	Amount             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	EntryDate          time.Time       `gorm:"type:date;not null;index" json:"entry_date"`
	PaymentMethod      string          `gorm:"size:50;default:cash" json:"payment_method"`
	Description        string          `json:"description"`
	SupportingDocument string          `json:"supporting_document,omitempty"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
