package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how an expense was paid
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCreditCard    PaymentMethod = "credit_card"
	PaymentMethodDebitCard     PaymentMethod = "debit_card"
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodMobilePayment PaymentMethod = "mobile_payment"
	PaymentMethodOther         PaymentMethod = "other"
)

// ValidPaymentMethod reports whether m is one of the supported payment methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodBankTransfer, PaymentMethodMobilePayment, PaymentMethodOther:
		return true
	}
	return false
}

// Expense represents a spending record. Its category must be of type
// "expense" and cannot be deleted while the expense references it.
type Expense struct {
	Base
	UserID             uint            `gorm:"not null;index" json:"user_id"`
	Title              string          `gorm:"size:200;not null" json:"title"`
	CategoryID         uint            `gorm:"not null;index" json:"category_id"`
	Amount             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	EntryDate          time.Time       `gorm:"type:date;not null;index" json:"entry_date"`
	PaymentMethod      PaymentMethod   `gorm:"size:20;default:cash" json:"payment_method"`
	Description        string          `json:"description"`
	SupportingDocument string          `json:"supporting_document,omitempty"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
