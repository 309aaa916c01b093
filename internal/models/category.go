package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category groups expenses and incomes. Owned by exactly one user;
// the owner is fixed at creation and never reassigned.
type Category struct {
	Base
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	Name        string       `gorm:"size:100;not null" json:"name"`
	Type        CategoryType `gorm:"size:10;not null" json:"type"`
	Description string       `json:"description"`
	IsActive    bool         `gorm:"default:true" json:"is_active"`

	// Relationships
	Expenses []Expense `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
	Incomes  []Income  `gorm:"foreignKey:CategoryID" json:"incomes,omitempty"`
}
