package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/authz"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// ExpenseSummary is the lightweight expense shape embedded in other
// resources (kept flat to avoid re-nesting the category).
type ExpenseSummary struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	EntryDate time.Time       `json:"entry_date"`
}

// CategoryWithExpenses is the read model for the categories/with-expenses
// listing: a category plus the caller's own expenses in it.
type CategoryWithExpenses struct {
	models.Category
	Expenses []ExpenseSummary `json:"expenses"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(caller authz.Caller, name string, categoryType models.CategoryType, description string, isActive *bool) (*models.Category, error)
	GetCategories(caller authz.Caller, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoriesWithExpenses(caller authz.Caller, page pagination.PageRequest) (*pagination.PageResponse[CategoryWithExpenses], error)
	GetCategoryByID(caller authz.Caller, categoryID uint) (*models.Category, error)
	UpdateCategory(caller authz.Caller, categoryID uint, name, description *string, isActive *bool) (*models.Category, error)
	DeleteCategory(caller authz.Caller, categoryID uint) error
}

// EntryFilter holds the optional filter, search, and ordering parameters
// shared by the expense and income list endpoints.
type EntryFilter struct {
	CategoryID    *uint
	PaymentMethod string
	EntryDate     *time.Time
	Search        string
	Ordering      string
}

// ExpenseInput carries the writable fields of an expense.
type ExpenseInput struct {
	Title              string
	CategoryID         uint
	Amount             decimal.Decimal
	EntryDate          time.Time
	PaymentMethod      models.PaymentMethod
	Description        string
	SupportingDocument string
}

// ExpenseUpdate carries partial updates; nil fields are left unchanged.
type ExpenseUpdate struct {
	Title              *string
	CategoryID         *uint
	Amount             *decimal.Decimal
	EntryDate          *time.Time
	PaymentMethod      *models.PaymentMethod
	Description        *string
	SupportingDocument *string
}

// ImportResult is the per-row report produced by a CSV import.
type ImportResult struct {
	Status        string   `json:"status"`
	ImportedCount int      `json:"imported_count"`
	Errors        []string `json:"errors"`
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(caller authz.Caller, input ExpenseInput) (*models.Expense, error)
	GetExpenses(caller authz.Caller, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(caller authz.Caller, expenseID uint) (*models.Expense, error)
	UpdateExpense(caller authz.Caller, expenseID uint, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(caller authz.Caller, expenseID uint) error
	ExportExpenses(caller authz.Caller, filter EntryFilter) ([]models.Expense, error)
	ImportExpensesCSV(caller authz.Caller, r io.Reader) (*ImportResult, error)
}

// IncomeInput carries the writable fields of an income record.
type IncomeInput struct {
	Title              string
	CategoryID         uint
	Amount             decimal.Decimal
	EntryDate          time.Time
	PaymentMethod      string
	Description        string
	SupportingDocument string
}

// IncomeUpdate carries partial updates; nil fields are left unchanged.
type IncomeUpdate struct {
	Title              *string
	CategoryID         *uint
	Amount             *decimal.Decimal
	EntryDate          *time.Time
	PaymentMethod      *string
	Description        *string
	SupportingDocument *string
}

// IncomeServicer defines the contract for income-related business logic.
type IncomeServicer interface {
	CreateIncome(caller authz.Caller, input IncomeInput) (*models.Income, error)
	GetIncomes(caller authz.Caller, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Income], error)
	GetIncomeByID(caller authz.Caller, incomeID uint) (*models.Income, error)
	UpdateIncome(caller authz.Caller, incomeID uint, update IncomeUpdate) (*models.Income, error)
	DeleteIncome(caller authz.Caller, incomeID uint) error
}

// NotificationServicer defines the contract for notification access.
type NotificationServicer interface {
	GetNotifications(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
	UnreadCount(userID uint) (int64, error)
	MarkAsRead(userID, notificationID uint) error
}

// DashboardSummary aggregates a user's totals for the dashboard.
type DashboardSummary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	TransactionCount int64           `json:"transaction_count"`
	FilterMonth      string          `json:"filter_month"`
}

// CategoryTotal is one grouped rollup row.
type CategoryTotal struct {
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}

// DashboardStats groups a user's entries by category for charts.
type DashboardStats struct {
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
	IncomeByCategory  []CategoryTotal `json:"income_by_category"`
}

// DashboardServicer defines the contract for dashboard aggregation.
type DashboardServicer interface {
	GetSummary(userID uint, month string) (*DashboardSummary, error)
	GetStats(userID uint, month string) (*DashboardStats, error)
}
