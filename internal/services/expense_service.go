package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fintrack/internal/authz"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// expenseCategory loads an expense-type category owned by ownerID.
func (s *expenseService) expenseCategory(ownerID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, ownerID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Type != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("Invalid category '%s'. It must be an 'expense' category.", category.Name))
	}
	return &category, nil
}

// CreateExpense creates a new expense owned by the caller and records the
// matching notification in the same transaction. The owner is always the
// caller; nothing in the payload can change that.
func (s *expenseService) CreateExpense(caller authz.Caller, input ExpenseInput) (*models.Expense, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Title is required.")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero.")
	}
	if input.EntryDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Entry date is required.")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = models.PaymentMethodCash
	}
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("Invalid payment method '%s'.", input.PaymentMethod))
	}

	category, err := s.expenseCategory(caller.ID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		UserID:             caller.ID,
		Title:              strings.TrimSpace(input.Title),
		CategoryID:         category.ID,
		Amount:             input.Amount,
		EntryDate:          input.EntryDate,
		PaymentMethod:      input.PaymentMethod,
		Description:        input.Description,
		SupportingDocument: input.SupportingDocument,
	}

	if err := s.createWithNotification(expense); err != nil {
		return nil, err
	}
	expense.Category = *category
	return expense, nil
}

// createWithNotification persists the expense together with its
// notification; one notification per created expense.
func (s *expenseService) createWithNotification(expense *models.Expense) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return err
		}
		notification := &models.Notification{
			UserID: expense.UserID,
			Title:  "New Expense",
			Message: fmt.Sprintf("You recorded an expense of $%s for %s.",
				expense.Amount.StringFixed(2), expense.Title),
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// applyEntryFilters narrows a list query with the shared filter, search,
// and ordering parameters.
func applyEntryFilters(q *gorm.DB, f EntryFilter) *gorm.DB {
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.EntryDate != nil {
		q = q.Where("entry_date = ?", *f.EntryDate)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return q
}

// orderClause maps an ordering query value ("amount", "-entry_date", ...)
// to a SQL ORDER BY clause. Unknown fields fall back to the default
// newest-first ordering.
func orderClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	switch field {
	case "amount", "entry_date", "created_at":
	default:
		return "entry_date DESC"
	}
	if desc {
		return field + " DESC"
	}
	return field
}

// GetExpenses retrieves a paginated, filtered list of expenses visible to
// the caller, with categories preloaded in a single batched query.
func (s *expenseService) GetExpenses(caller authz.Caller, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Scopes(authz.ScopeOwned(caller, "user_id"))
	base = applyEntryFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").
		Order(orderClause(filter.Ordering)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getVisibleExpense loads an expense the caller is allowed to see; out of
// scope reads 404 rather than 403.
func (s *expenseService) getVisibleExpense(caller authz.Caller, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Scopes(authz.ScopeOwned(caller, "user_id")).
		Preload("Category").
		First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// GetExpenseByID retrieves a single visible expense.
func (s *expenseService) GetExpenseByID(caller authz.Caller, expenseID uint) (*models.Expense, error) {
	expense, err := s.getVisibleExpense(caller, expenseID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(caller, expense.UserID == caller.ID, authz.ActionRead) {
		return nil, apperrors.ErrForbidden
	}
	return expense, nil
}

// UpdateExpense applies a partial update to a visible expense. Ownership
// never changes; the record stays with its original owner.
func (s *expenseService) UpdateExpense(caller authz.Caller, expenseID uint, update ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.getVisibleExpense(caller, expenseID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(caller, expense.UserID == caller.ID, authz.ActionWrite) {
		return nil, apperrors.ErrForbidden
	}

	updates := make(map[string]interface{})
	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Title is required.")
		}
		updates["title"] = strings.TrimSpace(*update.Title)
	}
	if update.Amount != nil {
		if !update.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero.")
		}
		updates["amount"] = *update.Amount
	}
	if update.CategoryID != nil {
		category, err := s.expenseCategory(expense.UserID, *update.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
	}
	if update.EntryDate != nil {
		updates["entry_date"] = *update.EntryDate
	}
	if update.PaymentMethod != nil {
		if !models.ValidPaymentMethod(*update.PaymentMethod) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("Invalid payment method '%s'.", *update.PaymentMethod))
		}
		updates["payment_method"] = *update.PaymentMethod
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.SupportingDocument != nil {
		updates["supporting_document"] = *update.SupportingDocument
	}

	if len(updates) > 0 {
		if err := s.db.Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.getVisibleExpense(caller, expenseID)
}

// DeleteExpense deletes an expense. Owners may never delete their own
// records; only admins can delete.
func (s *expenseService) DeleteExpense(caller authz.Caller, expenseID uint) error {
	expense, err := s.getVisibleExpense(caller, expenseID)
	if err != nil {
		return err
	}
	if !authz.Decide(caller, expense.UserID == caller.ID, authz.ActionDelete) {
		return apperrors.ErrForbidden
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ExportExpenses returns the full filtered expense set visible to the
// caller, with no pagination, for CSV rendering.
func (s *expenseService) ExportExpenses(caller authz.Caller, filter EntryFilter) ([]models.Expense, error) {
	base := s.db.Model(&models.Expense{}).Scopes(authz.ScopeOwned(caller, "user_id"))
	base = applyEntryFilters(base, filter)

	var expenses []models.Expense
	if err := base.Preload("Category").
		Order(orderClause(filter.Ordering)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}
