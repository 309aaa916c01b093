package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/authz"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// incomeService handles income-related business logic.
type incomeService struct {
	db *gorm.DB
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db}
}

// incomeCategory loads an income-type category owned by ownerID.
func (s *incomeService) incomeCategory(ownerID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, ownerID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Type != models.CategoryTypeIncome {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("Invalid category '%s'. It must be an 'income' category.", category.Name))
	}
	return &category, nil
}

// CreateIncome records a new income entry owned by the caller.
func (s *incomeService) CreateIncome(caller authz.Caller, input IncomeInput) (*models.Income, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Title is required.")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Income amount must be positive.")
	}
	if input.EntryDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Entry date is required.")
	}
	if input.EntryDate.After(endOfToday()) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Income date cannot be in the future.")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = string(models.PaymentMethodCash)
	}

	category, err := s.incomeCategory(caller.ID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	income := &models.Income{
		UserID:             caller.ID,
		Title:              strings.TrimSpace(input.Title),
		CategoryID:         category.ID,
		Amount:             input.Amount,
		EntryDate:          input.EntryDate,
		PaymentMethod:      input.PaymentMethod,
		Description:        input.Description,
		SupportingDocument: input.SupportingDocument,
	}

	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	income.Category = *category
	return income, nil
}

// endOfToday is the last instant that still counts as today when
// validating entry dates parsed at midnight.
func endOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

// GetIncomes retrieves a paginated, filtered list of income entries
// visible to the caller.
func (s *incomeService) GetIncomes(caller authz.Caller, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Income], error) {
	page.Defaults()

	base := s.db.Model(&models.Income{}).Scopes(authz.ScopeOwned(caller, "user_id"))
	base = applyEntryFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var incomes []models.Income
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").
		Order(orderClause(filter.Ordering)).
		Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(incomes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getVisibleIncome loads an income entry the caller is allowed to see.
func (s *incomeService) getVisibleIncome(caller authz.Caller, incomeID uint) (*models.Income, error) {
	var income models.Income
	if err := s.db.Scopes(authz.ScopeOwned(caller, "user_id")).
		Preload("Category").
		First(&income, incomeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

// GetIncomeByID retrieves a single visible income entry.
func (s *incomeService) GetIncomeByID(caller authz.Caller, incomeID uint) (*models.Income, error) {
	income, err := s.getVisibleIncome(caller, incomeID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(caller, income.UserID == caller.ID, authz.ActionRead) {
		return nil, apperrors.ErrForbidden
	}
	return income, nil
}

// UpdateIncome applies a partial update to a visible income entry.
func (s *incomeService) UpdateIncome(caller authz.Caller, incomeID uint, update IncomeUpdate) (*models.Income, error) {
	income, err := s.getVisibleIncome(caller, incomeID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(caller, income.UserID == caller.ID, authz.ActionWrite) {
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
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Income amount must be positive.")
		}
		updates["amount"] = *update.Amount
	}
	if update.CategoryID != nil {
		category, err := s.incomeCategory(income.UserID, *update.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
	}
	if update.EntryDate != nil {
		updates["entry_date"] = *update.EntryDate
	}
	if update.PaymentMethod != nil {
		updates["payment_method"] = *update.PaymentMethod
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.SupportingDocument != nil {
		updates["supporting_document"] = *update.SupportingDocument
	}

	if len(updates) > 0 {
		if err := s.db.Model(income).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.getVisibleIncome(caller, incomeID)
}

// DeleteIncome deletes an income entry; only admins can delete.
func (s *incomeService) DeleteIncome(caller authz.Caller, incomeID uint) error {
	income, err := s.getVisibleIncome(caller, incomeID)
	if err != nil {
		return err
	}
	if !authz.Decide(caller, income.UserID == caller.ID, authz.ActionDelete) {
		return apperrors.ErrForbidden
	}

	if err := s.db.Delete(income).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
