package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"fintrack/internal/authz"
	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db        *gorm.DB
	nameScope config.CategoryNameScope
}

// NewCategoryService creates a new CategoryServicer applying the given
// category-name uniqueness policy.
func NewCategoryService(db *gorm.DB, nameScope config.CategoryNameScope) CategoryServicer {
	return &categoryService{db: db, nameScope: nameScope}
}

// checkNameUnique enforces the configured uniqueness rule for the owner.
// excludeID skips the record being updated (0 on create).
func (s *categoryService) checkNameUnique(ownerID uint, name string, categoryType models.CategoryType, excludeID uint) error {
	q := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ?", ownerID, name)
	if s.nameScope == config.CategoryNamePerType {
		q = q.Where("type = ?", categoryType)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Category with name '"+name+"' already exists.")
	}
	return nil
}

// CreateCategory creates a new category owned by the caller. The owner is
// always the caller, regardless of anything in the request body.
func (s *categoryService) CreateCategory(caller authz.Caller, name string, categoryType models.CategoryType, description string, isActive *bool) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required.")
	}
	if categoryType != models.CategoryTypeIncome && categoryType != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Type must be 'income' or 'expense'.")
	}

	if err := s.checkNameUnique(caller.ID, name, categoryType, 0); err != nil {
		return nil, err
	}

	active := true
	if isActive != nil {
		active = *isActive
	}

	category := &models.Category{
		UserID:      caller.ID,
		Name:        name,
		Type:        categoryType,
		Description: description,
		IsActive:    active,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories retrieves a paginated list of categories visible to the
// caller, optionally filtered by type.
func (s *categoryService) GetCategories(caller authz.Caller, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Scopes(authz.ScopeOwned(caller, "user_id"))
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).
		Order("type, name").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoriesWithExpenses lists the caller's visible categories, each
// annotated with the caller's own expenses. Ownership filtering happens
// once, at the query stage: the nested expenses query is scoped to the
// caller and batched over the category IDs of the current page.
func (s *categoryService) GetCategoriesWithExpenses(caller authz.Caller, page pagination.PageRequest) (*pagination.PageResponse[CategoryWithExpenses], error) {
	categories, err := s.GetCategories(caller, nil, page)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(categories.Data))
	for _, c := range categories.Data {
		ids = append(ids, c.ID)
	}

	byCategory := make(map[uint][]ExpenseSummary, len(ids))
	if len(ids) > 0 {
		var expenses []models.Expense
		if err := s.db.
			Where("user_id = ? AND category_id IN ?", caller.ID, ids).
			Order("entry_date DESC").
			Find(&expenses).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, e := range expenses {
			byCategory[e.CategoryID] = append(byCategory[e.CategoryID], ExpenseSummary{
				ID:        e.ID,
				Title:     e.Title,
				Amount:    e.Amount,
				EntryDate: e.EntryDate,
			})
		}
	}

	data := make([]CategoryWithExpenses, 0, len(categories.Data))
	for _, c := range categories.Data {
		nested := byCategory[c.ID]
		if nested == nil {
			nested = []ExpenseSummary{}
		}
		data = append(data, CategoryWithExpenses{Category: c, Expenses: nested})
	}

	result := pagination.NewPageResponse(data, categories.Page, categories.PageSize, categories.TotalItems)
	return &result, nil
}

// getVisibleCategory loads a category the caller is allowed to see.
// Records outside the caller's scope are indistinguishable from
// nonexistent ones.
func (s *categoryService) getVisibleCategory(caller authz.Caller, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.Scopes(authz.ScopeOwned(caller, "user_id")).
		First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// GetCategoryByID retrieves a single visible category.
func (s *categoryService) GetCategoryByID(caller authz.Caller, categoryID uint) (*models.Category, error) {
	category, err := s.getVisibleCategory(caller, categoryID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(caller, category.UserID == caller.ID, authz.ActionRead) {
		return nil, apperrors.ErrForbidden
	}
	return category, nil
}

// UpdateCategory applies a partial update to an existing category. Nil
// fields are left unchanged; an explicit empty description clears it.
func (s *categoryService) UpdateCategory(caller authz.Caller, categoryID uint, name, description *string, isActive *bool) (*models.Category, error) {
	category, err := s.getVisibleCategory(caller, categoryID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(caller, category.UserID == caller.ID, authz.ActionWrite) {
		return nil, apperrors.ErrForbidden
	}

	updates := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required.")
		}
		if err := s.checkNameUnique(category.UserID, trimmed, category.Type, category.ID); err != nil {
			return nil, err
		}
		updates["name"] = trimmed
	}
	if description != nil {
		updates["description"] = *description
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory deletes a category. Categories referenced by expenses
// are protected; categories referenced only by incomes cascade (the
// dependent incomes are deleted in the same transaction).
func (s *categoryService) DeleteCategory(caller authz.Caller, categoryID uint) error {
	category, err := s.getVisibleCategory(caller, categoryID)
	if err != nil {
		return err
	}
	if !authz.Decide(caller, category.UserID == caller.ID, authz.ActionDelete) {
		return apperrors.ErrForbidden
	}

	var expenseCount int64
	if err := s.db.Model(&models.Expense{}).Where("category_id = ?", categoryID).Count(&expenseCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenseCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.Income{}).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
