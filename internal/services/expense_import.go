package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/authz"
	"fintrack/internal/dates"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// ImportExpensesCSV reads a CSV file with a header row and creates one
// expense per valid data row. Invalid rows are skipped and reported by
// row number; a failed row never blocks the rest of the file. Category
// names are matched case-insensitively against the caller's own expense
// categories.
func (s *expenseService) ImportExpensesCSV(caller authz.Caller, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "CSV file is empty or unreadable.")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key != "" {
			columns[key] = i
		}
	}

	categories, err := s.categoryNameIndex(caller.ID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Status: "success", Errors: []string{}}

	// Data rows are numbered from 2: the header is row 1.
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		categoryName := field("category")
		category, ok := categories[strings.ToLower(categoryName)]
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Category '%s' not found or valid.", rowNum, categoryName))
			continue
		}

		expense, err := buildImportedExpense(caller.ID, category, field)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
			continue
		}

		if err := s.createWithNotification(expense); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: could not save expense.", rowNum))
			continue
		}
		result.ImportedCount++
	}

	return result, nil
}

// categoryNameIndex maps the lowercased names of the owner's expense
// categories to the records themselves, so the import loop does a single
// query up front instead of one per row.
func (s *expenseService) categoryNameIndex(ownerID uint) (map[string]*models.Category, error) {
	var categories []models.Category
	if err := s.db.
		Where("user_id = ? AND type = ?", ownerID, models.CategoryTypeExpense).
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byName := make(map[string]*models.Category, len(categories))
	for i := range categories {
		byName[strings.ToLower(categories[i].Name)] = &categories[i]
	}
	return byName, nil
}

// buildImportedExpense validates one CSV row and produces the expense to
// insert. Errors carry only the row-local detail; the caller prefixes
// the row number.
func buildImportedExpense(ownerID uint, category *models.Category, field func(string) string) (*models.Expense, error) {
	title := field("title")
	if title == "" {
		return nil, fmt.Errorf("Title is required.")
	}

	amountRaw := field("amount")
	if amountRaw == "" {
		return nil, fmt.Errorf("Amount is required.")
	}
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return nil, fmt.Errorf("Invalid amount '%s'.", amountRaw)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("Amount must be greater than zero.")
	}

	entryDate, err := dates.Parse(field("date"))
	if err != nil {
		return nil, err
	}
	if entryDate.IsZero() {
		return nil, fmt.Errorf("Date is required.")
	}

	payment := models.PaymentMethod(strings.ToLower(field("payment_method")))
	if payment == "" {
		payment = models.PaymentMethodCash
	}
	if !models.ValidPaymentMethod(payment) {
		return nil, fmt.Errorf("Invalid payment method '%s'.", payment)
	}

	return &models.Expense{
		UserID:        ownerID,
		Title:         title,
		CategoryID:    category.ID,
		Amount:        amount,
		EntryDate:     entryDate,
		PaymentMethod: payment,
		Description:   field("description"),
	}, nil
}
