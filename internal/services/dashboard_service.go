package services

import (
	"regexp"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// dashboardService computes per-user aggregates. Dashboard numbers are
// always the user's own, independent of role.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// scopeMonth restricts a query to entries within the given YYYY-MM month.
// The date column is compared textually so the same clause works on both
// the production and the test database.
func scopeMonth(month string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if month == "" {
			return db
		}
		return db.Where("CAST(entry_date AS TEXT) LIKE ?", month+"%")
	}
}

func validateMonth(month string) error {
	if month != "" && !monthPattern.MatchString(month) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Month must be in YYYY-MM format.")
	}
	return nil
}

// GetSummary returns the user's income, expense, and net totals plus the
// overall transaction count, optionally limited to one month.
func (s *dashboardService) GetSummary(userID uint, month string) (*DashboardSummary, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	totalIncome, incomeCount, err := s.sumAndCount(&models.Income{}, userID, month)
	if err != nil {
		return nil, err
	}
	totalExpense, expenseCount, err := s.sumAndCount(&models.Expense{}, userID, month)
	if err != nil {
		return nil, err
	}

	filterMonth := month
	if filterMonth == "" {
		filterMonth = "All Time"
	}

	return &DashboardSummary{
		TotalIncome:      totalIncome,
		TotalExpense:     totalExpense,
		NetProfit:        totalIncome.Sub(totalExpense),
		TransactionCount: incomeCount + expenseCount,
		FilterMonth:      filterMonth,
	}, nil
}

// sumAndCount computes SUM(amount) and COUNT(*) for one entry table.
func (s *dashboardService) sumAndCount(model interface{}, userID uint, month string) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := s.db.Model(model).
		Where("user_id = ?", userID).
		Scopes(scopeMonth(month)).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	if err := s.db.Model(model).
		Where("user_id = ?", userID).
		Scopes(scopeMonth(month)).
		Count(&count).Error; err != nil {
		return decimal.Zero, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Total, count, nil
}

// GetStats returns the user's per-category rollups for charting,
// optionally limited to one month.
func (s *dashboardService) GetStats(userID uint, month string) (*DashboardStats, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	expenseByCategory, err := s.groupByCategory(&models.Expense{}, "expenses", userID, month)
	if err != nil {
		return nil, err
	}
	incomeByCategory, err := s.groupByCategory(&models.Income{}, "incomes", userID, month)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		ExpenseByCategory: expenseByCategory,
		IncomeByCategory:  incomeByCategory,
	}, nil
}

// groupByCategory sums one entry table per category name, largest first.
func (s *dashboardService) groupByCategory(model interface{}, table string, userID uint, month string) ([]CategoryTotal, error) {
	totals := []CategoryTotal{}
	err := s.db.Model(model).
		Select("categories.name AS category_name, SUM(amount) AS total").
		Joins("JOIN categories ON categories.id = "+table+".category_id").
		Where(table+".user_id = ?", userID).
		Scopes(scopeMonth(month)).
		Group("categories.name").
		Order("total DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return totals, nil
}
