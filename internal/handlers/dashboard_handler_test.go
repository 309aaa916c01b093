package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// --- mock dashboard service ---

type mockDashboardService struct {
	getSummaryFn func(userID uint, month string) (*services.DashboardSummary, error)
	getStatsFn   func(userID uint, month string) (*services.DashboardStats, error)
}

func (m *mockDashboardService) GetSummary(userID uint, month string) (*services.DashboardSummary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID, month)
	}
	return &services.DashboardSummary{FilterMonth: "All Time"}, nil
}

func (m *mockDashboardService) GetStats(userID uint, month string) (*services.DashboardStats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(userID, month)
	}
	return &services.DashboardStats{ExpenseByCategory: []services.CategoryTotal{}, IncomeByCategory: []services.CategoryTotal{}}, nil
}

var _ services.DashboardServicer = (*mockDashboardService)(nil)

func setupDashboardRouter(handler *DashboardHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectCaller(regularCaller(5)))
	auth.GET("/dashboard/summary", handler.GetSummary)
	auth.GET("/dashboard/stats", handler.GetStats)
	return r
}

// --- tests ---

func TestDashboardHandler_GetSummary(t *testing.T) {
	t.Run("passes caller and month through", func(t *testing.T) {
		var gotUserID uint
		var gotMonth string
		svc := &mockDashboardService{
			getSummaryFn: func(userID uint, month string) (*services.DashboardSummary, error) {
				gotUserID = userID
				gotMonth = month
				return &services.DashboardSummary{
					TotalIncome:  decimal.RequireFromString("3000"),
					TotalExpense: decimal.RequireFromString("1000"),
					NetProfit:    decimal.RequireFromString("2000"),
					FilterMonth:  month,
				}, nil
			},
		}
		r := setupDashboardRouter(NewDashboardHandler(svc))

		rec := doRequest(r, "GET", "/dashboard/summary?month=2026-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotUserID != 5 || gotMonth != "2026-01" {
			t.Errorf("expected user 5 month 2026-01, got %d %q", gotUserID, gotMonth)
		}
		data := parseJSON(t, rec)["data"].(map[string]interface{})
		if data["filter_month"] != "2026-01" {
			t.Errorf("expected filter_month echoed, got %v", data["filter_month"])
		}
	})

	t.Run("maps invalid month to 400", func(t *testing.T) {
		svc := &mockDashboardService{
			getSummaryFn: func(uint, string) (*services.DashboardSummary, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Month must be in YYYY-MM format.")
			},
		}
		r := setupDashboardRouter(NewDashboardHandler(svc))

		rec := doRequest(r, "GET", "/dashboard/summary?month=January", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertEnvelopeError(t, parseJSON(t, rec), "Month must be in YYYY-MM format.")
	})
}

func TestDashboardHandler_GetStats(t *testing.T) {
	t.Run("returns grouped totals", func(t *testing.T) {
		svc := &mockDashboardService{
			getStatsFn: func(uint, string) (*services.DashboardStats, error) {
				return &services.DashboardStats{
					ExpenseByCategory: []services.CategoryTotal{
						{CategoryName: "Rent", Total: decimal.RequireFromString("800")},
					},
					IncomeByCategory: []services.CategoryTotal{},
				}, nil
			},
		}
		r := setupDashboardRouter(NewDashboardHandler(svc))

		rec := doRequest(r, "GET", "/dashboard/stats", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data := parseJSON(t, rec)["data"].(map[string]interface{})
		groups := data["expense_by_category"].([]interface{})
		if len(groups) != 1 {
			t.Fatalf("expected 1 expense group, got %d", len(groups))
		}
		if groups[0].(map[string]interface{})["category_name"] != "Rent" {
			t.Errorf("unexpected group: %v", groups[0])
		}
	})
}
