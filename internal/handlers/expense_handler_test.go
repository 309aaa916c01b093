package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/authz"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn     func(caller authz.Caller, input services.ExpenseInput) (*models.Expense, error)
	getExpensesFn       func(caller authz.Caller, page pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.Expense], error)
	getExpenseByIDFn    func(caller authz.Caller, expenseID uint) (*models.Expense, error)
	updateExpenseFn     func(caller authz.Caller, expenseID uint, update services.ExpenseUpdate) (*models.Expense, error)
	deleteExpenseFn     func(caller authz.Caller, expenseID uint) error
	exportExpensesFn    func(caller authz.Caller, filter services.EntryFilter) ([]models.Expense, error)
	importExpensesCSVFn func(caller authz.Caller, r io.Reader) (*services.ImportResult, error)
}

func (m *mockExpenseService) CreateExpense(caller authz.Caller, input services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(caller, input)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenses(caller authz.Caller, page pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.getExpensesFn != nil {
		return m.getExpensesFn(caller, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(caller authz.Caller, expenseID uint) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(caller, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(caller authz.Caller, expenseID uint, update services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(caller, expenseID, update)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(caller authz.Caller, expenseID uint) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(caller, expenseID)
	}
	return nil
}

func (m *mockExpenseService) ExportExpenses(caller authz.Caller, filter services.EntryFilter) ([]models.Expense, error) {
	if m.exportExpensesFn != nil {
		return m.exportExpensesFn(caller, filter)
	}
	return nil, nil
}

func (m *mockExpenseService) ImportExpensesCSV(caller authz.Caller, r io.Reader) (*services.ImportResult, error) {
	if m.importExpensesCSVFn != nil {
		return m.importExpensesCSVFn(caller, r)
	}
	return &services.ImportResult{Status: "success", Errors: []string{}}, nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectCaller(regularCaller(1)))
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses", handler.GetExpenses)
	auth.GET("/expenses/export", handler.ExportExpenses)
	auth.POST("/expenses/import", handler.ImportExpenses)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.PATCH("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func uploadCSV(r *gin.Engine, filename, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", filename)
	_, _ = part.Write([]byte(content))
	_ = w.Close()

	req := httptest.NewRequest("POST", "/expenses/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 and accepts day-first dates", func(t *testing.T) {
		var got services.ExpenseInput
		svc := &mockExpenseService{
			createExpenseFn: func(_ authz.Caller, input services.ExpenseInput) (*models.Expense, error) {
				got = input
				return &models.Expense{Base: models.Base{ID: 1}, Title: input.Title}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "POST", "/expenses",
			`{"title":"Lunch","category_id":2,"amount":"12.50","entry_date":"05/01/2026"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		if !got.EntryDate.Equal(want) {
			t.Errorf("expected entry date %v, got %v", want, got.EntryDate)
		}
		if !got.Amount.Equal(decimal.RequireFromString("12.50")) {
			t.Errorf("expected amount 12.50, got %s", got.Amount)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"title":"Lunch","category_id":2,"amount":"12.50","entry_date":"13/13/2026"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on missing title", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"category_id":2,"amount":"12.50","entry_date":"2026-01-05"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestExpenseHandler_ExportExpenses(t *testing.T) {
	t.Run("streams csv attachment", func(t *testing.T) {
		svc := &mockExpenseService{
			exportExpensesFn: func(authz.Caller, services.EntryFilter) ([]models.Expense, error) {
				return []models.Expense{{
					Base:          models.Base{ID: 9},
					Title:         "Lunch",
					Amount:        decimal.RequireFromString("12.50"),
					EntryDate:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
					PaymentMethod: models.PaymentMethodCash,
					Category:      models.Category{Name: "Food", Type: models.CategoryTypeExpense},
				}}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/expenses/export", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("expected text/csv, got %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="expenses.csv"`) {
			t.Errorf("expected attachment disposition, got %q", cd)
		}
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		if lines[0] != "ID,Expense Title,Category,Type,Amount (USD),Date,Payment By,Description" {
			t.Errorf("unexpected header line: %q", lines[0])
		}
		if len(lines) != 2 || !strings.Contains(lines[1], "Lunch") {
			t.Errorf("unexpected body: %v", lines)
		}
	})
}

func TestExpenseHandler_ImportExpenses(t *testing.T) {
	t.Run("returns 201 with report", func(t *testing.T) {
		svc := &mockExpenseService{
			importExpensesCSVFn: func(_ authz.Caller, r io.Reader) (*services.ImportResult, error) {
				return &services.ImportResult{Status: "success", ImportedCount: 2, Errors: []string{"Row 4: bad"}}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := uploadCSV(r, "expenses.csv", "Title,Category,Amount,Date\n")

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		data := parseJSON(t, rec)["data"].(map[string]interface{})
		if data["imported_count"] != float64(2) {
			t.Errorf("expected imported_count 2, got %v", data["imported_count"])
		}
	})

	t.Run("rejects non-csv filename", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := uploadCSV(r, "expenses.xlsx", "not a csv")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertEnvelopeError(t, parseJSON(t, rec), "Only CSV files are allowed")
	})

	t.Run("rejects missing file", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/expenses/import", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("maps forbidden to 403", func(t *testing.T) {
		svc := &mockExpenseService{
			deleteExpenseFn: func(authz.Caller, uint) error { return apperrors.ErrForbidden },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "DELETE", "/expenses/5", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
