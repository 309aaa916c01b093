package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/dates"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the expense creation payload. The entry
// date is accepted in any of the supported input formats.
type CreateExpenseRequest struct {
	Title              string          `json:"title" binding:"required,max=200"`
	CategoryID         uint            `json:"category_id" binding:"required"`
	Amount             decimal.Decimal `json:"amount"`
	EntryDate          string          `json:"entry_date" binding:"required,entry_date"`
	PaymentMethod      string          `json:"payment_method" binding:"omitempty,payment_method"`
	Description        string          `json:"description"`
	SupportingDocument string          `json:"supporting_document"`
}

// UpdateExpenseRequest represents a partial expense update payload
type UpdateExpenseRequest struct {
	Title              *string          `json:"title" binding:"omitempty,max=200"`
	CategoryID         *uint            `json:"category_id"`
	Amount             *decimal.Decimal `json:"amount"`
	EntryDate          *string          `json:"entry_date" binding:"omitempty,entry_date"`
	PaymentMethod      *string          `json:"payment_method" binding:"omitempty,payment_method"`
	Description        *string          `json:"description"`
	SupportingDocument *string          `json:"supporting_document"`
}

// parseEntryFilter reads the shared filter/search/ordering query params.
func parseEntryFilter(c *gin.Context) (services.EntryFilter, error) {
	var filter services.EntryFilter

	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category filter")
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}
	filter.PaymentMethod = c.Query("payment_method")
	if raw := c.Query("entry_date"); raw != "" {
		date, err := dates.Parse(raw)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		filter.EntryDate = &date
	}
	filter.Search = c.Query("search")
	filter.Ordering = c.Query("ordering")
	return filter, nil
}

// CreateExpense creates a new expense for the caller
// @Summary     Create expense
// @Description Record a new expense; a notification is created alongside it
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense data"
// @Success     201 {object} SuccessResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	entryDate, err := dates.Parse(req.EntryDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(caller, services.ExpenseInput{
		Title:              req.Title,
		CategoryID:         req.CategoryID,
		Amount:             req.Amount,
		EntryDate:          entryDate,
		PaymentMethod:      models.PaymentMethod(req.PaymentMethod),
		Description:        req.Description,
		SupportingDocument: req.SupportingDocument,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, expense, "Expense created successfully")
}

// GetExpenses lists expenses visible to the caller
// @Summary     List expenses
// @Description List expenses visible to the caller with filtering, search and ordering
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       category query int false "Filter by category ID"
// @Param       payment_method query string false "Filter by payment method"
// @Param       entry_date query string false "Filter by exact entry date"
// @Param       search query string false "Search in title and description"
// @Param       ordering query string false "Order by amount, entry_date or created_at; prefix with - for descending"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} SuccessResponse "Paginated expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	filter, err := parseEntryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.GetExpenses(caller, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result, "")
}

// GetExpense retrieves a single expense
// @Summary     Get expense
// @Description Get a single expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} SuccessResponse "Expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(caller, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, expense, "")
}

// UpdateExpense applies a partial update to an expense
// @Summary     Update expense
// @Description Update fields of an expense; omitted fields are unchanged
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} SuccessResponse "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [patch]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	update := services.ExpenseUpdate{
		Title:              req.Title,
		CategoryID:         req.CategoryID,
		Amount:             req.Amount,
		Description:        req.Description,
		SupportingDocument: req.SupportingDocument,
	}
	if req.EntryDate != nil {
		entryDate, err := dates.Parse(*req.EntryDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		update.EntryDate = &entryDate
	}
	if req.PaymentMethod != nil {
		pm := models.PaymentMethod(*req.PaymentMethod)
		update.PaymentMethod = &pm
	}

	expense, err := h.expenseService.UpdateExpense(caller, id, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, expense, "Expense updated successfully")
}

// DeleteExpense deletes an expense
// @Summary     Delete expense
// @Description Delete an expense; owners cannot delete their own records, only admins can
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} SuccessResponse "Expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(caller, id); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Expense deleted successfully")
}

// ExportExpenses streams the caller's expenses as a CSV attachment
// @Summary     Export expenses
// @Description Download the caller's visible expenses as a CSV file
// @Tags        expenses
// @Produce     text/csv
// @Security    BearerAuth
// @Param       category query int false "Filter by category ID"
// @Param       payment_method query string false "Filter by payment method"
// @Param       search query string false "Search in title and description"
// @Success     200 {string} string "CSV file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseEntryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.ExportExpenses(caller, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="expenses.csv"`)
	c.Status(http.StatusOK)

	if err := services.WriteExpensesCSV(c.Writer, expenses); err != nil {
		// Headers are already out; nothing sensible left to send.
		_ = c.Error(err)
	}
}

// ImportExpenses imports expenses from an uploaded CSV file
// @Summary     Import expenses
// @Description Upload a CSV file of expenses; invalid rows are skipped and reported
// @Tags        expenses
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "CSV file"
// @Success     201 {object} SuccessResponse "Import report"
// @Failure     400 {object} ErrorResponse "Invalid upload"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/import [post]
func (h *ExpenseHandler) ImportExpenses(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidUpload, "No file uploaded."))
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		respondWithError(c, apperrors.ErrInvalidUpload)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer file.Close()

	result, err := h.expenseService.ImportExpensesCSV(caller, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, result, "Import completed")
}
