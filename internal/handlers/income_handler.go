package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/dates"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// IncomeHandler handles income-related requests
type IncomeHandler struct {
	incomeService services.IncomeServicer
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService services.IncomeServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeRequest represents the income creation payload
type CreateIncomeRequest struct {
	Title              string          `json:"title" binding:"required,max=255"`
	CategoryID         uint            `json:"category_id" binding:"required"`
	Amount             decimal.Decimal `json:"amount"`
	EntryDate          string          `json:"entry_date" binding:"required,entry_date"`
	PaymentMethod      string          `json:"payment_method" binding:"max=50"`
	Description        string          `json:"description"`
	SupportingDocument string          `json:"supporting_document"`
}

// UpdateIncomeRequest represents a partial income update payload
type UpdateIncomeRequest struct {
	Title              *string          `json:"title" binding:"omitempty,max=255"`
	CategoryID         *uint            `json:"category_id"`
	Amount             *decimal.Decimal `json:"amount"`
	EntryDate          *string          `json:"entry_date" binding:"omitempty,entry_date"`
	PaymentMethod      *string          `json:"payment_method" binding:"omitempty,max=50"`
	Description        *string          `json:"description"`
	SupportingDocument *string          `json:"supporting_document"`
}

// CreateIncome records a new income entry for the caller
// @Summary     Create income
// @Description Record a new income entry; the date cannot be in the future
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateIncomeRequest true "Income data"
// @Success     201 {object} SuccessResponse "Income created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /income [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	entryDate, err := dates.Parse(req.EntryDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	income, err := h.incomeService.CreateIncome(caller, services.IncomeInput{
		Title:              req.Title,
		CategoryID:         req.CategoryID,
		Amount:             req.Amount,
		EntryDate:          entryDate,
		PaymentMethod:      req.PaymentMethod,
		Description:        req.Description,
		SupportingDocument: req.SupportingDocument,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, income, "Income created successfully")
}

// GetIncomes lists income entries visible to the caller
// @Summary     List income
// @Description List income entries visible to the caller with filtering, search and ordering
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       category query int false "Filter by category ID"
// @Param       payment_method query string false "Filter by payment method"
// @Param       entry_date query string false "Filter by exact entry date"
// @Param       search query string false "Search in title and description"
// @Param       ordering query string false "Order by amount, entry_date or created_at; prefix with - for descending"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} SuccessResponse "Paginated income entries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /income [get]
func (h *IncomeHandler) GetIncomes(c *gin.Context) {
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

	result, err := h.incomeService.GetIncomes(caller, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result, "")
}

// GetIncome retrieves a single income entry
// @Summary     Get income
// @Description Get a single income entry by ID
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Income ID"
// @Success     200 {object} SuccessResponse "Income entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id} [get]
func (h *IncomeHandler) GetIncome(c *gin.Context) {
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

	income, err := h.incomeService.GetIncomeByID(caller, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, income, "")
}

// UpdateIncome applies a partial update to an income entry
// @Summary     Update income
// @Description Update fields of an income entry; omitted fields are unchanged
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Income ID"
// @Param       request body UpdateIncomeRequest true "Fields to update"
// @Success     200 {object} SuccessResponse "Income updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id} [patch]
func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
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

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	update := services.IncomeUpdate{
		Title:              req.Title,
		CategoryID:         req.CategoryID,
		Amount:             req.Amount,
		PaymentMethod:      req.PaymentMethod,
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

	income, err := h.incomeService.UpdateIncome(caller, id, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, income, "Income updated successfully")
}

// DeleteIncome deletes an income entry
// @Summary     Delete income
// @Description Delete an income entry; owners cannot delete their own records, only admins can
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Income ID"
// @Success     200 {object} SuccessResponse "Income deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
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

	if err := h.incomeService.DeleteIncome(caller, id); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Income deleted successfully")
}
