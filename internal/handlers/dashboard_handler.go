package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// DashboardHandler handles dashboard aggregation requests
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns the caller's financial summary
// @Summary     Dashboard summary
// @Description Get the caller's income, expense and net totals, optionally for one month
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Limit to month (YYYY-MM)"
// @Success     200 {object} SuccessResponse "Summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(caller.ID, c.Query("month"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, summary, "")
}

// GetStats returns the caller's per-category rollups
// @Summary     Dashboard statistics
// @Description Get the caller's per-category expense and income totals, optionally for one month
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Limit to month (YYYY-MM)"
// @Success     200 {object} SuccessResponse "Statistics"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.dashboardService.GetStats(caller.ID, c.Query("month"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, stats, "")
}
