package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbuddy/internal/services"
)

// PerformanceHandler serves derived budget metrics.
type PerformanceHandler struct {
	performanceService services.PerformanceServicer
}

// NewPerformanceHandler creates a new PerformanceHandler.
func NewPerformanceHandler(performanceService services.PerformanceServicer) *PerformanceHandler {
	return &PerformanceHandler{performanceService: performanceService}
}

// GetPerformance handles computing budget performance metrics.
// @Summary     Get budget performance
// @Description Count budgets by status and average the share of limit used
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PerformanceMetrics "Performance metrics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /performance [get]
func (h *PerformanceHandler) GetPerformance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	metrics, err := h.performanceService.Performance(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": metrics})
}

// GetBalance handles computing income minus expenses.
// @Summary     Get balance
// @Description Total income minus total expenses
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Balance "Balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balance [get]
func (h *PerformanceHandler) GetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.performanceService.Balance(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
