package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/services"
)

// PipelineHandler serves the scheduler-facing endpoints.
type PipelineHandler struct {
	budgetService services.BudgetServicer
	now           func() time.Time
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(budgetService services.BudgetServicer) *PipelineHandler {
	return &PipelineHandler{budgetService: budgetService, now: time.Now}
}

// RolloverRequest optionally pins the instant the rollover is evaluated at.
type RolloverRequest struct {
	Now *time.Time `json:"now"`
}

// RolloverBudgets handles archiving every automatic budget whose period ended.
// @Summary     Roll over due budgets
// @Description Archive and reset all active automatic budgets whose period has elapsed (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header   string          false "Pipeline API key"
// @Param       request   body     RolloverRequest false "Evaluation instant (default now)"
// @Success     200       {object} services.RolloverResult "Rollover summary"
// @Failure     400       {object} ErrorResponse "Invalid input"
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     503       {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/budgets/rollover [post]
func (h *PipelineHandler) RolloverBudgets(c *gin.Context) {
	var req RolloverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	now := h.now()
	if req.Now != nil {
		now = *req.Now
	}

	result, err := h.budgetService.RolloverDueBudgets(c.Request.Context(), now)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rollover": result})
}
