package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hubledger/internal/clock"
	apperrors "hubledger/internal/errors"
	"hubledger/internal/logger"
	"hubledger/internal/pagination"
	"hubledger/internal/services"
)

// PipelineHandler exposes the generation engine to an external scheduler.
type PipelineHandler struct {
	recurringService services.RecurringServicer
	runService       services.RecurringRunServicer
	clock            clock.Clock
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(recurringService services.RecurringServicer, runService services.RecurringRunServicer, clk clock.Clock) *PipelineHandler {
	if clk == nil {
		clk = clock.Real{}
	}
	return &PipelineHandler{recurringService: recurringService, runService: runService, clock: clk}
}

// RunRecurring runs one generation batch over every hub.
// @Summary     Run recurring generation
// @Description Attempts every active template once. Per-template failures are reported in the body, not as an error status.
// @Tags        pipeline
// @Produce     json
// @Security    PipelineKey
// @Success     200 {object} services.BatchResult "Batch statistics"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Templates could not be loaded"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/recurring/run [post]
func (h *PipelineHandler) RunRecurring(c *gin.Context) {
	result, err := h.recurringService.RunBatch(c.Request.Context(), h.clock.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	run, err := h.runService.Record(result, services.TriggerAPI)
	if err != nil {
		logger.Get().Warnw("failed to record recurring run", "error", err)
	}

	resp := gin.H{"result": result}
	if run != nil {
		resp["run_id"] = run.ID
	}
	c.JSON(http.StatusOK, resp)
}

// ListRuns returns the recorded generation batches, newest first.
// @Summary     List recurring runs
// @Tags        pipeline
// @Produce     json
// @Security    PipelineKey
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringRun] "Paginated runs"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/recurring/runs [get]
func (h *PipelineHandler) ListRuns(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.runService.ListRuns(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
