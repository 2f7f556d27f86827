package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hubledger/internal/clock"
	apperrors "hubledger/internal/errors"
	"hubledger/internal/pagination"
	"hubledger/internal/services"
)

// BudgetHandler handles budget definitions and their monthly instances.
type BudgetHandler struct {
	budgetService   services.BudgetServicer
	instanceService services.BudgetInstanceServicer
	clock           clock.Clock
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, instanceService services.BudgetInstanceServicer, clk clock.Clock) *BudgetHandler {
	if clk == nil {
		clk = clock.Real{}
	}
	return &BudgetHandler{budgetService: budgetService, instanceService: instanceService, clock: clk}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	CategoryID        string `json:"category_id" binding:"required,uuid"`
	Name              string `json:"name" binding:"required,min=1,max=100"`
	AllocatedAmount   int64  `json:"allocated_amount" binding:"gte=0"`
	WarningPercentage int    `json:"warning_percentage" binding:"omitempty,min=1,max=100"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
// Allocation changes apply to months materialized afterwards.
type UpdateBudgetRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	AllocatedAmount   *int64  `json:"allocated_amount" binding:"omitempty,gte=0"`
	WarningPercentage *int    `json:"warning_percentage" binding:"omitempty,min=1,max=100"`
	IsActive          *bool   `json:"is_active"`
}

// PeriodQuery selects a month. Missing values default to the current month.
type PeriodQuery struct {
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	Year  int `form:"year" binding:"omitempty,min=1"`
}

// SetSpentRequest represents the manually tracked spend of a budget month.
type SetSpentRequest struct {
	Month  int   `json:"month" binding:"required,min=1,max=12"`
	Year   int   `json:"year" binding:"required,min=1"`
	Amount int64 `json:"amount" binding:"gte=0"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a monthly budget for an expense category
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       hubID   path string              true "Hub ID"
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(hubID, req.CategoryID, req.Name, req.AllocatedAmount, req.WarningPercentage)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budget definitions.
// @Summary     List budgets
// @Tags        budgets
// @Produce     json
// @Param       hubID     path  string true  "Hub ID"
// @Param       is_active query bool   false "Filter by active status"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	isActive, err := parseOptionalBool(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.GetHubBudgets(hubID, page, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles fetching one budget definition.
// @Summary     Get budget
// @Tags        budgets
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Param       id    path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /hubs/{hubID}/budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudget(hubID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles partial updates of a budget definition.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       hubID   path string              true "Hub ID"
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /hubs/{hubID}/budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(hubID, budgetID, services.BudgetUpdateFields{
		Name:              req.Name,
		AllocatedAmount:   req.AllocatedAmount,
		WarningPercentage: req.WarningPercentage,
		IsActive:          req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget definition.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Param       id    path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /hubs/{hubID}/budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(hubID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetPeriodBudgets materializes a month and returns its budget figures.
// @Summary     Budgets for a month
// @Description Materializes missing instances for the month, then returns allocation, carry-over, spend and warning state per budget
// @Tags        budgets
// @Produce     json
// @Param       hubID path  string true  "Hub ID"
// @Param       month query int    false "Month 1-12 (default current)"
// @Param       year  query int    false "Year (default current)"
// @Success     200 {array}  services.BudgetPeriodView "Budgets for the month"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/budgets/period [get]
func (h *BudgetHandler) GetPeriodBudgets(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidPeriod, err.Error()))
		return
	}
	now := services.PeriodOf(h.clock.Now())
	if q.Month == 0 {
		q.Month = now.Month
	}
	if q.Year == 0 {
		q.Year = now.Year
	}

	views, err := h.instanceService.GetPeriodBudgets(c.Request.Context(), hubID, q.Month, q.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": q.Month, "year": q.Year, "budgets": views})
}

// SetSpent handles recording the manual spend of a budget month.
// @Summary     Set manual spend
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       hubID   path string          true "Hub ID"
// @Param       id      path string          true "Budget ID"
// @Param       request body SetSpentRequest true "Month and amount"
// @Success     200 {object} models.BudgetInstance "Updated instance"
// @Failure     400 {object} ErrorResponse "Invalid input or period before the budget existed"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /hubs/{hubID}/budgets/{id}/spent [put]
func (h *BudgetHandler) SetSpent(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetSpentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inst, err := h.instanceService.SetManualSpent(c.Request.Context(), hubID, budgetID, req.Month, req.Year, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instance": inst})
}
