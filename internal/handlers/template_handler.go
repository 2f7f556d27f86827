package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hubledger/internal/clock"
	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
	"hubledger/internal/services"
)

// TemplateHandler handles recurring template requests.
type TemplateHandler struct {
	templateService  services.TemplateServicer
	recurringService services.RecurringServicer
	clock            clock.Clock
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService services.TemplateServicer, recurringService services.RecurringServicer, clk clock.Clock) *TemplateHandler {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TemplateHandler{templateService: templateService, recurringService: recurringService, clock: clk}
}

// CreateTemplateRequest represents the request payload for creating a recurring template.
type CreateTemplateRequest struct {
	UserID               string                 `json:"user_id" binding:"required,uuid"`
	FinancialAccountID   string                 `json:"financial_account_id" binding:"required,uuid"`
	DestinationAccountID *string                `json:"destination_account_id" binding:"omitempty,uuid"`
	CategoryID           *string                `json:"category_id" binding:"omitempty,uuid"`
	Type                 models.TransactionType `json:"type" binding:"required,transaction_type"`
	Source               string                 `json:"source" binding:"required,min=1,max=200"`
	Amount               int64                  `json:"amount" binding:"gte=0"`
	Note                 string                 `json:"note" binding:"max=500"`
	FrequencyDays        int                    `json:"frequency_days" binding:"required,min=1"`
	StartDate            string                 `json:"start_date" binding:"required"`
	EndDate              *string                `json:"end_date"`
}

// SetStatusRequest switches a template on or off.
type SetStatusRequest struct {
	Status models.TemplateStatus `json:"status" binding:"required,template_status"`
}

// CreateTemplate handles the creation of a recurring template.
// @Summary     Create a recurring template
// @Description Create an income, expense or transfer that repeats every frequency_days days
// @Tags        templates
// @Accept      json
// @Produce     json
// @Param       hubID   path string                true "Hub ID"
// @Param       request body CreateTemplateRequest true "Template details"
// @Success     201 {object} models.RecurringTemplate "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date: "+err.Error()))
		return
	}
	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date: "+parseErr.Error()))
			return
		}
		end = &parsed
	}

	tpl, err := h.templateService.CreateTemplate(hubID, services.TemplateInput{
		UserID:               req.UserID,
		FinancialAccountID:   req.FinancialAccountID,
		DestinationAccountID: req.DestinationAccountID,
		CategoryID:           req.CategoryID,
		Type:                 req.Type,
		Source:               req.Source,
		Amount:               req.Amount,
		Note:                 req.Note,
		FrequencyDays:        req.FrequencyDays,
		StartDate:            start,
		EndDate:              end,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"template": tpl})
}

// ListTemplates handles listing the recurring templates of a hub.
// @Summary     List recurring templates
// @Tags        templates
// @Produce     json
// @Param       hubID            path  string true  "Hub ID"
// @Param       status           query string false "Filter by status (active/inactive)"
// @Param       include_archived query bool   false "Include archived templates"
// @Param       failing          query bool   false "Only templates whose last attempt failed"
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringTemplate] "Paginated templates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
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

	var filter services.TemplateFilter
	if v := c.Query("status"); v != "" {
		status := models.TemplateStatus(v)
		if !status.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'active' or 'inactive'"))
			return
		}
		filter.Status = &status
	}
	includeArchived, err := parseOptionalBool(c, "include_archived")
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.IncludeArchived = includeArchived != nil && *includeArchived
	failing, err := parseOptionalBool(c, "failing")
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.FailingOnly = failing != nil && *failing

	result, err := h.templateService.ListTemplates(hubID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTemplate handles fetching one template together with its next due date.
// @Summary     Get recurring template
// @Tags        templates
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Param       id    path string true "Template ID"
// @Success     200 {object} models.RecurringTemplate "Template"
// @Failure     400 {object} ErrorResponse "Invalid template ID"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /hubs/{hubID}/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	h.withTemplate(c, func(hubID, id string) (*models.RecurringTemplate, error) {
		return h.templateService.GetTemplate(hubID, id)
	})
}

// ArchiveTemplate handles archiving a template. Archived templates never generate.
// @Summary     Archive recurring template
// @Tags        templates
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Param       id    path string true "Template ID"
// @Success     200 {object} models.RecurringTemplate "Archived template"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /hubs/{hubID}/templates/{id}/archive [post]
func (h *TemplateHandler) ArchiveTemplate(c *gin.Context) {
	h.withTemplate(c, h.templateService.ArchiveTemplate)
}

// UnarchiveTemplate handles restoring an archived template.
// @Summary     Unarchive recurring template
// @Tags        templates
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Param       id    path string true "Template ID"
// @Success     200 {object} models.RecurringTemplate "Restored template"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /hubs/{hubID}/templates/{id}/unarchive [post]
func (h *TemplateHandler) UnarchiveTemplate(c *gin.Context) {
	h.withTemplate(c, h.templateService.UnarchiveTemplate)
}

// SetStatus handles switching a template between active and inactive.
// @Summary     Set template status
// @Tags        templates
// @Accept      json
// @Produce     json
// @Param       hubID   path string           true "Hub ID"
// @Param       id      path string           true "Template ID"
// @Param       request body SetStatusRequest true "New status"
// @Success     200 {object} models.RecurringTemplate "Updated template"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /hubs/{hubID}/templates/{id}/status [put]
func (h *TemplateHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	h.withTemplate(c, func(hubID, id string) (*models.RecurringTemplate, error) {
		return h.templateService.SetStatus(hubID, id, req.Status)
	})
}

// GenerateNow handles running one template immediately, outside the scheduler.
// The same due rules apply, so a template that already generated this period
// answers 409.
// @Summary     Generate from template now
// @Tags        templates
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Param       id    path string true "Template ID"
// @Success     201 {object} services.GenerationOutcome "Transaction generated"
// @Failure     404 {object} ErrorResponse "Template or account not found"
// @Failure     409 {object} ErrorResponse "Template not due"
// @Failure     422 {object} ErrorResponse "Insufficient funds"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/templates/{id}/generate [post]
func (h *TemplateHandler) GenerateNow(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	outcome, err := h.recurringService.RunTemplate(c.Request.Context(), hubID, templateID, h.clock.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	switch {
	case outcome.Generated:
		c.JSON(http.StatusCreated, gin.H{"outcome": outcome})
	case outcome.Interrupted:
		respondWithError(c, apperrors.ErrGenerationInterrupted)
	case outcome.SkipReason != "":
		respondWithError(c, apperrors.WithMessage(apperrors.ErrTemplateNotDue,
			"Recurring template is not due: "+string(outcome.SkipReason)))
	default:
		respondWithError(c, failureError(outcome.FailureReason))
	}
}

func (h *TemplateHandler) withTemplate(c *gin.Context, fn func(hubID, id string) (*models.RecurringTemplate, error)) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tpl, err := fn(hubID, templateID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": tpl, "next_due": services.NextDueDate(tpl)})
}

// failureError maps a persisted failure code back to its error.
func failureError(code string) *apperrors.AppError {
	switch code {
	case apperrors.ErrInsufficientFunds.Code:
		return apperrors.ErrInsufficientFunds
	case apperrors.ErrMissingAccount.Code:
		return apperrors.ErrMissingAccount
	case apperrors.ErrInvalidTransactionType.Code:
		return apperrors.ErrInvalidTransactionType
	default:
		return apperrors.ErrPersistence
	}
}
