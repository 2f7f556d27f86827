package services

import (
	"errors"

	"gorm.io/gorm"

	"hubledger/internal/clock"
	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
)

// templateService handles recurring template management.
type templateService struct {
	db       *gorm.DB
	accounts AccountServicer
	clock    clock.Clock
}

// NewTemplateService creates a new TemplateServicer.
func NewTemplateService(db *gorm.DB, accounts AccountServicer, clk clock.Clock) TemplateServicer {
	if clk == nil {
		clk = clock.Real{}
	}
	return &templateService{db: db, accounts: accounts, clock: clk}
}

// CreateTemplate validates input and stores an active template.
func (s *templateService) CreateTemplate(hubID string, input TemplateInput) (*models.RecurringTemplate, error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetAccount(hubID, input.FinancialAccountID); err != nil {
		return nil, err
	}
	if input.DestinationAccountID != nil {
		if _, err := s.accounts.GetAccount(hubID, *input.DestinationAccountID); err != nil {
			return nil, err
		}
	}
	if input.CategoryID != nil {
		var n int64
		if err := s.db.Model(&models.Category{}).Where("id = ? AND hub_id = ?", *input.CategoryID, hubID).Count(&n).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if n == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	tpl := &models.RecurringTemplate{
		HubID:                hubID,
		UserID:               input.UserID,
		FinancialAccountID:   input.FinancialAccountID,
		DestinationAccountID: input.DestinationAccountID,
		CategoryID:           input.CategoryID,
		Type:                 input.Type,
		Source:               input.Source,
		Amount:               input.Amount,
		Note:                 input.Note,
		FrequencyDays:        input.FrequencyDays,
		StartDate:            input.StartDate.UTC(),
		EndDate:              input.EndDate,
		Status:               models.TemplateStatusActive,
	}
	if err := s.db.Create(tpl).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tpl, nil
}

func validateTemplateInput(input TemplateInput) error {
	if input.Source == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "source is required")
	}
	if input.FinancialAccountID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "financial account is required")
	}
	if input.Amount < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if input.FrequencyDays < 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency must be at least one day")
	}
	if input.StartDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must not be before start date")
	}
	if !input.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}

	if input.Type == models.TransactionTypeTransfer {
		if input.DestinationAccountID == nil || *input.DestinationAccountID == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer requires a destination account")
		}
		if *input.DestinationAccountID == input.FinancialAccountID {
			return apperrors.ErrSameAccountTransfer
		}
	} else if input.DestinationAccountID != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "only transfers take a destination account")
	}
	return nil
}

// GetTemplate retrieves a template inside a hub, archived or not.
func (s *templateService) GetTemplate(hubID, templateID string) (*models.RecurringTemplate, error) {
	var tpl models.RecurringTemplate
	if err := s.db.Where("id = ? AND hub_id = ?", templateID, hubID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tpl, nil
}

// ListTemplates returns a paginated list of templates in a hub.
func (s *templateService) ListTemplates(hubID string, page pagination.PageRequest, filter TemplateFilter) (*pagination.PageResponse[models.RecurringTemplate], error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	page.Defaults()

	base := s.db.Model(&models.RecurringTemplate{}).Where("hub_id = ?", hubID)
	if !filter.IncludeArchived {
		base = base.Where("archived_at IS NULL")
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.FailingOnly {
		base = base.Where("consecutive_failures > 0")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var templates []models.RecurringTemplate
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(templates, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SetStatus switches a template on or off.
func (s *templateService) SetStatus(hubID, templateID string, status models.TemplateStatus) (*models.RecurringTemplate, error) {
	if !status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be active or inactive")
	}
	tpl, err := s.GetTemplate(hubID, templateID)
	if err != nil {
		return nil, err
	}
	if tpl.Status == status {
		return tpl, nil
	}
	if err := s.db.Model(tpl).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	tpl.Status = status
	return tpl, nil
}

// ArchiveTemplate hides a template from listings and from batch runs.
func (s *templateService) ArchiveTemplate(hubID, templateID string) (*models.RecurringTemplate, error) {
	tpl, err := s.GetTemplate(hubID, templateID)
	if err != nil {
		return nil, err
	}
	if tpl.IsArchived() {
		return tpl, nil
	}
	now := s.clock.Now()
	if err := s.db.Model(tpl).Update("archived_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	tpl.ArchivedAt = &now
	return tpl, nil
}

// UnarchiveTemplate clears archivedAt. Failure counters are kept.
func (s *templateService) UnarchiveTemplate(hubID, templateID string) (*models.RecurringTemplate, error) {
	tpl, err := s.GetTemplate(hubID, templateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsArchived() {
		return tpl, nil
	}
	if err := s.db.Model(tpl).Update("archived_at", nil).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	tpl.ArchivedAt = nil
	return tpl, nil
}
