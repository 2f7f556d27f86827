package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
)

// Run triggers.
const (
	TriggerAPI    = "api"
	TriggerWorker = "worker"
)

// recurringRunService stores the outcome of generation batches.
type recurringRunService struct {
	db *gorm.DB
}

// NewRecurringRunService creates a new RecurringRunServicer.
func NewRecurringRunService(db *gorm.DB) RecurringRunServicer {
	return &recurringRunService{db: db}
}

// Record persists a batch result.
func (s *recurringRunService) Record(result *BatchResult, trigger string) (*models.RecurringRun, error) {
	if result == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "batch result is required")
	}

	errs, err := json.Marshal(result.Errors)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	run := &models.RecurringRun{
		StartedAt:   result.StartedAt,
		DurationMS:  result.Duration.Milliseconds(),
		Success:     result.Success,
		Failed:      result.Failed,
		Skipped:     result.Skipped,
		Interrupted: result.Interrupted,
		Errors:      string(errs),
		Trigger:     trigger,
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return run, nil
}

// ListRuns returns recorded batches, newest first.
func (s *recurringRunService) ListRuns(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringRun], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.RecurringRun{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var runs []models.RecurringRun
	if err := base.Order("started_at DESC").Scopes(pagination.Paginate(page)).Find(&runs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(runs, page.Page, page.PageSize, totalItems)
	return &result, nil
}
