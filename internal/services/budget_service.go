package services

import (
	"errors"

	"gorm.io/gorm"

	"hubledger/internal/clock"
	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
)

// budgetService handles budget definitions. Monthly snapshots live in
// budgetInstanceService.
type budgetService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, clk clock.Clock) BudgetServicer {
	if clk == nil {
		clk = clock.Real{}
	}
	return &budgetService{db: db, clock: clk}
}

// CreateBudget creates a new budget for an expense category. The creation
// month is the first period the budget shows up in.
func (s *budgetService) CreateBudget(hubID, categoryID, name string, allocated int64, warningPercentage int) (*models.Budget, error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if allocated < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated amount must not be negative")
	}
	if warningPercentage == 0 {
		warningPercentage = 80
	}
	if warningPercentage < 1 || warningPercentage > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "warning percentage must be between 1 and 100")
	}

	// Verify category exists in the hub
	var category models.Category
	if err := s.db.Where("id = ? AND hub_id = ?", categoryID, hubID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget := &models.Budget{
		HubID:             hubID,
		CategoryID:        categoryID,
		Name:              name,
		AllocatedAmount:   allocated,
		WarningPercentage: warningPercentage,
		IsActive:          true,
	}
	budget.CreatedAt = s.clock.Now()

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.Category = &category
	return budget, nil
}

// GetHubBudgets returns a paginated list of budgets in a hub.
func (s *budgetService) GetHubBudgets(hubID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.Budget], error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("hub_id = ?", hubID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).Order("name ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudget returns a budget by ID if it belongs to the hub.
func (s *budgetService) GetBudget(hubID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND hub_id = ?", budgetID, hubID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates a budget definition. Existing monthly instances keep
// their snapshot; the new allocation applies from the next materialized month.
func (s *budgetService) UpdateBudget(hubID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error) {
	budget, err := s.GetBudget(hubID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.AllocatedAmount != nil {
		if *fields.AllocatedAmount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated amount must not be negative")
		}
		updates["allocated_amount"] = *fields.AllocatedAmount
	}
	if fields.WarningPercentage != nil {
		if *fields.WarningPercentage < 1 || *fields.WarningPercentage > 100 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "warning percentage must be between 1 and 100")
		}
		updates["warning_percentage"] = *fields.WarningPercentage
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.GetBudget(hubID, budgetID)
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget. Its instances stay for history.
func (s *budgetService) DeleteBudget(hubID, budgetID string) error {
	budget, err := s.GetBudget(hubID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
