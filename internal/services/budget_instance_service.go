package services

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/logger"
	"hubledger/internal/models"
)

// MaterializeResult counts what EnsureInstances did for each active budget.
type MaterializeResult struct {
	Month    int `json:"month"`
	Year     int `json:"year"`
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Hidden   int `json:"hidden"`
	Failed   int `json:"failed"`
}

// BudgetPeriodView is a budget as seen in one month.
type BudgetPeriodView struct {
	BudgetID          string `json:"budget_id"`
	InstanceID        string `json:"instance_id"`
	Name              string `json:"name"`
	CategoryID        string `json:"category_id"`
	Month             int    `json:"month"`
	Year              int    `json:"year"`
	Allocated         int64  `json:"allocated"`
	CarriedOver       int64  `json:"carried_over"`
	ManualSpent       int64  `json:"manual_spent"`
	CalculatedSpent   int64  `json:"calculated_spent"`
	Effective         int64  `json:"effective"`
	Available         int64  `json:"available"`
	WarningPercentage int    `json:"warning_percentage"`
	Warning           bool   `json:"warning"`
}

// budgetInstanceService materializes monthly budget snapshots.
type budgetInstanceService struct {
	db       *gorm.DB
	settings HubSettingsServicer
}

// NewBudgetInstanceService creates a new BudgetInstanceServicer.
func NewBudgetInstanceService(db *gorm.DB, settings HubSettingsServicer) BudgetInstanceServicer {
	return &budgetInstanceService{db: db, settings: settings}
}

// EnsureInstances creates the missing instances of every active budget in a
// hub for one month. Budgets created after that month are left out. It is
// safe to call concurrently: a row inserted by another caller counts as
// existing. One budget failing does not stop the others; an error is
// returned only when nothing could be materialized.
func (s *budgetInstanceService) EnsureInstances(ctx context.Context, hubID string, month, year int) (*MaterializeResult, error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	period, err := NewPeriod(month, year)
	if err != nil {
		return nil, err
	}

	visible, hidden, err := s.visibleBudgets(ctx, hubID, period)
	if err != nil {
		return nil, err
	}
	result := &MaterializeResult{Month: month, Year: year, Hidden: hidden}

	have, err := s.instancesFor(ctx, visible, period)
	if err != nil {
		return nil, err
	}

	var missing []models.Budget
	for _, b := range visible {
		if _, ok := have[b.ID]; ok {
			result.Existing++
			continue
		}
		missing = append(missing, b)
	}
	if len(missing) == 0 {
		return result, nil
	}

	carryOver, err := s.settings.GetCarryOverEnabled(hubID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := range missing {
		created, err := s.materialize(ctx, &missing[i], period, carryOver)
		if err != nil {
			lastErr = err
			result.Failed++
			logger.Get().Warnw("failed to materialize budget instance",
				"hub_id", hubID,
				"budget_id", missing[i].ID,
				"month", month,
				"year", year,
				"error", err,
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
	}

	if result.Failed == len(missing) {
		return result, apperrors.Wrap(apperrors.ErrInternalServer, lastErr)
	}
	return result, nil
}

// visibleBudgets loads the active budgets of a hub and drops those created
// after period.
func (s *budgetInstanceService) visibleBudgets(ctx context.Context, hubID string, period Period) ([]models.Budget, int, error) {
	var budgets []models.Budget
	if err := s.db.WithContext(ctx).
		Where("hub_id = ? AND is_active = ?", hubID, true).
		Order("name ASC").
		Find(&budgets).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	visible := budgets[:0]
	hidden := 0
	for _, b := range budgets {
		if PeriodOf(b.CreatedAt).Index() > period.Index() {
			hidden++
			continue
		}
		visible = append(visible, b)
	}
	return visible, hidden, nil
}

// instancesFor returns the instances of budgets in period keyed by budget ID.
func (s *budgetInstanceService) instancesFor(ctx context.Context, budgets []models.Budget, period Period) (map[string]models.BudgetInstance, error) {
	out := make(map[string]models.BudgetInstance, len(budgets))
	if len(budgets) == 0 {
		return out, nil
	}
	ids := make([]string, len(budgets))
	for i := range budgets {
		ids[i] = budgets[i].ID
	}

	var instances []models.BudgetInstance
	if err := s.db.WithContext(ctx).
		Where("budget_id IN ? AND month = ? AND year = ?", ids, period.Month, period.Year).
		Find(&instances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, inst := range instances {
		out[inst.BudgetID] = inst
	}
	return out, nil
}

// materialize inserts the instance of b for period and reports whether this
// call created it.
func (s *budgetInstanceService) materialize(ctx context.Context, b *models.Budget, period Period, carryOver bool) (bool, error) {
	var carried int64
	if carryOver {
		prevPeriod := period.Previous()

		var prev models.BudgetInstance
		res := s.db.WithContext(ctx).
			Where("budget_id = ? AND month = ? AND year = ?", b.ID, prevPeriod.Month, prevPeriod.Year).
			Limit(1).
			Find(&prev)
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected > 0 {
			spent, err := s.calculatedSpent(ctx, b.HubID, []string{b.CategoryID}, prevPeriod)
			if err != nil {
				return false, err
			}
			carried = CarryOver(prev.AllocatedAmount, prev.CarriedOverAmount, prev.ManualSpent, spent[b.CategoryID])
		}
	}

	inst := &models.BudgetInstance{
		BudgetID:          b.ID,
		Month:             period.Month,
		Year:              period.Year,
		AllocatedAmount:   b.AllocatedAmount,
		CarriedOverAmount: carried,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "budget_id"}, {Name: "month"}, {Name: "year"}},
		DoNothing: true,
	}).Create(inst)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// calculatedSpent sums expense transactions per category inside period.
func (s *budgetInstanceService) calculatedSpent(ctx context.Context, hubID string, categoryIDs []string, period Period) (map[string]int64, error) {
	start, end := period.Bounds()

	type row struct {
		CategoryID string
		Spent      int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("category_id, COALESCE(SUM(amount), 0) AS spent").
		Where("hub_id = ? AND category_id IN ? AND type = ? AND date >= ? AND date < ?",
			hubID, categoryIDs, models.TransactionTypeExpense, start, end).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.CategoryID] = r.Spent
	}
	return out, nil
}

// GetPeriodBudgets materializes the month and returns every visible budget
// with its figures for that month, ordered by name.
func (s *budgetInstanceService) GetPeriodBudgets(ctx context.Context, hubID string, month, year int) ([]BudgetPeriodView, error) {
	if _, err := s.EnsureInstances(ctx, hubID, month, year); err != nil {
		return nil, err
	}
	period := Period{Month: month, Year: year}

	budgets, _, err := s.visibleBudgets(ctx, hubID, period)
	if err != nil {
		return nil, err
	}
	instances, err := s.instancesFor(ctx, budgets, period)
	if err != nil {
		return nil, err
	}

	categorySet := make(map[string]struct{})
	for _, b := range budgets {
		categorySet[b.CategoryID] = struct{}{}
	}
	categoryIDs := make([]string, 0, len(categorySet))
	for id := range categorySet {
		categoryIDs = append(categoryIDs, id)
	}

	spent := map[string]int64{}
	if len(categoryIDs) > 0 {
		spent, err = s.calculatedSpent(ctx, hubID, categoryIDs, period)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	views := make([]BudgetPeriodView, 0, len(budgets))
	for _, b := range budgets {
		inst, ok := instances[b.ID]
		if !ok {
			// Materialization failed for this budget; it was logged.
			continue
		}
		views = append(views, newBudgetPeriodView(&b, &inst, spent[b.CategoryID]))
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

func newBudgetPeriodView(b *models.Budget, inst *models.BudgetInstance, calculated int64) BudgetPeriodView {
	effective := inst.AllocatedAmount + inst.CarriedOverAmount
	totalSpent := inst.ManualSpent + calculated

	warning := totalSpent > 0 && totalSpent*100 >= effective*int64(b.WarningPercentage)

	return BudgetPeriodView{
		BudgetID:          b.ID,
		InstanceID:        inst.ID,
		Name:              b.Name,
		CategoryID:        b.CategoryID,
		Month:             inst.Month,
		Year:              inst.Year,
		Allocated:         inst.AllocatedAmount,
		CarriedOver:       inst.CarriedOverAmount,
		ManualSpent:       inst.ManualSpent,
		CalculatedSpent:   calculated,
		Effective:         effective,
		Available:         effective - totalSpent,
		WarningPercentage: b.WarningPercentage,
		Warning:           warning,
	}
}

// SetManualSpent records the manually entered spend of a budget for a month.
// The month's instances are materialized first.
func (s *budgetInstanceService) SetManualSpent(ctx context.Context, hubID, budgetID string, month, year int, amount int64) (*models.BudgetInstance, error) {
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "spent amount must not be negative")
	}

	var budget models.Budget
	res := s.db.WithContext(ctx).Where("id = ? AND hub_id = ?", budgetID, hubID).Limit(1).Find(&budget)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrBudgetNotFound
	}

	if _, err := s.EnsureInstances(ctx, hubID, month, year); err != nil {
		return nil, err
	}

	var inst models.BudgetInstance
	res = s.db.WithContext(ctx).
		Where("budget_id = ? AND month = ? AND year = ?", budgetID, month, year).
		Limit(1).
		Find(&inst)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPeriod, "budget has no instance for this period")
	}

	if err := s.db.WithContext(ctx).Model(&inst).Update("manual_spent", amount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	inst.ManualSpent = amount
	return &inst, nil
}
