package services

import (
	"testing"
	"time"

	"hubledger/internal/clock"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
	"hubledger/internal/testutil"
)

func TestCreateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		createdAt := testutil.Date(2025, time.March, 14)
		svc := NewBudgetService(db, clock.NewMock(createdAt))
		hub := testutil.CreateTestHub(t, db)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)

		budget, err := svc.CreateBudget(hub.ID, cat.ID, "Groceries", 50000, 0)
		testutil.AssertNoError(t, err)

		if budget.ID == "" {
			t.Fatal("expected budget ID to be set")
		}
		if budget.AllocatedAmount != 50000 {
			t.Errorf("expected allocated 50000, got %d", budget.AllocatedAmount)
		}
		if budget.WarningPercentage != 80 {
			t.Errorf("expected default warning 80, got %d", budget.WarningPercentage)
		}
		if !budget.CreatedAt.Equal(createdAt) {
			t.Errorf("expected created at %v, got %v", createdAt, budget.CreatedAt)
		}
	})

	t.Run("invalid_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		hub := testutil.CreateTestHub(t, db)

		_, err := svc.CreateBudget(hub.ID, "00000000-0000-0000-0000-000000000000", "Food", 100, 0)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("category_of_other_hub", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		hub := testutil.CreateTestHub(t, db)
		other := testutil.CreateTestHub(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		_, err := svc.CreateBudget(hub.ID, cat.ID, "Food", 100, 0)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		hub := testutil.CreateTestHub(t, db)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)

		_, err := svc.CreateBudget(hub.ID, cat.ID, "Food", -1, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("bad_warning_percentage", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		hub := testutil.CreateTestHub(t, db)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)

		_, err := svc.CreateBudget(hub.ID, cat.ID, "Food", 100, 150)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetHubBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, nil)
	hub := testutil.CreateTestHub(t, db)
	cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)

	testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.January, 1))
	inactive := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 200, testutil.Date(2025, time.January, 1))
	db.Model(inactive).Update("is_active", false)

	t.Run("all", func(t *testing.T) {
		result, err := svc.GetHubBudgets(hub.ID, pagination.PageRequest{}, nil)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 budgets, got %d", result.TotalItems)
		}
		if len(result.Data) > 0 && result.Data[0].Category == nil {
			t.Error("expected category to be preloaded")
		}
	})

	t.Run("active_only", func(t *testing.T) {
		active := true
		result, err := svc.GetHubBudgets(hub.ID, pagination.PageRequest{}, &active)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 budget, got %d", result.TotalItems)
		}
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		hub := testutil.CreateTestHub(t, db)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.January, 1))

		name := "Dining out"
		amount := int64(7500)
		updated, err := svc.UpdateBudget(hub.ID, budget.ID, BudgetUpdateFields{Name: &name, AllocatedAmount: &amount})
		testutil.AssertNoError(t, err)

		if updated.Name != name || updated.AllocatedAmount != amount {
			t.Errorf("unexpected budget after update: %+v", updated)
		}
	})

	t.Run("invalid_warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		hub := testutil.CreateTestHub(t, db)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.January, 1))

		pct := 0
		_, err := svc.UpdateBudget(hub.ID, budget.ID, BudgetUpdateFields{WarningPercentage: &pct})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		hub := testutil.CreateTestHub(t, db)

		_, err := svc.UpdateBudget(hub.ID, "00000000-0000-0000-0000-000000000000", BudgetUpdateFields{})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestDeleteBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, nil)
	hub := testutil.CreateTestHub(t, db)
	cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
	budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.January, 1))

	testutil.AssertNoError(t, svc.DeleteBudget(hub.ID, budget.ID))

	_, err := svc.GetBudget(hub.ID, budget.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}
