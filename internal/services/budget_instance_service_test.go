package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"hubledger/internal/models"
	"hubledger/internal/testutil"
)

func newTestBudgetInstanceService(t *testing.T, db *gorm.DB, hubID string, carryOver bool) BudgetInstanceServicer {
	t.Helper()
	settings := NewHubSettingsService(db, 0)
	if carryOver {
		if _, err := settings.SetCarryOverEnabled(hubID, true); err != nil {
			t.Fatalf("failed to enable carry-over: %v", err)
		}
	}
	return NewBudgetInstanceService(db, settings)
}

func countInstances(t *testing.T, db *gorm.DB, budgetID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.BudgetInstance{}).Where("budget_id = ?", budgetID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count instances: %v", err)
	}
	return n
}

func loadInstance(t *testing.T, db *gorm.DB, budgetID string, month, year int) *models.BudgetInstance {
	t.Helper()
	var inst models.BudgetInstance
	if err := db.Where("budget_id = ? AND month = ? AND year = ?", budgetID, month, year).First(&inst).Error; err != nil {
		t.Fatalf("failed to load instance %d/%d: %v", month, year, err)
	}
	return &inst
}

func TestEnsureInstances(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 50000, testutil.Date(2025, time.January, 10))

		result, err := svc.EnsureInstances(ctx, hub.ID, 2, 2025)
		testutil.AssertNoError(t, err)
		if result.Created != 1 {
			t.Fatalf("expected 1 created, got %+v", result)
		}

		inst := loadInstance(t, db, budget.ID, 2, 2025)
		if inst.AllocatedAmount != 50000 || inst.CarriedOverAmount != 0 {
			t.Errorf("unexpected instance %+v", inst)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, true)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 50000, testutil.Date(2025, time.January, 10))

		_, err := svc.EnsureInstances(ctx, hub.ID, 3, 2025)
		testutil.AssertNoError(t, err)
		second, err := svc.EnsureInstances(ctx, hub.ID, 3, 2025)
		testutil.AssertNoError(t, err)

		if second.Created != 0 || second.Existing != 1 {
			t.Errorf("expected second call to be a no-op, got %+v", second)
		}
		if n := countInstances(t, db, budget.ID); n != 1 {
			t.Errorf("expected 1 instance, got %d", n)
		}
	})

	t.Run("concurrent_callers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.January, 10))

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.EnsureInstances(ctx, hub.ID, 4, 2025)
			}()
		}
		wg.Wait()

		if n := countInstances(t, db, budget.ID); n != 1 {
			t.Errorf("expected exactly 1 instance, got %d", n)
		}
	})

	t.Run("ghost_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, true)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.March, 20))

		for _, month := range []int{1, 2} {
			result, err := svc.EnsureInstances(ctx, hub.ID, month, 2025)
			testutil.AssertNoError(t, err)
			if result.Hidden != 1 || result.Created != 0 {
				t.Errorf("month %d: expected budget hidden, got %+v", month, result)
			}
		}
		if n := countInstances(t, db, budget.ID); n != 0 {
			t.Fatalf("expected no instances before creation month, got %d", n)
		}

		result, err := svc.EnsureInstances(ctx, hub.ID, 3, 2025)
		testutil.AssertNoError(t, err)
		if result.Created != 1 {
			t.Errorf("expected instance in creation month, got %+v", result)
		}
		// No January or February instance exists to carry from.
		if inst := loadInstance(t, db, budget.ID, 3, 2025); inst.CarriedOverAmount != 0 {
			t.Errorf("expected no carry-over in first month, got %d", inst.CarriedOverAmount)
		}
	})

	t.Run("carry_over_deficit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, true)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 50000, testutil.Date(2025, time.January, 1))

		_, err := svc.EnsureInstances(ctx, hub.ID, 1, 2025)
		testutil.AssertNoError(t, err)
		db.Model(&models.BudgetInstance{}).
			Where("budget_id = ? AND month = 1 AND year = 2025", budget.ID).
			Update("manual_spent", 60000)

		_, err = svc.EnsureInstances(ctx, hub.ID, 2, 2025)
		testutil.AssertNoError(t, err)

		feb := loadInstance(t, db, budget.ID, 2, 2025)
		if feb.CarriedOverAmount != -10000 {
			t.Errorf("expected carry-over -10000, got %d", feb.CarriedOverAmount)
		}
		if effective := feb.AllocatedAmount + feb.CarriedOverAmount; effective != 40000 {
			t.Errorf("expected effective 40000, got %d", effective)
		}
	})

	t.Run("carry_over_uses_calculated_spent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, true)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		otherCat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		account := testutil.CreateTestAccount(t, db, hub.ID, 0)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 50000, testutil.Date(2024, time.December, 1))

		_, err := svc.EnsureInstances(ctx, hub.ID, 12, 2024)
		testutil.AssertNoError(t, err)

		testutil.CreateTestExpense(t, db, account, cat.ID, 20000, testutil.Date(2024, time.December, 5))
		testutil.CreateTestExpense(t, db, account, cat.ID, 5000, time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC))
		// Outside the window or category: ignored.
		testutil.CreateTestExpense(t, db, account, cat.ID, 9999, testutil.Date(2025, time.January, 1))
		testutil.CreateTestExpense(t, db, account, otherCat.ID, 9999, testutil.Date(2024, time.December, 10))

		_, err = svc.EnsureInstances(ctx, hub.ID, 1, 2025)
		testutil.AssertNoError(t, err)

		jan := loadInstance(t, db, budget.ID, 1, 2025)
		if jan.CarriedOverAmount != 25000 {
			t.Errorf("expected carry-over 25000 across the year boundary, got %d", jan.CarriedOverAmount)
		}
	})

	t.Run("carry_over_disabled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 50000, testutil.Date(2025, time.January, 1))

		_, err := svc.EnsureInstances(ctx, hub.ID, 1, 2025)
		testutil.AssertNoError(t, err)
		_, err = svc.EnsureInstances(ctx, hub.ID, 2, 2025)
		testutil.AssertNoError(t, err)

		if feb := loadInstance(t, db, budget.ID, 2, 2025); feb.CarriedOverAmount != 0 {
			t.Errorf("expected no carry-over, got %d", feb.CarriedOverAmount)
		}
	})

	t.Run("missing_previous_instance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, true)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 50000, testutil.Date(2025, time.January, 1))

		// Skip straight to May: April was never materialized.
		_, err := svc.EnsureInstances(ctx, hub.ID, 5, 2025)
		testutil.AssertNoError(t, err)

		if may := loadInstance(t, db, budget.ID, 5, 2025); may.CarriedOverAmount != 0 {
			t.Errorf("expected zero carry-over, got %d", may.CarriedOverAmount)
		}
	})

	t.Run("snapshot_keeps_old_allocation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.January, 1))

		_, err := svc.EnsureInstances(ctx, hub.ID, 1, 2025)
		testutil.AssertNoError(t, err)
		db.Model(budget).Update("allocated_amount", 200)
		_, err = svc.EnsureInstances(ctx, hub.ID, 2, 2025)
		testutil.AssertNoError(t, err)

		if jan := loadInstance(t, db, budget.ID, 1, 2025); jan.AllocatedAmount != 100 {
			t.Errorf("january snapshot changed to %d", jan.AllocatedAmount)
		}
		if feb := loadInstance(t, db, budget.ID, 2, 2025); feb.AllocatedAmount != 200 {
			t.Errorf("expected february snapshot 200, got %d", feb.AllocatedAmount)
		}
	})

	t.Run("inactive_budget_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 100, testutil.Date(2025, time.January, 1))
		db.Model(budget).Update("is_active", false)

		result, err := svc.EnsureInstances(ctx, hub.ID, 1, 2025)
		testutil.AssertNoError(t, err)
		if result.Created+result.Existing+result.Hidden != 0 {
			t.Errorf("expected nothing to do, got %+v", result)
		}
	})

	t.Run("invalid_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)

		_, err := svc.EnsureInstances(ctx, hub.ID, 13, 2025)
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})
}

func TestGetPeriodBudgets(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	hub := testutil.CreateTestHub(t, db)
	svc := newTestBudgetInstanceService(t, db, hub.ID, true)
	account := testutil.CreateTestAccount(t, db, hub.ID, 0)
	food := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
	fun := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)

	groceries := testutil.CreateTestBudget(t, db, hub.ID, food.ID, 50000, testutil.Date(2025, time.January, 1))
	testutil.CreateTestBudget(t, db, hub.ID, fun.ID, 10000, testutil.Date(2025, time.June, 1))
	db.Model(groceries).Update("name", "A groceries")

	testutil.CreateTestExpense(t, db, account, food.ID, 42000, testutil.Date(2025, time.March, 3))

	views, err := svc.GetPeriodBudgets(ctx, hub.ID, 3, 2025)
	testutil.AssertNoError(t, err)

	if len(views) != 1 {
		t.Fatalf("expected only the budget created before March, got %d", len(views))
	}
	v := views[0]
	if v.BudgetID != groceries.ID {
		t.Errorf("unexpected budget %s", v.BudgetID)
	}
	if v.CalculatedSpent != 42000 {
		t.Errorf("expected calculated spent 42000, got %d", v.CalculatedSpent)
	}
	if v.Effective != 50000 || v.Available != 8000 {
		t.Errorf("expected effective 50000 available 8000, got %d %d", v.Effective, v.Available)
	}
	if !v.Warning {
		t.Error("expected warning at 84% of the budget")
	}
}

func TestNewBudgetPeriodView(t *testing.T) {
	b := &models.Budget{Name: "Food", WarningPercentage: 80}
	b.ID = "b1"

	tests := []struct {
		name        string
		inst        models.BudgetInstance
		calculated  int64
		wantAvail   int64
		wantWarning bool
	}{
		{"under_threshold", models.BudgetInstance{AllocatedAmount: 500}, 100, 400, false},
		{"at_threshold", models.BudgetInstance{AllocatedAmount: 500}, 400, 100, true},
		{"manual_counts", models.BudgetInstance{AllocatedAmount: 500, ManualSpent: 600}, 0, -100, true},
		{"negative_carry", models.BudgetInstance{AllocatedAmount: 500, CarriedOverAmount: -100}, 0, 400, false},
		{"nothing_spent_empty_budget", models.BudgetInstance{}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newBudgetPeriodView(b, &tt.inst, tt.calculated)
			if v.Available != tt.wantAvail {
				t.Errorf("available = %d, want %d", v.Available, tt.wantAvail)
			}
			if v.Warning != tt.wantWarning {
				t.Errorf("warning = %v, want %v", v.Warning, tt.wantWarning)
			}
		})
	}
}

func TestSetManualSpent(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 500, testutil.Date(2025, time.January, 1))

		inst, err := svc.SetManualSpent(ctx, hub.ID, budget.ID, 2, 2025, 300)
		testutil.AssertNoError(t, err)
		if inst.ManualSpent != 300 {
			t.Errorf("expected manual spent 300, got %d", inst.ManualSpent)
		}
		if stored := loadInstance(t, db, budget.ID, 2, 2025); stored.ManualSpent != 300 {
			t.Errorf("expected stored manual spent 300, got %d", stored.ManualSpent)
		}
	})

	t.Run("before_creation_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 500, testutil.Date(2025, time.March, 1))

		_, err := svc.SetManualSpent(ctx, hub.ID, budget.ID, 1, 2025, 300)
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})

	t.Run("negative", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)

		_, err := svc.SetManualSpent(ctx, hub.ID, "b", 1, 2025, -1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("other_hub", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		hub := testutil.CreateTestHub(t, db)
		other := testutil.CreateTestHub(t, db)
		svc := newTestBudgetInstanceService(t, db, hub.ID, false)
		cat := testutil.CreateTestCategory(t, db, hub.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, db, hub.ID, cat.ID, 500, testutil.Date(2025, time.January, 1))

		_, err := svc.SetManualSpent(ctx, other.ID, budget.ID, 1, 2025, 10)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}
