package services

import (
	"testing"
	"time"

	"hubledger/internal/clock"
	"hubledger/internal/models"
	"hubledger/internal/pagination"
	"hubledger/internal/testutil"
)

func validTemplateInput(accountID string) TemplateInput {
	return TemplateInput{
		UserID:             "11111111-1111-1111-1111-111111111111",
		FinancialAccountID: accountID,
		Type:               models.TransactionTypeExpense,
		Source:             "Rent",
		Amount:             95000,
		FrequencyDays:      30,
		StartDate:          testutil.Date(2025, time.January, 1),
	}
}

func TestCreateTemplate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTemplateService(db, NewAccountService(db), clock.NewMock(batchNow))
		hub := testutil.CreateTestHub(t, db)
		account := testutil.CreateTestAccount(t, db, hub.ID, 0)

		tpl, err := svc.CreateTemplate(hub.ID, validTemplateInput(account.ID))
		testutil.AssertNoError(t, err)

		if tpl.ID == "" {
			t.Fatal("expected template ID to be set")
		}
		if tpl.Status != models.TemplateStatusActive {
			t.Errorf("expected status active, got %s", tpl.Status)
		}
		if tpl.LastGeneratedDate != nil || tpl.GenerationCount != 0 {
			t.Error("new template must not look generated")
		}
	})

	t.Run("transfer", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTemplateService(db, NewAccountService(db), nil)
		hub := testutil.CreateTestHub(t, db)
		src := testutil.CreateTestAccount(t, db, hub.ID, 0)
		dst := testutil.CreateTestAccount(t, db, hub.ID, 0)

		input := validTemplateInput(src.ID)
		input.Type = models.TransactionTypeTransfer
		input.DestinationAccountID = &dst.ID

		_, err := svc.CreateTemplate(hub.ID, input)
		testutil.AssertNoError(t, err)
	})

	t.Run("unknown_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTemplateService(db, NewAccountService(db), nil)
		hub := testutil.CreateTestHub(t, db)

		_, err := svc.CreateTemplate(hub.ID, validTemplateInput("00000000-0000-0000-0000-000000000000"))
		testutil.AssertAppError(t, err, "MISSING_ACCOUNT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTemplateService(db, NewAccountService(db), nil)
		hub := testutil.CreateTestHub(t, db)
		account := testutil.CreateTestAccount(t, db, hub.ID, 0)

		input := validTemplateInput(account.ID)
		missing := "00000000-0000-0000-0000-000000000000"
		input.CategoryID = &missing

		_, err := svc.CreateTemplate(hub.ID, input)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("missing_hub", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTemplateService(db, NewAccountService(db), nil)

		_, err := svc.CreateTemplate("", validTemplateInput("acc"))
		testutil.AssertAppError(t, err, "HUB_REQUIRED")
	})
}

func TestValidateTemplateInput(t *testing.T) {
	same := "acc-1"
	other := "acc-2"
	before := testutil.Date(2024, time.December, 31)

	tests := []struct {
		name     string
		mutate   func(*TemplateInput)
		wantCode string
	}{
		{"valid", func(*TemplateInput) {}, ""},
		{"zero_amount_allowed", func(in *TemplateInput) { in.Amount = 0 }, ""},
		{"negative_amount", func(in *TemplateInput) { in.Amount = -1 }, "INVALID_INPUT"},
		{"zero_frequency", func(in *TemplateInput) { in.FrequencyDays = 0 }, "INVALID_INPUT"},
		{"empty_source", func(in *TemplateInput) { in.Source = "" }, "INVALID_INPUT"},
		{"missing_start", func(in *TemplateInput) { in.StartDate = time.Time{} }, "INVALID_INPUT"},
		{"end_before_start", func(in *TemplateInput) { in.EndDate = &before }, "INVALID_INPUT"},
		{"unknown_type", func(in *TemplateInput) { in.Type = "refund" }, "INVALID_TRANSACTION_TYPE"},
		{"transfer_without_destination", func(in *TemplateInput) { in.Type = models.TransactionTypeTransfer }, "INVALID_INPUT"},
		{"transfer_to_self", func(in *TemplateInput) {
			in.Type = models.TransactionTypeTransfer
			in.DestinationAccountID = &same
		}, "SAME_ACCOUNT_TRANSFER"},
		{"expense_with_destination", func(in *TemplateInput) { in.DestinationAccountID = &other }, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validTemplateInput(same)
			tt.mutate(&input)
			err := validateTemplateInput(input)
			if tt.wantCode == "" {
				testutil.AssertNoError(t, err)
				return
			}
			testutil.AssertAppError(t, err, tt.wantCode)
		})
	}
}

func TestListTemplates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTemplateService(db, NewAccountService(db), nil)
	hub := testutil.CreateTestHub(t, db)
	account := testutil.CreateTestAccount(t, db, hub.ID, 0)

	testutil.CreateTestTemplate(t, db, account, 100)
	inactive := testutil.CreateTestTemplate(t, db, account, 100)
	archived := testutil.CreateTestTemplate(t, db, account, 100)
	failing := testutil.CreateTestTemplate(t, db, account, 100)
	db.Model(inactive).Update("status", models.TemplateStatusInactive)
	db.Model(archived).Update("archived_at", batchNow)
	db.Model(failing).Update("consecutive_failures", 2)

	t.Run("excludes_archived", func(t *testing.T) {
		result, err := svc.ListTemplates(hub.ID, pagination.PageRequest{}, TemplateFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Errorf("expected 3 templates, got %d", result.TotalItems)
		}
	})

	t.Run("include_archived", func(t *testing.T) {
		result, err := svc.ListTemplates(hub.ID, pagination.PageRequest{}, TemplateFilter{IncludeArchived: true})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 4 {
			t.Errorf("expected 4 templates, got %d", result.TotalItems)
		}
	})

	t.Run("status_filter", func(t *testing.T) {
		status := models.TemplateStatusInactive
		result, err := svc.ListTemplates(hub.ID, pagination.PageRequest{}, TemplateFilter{Status: &status})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].ID != inactive.ID {
			t.Errorf("expected only the inactive template, got %+v", result.Data)
		}
	})

	t.Run("failing_only", func(t *testing.T) {
		result, err := svc.ListTemplates(hub.ID, pagination.PageRequest{}, TemplateFilter{FailingOnly: true})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].ID != failing.ID {
			t.Errorf("expected only the failing template, got %+v", result.Data)
		}
	})
}

func TestTemplateLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	clk := clock.NewMock(batchNow)
	svc := NewTemplateService(db, NewAccountService(db), clk)
	hub := testutil.CreateTestHub(t, db)
	account := testutil.CreateTestAccount(t, db, hub.ID, 0)
	tpl := testutil.CreateTestTemplate(t, db, account, 100)
	db.Model(tpl).Update("consecutive_failures", 4)

	t.Run("set_status", func(t *testing.T) {
		got, err := svc.SetStatus(hub.ID, tpl.ID, models.TemplateStatusInactive)
		testutil.AssertNoError(t, err)
		if got.Status != models.TemplateStatusInactive {
			t.Errorf("expected inactive, got %s", got.Status)
		}
		if reloaded := testutil.ReloadTemplate(t, db, tpl.ID); reloaded.Status != models.TemplateStatusInactive {
			t.Errorf("status not persisted, got %s", reloaded.Status)
		}
	})

	t.Run("invalid_status", func(t *testing.T) {
		_, err := svc.SetStatus(hub.ID, tpl.ID, "paused")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("archive", func(t *testing.T) {
		got, err := svc.ArchiveTemplate(hub.ID, tpl.ID)
		testutil.AssertNoError(t, err)
		if !got.IsArchived() || !got.ArchivedAt.Equal(batchNow) {
			t.Errorf("expected archived at %v, got %v", batchNow, got.ArchivedAt)
		}
	})

	t.Run("unarchive_keeps_failures", func(t *testing.T) {
		got, err := svc.UnarchiveTemplate(hub.ID, tpl.ID)
		testutil.AssertNoError(t, err)
		if got.IsArchived() {
			t.Error("expected template to be unarchived")
		}
		reloaded := testutil.ReloadTemplate(t, db, tpl.ID)
		if reloaded.ArchivedAt != nil {
			t.Error("archived_at not cleared")
		}
		if reloaded.ConsecutiveFailures != 4 {
			t.Errorf("expected failure counter kept at 4, got %d", reloaded.ConsecutiveFailures)
		}
	})

	t.Run("other_hub", func(t *testing.T) {
		other := testutil.CreateTestHub(t, db)
		_, err := svc.GetTemplate(other.ID, tpl.ID)
		testutil.AssertAppError(t, err, "TEMPLATE_NOT_FOUND")
	})
}
