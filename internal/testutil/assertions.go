package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "hubledger/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance reloads an account and checks its balance in cents.
func AssertBalance(t *testing.T, db *gorm.DB, accountID string, want int64) {
	t.Helper()

	if got := ReloadAccount(t, db, accountID).Balance; got != want {
		t.Errorf("account %s: expected balance %d, got %d", accountID, want, got)
	}
}

// AssertFailureState reloads a template and checks its recorded failure
// reason and streak. An empty reason expects a healthy template.
func AssertFailureState(t *testing.T, db *gorm.DB, templateID, reason string, streak int) {
	t.Helper()

	tpl := ReloadTemplate(t, db, templateID)
	if tpl.FailureReason != reason || tpl.ConsecutiveFailures != streak {
		t.Errorf("template %s: expected failure %q x%d, got %q x%d",
			templateID, reason, streak, tpl.FailureReason, tpl.ConsecutiveFailures)
	}
	if reason == "" && tpl.LastFailedDate != nil {
		t.Errorf("template %s: expected last failed date cleared, got %v", templateID, tpl.LastFailedDate)
	}
}
