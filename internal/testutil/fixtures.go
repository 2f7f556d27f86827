package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"hubledger/internal/models"
	"hubledger/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestHub creates a hub owned by a random user.
func CreateTestHub(t *testing.T, db *gorm.DB) *models.Hub {
	t.Helper()

	hub := &models.Hub{
		Name:        fmt.Sprintf("Test Hub %d", nextID()),
		OwnerUserID: uuid.New(),
	}
	if err := db.Create(hub).Error; err != nil {
		t.Fatalf("failed to create test hub: %v", err)
	}
	return hub
}

// CreateTestAccount creates a cash account with the given balance (in cents).
func CreateTestAccount(t *testing.T, db *gorm.DB, hubID string, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		HubID:    hubID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Type:     models.AccountTypeCash,
		Balance:  balance,
		Currency: "EUR",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, hubID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		HubID: hubID,
		Name:  fmt.Sprintf("Test Category %d", nextID()),
		Type:  categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// TemplateOption customizes a fixture template before it is saved.
type TemplateOption func(*models.RecurringTemplate)

// WithStartDate sets the template start date.
func WithStartDate(d time.Time) TemplateOption {
	return func(tpl *models.RecurringTemplate) { tpl.StartDate = d }
}

// WithEndDate sets the template end date.
func WithEndDate(d time.Time) TemplateOption {
	return func(tpl *models.RecurringTemplate) { tpl.EndDate = &d }
}

// WithLastGenerated sets the last generation date.
func WithLastGenerated(d time.Time) TemplateOption {
	return func(tpl *models.RecurringTemplate) { tpl.LastGeneratedDate = &d }
}

// WithFrequency sets the interval in days.
func WithFrequency(days int) TemplateOption {
	return func(tpl *models.RecurringTemplate) { tpl.FrequencyDays = days }
}

// WithType sets the transaction type.
func WithType(txType models.TransactionType) TemplateOption {
	return func(tpl *models.RecurringTemplate) { tpl.Type = txType }
}

// WithDestination makes the template a transfer into accountID.
func WithDestination(accountID string) TemplateOption {
	return func(tpl *models.RecurringTemplate) {
		tpl.Type = models.TransactionTypeTransfer
		tpl.DestinationAccountID = &accountID
	}
}

// WithCategory sets the category.
func WithCategory(categoryID string) TemplateOption {
	return func(tpl *models.RecurringTemplate) { tpl.CategoryID = &categoryID }
}

// CreateTestTemplate creates an active monthly expense template on account
// that started on 2025-01-01.
func CreateTestTemplate(t *testing.T, db *gorm.DB, account *models.Account, amount int64, opts ...TemplateOption) *models.RecurringTemplate {
	t.Helper()

	tpl := &models.RecurringTemplate{
		HubID:              account.HubID,
		UserID:             uuid.New(),
		FinancialAccountID: account.ID,
		Type:               models.TransactionTypeExpense,
		Source:             fmt.Sprintf("Subscription %d", nextID()),
		Amount:             amount,
		FrequencyDays:      30,
		StartDate:          Date(2025, time.January, 1),
		Status:             models.TemplateStatusActive,
	}
	for _, opt := range opts {
		opt(tpl)
	}
	if err := db.Create(tpl).Error; err != nil {
		t.Fatalf("failed to create test template: %v", err)
	}
	return tpl
}

// CreateTestExpense records an expense transaction without touching balances.
func CreateTestExpense(t *testing.T, db *gorm.DB, account *models.Account, categoryID string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		HubID:      account.HubID,
		AccountID:  account.ID,
		CategoryID: &categoryID,
		Type:       models.TransactionTypeExpense,
		Amount:     amount,
		Date:       date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active budget created at createdAt.
func CreateTestBudget(t *testing.T, db *gorm.DB, hubID, categoryID string, allocated int64, createdAt time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		HubID:             hubID,
		CategoryID:        categoryID,
		Name:              fmt.Sprintf("Test Budget %d", nextID()),
		AllocatedAmount:   allocated,
		WarningPercentage: 80,
		IsActive:          true,
	}
	budget.CreatedAt = createdAt
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// ReloadTemplate fetches the current row of a template.
func ReloadTemplate(t *testing.T, db *gorm.DB, id string) *models.RecurringTemplate {
	t.Helper()

	var tpl models.RecurringTemplate
	if err := db.Where("id = ?", id).First(&tpl).Error; err != nil {
		t.Fatalf("failed to reload template: %v", err)
	}
	return &tpl
}

// ReloadAccount fetches the current row of an account.
func ReloadAccount(t *testing.T, db *gorm.DB, id string) *models.Account {
	t.Helper()

	var account models.Account
	if err := db.Where("id = ?", id).First(&account).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	return &account
}

// CountTemplateTransactions counts ledger entries generated from a template.
func CountTemplateTransactions(t *testing.T, db *gorm.DB, templateID string) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.Transaction{}).Where("recurring_template_id = ?", templateID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count transactions: %v", err)
	}
	return n
}
