package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hubledger/internal/models"
	"hubledger/internal/notify"
	"hubledger/internal/pagination"
)

// AccountServicer defines the contract for account lookups and balance
// mutations. ApplyEffect must be called with the transaction that also
// writes the ledger entry.
type AccountServicer interface {
	CreateAccount(hubID, name string, accountType models.AccountType, currency string, initialBalance int64) (*models.Account, error)
	GetHubAccounts(hubID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccount(hubID, accountID string) (*models.Account, error)
	ApplyEffect(tx *gorm.DB, hubID, accountID string, delta int64) error
}

// CategoryInput carries the fields of a new category.
type CategoryInput struct {
	Name     string
	Type     models.CategoryType
	Icon     string
	Color    string
	ParentID *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(hubID string, input CategoryInput) (*models.Category, error)
	GetHubCategories(hubID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategory(hubID, categoryID string) (*models.Category, error)
	DeleteCategory(hubID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	AccountID  *string
	TemplateID *string
}

// TransactionServicer defines the contract for ledger entries.
type TransactionServicer interface {
	RecordWithDB(tx *gorm.DB, transaction *models.Transaction) error
	GetHubTransactions(hubID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// TemplateInput carries the user-editable fields of a recurring template.
type TemplateInput struct {
	UserID               string
	FinancialAccountID   string
	DestinationAccountID *string
	CategoryID           *string
	Type                 models.TransactionType
	Source               string
	Amount               int64
	Note                 string
	FrequencyDays        int
	StartDate            time.Time
	EndDate              *time.Time
}

// TemplateFilter holds optional filter parameters for listing templates.
type TemplateFilter struct {
	Status          *models.TemplateStatus
	IncludeArchived bool
	FailingOnly     bool
}

// TemplateServicer defines the contract for managing recurring templates.
type TemplateServicer interface {
	CreateTemplate(hubID string, input TemplateInput) (*models.RecurringTemplate, error)
	GetTemplate(hubID, templateID string) (*models.RecurringTemplate, error)
	ListTemplates(hubID string, page pagination.PageRequest, filter TemplateFilter) (*pagination.PageResponse[models.RecurringTemplate], error)
	SetStatus(hubID, templateID string, status models.TemplateStatus) (*models.RecurringTemplate, error)
	ArchiveTemplate(hubID, templateID string) (*models.RecurringTemplate, error)
	UnarchiveTemplate(hubID, templateID string) (*models.RecurringTemplate, error)
}

// RecurringServicer defines the contract for the generation engine.
type RecurringServicer interface {
	RunBatch(ctx context.Context, now time.Time) (*BatchResult, error)
	RunTemplate(ctx context.Context, hubID, templateID string, now time.Time) (*GenerationOutcome, error)
}

// RecurringRunServicer defines the contract for the batch run log.
type RecurringRunServicer interface {
	Record(result *BatchResult, trigger string) (*models.RecurringRun, error)
	ListRuns(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringRun], error)
}

// HubSettingsServicer defines the contract for per-hub settings.
type HubSettingsServicer interface {
	GetCarryOverEnabled(hubID string) (bool, error)
	SetCarryOverEnabled(hubID string, enabled bool) (*models.HubSettings, error)
}

// BudgetUpdateFields holds optional fields for updating a budget.
type BudgetUpdateFields struct {
	Name              *string
	AllocatedAmount   *int64
	WarningPercentage *int
	IsActive          *bool
}

// BudgetServicer defines the contract for budget definitions.
type BudgetServicer interface {
	CreateBudget(hubID, categoryID, name string, allocated int64, warningPercentage int) (*models.Budget, error)
	GetHubBudgets(hubID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.Budget], error)
	GetBudget(hubID, budgetID string) (*models.Budget, error)
	UpdateBudget(hubID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error)
	DeleteBudget(hubID, budgetID string) error
}

// BudgetInstanceServicer defines the contract for monthly budget snapshots.
type BudgetInstanceServicer interface {
	EnsureInstances(ctx context.Context, hubID string, month, year int) (*MaterializeResult, error)
	GetPeriodBudgets(ctx context.Context, hubID string, month, year int) ([]BudgetPeriodView, error)
	SetManualSpent(ctx context.Context, hubID, budgetID string, month, year int, amount int64) (*models.BudgetInstance, error)
}

// NotificationServicer persists in-app notifications and lists them.
type NotificationServicer interface {
	notify.Notifier
	GetHubNotifications(hubID string, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
}
