package models

import "time"

// TemplateStatus is the user-controlled on/off switch of a template.
type TemplateStatus string

const (
	TemplateStatusActive   TemplateStatus = "active"
	TemplateStatusInactive TemplateStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s TemplateStatus) Valid() bool {
	return s == TemplateStatusActive || s == TemplateStatusInactive
}

// RecurringTemplate is the blueprint a transaction is generated from every
// FrequencyDays days. The generation engine owns LastGeneratedDate, the
// failure fields and GenerationCount; GenerationCount is bumped on every
// successful generation and doubles as the compare-and-swap version.
type RecurringTemplate struct {
	Base
	HubID                string          `gorm:"type:uuid;not null;index" json:"hub_id"`
	UserID               string          `gorm:"type:uuid;not null" json:"user_id"`
	FinancialAccountID   string          `gorm:"type:uuid;not null;index" json:"financial_account_id"`
	DestinationAccountID *string         `gorm:"type:uuid" json:"destination_account_id,omitempty"`
	CategoryID           *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type                 TransactionType `gorm:"not null" json:"type"`
	Source               string          `gorm:"not null" json:"source"`
	Amount               int64           `gorm:"type:bigint;not null" json:"amount"`
	Note                 string          `json:"note,omitempty"`
	FrequencyDays        int             `gorm:"not null" json:"frequency_days"`
	StartDate            time.Time       `gorm:"not null" json:"start_date"`
	EndDate              *time.Time      `json:"end_date,omitempty"`
	Status               TemplateStatus  `gorm:"not null;default:'active';index" json:"status"`
	LastGeneratedDate    *time.Time      `json:"last_generated_date,omitempty"`
	LastFailedDate       *time.Time      `json:"last_failed_date,omitempty"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	ConsecutiveFailures  int             `gorm:"not null;default:0" json:"consecutive_failures"`
	GenerationCount      int64           `gorm:"not null;default:0" json:"generation_count"`
	ArchivedAt           *time.Time      `json:"archived_at,omitempty"`
}

// IsArchived reports whether the template has been archived.
func (t *RecurringTemplate) IsArchived() bool {
	return t.ArchivedAt != nil
}
