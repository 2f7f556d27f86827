package models

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeCash    AccountType = "cash"
	AccountTypeSavings AccountType = "savings"
	AccountTypeDebt    AccountType = "debt"
)

// Account is a financial account inside a hub. Balance is a stored running
// total in cents and may only change in the same database transaction that
// inserts the ledger entry causing the change.
type Account struct {
	Base
	HubID    string      `gorm:"type:uuid;not null;index" json:"hub_id"`
	Name     string      `gorm:"not null" json:"name"`
	Type     AccountType `gorm:"not null" json:"type"`
	Balance  int64       `gorm:"type:bigint;not null;default:0" json:"balance"`
	Currency string      `gorm:"not null;default:'EUR'" json:"currency"`
	IsActive bool        `gorm:"default:true" json:"is_active"`
}
