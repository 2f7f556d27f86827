package models

import (
	"fmt"
	"time"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// TransactionTypes lists every supported type.
var TransactionTypes = []TransactionType{
	TransactionTypeIncome,
	TransactionTypeExpense,
	TransactionTypeTransfer,
}

// Valid reports whether t is one of the supported types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// BalanceEffect is the signed change a transaction applies to its source
// and destination accounts.
type BalanceEffect struct {
	Source      int64
	Destination int64
}

// Debits reports whether the effect takes money out of the source account.
func (e BalanceEffect) Debits() bool { return e.Source < 0 }

// Effect returns the balance effect of moving amount cents with this type.
func (t TransactionType) Effect(amount int64) (BalanceEffect, error) {
	switch t {
	case TransactionTypeIncome:
		return BalanceEffect{Source: amount}, nil
	case TransactionTypeExpense:
		return BalanceEffect{Source: -amount}, nil
	case TransactionTypeTransfer:
		return BalanceEffect{Source: -amount, Destination: amount}, nil
	}
	return BalanceEffect{}, fmt.Errorf("unsupported transaction type %q", t)
}

// Transaction is a ledger entry. Entries produced by a recurring template
// carry its ID and the generation sequence number; the pair is unique.
type Transaction struct {
	Base
	HubID       string          `gorm:"type:uuid;not null;index" json:"hub_id"`
	AccountID   string          `gorm:"type:uuid;not null;index" json:"financial_account_id"`
	ToAccountID *string         `gorm:"type:uuid" json:"destination_account_id,omitempty"`
	CategoryID  *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	RecurringTemplateID *string `gorm:"type:uuid;uniqueIndex:uq_transactions_template_seq" json:"recurring_template_id,omitempty"`
	GenerationSeq       *int64  `gorm:"uniqueIndex:uq_transactions_template_seq" json:"generation_seq,omitempty"`
}
