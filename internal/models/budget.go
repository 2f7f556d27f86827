package models

import (
	"time"

	"hubledger/internal/uuid"

	"gorm.io/gorm"
)

// Budget is a per-category monthly allocation. CreatedAt decides the first
// month the budget is visible in.
type Budget struct {
	Base
	HubID             string `gorm:"type:uuid;not null;index" json:"hub_id"`
	CategoryID        string `gorm:"type:uuid;not null" json:"category_id"`
	Name              string `gorm:"not null" json:"name"`
	AllocatedAmount   int64  `gorm:"type:bigint;not null" json:"allocated_amount"`
	WarningPercentage int    `gorm:"not null;default:80" json:"warning_percentage"`
	IsActive          bool   `gorm:"default:true" json:"is_active"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BudgetInstance is the snapshot of a Budget for one calendar month.
// Rows are written once by the materializer; only ManualSpent is edited later.
type BudgetInstance struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	BudgetID          string    `gorm:"type:uuid;not null;uniqueIndex:uq_budget_instances_period" json:"budget_id"`
	Month             int       `gorm:"not null;uniqueIndex:uq_budget_instances_period" json:"month"`
	Year              int       `gorm:"not null;uniqueIndex:uq_budget_instances_period" json:"year"`
	AllocatedAmount   int64     `gorm:"type:bigint;not null" json:"allocated_amount"`
	CarriedOverAmount int64     `gorm:"type:bigint;not null;default:0" json:"carried_over_amount"`
	ManualSpent       int64     `gorm:"type:bigint;not null;default:0" json:"manual_spent"`
	CreatedAt         time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *BudgetInstance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
