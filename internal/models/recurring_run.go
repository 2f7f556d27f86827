package models

import (
	"time"

	"hubledger/internal/uuid"

	"gorm.io/gorm"
)

// RecurringRun records the outcome of one generation batch.
// This is immutable time-series data: no Base embed, no soft deletes.
type RecurringRun struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	StartedAt   time.Time `gorm:"not null;index" json:"started_at"`
	DurationMS  int64     `gorm:"not null" json:"duration_ms"`
	Success     int       `gorm:"not null" json:"success"`
	Failed      int       `gorm:"not null" json:"failed"`
	Skipped     int       `gorm:"not null" json:"skipped"`
	Interrupted int       `gorm:"not null;default:0" json:"interrupted"`
	Errors      string    `json:"errors"`
	Trigger     string    `gorm:"not null" json:"trigger"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (r *RecurringRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}
