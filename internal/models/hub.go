package models

import "time"

// Hub groups the financial data of one household or tenant.
type Hub struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	OwnerUserID string `gorm:"type:uuid;not null;index" json:"owner_user_id"`
}

// HubSettings holds per-hub feature switches. One row per hub; a missing row
// means every switch is off.
type HubSettings struct {
	HubID            string    `gorm:"type:uuid;primaryKey" json:"hub_id"`
	CarryOverEnabled bool      `gorm:"not null;default:false" json:"carry_over_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}
