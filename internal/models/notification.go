package models

import "time"

// Notification is an in-app inbox entry requested by a background job.
type Notification struct {
	Base
	HubID   string     `gorm:"type:uuid;not null;index" json:"hub_id"`
	Kind    string     `gorm:"not null" json:"kind"`
	Level   string     `gorm:"not null" json:"level"`
	Payload string     `json:"payload"`
	ReadAt  *time.Time `json:"read_at,omitempty"`
}
