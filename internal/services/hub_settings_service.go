package services

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/models"
)

// hubSettingsService reads and writes per-hub settings. Reads are cached per
// hub for ttl; writes through this service invalidate the entry.
type hubSettingsService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewHubSettingsService creates a new HubSettingsServicer. A ttl of zero or
// less disables caching.
func NewHubSettingsService(db *gorm.DB, ttl time.Duration) HubSettingsServicer {
	s := &hubSettingsService{db: db}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// GetCarryOverEnabled reports whether a hub rolls budget leftovers forward.
// Hubs without a settings row have it disabled.
func (s *hubSettingsService) GetCarryOverEnabled(hubID string) (bool, error) {
	if hubID == "" {
		return false, apperrors.ErrHubRequired
	}
	if s.cache != nil {
		if v, found := s.cache.Get(hubID); found {
			return v.(bool), nil
		}
	}

	var settings models.HubSettings
	enabled := false
	err := s.db.Where("hub_id = ?", hubID).First(&settings).Error
	switch {
	case err == nil:
		enabled = settings.CarryOverEnabled
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.cache != nil {
		s.cache.Set(hubID, enabled, cache.DefaultExpiration)
	}
	return enabled, nil
}

// SetCarryOverEnabled upserts the hub's carry-over switch.
func (s *hubSettingsService) SetCarryOverEnabled(hubID string, enabled bool) (*models.HubSettings, error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}

	settings := &models.HubSettings{HubID: hubID, CarryOverEnabled: enabled}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hub_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"carry_over_enabled", "updated_at"}),
	}).Create(settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.cache != nil {
		s.cache.Delete(hubID)
	}
	return settings, nil
}
