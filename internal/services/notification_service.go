package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/logger"
	"hubledger/internal/models"
	"hubledger/internal/notify"
	"hubledger/internal/pagination"
)

// notificationService stores notifications in the hub's in-app inbox.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// Notify persists one inbox entry.
func (s *notificationService) Notify(ctx context.Context, hubID string, kind notify.Kind, payload map[string]interface{}) error {
	var payloadJSON string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Get().Errorw("failed to marshal notification payload", "error", err, "kind", kind)
			payloadJSON = "{}"
		} else {
			payloadJSON = string(data)
		}
	}

	entry := &models.Notification{
		HubID:   hubID,
		Kind:    string(kind),
		Level:   kind.Level(),
		Payload: payloadJSON,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetHubNotifications lists a hub's notifications, newest first.
func (s *notificationService) GetHubNotifications(hubID string, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}
	page.Defaults()

	base := s.db.Model(&models.Notification{}).Where("hub_id = ?", hubID)
	if unreadOnly {
		base = base.Where("read_at IS NULL")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}
