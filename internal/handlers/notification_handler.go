package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/pagination"
	"hubledger/internal/services"
)

// NotificationHandler lists in-app notifications.
type NotificationHandler struct {
	notificationService services.NotificationServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetHubNotifications handles listing a hub's notifications, newest first.
// @Summary     List notifications
// @Tags        notifications
// @Produce     json
// @Param       hubID     path  string true  "Hub ID"
// @Param       unread    query bool   false "Only unread notifications"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/notifications [get]
func (h *NotificationHandler) GetHubNotifications(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	unread, err := parseOptionalBool(c, "unread")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.notificationService.GetHubNotifications(hubID, unread != nil && *unread, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
