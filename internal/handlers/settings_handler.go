package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/services"
)

// SettingsHandler handles per-hub settings.
type SettingsHandler struct {
	settingsService services.HubSettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.HubSettingsServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// CarryOverRequest toggles budget carry-over for a hub.
type CarryOverRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetCarryOver returns whether budget carry-over is enabled.
// @Summary     Get carry-over setting
// @Tags        settings
// @Produce     json
// @Param       hubID path string true "Hub ID"
// @Success     200 {object} map[string]bool "Carry-over flag"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/settings/carry-over [get]
func (h *SettingsHandler) GetCarryOver(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	enabled, err := h.settingsService.GetCarryOverEnabled(hubID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

// SetCarryOver enables or disables budget carry-over. The change affects
// months materialized afterwards; existing instances keep their figures.
// @Summary     Set carry-over setting
// @Tags        settings
// @Accept      json
// @Produce     json
// @Param       hubID   path string           true "Hub ID"
// @Param       request body CarryOverRequest true "Carry-over flag"
// @Success     200 {object} models.HubSettings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /hubs/{hubID}/settings/carry-over [put]
func (h *SettingsHandler) SetCarryOver(c *gin.Context) {
	hubID, err := getHubID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CarryOverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.SetCarryOverEnabled(hubID, *req.Enabled)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
