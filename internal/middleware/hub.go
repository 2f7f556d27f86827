package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "hubledger/internal/errors"
	"hubledger/internal/uuid"
)

// HubIDKey is the context key holding the hub a request is scoped to.
const HubIDKey = "hubID"

// HubScope validates the :hubID path parameter and stores it in the context.
// Membership is checked upstream; requests reaching this service are trusted.
func HubScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		hubID := c.Param("hubID")
		if hubID == "" {
			abortWithAppError(c, apperrors.ErrHubRequired)
			return
		}
		if !uuid.IsValid(hubID) {
			abortWithAppError(c, apperrors.ErrInvalidHub)
			return
		}
		c.Set(HubIDKey, hubID)
		c.Next()
	}
}

func abortWithAppError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{
		"error": gin.H{
			"code":    err.Code,
			"message": err.Message,
		},
	})
}
