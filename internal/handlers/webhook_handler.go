package handlers

import (
	"errors"
	"net/http"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/services"
	apperrors "github.com/JasimIhsan/MentorsHub-sub002/pkg/errors"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler handles inbound webhooks from the wallet service
type WebhookHandler struct {
	sessions services.SessionServiceInterface
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(sessions services.SessionServiceInterface) *WebhookHandler {
	return &WebhookHandler{
		sessions: sessions,
	}
}

// PaymentConfirmed handles POST /api/v1/webhooks/payment
// Called by the wallet service when a participant's payment settles.
// Idempotent: re-delivery of a settled payment returns 200.
func (h *WebhookHandler) PaymentConfirmed(c *gin.Context) {
	var payload models.PaymentConfirmedWebhook
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": ParseValidationErrors(bindErr),
		})
		return
	}

	session, err := h.sessions.ConfirmPayment(c.Request.Context(), &payload)
	if err != nil {
		_ = c.Error(err) //nolint:errcheck

		switch {
		case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session or participant not found"})
		default:
			logger.Error("Failed to process payment webhook",
				zap.String("session_id", payload.SessionID),
				zap.String("participant_id", payload.ParticipantID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"sessionStatus": session.Status,
	})
}
