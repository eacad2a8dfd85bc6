package handlers

import (
	"errors"
	"net/http"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/middleware"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/services"
	apperrors "github.com/JasimIhsan/MentorsHub-sub002/pkg/errors"
	"github.com/gin-gonic/gin"
)

// RescheduleHandler handles reschedule negotiation endpoints
type RescheduleHandler struct {
	service services.RescheduleServiceInterface
}

// NewRescheduleHandler creates a new RescheduleHandler
func NewRescheduleHandler(service services.RescheduleServiceInterface) *RescheduleHandler {
	return &RescheduleHandler{
		service: service,
	}
}

// Open handles POST /api/v1/sessions/:id/reschedule
// Opens a negotiation proposing a new slot for the session
func (h *RescheduleHandler) Open(c *gin.Context) {
	session, err := middleware.GetActorSession(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	var payload models.OpenReschedulePayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": ParseValidationErrors(bindErr),
		})
		return
	}

	result, err := h.service.Open(c.Request.Context(), session.Actor(), sessionID, &payload)
	if err != nil {
		h.handleRescheduleError(c, err, "Failed to open reschedule request")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Counter handles POST /api/v1/reschedules/:id/counter
// Records the single permitted counter-proposal
func (h *RescheduleHandler) Counter(c *gin.Context) {
	session, err := middleware.GetActorSession(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rescheduleID := c.Param("id")
	if rescheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reschedule ID"})
		return
	}

	var payload models.CounterProposalPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": ParseValidationErrors(bindErr),
		})
		return
	}

	result, err := h.service.Counter(c.Request.Context(), session.Actor(), rescheduleID, &payload)
	if err != nil {
		h.handleRescheduleError(c, err, "Failed to submit counter proposal")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Accept handles POST /api/v1/reschedules/:id/accept
// Resolves the negotiation with the current or counter proposal
func (h *RescheduleHandler) Accept(c *gin.Context) {
	session, err := middleware.GetActorSession(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rescheduleID := c.Param("id")
	if rescheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reschedule ID"})
		return
	}

	var payload models.AcceptReschedulePayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": ParseValidationErrors(bindErr),
		})
		return
	}

	result, err := h.service.Accept(c.Request.Context(), session.Actor(), rescheduleID, &payload)
	if err != nil {
		h.handleRescheduleError(c, err, "Failed to accept reschedule")
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleRescheduleError maps negotiation errors to HTTP responses
func (h *RescheduleHandler) handleRescheduleError(c *gin.Context, err error, defaultMsg string) {
	_ = c.Error(err) //nolint:errcheck

	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, services.ErrInvalidStatusTransition):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid status transition",
			"details": err.Error(),
		})
	case errors.Is(err, services.ErrReschedulePending):
		c.JSON(http.StatusConflict, gin.H{
			"error": "A reschedule request is already open for this session",
		})
	case errors.Is(err, services.ErrRequestNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "Reschedule request is not pending"})
	case errors.Is(err, services.ErrNotYourTurn):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Waiting for the other party to respond",
		})
	case errors.Is(err, services.ErrCounterProposalExists):
		c.JSON(http.StatusConflict, gin.H{
			"error": "A counter proposal has already been submitted",
		})
	case errors.Is(err, services.ErrScheduleConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Schedule conflict"})
	case errors.Is(err, apperrors.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Request was modified by another caller. Please retry.",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": defaultMsg})
	}
}
