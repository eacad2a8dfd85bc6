package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/middleware"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/services"
	apperrors "github.com/JasimIhsan/MentorsHub-sub002/pkg/errors"
	"github.com/gin-gonic/gin"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	service services.SessionServiceInterface
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(service services.SessionServiceInterface) *SessionHandler {
	return &SessionHandler{
		service: service,
	}
}

// Create handles POST /api/v1/sessions
// Books a new session request with the caller as first participant
func (h *SessionHandler) Create(c *gin.Context) {
	session, err := middleware.GetActorSession(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var payload models.CreateSessionPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": ParseValidationErrors(bindErr),
		})
		return
	}

	created, err := h.service.Create(c.Request.Context(), session.Actor(), &payload)
	if err != nil {
		h.handleSessionError(c, err, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
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

	result, err := h.service.Get(c.Request.Context(), session.Actor(), sessionID)
	if err != nil {
		h.handleSessionError(c, err, "Failed to fetch session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// List handles GET /api/v1/sessions
// Returns the caller's sessions filtered by group (active/past)
func (h *SessionHandler) List(c *gin.Context) {
	session, err := middleware.GetActorSession(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group := c.Query("group")
	if group == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required parameter: group",
		})
		return
	}

	if group != "active" && group != "past" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid group value. Must be 'active' or 'past'",
		})
		return
	}

	response, err := h.service.List(c.Request.Context(), session.Actor(), group)
	if err != nil {
		h.handleSessionError(c, err, "Failed to fetch sessions")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Approve handles POST /api/v1/sessions/:id/approve
func (h *SessionHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve, "Failed to approve session")
}

// Start handles POST /api/v1/sessions/:id/start
func (h *SessionHandler) Start(c *gin.Context) {
	h.transition(c, h.service.Start, "Failed to start session")
}

// Complete handles POST /api/v1/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete, "Failed to complete session")
}

// Cancel handles POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel, "Failed to cancel session")
}

// Reject handles POST /api/v1/sessions/:id/reject
// Requires a reason in the payload
func (h *SessionHandler) Reject(c *gin.Context) {
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

	var payload models.RejectSessionPayload
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": ParseValidationErrors(bindErr),
		})
		return
	}

	result, err := h.service.Reject(c.Request.Context(), session.Actor(), sessionID, &payload)
	if err != nil {
		h.handleSessionError(c, err, "Failed to reject session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Availability handles GET /api/v1/mentors/:id/availability?date=YYYY-MM-DD
// Returns the mentor's reserved slots on a date
func (h *SessionHandler) Availability(c *gin.Context) {
	mentorID := c.Param("id")
	if mentorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mentor ID"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required parameter: date",
		})
		return
	}

	response, err := h.service.MentorAvailability(c.Request.Context(), mentorID, date)
	if err != nil {
		h.handleSessionError(c, err, "Failed to fetch availability")
		return
	}

	c.JSON(http.StatusOK, response)
}

// transition runs a payload-less lifecycle operation on a session
func (h *SessionHandler) transition(c *gin.Context, op func(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error), defaultMsg string) {
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

	result, err := op(c.Request.Context(), session.Actor(), sessionID)
	if err != nil {
		h.handleSessionError(c, err, defaultMsg)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleSessionError maps service errors to HTTP responses
func (h *SessionHandler) handleSessionError(c *gin.Context, err error, defaultMsg string) {
	_ = c.Error(err) //nolint:errcheck

	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, services.ErrInvalidStatusTransition):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid status transition",
			"details": err.Error(),
		})
	case errors.Is(err, services.ErrInvalidSessionGroup):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session group"})
	case errors.Is(err, services.ErrScheduleConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Schedule conflict"})
	case errors.Is(err, apperrors.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Session was modified by another request. Please retry.",
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
