package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRescheduleRouter(svc *MockRescheduleService, actorID string, role models.Role) *gin.Engine {
	handler := NewRescheduleHandler(svc)
	router := gin.New()
	auth := router.Group("", asActor(actorID, role))
	auth.POST("/sessions/:id/reschedule", handler.Open)
	auth.POST("/reschedules/:id/counter", handler.Counter)
	auth.POST("/reschedules/:id/accept", handler.Accept)
	return router
}

func TestRescheduleHandler_Open(t *testing.T) {
	svc := new(MockRescheduleService)
	router := newRescheduleRouter(svc, "mentor-1", models.RoleMentor)

	svc.On("Open", mock.Anything, models.Actor{ID: "mentor-1", Role: models.RoleMentor}, "sess-1",
		&models.OpenReschedulePayload{Date: "2027-03-11", StartTime: "14:00", Message: "conflict"}).
		Return(&models.Session{ID: "sess-1", Status: models.SessionUpcoming}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions/sess-1/reschedule",
		strings.NewReader(`{"date":"2027-03-11","startTime":"14:00","message":"conflict"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestRescheduleHandler_Open_InvalidDate(t *testing.T) {
	svc := new(MockRescheduleService)
	router := newRescheduleRouter(svc, "mentor-1", models.RoleMentor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions/sess-1/reschedule",
		strings.NewReader(`{"date":"11-03-2027","startTime":"14:00"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Open")
}

func TestRescheduleHandler_Open_AlreadyPending(t *testing.T) {
	svc := new(MockRescheduleService)
	router := newRescheduleRouter(svc, "mentor-1", models.RoleMentor)

	svc.On("Open", mock.Anything, mock.Anything, "sess-1", mock.Anything).
		Return(nil, services.ErrReschedulePending).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions/sess-1/reschedule",
		strings.NewReader(`{"date":"2027-03-11","startTime":"14:00"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRescheduleHandler_Counter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not pending", services.ErrRequestNotPending, http.StatusConflict},
		{"not your turn", services.ErrNotYourTurn, http.StatusConflict},
		{"counter exists", services.ErrCounterProposalExists, http.StatusConflict},
		{"access denied", services.ErrAccessDenied, http.StatusForbidden},
		{"session gone", services.ErrSessionNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockRescheduleService)
			router := newRescheduleRouter(svc, "user-1", models.RoleParticipant)

			svc.On("Counter", mock.Anything, mock.Anything, "resch-1", mock.Anything).
				Return(nil, tt.serviceErr).Once()

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/reschedules/resch-1/counter",
				strings.NewReader(`{"date":"2027-03-12","startTime":"16:00"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRescheduleHandler_Accept(t *testing.T) {
	svc := new(MockRescheduleService)
	router := newRescheduleRouter(svc, "user-1", models.RoleParticipant)

	svc.On("Accept", mock.Anything, models.Actor{ID: "user-1", Role: models.RoleParticipant}, "resch-1",
		&models.AcceptReschedulePayload{UseCounterProposal: true}).
		Return(&models.Session{ID: "sess-1", Status: models.SessionUpcoming}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reschedules/resch-1/accept",
		strings.NewReader(`{"useCounterProposal":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestRescheduleHandler_Accept_Conflict(t *testing.T) {
	svc := new(MockRescheduleService)
	router := newRescheduleRouter(svc, "user-1", models.RoleParticipant)

	svc.On("Accept", mock.Anything, mock.Anything, "resch-1", mock.Anything).
		Return(nil, services.ErrScheduleConflict).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reschedules/resch-1/accept", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
