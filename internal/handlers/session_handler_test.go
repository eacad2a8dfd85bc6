package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/services"
	apperrors "github.com/JasimIhsan/MentorsHub-sub002/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSessionRouter(svc *MockSessionService, actorID string, role models.Role) *gin.Engine {
	handler := NewSessionHandler(svc)
	router := gin.New()
	auth := router.Group("", asActor(actorID, role))
	auth.POST("/sessions", handler.Create)
	auth.GET("/sessions", handler.List)
	auth.GET("/sessions/:id", handler.Get)
	auth.POST("/sessions/:id/approve", handler.Approve)
	auth.POST("/sessions/:id/reject", handler.Reject)
	auth.POST("/sessions/:id/start", handler.Start)
	auth.POST("/sessions/:id/complete", handler.Complete)
	auth.POST("/sessions/:id/cancel", handler.Cancel)
	router.GET("/mentors/:id/availability", handler.Availability)
	return router
}

func TestSessionHandler_Create(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	svc.On("Create", mock.Anything, models.Actor{ID: "user-1", Role: models.RoleParticipant},
		mock.AnythingOfType("*models.CreateSessionPayload")).
		Return(&models.Session{ID: "sess-1", Status: models.SessionPending}, nil).Once()

	body := `{"mentorId":"mentor-1","date":"2027-03-10","startTime":"10:00","hours":1,"pricing":"free"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"sess-1"`)
	svc.AssertExpectations(t)
}

func TestSessionHandler_Create_InvalidBody(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions", strings.NewReader(`{"mentorId":""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create")
}

func TestSessionHandler_Create_Unauthenticated(t *testing.T) {
	svc := new(MockSessionService)
	handler := NewSessionHandler(svc)
	router := gin.New()
	router.POST("/sessions", handler.Create)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionHandler_Get_NotFound(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	svc.On("Get", mock.Anything, mock.Anything, "missing").
		Return(nil, services.ErrSessionNotFound).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sessions/missing", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_List(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	svc.On("List", mock.Anything, models.Actor{ID: "user-1", Role: models.RoleParticipant}, "active").
		Return(&models.SessionsResponse{Sessions: []models.Session{}, Total: 0}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sessions?group=active", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestSessionHandler_List_MissingGroup(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sessions", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "List")
}

func TestSessionHandler_List_InvalidGroup(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sessions?group=everything", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "List")
}

func TestSessionHandler_Approve_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", services.ErrSessionNotFound, http.StatusNotFound},
		{"access denied", services.ErrAccessDenied, http.StatusForbidden},
		{"invalid transition", services.ErrInvalidStatusTransition, http.StatusBadRequest},
		{"schedule conflict", services.ErrScheduleConflict, http.StatusConflict},
		{"lost race", apperrors.ErrConcurrentModification, http.StatusConflict},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSessionService)
			router := newSessionRouter(svc, "mentor-1", models.RoleMentor)

			svc.On("Approve", mock.Anything, mock.Anything, "sess-1").
				Return(nil, tt.serviceErr).Once()

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/sessions/sess-1/approve", http.NoBody)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSessionHandler_Reject_RequiresReason(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "mentor-1", models.RoleMentor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions/sess-1/reject", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Reject")
}

func TestSessionHandler_Reject(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "mentor-1", models.RoleMentor)

	svc.On("Reject", mock.Anything, models.Actor{ID: "mentor-1", Role: models.RoleMentor}, "sess-1",
		&models.RejectSessionPayload{Reason: "fully booked"}).
		Return(&models.Session{ID: "sess-1", Status: models.SessionRejected}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions/sess-1/reject", strings.NewReader(`{"reason":"fully booked"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSessionHandler_Cancel(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	svc.On("Cancel", mock.Anything, models.Actor{ID: "user-1", Role: models.RoleParticipant}, "sess-1").
		Return(&models.Session{ID: "sess-1", Status: models.SessionCanceled}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/sessions/sess-1/cancel", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"canceled"`)
}

func TestSessionHandler_Availability(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	svc.On("MentorAvailability", mock.Anything, "mentor-1", "2027-03-10").
		Return(&models.AvailabilityResponse{
			MentorID: "mentor-1",
			Date:     "2027-03-10",
			Busy:     []models.BusySlot{{StartTime: "10:00", EndTime: "11:00"}},
		}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/mentors/mentor-1/availability?date=2027-03-10", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"startTime":"10:00"`)
}

func TestSessionHandler_Availability_MissingDate(t *testing.T) {
	svc := new(MockSessionService)
	router := newSessionRouter(svc, "user-1", models.RoleParticipant)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/mentors/mentor-1/availability", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "MentorAvailability")
}
