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

func newWebhookRouter(svc *MockSessionService) *gin.Engine {
	handler := NewWebhookHandler(svc)
	router := gin.New()
	router.POST("/webhooks/payment", handler.PaymentConfirmed)
	return router
}

func TestWebhookHandler_PaymentConfirmed(t *testing.T) {
	svc := new(MockSessionService)
	router := newWebhookRouter(svc)

	svc.On("ConfirmPayment", mock.Anything, &models.PaymentConfirmedWebhook{
		SessionID:     "sess-1",
		ParticipantID: "user-1",
		TransactionID: "txn-42",
	}).Return(&models.Session{ID: "sess-1", Status: models.SessionUpcoming}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/payment",
		strings.NewReader(`{"sessionId":"sess-1","participantId":"user-1","transactionId":"txn-42"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessionStatus":"upcoming"`)
	svc.AssertExpectations(t)
}

func TestWebhookHandler_PaymentConfirmed_MissingFields(t *testing.T) {
	svc := new(MockSessionService)
	router := newWebhookRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/payment",
		strings.NewReader(`{"sessionId":"sess-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ConfirmPayment")
}

func TestWebhookHandler_PaymentConfirmed_UnknownSession(t *testing.T) {
	svc := new(MockSessionService)
	router := newWebhookRouter(svc)

	svc.On("ConfirmPayment", mock.Anything, mock.Anything).
		Return(nil, services.ErrSessionNotFound).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/payment",
		strings.NewReader(`{"sessionId":"missing","participantId":"user-1","transactionId":"txn-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
