package handlers

import (
	"context"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/middleware"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)

	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

// asActor injects an authenticated actor session, standing in for the
// cookie middleware
func asActor(id string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorSessionContextKey, &models.ActorSession{
			ActorID: id,
			Role:    role,
		})
		c.Next()
	}
}

// MockSessionService is a mock implementation of SessionServiceInterface
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, actor models.Actor, payload *models.CreateSessionPayload) (*models.Session, error) {
	args := m.Called(ctx, actor, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, actor, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) List(ctx context.Context, actor models.Actor, group string) (*models.SessionsResponse, error) {
	args := m.Called(ctx, actor, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionsResponse), args.Error(1)
}

func (m *MockSessionService) Approve(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, actor, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Reject(ctx context.Context, actor models.Actor, sessionID string, payload *models.RejectSessionPayload) (*models.Session, error) {
	args := m.Called(ctx, actor, sessionID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Start(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, actor, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Complete(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, actor, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Cancel(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, actor, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) ConfirmPayment(ctx context.Context, payload *models.PaymentConfirmedWebhook) (*models.Session, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) MentorAvailability(ctx context.Context, mentorID string, date string) (*models.AvailabilityResponse, error) {
	args := m.Called(ctx, mentorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailabilityResponse), args.Error(1)
}

// MockRescheduleService is a mock implementation of RescheduleServiceInterface
type MockRescheduleService struct {
	mock.Mock
}

func (m *MockRescheduleService) Open(ctx context.Context, actor models.Actor, sessionID string, payload *models.OpenReschedulePayload) (*models.Session, error) {
	args := m.Called(ctx, actor, sessionID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockRescheduleService) Counter(ctx context.Context, actor models.Actor, rescheduleID string, payload *models.CounterProposalPayload) (*models.Session, error) {
	args := m.Called(ctx, actor, rescheduleID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockRescheduleService) Accept(ctx context.Context, actor models.Actor, rescheduleID string, payload *models.AcceptReschedulePayload) (*models.Session, error) {
	args := m.Called(ctx, actor, rescheduleID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
