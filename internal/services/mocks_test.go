package services_test

import (
	"context"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSessionStore is a mock implementation of repository.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) GetByID(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) ListByActor(ctx context.Context, actorID string, statuses []models.SessionStatus) ([]*models.Session, error) {
	args := m.Called(ctx, actorID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionStore) ListMentorSessionsOnDate(ctx context.Context, mentorID string, date time.Time, statuses []models.SessionStatus, excludeSessionID string) ([]*models.Session, error) {
	args := m.Called(ctx, mentorID, date, statuses, excludeSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionStore) UpdateStatusIfCurrent(ctx context.Context, id string, from, to models.SessionStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockSessionStore) RejectIfPending(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockSessionStore) ApproveWithCascade(ctx context.Context, id string, overlappingPendingIDs []string) error {
	args := m.Called(ctx, id, overlappingPendingIDs)
	return args.Error(0)
}

func (m *MockSessionStore) CancelAndResolveReschedule(ctx context.Context, id string, from models.SessionStatus) error {
	args := m.Called(ctx, id, from)
	return args.Error(0)
}

func (m *MockSessionStore) SetParticipantPayment(ctx context.Context, sessionID, userID string, status models.PaymentStatus, transactionID string) error {
	args := m.Called(ctx, sessionID, userID, status, transactionID)
	return args.Error(0)
}

// MockRescheduleStore is a mock implementation of repository.RescheduleStore
type MockRescheduleStore struct {
	mock.Mock
}

func (m *MockRescheduleStore) Create(ctx context.Context, req *models.RescheduleRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRescheduleStore) GetByID(ctx context.Context, id string) (*models.RescheduleRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RescheduleRequest), args.Error(1)
}

func (m *MockRescheduleStore) GetPendingBySession(ctx context.Context, sessionID string) (*models.RescheduleRequest, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RescheduleRequest), args.Error(1)
}

func (m *MockRescheduleStore) SetCounterProposal(ctx context.Context, id string, actorID string, counter models.Proposal) error {
	args := m.Called(ctx, id, actorID, counter)
	return args.Error(0)
}

func (m *MockRescheduleStore) AcceptAndApplySchedule(ctx context.Context, id string, actorID string, chosen models.Proposal) error {
	args := m.Called(ctx, id, actorID, chosen)
	return args.Error(0)
}

// MockIdentityProvider is a mock implementation of IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockWalletGateway is a mock implementation of WalletGateway
type MockWalletGateway struct {
	mock.Mock
}

func (m *MockWalletGateway) Charge(ctx context.Context, userID, sessionID string, amount float64) error {
	args := m.Called(ctx, userID, sessionID, amount)
	return args.Error(0)
}

func (m *MockWalletGateway) Refund(ctx context.Context, userID, sessionID string, amount float64) error {
	args := m.Called(ctx, userID, sessionID, amount)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) CallAsync(sessionID, event, actorID string) {
	m.Called(sessionID, event, actorID)
}

// MockReceiptStore is a mock implementation of ReceiptStore
type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}
