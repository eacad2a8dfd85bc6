package services

import (
	"context"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
)

// SessionServiceInterface defines session lifecycle operations for handlers
type SessionServiceInterface interface {
	Create(ctx context.Context, actor models.Actor, payload *models.CreateSessionPayload) (*models.Session, error)
	Get(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error)
	List(ctx context.Context, actor models.Actor, group string) (*models.SessionsResponse, error)
	Approve(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error)
	Reject(ctx context.Context, actor models.Actor, sessionID string, payload *models.RejectSessionPayload) (*models.Session, error)
	Start(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error)
	Complete(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error)
	Cancel(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error)
	ConfirmPayment(ctx context.Context, payload *models.PaymentConfirmedWebhook) (*models.Session, error)
	MentorAvailability(ctx context.Context, mentorID string, date string) (*models.AvailabilityResponse, error)
}

// RescheduleServiceInterface defines negotiation operations for handlers
type RescheduleServiceInterface interface {
	Open(ctx context.Context, actor models.Actor, sessionID string, payload *models.OpenReschedulePayload) (*models.Session, error)
	Counter(ctx context.Context, actor models.Actor, rescheduleID string, payload *models.CounterProposalPayload) (*models.Session, error)
	Accept(ctx context.Context, actor models.Actor, rescheduleID string, payload *models.AcceptReschedulePayload) (*models.Session, error)
}

// IdentityProvider resolves actor IDs to marketplace accounts. Backed by the
// user cache in production.
type IdentityProvider interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// WalletGateway charges and refunds participants of paid sessions
type WalletGateway interface {
	Charge(ctx context.Context, userID, sessionID string, amount float64) error
	Refund(ctx context.Context, userID, sessionID string, amount float64) error
}

// Notifier delivers transition events to an external webhook, fire-and-forget
type Notifier interface {
	CallAsync(sessionID, event, actorID string)
}

// ReceiptStore persists receipt artifacts for completed paid sessions
type ReceiptStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
