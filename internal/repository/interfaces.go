package repository

import (
	"context"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so a repository can run its queries
// inside an open transaction without knowing about it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore defines session persistence operations
type SessionStore interface {
	// Create inserts a session with its participant rows
	Create(ctx context.Context, session *models.Session) error

	// GetByID fetches a session with participants and its most recent
	// reschedule request attached
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// ListByActor fetches sessions where the actor is the mentor or a
	// participant, filtered to the given statuses
	ListByActor(ctx context.Context, actorID string, statuses []models.SessionStatus) ([]*models.Session, error)

	// ListMentorSessionsOnDate fetches a mentor's sessions on a calendar
	// date in the given statuses, excluding one session ID when non-empty
	ListMentorSessionsOnDate(ctx context.Context, mentorID string, date time.Time, statuses []models.SessionStatus, excludeSessionID string) ([]*models.Session, error)

	// UpdateStatusIfCurrent moves a session between statuses only when it
	// still holds the expected current status
	UpdateStatusIfCurrent(ctx context.Context, id string, from, to models.SessionStatus) error

	// RejectIfPending rejects a pending session and records the reason
	RejectIfPending(ctx context.Context, id string, reason string) error

	// ApproveWithCascade approves a pending session and, in the same
	// transaction, cancels the listed pending sessions
	ApproveWithCascade(ctx context.Context, id string, overlappingPendingIDs []string) error

	// CancelAndResolveReschedule cancels a session and, in the same
	// transaction, closes any pending reschedule negotiation on it
	CancelAndResolveReschedule(ctx context.Context, id string, from models.SessionStatus) error

	// SetParticipantPayment records a settled payment for one participant
	SetParticipantPayment(ctx context.Context, sessionID, userID string, status models.PaymentStatus, transactionID string) error
}

// RescheduleStore defines reschedule negotiation persistence operations
type RescheduleStore interface {
	// Create opens a negotiation; at most one pending negotiation may
	// exist per session
	Create(ctx context.Context, req *models.RescheduleRequest) error

	// GetByID fetches a negotiation
	GetByID(ctx context.Context, id string) (*models.RescheduleRequest, error)

	// GetPendingBySession fetches the pending negotiation for a session,
	// if one exists
	GetPendingBySession(ctx context.Context, sessionID string) (*models.RescheduleRequest, error)

	// SetCounterProposal records the single permitted counter-proposal and
	// passes the turn to the given actor
	SetCounterProposal(ctx context.Context, id string, actorID string, counter models.Proposal) error

	// AcceptAndApplySchedule marks the negotiation accepted and, in the
	// same transaction, writes the chosen schedule onto the session
	AcceptAndApplySchedule(ctx context.Context, id string, actorID string, chosen models.Proposal) error
}

// UserStore defines read access to marketplace accounts
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
