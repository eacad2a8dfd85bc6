package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/config"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/repository"
	apperrors "github.com/JasimIhsan/MentorsHub-sub002/pkg/errors"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrAccessDenied            = errors.New("access denied")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidSessionGroup     = errors.New("invalid session group")
	ErrScheduleConflict        = errors.New("schedule conflict")
)

// Transition event names delivered to the notification webhook
const (
	EventSessionCreated   = "session.created"
	EventSessionApproved  = "session.approved"
	EventSessionRejected  = "session.rejected"
	EventSessionConfirmed = "session.confirmed"
	EventSessionStarted   = "session.started"
	EventSessionCompleted = "session.completed"
	EventSessionCanceled  = "session.canceled"
)

// SessionService owns the session status state machine
type SessionService struct {
	sessions  repository.SessionStore
	users     IdentityProvider
	conflicts *ConflictService
	wallet    WalletGateway
	notifier  Notifier
	presence  Notifier
	receipts  ReceiptStore
	config    *config.Config
	now       func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessions repository.SessionStore,
	users IdentityProvider,
	conflicts *ConflictService,
	wallet WalletGateway,
	notifier Notifier,
	presence Notifier,
	receipts ReceiptStore,
	cfg *config.Config,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		users:     users,
		conflicts: conflicts,
		wallet:    wallet,
		notifier:  notifier,
		presence:  presence,
		receipts:  receipts,
		config:    cfg,
		now:       time.Now,
	}
}

// getAuthorized fetches a session and verifies the actor belongs to it
func (s *SessionService) getAuthorized(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	if session.MentorID != actor.ID && !session.HasParticipant(actor.ID) {
		logger.Warn("Access denied to session",
			zap.String("session_id", sessionID),
			zap.String("actor_id", actor.ID))
		return nil, ErrAccessDenied
	}

	return session, nil
}

// getAsMentor fetches a session and verifies the actor is its mentor
func (s *SessionService) getAsMentor(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.getAuthorized(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MentorID != actor.ID {
		return nil, ErrAccessDenied
	}
	return session, nil
}

// checkTransition validates a status change, treating an upcoming session
// past its end time as terminal
func (s *SessionService) checkTransition(session *models.Session, to models.SessionStatus) error {
	display := models.DeriveDisplayStatus(session, s.now())
	if display == models.SessionExpired {
		return fmt.Errorf("%w: session has expired", ErrInvalidStatusTransition)
	}
	if !session.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: cannot transition from '%s' to '%s'", ErrInvalidStatusTransition, session.Status, to)
	}
	return nil
}

// Create books a new session request with the actor as first participant
func (s *SessionService) Create(ctx context.Context, actor models.Actor, payload *models.CreateSessionPayload) (*models.Session, error) {
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return nil, apperrors.InvalidInputError("date", "must be YYYY-MM-DD")
	}

	startMin, err := models.MinutesOfDay(payload.StartTime)
	if err != nil {
		return nil, apperrors.InvalidInputError("startTime", "must be HH:MM")
	}

	endMin := startMin + payload.Hours*60
	if endMin > 24*60 {
		return nil, apperrors.InvalidInputError("startTime", "session may not cross midnight")
	}
	endTime := models.ClockFromMinutes(endMin)

	if err := models.ValidateSchedule(payload.StartTime, endTime, payload.Hours); err != nil {
		return nil, apperrors.InvalidInputError("hours", err.Error())
	}

	if models.EndOfRange(date, endTime).Before(s.now()) {
		return nil, apperrors.InvalidInputError("date", "session is in the past")
	}

	if payload.MentorID == actor.ID {
		return nil, apperrors.InvalidInputError("mentorId", "cannot book a session with yourself")
	}

	mentor, err := s.users.GetByID(ctx, payload.MentorID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInputError("mentorId", "unknown mentor")
		}
		return nil, fmt.Errorf("failed to resolve mentor: %w", err)
	}
	if mentor.Role != models.RoleMentor {
		return nil, apperrors.InvalidInputError("mentorId", "user is not a mentor")
	}

	conflict, err := s.conflicts.HasConflict(ctx, payload.MentorID, date, payload.StartTime, endTime, "", "createSession")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrScheduleConflict
	}

	paymentStatus := models.PaymentCompleted
	if payload.Pricing == models.PricingPaid {
		paymentStatus = models.PaymentPending
	}

	participants := []models.Participant{{UserID: actor.ID, PaymentStatus: paymentStatus}}
	seen := map[string]bool{actor.ID: true, payload.MentorID: true}
	for _, guestID := range payload.CoGuests {
		if seen[guestID] {
			continue
		}
		seen[guestID] = true
		if _, err := s.users.GetByID(ctx, guestID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidInputError("coGuests", "unknown user "+guestID)
			}
			return nil, fmt.Errorf("failed to resolve guest: %w", err)
		}
		participants = append(participants, models.Participant{UserID: guestID, PaymentStatus: paymentStatus})
	}

	var total float64
	if payload.Pricing == models.PricingPaid {
		total = s.config.Pricing.PlatformFee * float64(payload.Hours) * float64(len(participants))
	}

	session := &models.Session{
		MentorID:     payload.MentorID,
		Participants: participants,
		Date:         date,
		StartTime:    payload.StartTime,
		EndTime:      endTime,
		Hours:        payload.Hours,
		Pricing:      payload.Pricing,
		TotalAmount:  total,
		Status:       models.SessionPending,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsCreated.WithLabelValues(string(payload.Pricing)).Inc()
	s.notifier.CallAsync(session.ID, EventSessionCreated, actor.ID)

	logger.Info("Session created",
		zap.String("session_id", session.ID),
		zap.String("mentor_id", session.MentorID),
		zap.String("created_by", actor.ID),
		zap.String("pricing", string(session.Pricing)))

	return session, nil
}

// Approve confirms a pending session. Other pending requests for the same
// mentor overlapping the approved slot are canceled in the same transaction.
func (s *SessionService) Approve(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.getAsMentor(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransition(session, models.SessionApproved); err != nil {
		return nil, err
	}

	conflict, err := s.conflicts.HasConflict(ctx, session.MentorID, session.Date,
		session.StartTime, session.EndTime, session.ID, "approveSession")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrScheduleConflict
	}

	overlapping, err := s.conflicts.OverlappingPendingIDs(ctx, session.MentorID, session.Date,
		session.StartTime, session.EndTime, session.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.ApproveWithCascade(ctx, session.ID, overlapping); err != nil {
		return nil, err
	}

	metrics.SessionTransitions.WithLabelValues(string(models.SessionPending), string(models.SessionApproved)).Inc()

	// The losing pending requests were canceled in the same transaction;
	// their participants get told the slot went to someone else.
	for _, canceledID := range overlapping {
		metrics.SessionTransitions.WithLabelValues(string(models.SessionPending), string(models.SessionCanceled)).Inc()
		s.notifier.CallAsync(canceledID, EventSessionCanceled, actor.ID)
	}

	// Paid seats get a charge request; settlement comes back through the
	// payment webhook. Free sessions need no payment and confirm at once.
	if session.Pricing == models.PricingPaid {
		perSeat := session.TotalAmount / float64(len(session.Participants))
		for _, p := range session.Participants {
			if chargeErr := s.wallet.Charge(ctx, p.UserID, session.ID, perSeat); chargeErr != nil {
				logger.Error("Failed to request wallet charge",
					zap.String("session_id", session.ID),
					zap.String("user_id", p.UserID),
					zap.Error(chargeErr))
			}
		}
	} else {
		if err := s.promoteToUpcoming(ctx, session.ID); err != nil {
			return nil, err
		}
	}

	s.notifier.CallAsync(session.ID, EventSessionApproved, actor.ID)

	logger.Info("Session approved",
		zap.String("session_id", session.ID),
		zap.String("mentor_id", actor.ID),
		zap.Int("cascade_canceled", len(overlapping)))

	return s.sessions.GetByID(ctx, session.ID)
}

// promoteToUpcoming moves an approved session to upcoming. A lost race means
// another caller already promoted it, which is fine.
func (s *SessionService) promoteToUpcoming(ctx context.Context, sessionID string) error {
	err := s.sessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionApproved, models.SessionUpcoming)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConcurrentModification) {
			return nil
		}
		return err
	}
	metrics.SessionTransitions.WithLabelValues(string(models.SessionApproved), string(models.SessionUpcoming)).Inc()
	return nil
}

// Reject declines a pending session with a reason
func (s *SessionService) Reject(ctx context.Context, actor models.Actor, sessionID string, payload *models.RejectSessionPayload) (*models.Session, error) {
	session, err := s.getAsMentor(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransition(session, models.SessionRejected); err != nil {
		return nil, err
	}

	if err := s.sessions.RejectIfPending(ctx, session.ID, payload.Reason); err != nil {
		return nil, err
	}

	metrics.SessionTransitions.WithLabelValues(string(models.SessionPending), string(models.SessionRejected)).Inc()
	s.notifier.CallAsync(session.ID, EventSessionRejected, actor.ID)

	logger.Info("Session rejected",
		zap.String("session_id", session.ID),
		zap.String("mentor_id", actor.ID))

	return s.sessions.GetByID(ctx, session.ID)
}

// ConfirmPayment records a settled participant payment reported by the wallet
// service. Once every participant has paid, the session confirms to upcoming.
func (s *SessionService) ConfirmPayment(ctx context.Context, payload *models.PaymentConfirmedWebhook) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, payload.SessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	if !session.HasParticipant(payload.ParticipantID) {
		return nil, ErrSessionNotFound
	}

	err = s.sessions.SetParticipantPayment(ctx, payload.SessionID, payload.ParticipantID,
		models.PaymentCompleted, payload.TransactionID)
	if err != nil {
		return nil, err
	}

	session, err = s.sessions.GetByID(ctx, payload.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to refetch session: %w", err)
	}

	if session.Status == models.SessionApproved && session.AllPaid() {
		if err := s.promoteToUpcoming(ctx, session.ID); err != nil {
			return nil, err
		}
		s.notifier.CallAsync(session.ID, EventSessionConfirmed, payload.ParticipantID)
		session, err = s.sessions.GetByID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to refetch session: %w", err)
		}
	}

	logger.Info("Participant payment confirmed",
		zap.String("session_id", payload.SessionID),
		zap.String("participant_id", payload.ParticipantID),
		zap.String("status", string(session.Status)))

	return session, nil
}

// Start opens the session room. Signals the real-time presence channel that
// the room is live.
func (s *SessionService) Start(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.getAsMentor(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransition(session, models.SessionActive); err != nil {
		return nil, err
	}

	if err := s.sessions.UpdateStatusIfCurrent(ctx, session.ID, models.SessionUpcoming, models.SessionActive); err != nil {
		return nil, err
	}

	metrics.SessionTransitions.WithLabelValues(string(models.SessionUpcoming), string(models.SessionActive)).Inc()
	s.presence.CallAsync(session.ID, EventSessionStarted, actor.ID)
	s.notifier.CallAsync(session.ID, EventSessionStarted, actor.ID)

	logger.Info("Session started",
		zap.String("session_id", session.ID),
		zap.String("mentor_id", actor.ID))

	return s.sessions.GetByID(ctx, session.ID)
}

// Complete finishes an active session. For paid sessions a receipt artifact
// is stored, best-effort.
func (s *SessionService) Complete(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.getAsMentor(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransition(session, models.SessionCompleted); err != nil {
		return nil, err
	}

	if err := s.sessions.UpdateStatusIfCurrent(ctx, session.ID, models.SessionActive, models.SessionCompleted); err != nil {
		return nil, err
	}

	metrics.SessionTransitions.WithLabelValues(string(models.SessionActive), string(models.SessionCompleted)).Inc()

	if session.Pricing == models.PricingPaid {
		s.storeReceipt(ctx, session)
	}

	s.notifier.CallAsync(session.ID, EventSessionCompleted, actor.ID)

	logger.Info("Session completed",
		zap.String("session_id", session.ID),
		zap.String("mentor_id", actor.ID))

	return s.sessions.GetByID(ctx, session.ID)
}

// storeReceipt uploads a receipt artifact for a completed paid session.
// Failures are logged, never propagated.
func (s *SessionService) storeReceipt(ctx context.Context, session *models.Session) {
	receipt := map[string]any{
		"sessionId":   session.ID,
		"mentorId":    session.MentorID,
		"date":        session.Date.Format("2006-01-02"),
		"startTime":   session.StartTime,
		"endTime":     session.EndTime,
		"hours":       session.Hours,
		"totalAmount": session.TotalAmount,
		"completedAt": s.now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(receipt)
	if err != nil {
		logger.Error("Failed to marshal receipt", zap.Error(err), zap.String("session_id", session.ID))
		return
	}

	key := fmt.Sprintf("receipts/%s.json", session.ID)
	if _, err := s.receipts.Put(ctx, key, data, "application/json"); err != nil {
		logger.Error("Failed to store receipt",
			zap.Error(err),
			zap.String("session_id", session.ID))
	}
}

// Cancel cancels a session from pending, approved or upcoming. Any pending
// reschedule negotiation resolves in the same transaction, and settled
// payments are refunded.
func (s *SessionService) Cancel(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.getAuthorized(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransition(session, models.SessionCanceled); err != nil {
		return nil, err
	}

	if err := s.sessions.CancelAndResolveReschedule(ctx, session.ID, session.Status); err != nil {
		return nil, err
	}

	metrics.SessionTransitions.WithLabelValues(string(session.Status), string(models.SessionCanceled)).Inc()

	if session.Pricing == models.PricingPaid {
		perSeat := session.TotalAmount / float64(len(session.Participants))
		for _, p := range session.Participants {
			if p.PaymentStatus != models.PaymentCompleted {
				continue
			}
			if refundErr := s.wallet.Refund(ctx, p.UserID, session.ID, perSeat); refundErr != nil {
				logger.Error("Failed to refund participant",
					zap.String("session_id", session.ID),
					zap.String("user_id", p.UserID),
					zap.Error(refundErr))
			}
		}
	}

	s.notifier.CallAsync(session.ID, EventSessionCanceled, actor.ID)

	logger.Info("Session canceled",
		zap.String("session_id", session.ID),
		zap.String("canceled_by", actor.ID),
		zap.String("from_status", string(session.Status)))

	return s.sessions.GetByID(ctx, session.ID)
}

// Get fetches a single session for an actor. The returned status is the
// display status, so an overdue upcoming session reads as expired.
func (s *SessionService) Get(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.getAuthorized(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	session.Status = models.DeriveDisplayStatus(session, s.now())
	return session, nil
}

// List fetches the actor's sessions for a group (active or past)
func (s *SessionService) List(ctx context.Context, actor models.Actor, group string) (*models.SessionsResponse, error) {
	start := time.Now()

	sessionGroup := models.SessionGroup(group)
	statuses := sessionGroup.GetStatuses()
	if statuses == nil {
		return nil, ErrInvalidSessionGroup
	}

	sessions, err := s.sessions.ListByActor(ctx, actor.ID, statuses)
	if err != nil {
		logger.Error("Failed to list sessions",
			zap.String("actor_id", actor.ID),
			zap.String("group", group),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	now := s.now()
	out := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		session.Status = models.DeriveDisplayStatus(session, now)
		out = append(out, *session)
	}

	metrics.SessionListDuration.Observe(metrics.MeasureDuration(start))

	logger.Info("Fetched sessions",
		zap.String("actor_id", actor.ID),
		zap.String("group", group),
		zap.Int("count", len(out)))

	return &models.SessionsResponse{Sessions: out, Total: len(out)}, nil
}

// MentorAvailability lists a mentor's reserved slots on one date. Expired
// upcoming sessions release their slots.
func (s *SessionService) MentorAvailability(ctx context.Context, mentorID string, dateStr string) (*models.AvailabilityResponse, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, apperrors.InvalidInputError("date", "must be YYYY-MM-DD")
	}

	sessions, err := s.sessions.ListMentorSessionsOnDate(ctx, mentorID, date, blockingStatuses, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load mentor sessions: %w", err)
	}

	now := s.now()
	busy := []models.BusySlot{}
	for _, session := range sessions {
		if models.DeriveDisplayStatus(session, now) == models.SessionExpired {
			continue
		}
		busy = append(busy, models.BusySlot{StartTime: session.StartTime, EndTime: session.EndTime})
	}

	return &models.AvailabilityResponse{
		MentorID: mentorID,
		Date:     dateStr,
		Busy:     busy,
	}, nil
}
