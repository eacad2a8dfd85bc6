package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/repository"
	apperrors "github.com/JasimIhsan/MentorsHub-sub002/pkg/errors"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrRequestNotPending     = errors.New("reschedule request not pending")
	ErrCounterProposalExists = errors.New("counter proposal already exists")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrReschedulePending     = errors.New("reschedule request already open")
)

// Reschedule negotiation event names
const (
	EventRescheduleOpened    = "reschedule.opened"
	EventRescheduleCountered = "reschedule.counterProposed"
	EventRescheduleAccepted  = "reschedule.accepted"
)

// RescheduleService owns the turn-based reschedule negotiation attached to a
// session. Either party proposes a new slot; the other side may accept or
// submit exactly one counter-proposal; acceptance rewrites the session's
// schedule after a fresh conflict check.
type RescheduleService struct {
	sessions    repository.SessionStore
	reschedules repository.RescheduleStore
	conflicts   *ConflictService
	notifier    Notifier
	presence    Notifier
	now         func() time.Time
}

// NewRescheduleService creates a new RescheduleService
func NewRescheduleService(
	sessions repository.SessionStore,
	reschedules repository.RescheduleStore,
	conflicts *ConflictService,
	notifier Notifier,
	presence Notifier,
) *RescheduleService {
	return &RescheduleService{
		sessions:    sessions,
		reschedules: reschedules,
		conflicts:   conflicts,
		notifier:    notifier,
		presence:    presence,
		now:         time.Now,
	}
}

// buildProposal validates a proposed date and start time against the
// session's fixed duration
func (s *RescheduleService) buildProposal(session *models.Session, dateStr, startTime, message string) (models.Proposal, error) {
	var p models.Proposal

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return p, apperrors.InvalidInputError("date", "must be YYYY-MM-DD")
	}

	startMin, err := models.MinutesOfDay(startTime)
	if err != nil {
		return p, apperrors.InvalidInputError("startTime", "must be HH:MM")
	}

	endMin := startMin + session.Hours*60
	if endMin > 24*60 {
		return p, apperrors.InvalidInputError("startTime", "session may not cross midnight")
	}
	endTime := models.ClockFromMinutes(endMin)

	if err := models.ValidateSchedule(startTime, endTime, session.Hours); err != nil {
		return p, apperrors.InvalidInputError("startTime", err.Error())
	}

	if models.EndOfRange(date, endTime).Before(s.now()) {
		return p, apperrors.InvalidInputError("date", "proposed slot is in the past")
	}

	return models.Proposal{
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Message:   message,
	}, nil
}

// getSession fetches the owning session and verifies the actor belongs to it
func (s *RescheduleService) getSession(ctx context.Context, actor models.Actor, sessionID string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	if session.MentorID != actor.ID && !session.HasParticipant(actor.ID) {
		return nil, ErrAccessDenied
	}

	return session, nil
}

// Open starts a negotiation on a confirmed session. The session's current
// schedule is snapshotted so both parties can see what they are moving away
// from.
func (s *RescheduleService) Open(ctx context.Context, actor models.Actor, sessionID string, payload *models.OpenReschedulePayload) (*models.Session, error) {
	session, err := s.getSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != models.SessionApproved && session.Status != models.SessionUpcoming {
		return nil, fmt.Errorf("%w: cannot reschedule a session in status '%s'", ErrInvalidStatusTransition, session.Status)
	}
	if models.DeriveDisplayStatus(session, s.now()) == models.SessionExpired {
		return nil, fmt.Errorf("%w: session has expired", ErrInvalidStatusTransition)
	}

	if _, err := s.reschedules.GetPendingBySession(ctx, session.ID); err == nil {
		metrics.RescheduleActions.WithLabelValues("open", "rejected").Inc()
		return nil, ErrReschedulePending
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	proposal, err := s.buildProposal(session, payload.Date, payload.StartTime, payload.Message)
	if err != nil {
		return nil, err
	}

	req := &models.RescheduleRequest{
		SessionID:    session.ID,
		InitiatedBy:  actor.ID,
		LastActionBy: actor.ID,
		Status:       models.ReschedulePending,
		OldProposal: models.Proposal{
			Date:      session.Date,
			StartTime: session.StartTime,
			EndTime:   session.EndTime,
		},
		CurrentProposal: proposal,
	}

	if err := s.reschedules.Create(ctx, req); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			metrics.RescheduleActions.WithLabelValues("open", "rejected").Inc()
			return nil, ErrReschedulePending
		}
		return nil, err
	}

	metrics.RescheduleActions.WithLabelValues("open", "success").Inc()
	s.notifier.CallAsync(session.ID, EventRescheduleOpened, actor.ID)
	s.presence.CallAsync(session.ID, EventRescheduleOpened, actor.ID)

	logger.Info("Reschedule negotiation opened",
		zap.String("session_id", session.ID),
		zap.String("reschedule_id", req.ID),
		zap.String("initiated_by", actor.ID))

	return s.sessions.GetByID(ctx, session.ID)
}

// Counter records the single permitted counter-proposal. Only the party who
// did not act last may counter, and only while no counter exists yet.
func (s *RescheduleService) Counter(ctx context.Context, actor models.Actor, rescheduleID string, payload *models.CounterProposalPayload) (*models.Session, error) {
	req, err := s.reschedules.GetByID(ctx, rescheduleID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundError("reschedule request")
		}
		return nil, err
	}

	session, err := s.getSession(ctx, actor, req.SessionID)
	if err != nil {
		return nil, err
	}

	if req.Status != models.ReschedulePending {
		metrics.RescheduleActions.WithLabelValues("counter", "rejected").Inc()
		return nil, ErrRequestNotPending
	}
	if !req.IsTurnOf(actor.ID) {
		metrics.RescheduleActions.WithLabelValues("counter", "rejected").Inc()
		return nil, ErrNotYourTurn
	}
	if req.CounterProposal != nil {
		metrics.RescheduleActions.WithLabelValues("counter", "rejected").Inc()
		return nil, ErrCounterProposalExists
	}

	counter, err := s.buildProposal(session, payload.Date, payload.StartTime, payload.Message)
	if err != nil {
		return nil, err
	}

	if err := s.reschedules.SetCounterProposal(ctx, req.ID, actor.ID, counter); err != nil {
		return nil, err
	}

	metrics.RescheduleActions.WithLabelValues("counter", "success").Inc()
	s.notifier.CallAsync(session.ID, EventRescheduleCountered, actor.ID)
	s.presence.CallAsync(session.ID, EventRescheduleCountered, actor.ID)

	logger.Info("Counter proposal recorded",
		zap.String("session_id", session.ID),
		zap.String("reschedule_id", req.ID),
		zap.String("countered_by", actor.ID))

	return s.sessions.GetByID(ctx, session.ID)
}

// Accept resolves the negotiation. The chosen proposal is conflict-checked
// against the mentor's other confirmed sessions before the session's schedule
// is rewritten; on conflict the request stays pending.
func (s *RescheduleService) Accept(ctx context.Context, actor models.Actor, rescheduleID string, payload *models.AcceptReschedulePayload) (*models.Session, error) {
	req, err := s.reschedules.GetByID(ctx, rescheduleID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundError("reschedule request")
		}
		return nil, err
	}

	session, err := s.getSession(ctx, actor, req.SessionID)
	if err != nil {
		return nil, err
	}

	if req.Status != models.ReschedulePending {
		metrics.RescheduleActions.WithLabelValues("accept", "rejected").Inc()
		return nil, ErrRequestNotPending
	}
	if !req.IsTurnOf(actor.ID) {
		metrics.RescheduleActions.WithLabelValues("accept", "rejected").Inc()
		return nil, ErrNotYourTurn
	}

	chosen := req.CurrentProposal
	if payload.UseCounterProposal && req.CounterProposal != nil {
		chosen = *req.CounterProposal
	}

	conflict, err := s.conflicts.HasConflict(ctx, session.MentorID, chosen.Date,
		chosen.StartTime, chosen.EndTime, session.ID, "acceptReschedule")
	if err != nil {
		return nil, err
	}
	if conflict {
		metrics.RescheduleActions.WithLabelValues("accept", "conflict").Inc()
		return nil, ErrScheduleConflict
	}

	if err := s.reschedules.AcceptAndApplySchedule(ctx, req.ID, actor.ID, chosen); err != nil {
		return nil, err
	}

	metrics.RescheduleActions.WithLabelValues("accept", "success").Inc()
	s.notifier.CallAsync(session.ID, EventRescheduleAccepted, actor.ID)
	s.presence.CallAsync(session.ID, EventRescheduleAccepted, actor.ID)

	logger.Info("Reschedule accepted",
		zap.String("session_id", session.ID),
		zap.String("reschedule_id", req.ID),
		zap.String("accepted_by", actor.ID),
		zap.Bool("used_counter", payload.UseCounterProposal && req.CounterProposal != nil))

	return s.sessions.GetByID(ctx, session.ID)
}
