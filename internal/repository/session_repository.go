package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	apperrors "github.com/JasimIhsan/MentorsHub-sub002/pkg/errors"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const sessionColumns = `id, mentor_id, session_date, start_time, end_time, hours,
	pricing, total_amount, status, reject_reason, created_at, updated_at`

// SessionRepository handles session data access on PostgreSQL
type SessionRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: pool, pool: pool}
}

// inTx runs fn inside a transaction, rolling back on error
func (r *SessionRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Create inserts a session with its participant rows in one transaction
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	start := time.Now()
	operation := "createSession"

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO sessions (id, mentor_id, session_date, start_time, end_time,
			                      hours, pricing, total_amount, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`,
			session.ID,
			session.MentorID,
			session.Date,
			session.StartTime,
			session.EndTime,
			session.Hours,
			session.Pricing,
			session.TotalAmount,
			session.Status,
		)
		if err := row.Scan(&session.CreatedAt, &session.UpdatedAt); err != nil {
			return err
		}

		for _, p := range session.Participants {
			_, err := tx.Exec(ctx, `
				INSERT INTO session_participants (session_id, user_id, payment_status)
				VALUES ($1, $2, $3)
			`, session.ID, p.UserID, p.PaymentStatus)
			if err != nil {
				return err
			}
		}
		return nil
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return nil
}

// GetByID fetches a session with participants and its most recent
// reschedule request attached
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	start := time.Now()
	operation := "getSessionByID"

	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM sessions WHERE id = $1
	`, sessionColumns), id)

	session, err := models.ScanSession(row)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, apperrors.NotFoundError("session")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := r.attachParticipants(ctx, []*models.Session{session}); err != nil {
		return nil, err
	}
	if err := r.attachLatestReschedule(ctx, session); err != nil {
		return nil, err
	}

	recordMetrics(operation, "success", duration)
	return session, nil
}

// ListByActor fetches sessions where the actor is the mentor or a
// participant, filtered to the given statuses, newest first
func (r *SessionRepository) ListByActor(ctx context.Context, actorID string, statuses []models.SessionStatus) ([]*models.Session, error) {
	start := time.Now()
	operation := "listSessionsByActor"

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM sessions s
		WHERE (s.mentor_id = $1
		       OR EXISTS (SELECT 1 FROM session_participants sp
		                  WHERE sp.session_id = s.id AND sp.user_id = $1))
		  AND s.status = ANY($2)
		ORDER BY s.session_date DESC, s.start_time DESC
	`, sessionColumns), actorID, statusStrings(statuses))
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions, err := models.ScanSessions(rows)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	if err := r.attachParticipants(ctx, sessions); err != nil {
		return nil, err
	}
	if err := r.attachPendingReschedules(ctx, sessions); err != nil {
		return nil, err
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.Int("count", len(sessions)))

	return sessions, nil
}

// ListMentorSessionsOnDate fetches a mentor's sessions on a calendar date in
// the given statuses. Pass a non-empty excludeSessionID to leave one session
// out, e.g. the session whose own reschedule is being evaluated.
func (r *SessionRepository) ListMentorSessionsOnDate(ctx context.Context, mentorID string, date time.Time, statuses []models.SessionStatus, excludeSessionID string) ([]*models.Session, error) {
	start := time.Now()
	operation := "listMentorSessionsOnDate"

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM sessions
		WHERE mentor_id = $1
		  AND session_date = $2
		  AND status = ANY($3)
		  AND ($4 = '' OR id::text <> $4)
	`, sessionColumns), mentorID, date, statusStrings(statuses), excludeSessionID)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to list mentor sessions: %w", err)
	}

	sessions, err := models.ScanSessions(rows)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to scan mentor sessions: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return sessions, nil
}

// UpdateStatusIfCurrent moves a session between statuses only when it still
// holds the expected current status. A lost race surfaces as
// ErrConcurrentModification.
func (r *SessionRepository) UpdateStatusIfCurrent(ctx context.Context, id string, from, to models.SessionStatus) error {
	start := time.Now()
	operation := "updateSessionStatus"

	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, to)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update session status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "stale", duration)
		return apperrors.ErrConcurrentModification
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("session_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	return nil
}

// RejectIfPending rejects a pending session and records the reason
func (r *SessionRepository) RejectIfPending(ctx context.Context, id string, reason string) error {
	start := time.Now()
	operation := "rejectSession"

	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET status = $2, reject_reason = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, models.SessionRejected, reason, models.SessionPending)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to reject session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "stale", duration)
		return apperrors.ErrConcurrentModification
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// ApproveWithCascade approves a pending session and cancels the listed
// pending sessions in the same transaction, so a crash cannot leave an
// approved session alongside a still-pending overlap.
func (r *SessionRepository) ApproveWithCascade(ctx context.Context, id string, overlappingPendingIDs []string) error {
	start := time.Now()
	operation := "approveSessionWithCascade"

	var cascaded int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE sessions SET status = $2, updated_at = now()
			WHERE id = $1 AND status = $3
		`, id, models.SessionApproved, models.SessionPending)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrConcurrentModification
		}

		if len(overlappingPendingIDs) == 0 {
			return nil
		}

		// Only still-pending rows cancel; anything already moved on is
		// left alone.
		tag, err = tx.Exec(ctx, `
			UPDATE sessions SET status = $2, updated_at = now()
			WHERE id = ANY($1) AND status = $3
		`, overlappingPendingIDs, models.SessionCanceled, models.SessionPending)
		if err != nil {
			return err
		}
		cascaded = tag.RowsAffected()
		return nil
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			recordMetrics(operation, "stale", duration)
			return err
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to approve session: %w", err)
	}

	if cascaded > 0 {
		metrics.SessionCascadeCancellations.Add(float64(cascaded))
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("session_id", id),
		zap.Int64("cascaded", cascaded))

	return nil
}

// CancelAndResolveReschedule cancels a session and closes any pending
// reschedule negotiation on it in the same transaction
func (r *SessionRepository) CancelAndResolveReschedule(ctx context.Context, id string, from models.SessionStatus) error {
	start := time.Now()
	operation := "cancelSession"

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE sessions SET status = $2, updated_at = now()
			WHERE id = $1 AND status = $3
		`, id, models.SessionCanceled, from)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrConcurrentModification
		}

		_, err = tx.Exec(ctx, `
			UPDATE reschedule_requests SET status = $2, updated_at = now()
			WHERE session_id = $1 AND status = $3
		`, id, models.RescheduleCanceled, models.ReschedulePending)
		return err
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			recordMetrics(operation, "stale", duration)
			return err
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to cancel session: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// SetParticipantPayment records a settled payment for one participant
func (r *SessionRepository) SetParticipantPayment(ctx context.Context, sessionID, userID string, status models.PaymentStatus, transactionID string) error {
	start := time.Now()
	operation := "setParticipantPayment"

	tag, err := r.db.Exec(ctx, `
		UPDATE session_participants SET payment_status = $3, transaction_id = $4
		WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID, status, transactionID)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update participant payment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("session participant")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// attachParticipants loads participant rows for a set of sessions in one query
func (r *SessionRepository) attachParticipants(ctx context.Context, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]string, len(sessions))
	byID := make(map[string]*models.Session, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
		byID[s.ID] = s
		s.Participants = []models.Participant{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT session_id, user_id, payment_status
		FROM session_participants
		WHERE session_id = ANY($1)
		ORDER BY created_at
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID string
		var p models.Participant
		if err := rows.Scan(&sessionID, &p.UserID, &p.PaymentStatus); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if s, ok := byID[sessionID]; ok {
			s.Participants = append(s.Participants, p)
		}
	}

	return rows.Err()
}

// attachLatestReschedule attaches the most recent negotiation regardless of
// its status. Resolved negotiations stay visible for audit.
func (r *SessionRepository) attachLatestReschedule(ctx context.Context, session *models.Session) error {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM reschedule_requests
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, rescheduleColumns), session.ID)

	req, err := models.ScanRescheduleRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to load reschedule request: %w", err)
	}

	session.Reschedule = req
	return nil
}

// attachPendingReschedules attaches pending negotiations for a set of
// sessions in one query
func (r *SessionRepository) attachPendingReschedules(ctx context.Context, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]string, len(sessions))
	byID := make(map[string]*models.Session, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM reschedule_requests
		WHERE session_id = ANY($1) AND status = $2
	`, rescheduleColumns), ids, models.ReschedulePending)
	if err != nil {
		return fmt.Errorf("failed to load reschedule requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		req, err := models.ScanRescheduleRequest(rows)
		if err != nil {
			return fmt.Errorf("failed to scan reschedule request: %w", err)
		}
		if s, ok := byID[req.SessionID]; ok {
			s.Reschedule = req
		}
	}

	return rows.Err()
}
