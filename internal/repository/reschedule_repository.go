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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const rescheduleColumns = `id, session_id, initiated_by, last_action_by, status,
	old_date, old_start_time, old_end_time, old_message,
	cur_date, cur_start_time, cur_end_time, cur_message,
	counter_date, counter_start_time, counter_end_time, counter_message,
	created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for unique constraint failures
const uniqueViolation = "23505"

// RescheduleRepository handles reschedule negotiation data access
type RescheduleRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewRescheduleRepository creates a new reschedule repository
func NewRescheduleRepository(pool *pgxpool.Pool) *RescheduleRepository {
	return &RescheduleRepository{db: pool, pool: pool}
}

// Create opens a negotiation. A partial unique index on
// (session_id) WHERE status = 'pending' enforces at most one open
// negotiation per session; a violation surfaces as ErrConflict.
func (r *RescheduleRepository) Create(ctx context.Context, req *models.RescheduleRequest) error {
	start := time.Now()
	operation := "createRescheduleRequest"

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO reschedule_requests (id, session_id, initiated_by, last_action_by, status,
		                                 old_date, old_start_time, old_end_time, old_message,
		                                 cur_date, cur_start_time, cur_end_time, cur_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`,
		req.ID,
		req.SessionID,
		req.InitiatedBy,
		req.LastActionBy,
		req.Status,
		req.OldProposal.Date,
		req.OldProposal.StartTime,
		req.OldProposal.EndTime,
		nilIfEmpty(req.OldProposal.Message),
		req.CurrentProposal.Date,
		req.CurrentProposal.StartTime,
		req.CurrentProposal.EndTime,
		nilIfEmpty(req.CurrentProposal.Message),
	)

	err := row.Scan(&req.CreatedAt, &req.UpdatedAt)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			recordMetrics(operation, "conflict", duration)
			return fmt.Errorf("reschedule request already open: %w", apperrors.ErrConflict)
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create reschedule request: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("session_id", req.SessionID))

	return nil
}

// GetByID fetches a negotiation
func (r *RescheduleRepository) GetByID(ctx context.Context, id string) (*models.RescheduleRequest, error) {
	start := time.Now()
	operation := "getRescheduleByID"

	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM reschedule_requests WHERE id = $1
	`, rescheduleColumns), id)

	req, err := models.ScanRescheduleRequest(row)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, apperrors.NotFoundError("reschedule request")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to get reschedule request: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return req, nil
}

// GetPendingBySession fetches the pending negotiation for a session.
// Returns ErrNotFound when the session has none open.
func (r *RescheduleRepository) GetPendingBySession(ctx context.Context, sessionID string) (*models.RescheduleRequest, error) {
	start := time.Now()
	operation := "getPendingReschedule"

	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM reschedule_requests
		WHERE session_id = $1 AND status = $2
	`, rescheduleColumns), sessionID, models.ReschedulePending)

	req, err := models.ScanRescheduleRequest(row)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, apperrors.NotFoundError("pending reschedule request")
		}
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get pending reschedule: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return req, nil
}

// SetCounterProposal records the single permitted counter-proposal and passes
// the turn. The row-level guard rejects a second counter or a resolved
// negotiation with ErrConcurrentModification.
func (r *RescheduleRepository) SetCounterProposal(ctx context.Context, id string, actorID string, counter models.Proposal) error {
	start := time.Now()
	operation := "setCounterProposal"

	tag, err := r.db.Exec(ctx, `
		UPDATE reschedule_requests
		SET counter_date = $2, counter_start_time = $3, counter_end_time = $4,
		    counter_message = $5, last_action_by = $6, updated_at = now()
		WHERE id = $1 AND status = $7 AND counter_date IS NULL AND last_action_by <> $6
	`, id, counter.Date, counter.StartTime, counter.EndTime,
		nilIfEmpty(counter.Message), actorID, models.ReschedulePending)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to set counter proposal: %w", err)
	}

	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "stale", duration)
		return apperrors.ErrConcurrentModification
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// AcceptAndApplySchedule marks the negotiation accepted and writes the chosen
// schedule onto the session in one transaction
func (r *RescheduleRepository) AcceptAndApplySchedule(ctx context.Context, id string, actorID string, chosen models.Proposal) error {
	start := time.Now()
	operation := "acceptReschedule"

	err := func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var sessionID string
		row := tx.QueryRow(ctx, `
			UPDATE reschedule_requests
			SET status = $2, last_action_by = $3, updated_at = now()
			WHERE id = $1 AND status = $4 AND last_action_by <> $3
			RETURNING session_id
		`, id, models.RescheduleAccepted, actorID, models.ReschedulePending)
		if err := row.Scan(&sessionID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrConcurrentModification
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE sessions
			SET session_date = $2, start_time = $3, end_time = $4, updated_at = now()
			WHERE id = $1
		`, sessionID, chosen.Date, chosen.StartTime, chosen.EndTime)
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}()

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			recordMetrics(operation, "stale", duration)
			return err
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to accept reschedule: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("reschedule_id", id))

	return nil
}

// nilIfEmpty converts empty strings to NULL for optional text columns
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
