package services

import (
	"context"
	"fmt"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/repository"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
)

// blockingStatuses reserve a mentor's calendar slot. Pending requests do not
// block, and an upcoming session already past its end time reads as expired
// and releases the slot.
var blockingStatuses = []models.SessionStatus{models.SessionApproved, models.SessionUpcoming}

// ConflictService checks candidate time windows against a mentor's existing
// bookings. Ranges are half-open: sessions touching exactly at a boundary do
// not conflict.
type ConflictService struct {
	sessions repository.SessionStore
	now      func() time.Time
}

// NewConflictService creates a new conflict service
func NewConflictService(sessions repository.SessionStore) *ConflictService {
	return &ConflictService{
		sessions: sessions,
		now:      time.Now,
	}
}

// HasConflict reports whether the candidate window overlaps any of the
// mentor's confirmed sessions on that date. Pass a non-empty excludeSessionID
// to leave out the session under evaluation. The operation label tags the
// conflict metric with the caller.
func (s *ConflictService) HasConflict(ctx context.Context, mentorID string, date time.Time, startTime, endTime string, excludeSessionID string, operation string) (bool, error) {
	startMin, err := models.MinutesOfDay(startTime)
	if err != nil {
		return false, fmt.Errorf("invalid start time: %w", err)
	}
	endMin, err := models.MinutesOfDay(endTime)
	if err != nil {
		return false, fmt.Errorf("invalid end time: %w", err)
	}

	candidates, err := s.sessions.ListMentorSessionsOnDate(ctx, mentorID, date, blockingStatuses, excludeSessionID)
	if err != nil {
		return false, fmt.Errorf("failed to load mentor sessions: %w", err)
	}

	now := s.now()
	for _, c := range candidates {
		if models.DeriveDisplayStatus(c, now) == models.SessionExpired {
			continue
		}

		cStart, err := models.MinutesOfDay(c.StartTime)
		if err != nil {
			return false, fmt.Errorf("invalid stored start time on session %s: %w", c.ID, err)
		}
		cEnd, err := models.MinutesOfDay(c.EndTime)
		if err != nil {
			return false, fmt.Errorf("invalid stored end time on session %s: %w", c.ID, err)
		}

		if models.Overlaps(startMin, endMin, cStart, cEnd) {
			metrics.ScheduleConflicts.WithLabelValues(operation).Inc()
			return true, nil
		}
	}

	return false, nil
}

// OverlappingPendingIDs returns the IDs of the mentor's pending sessions on
// that date whose windows overlap the candidate window. Used on approval to
// cancel competing requests.
func (s *ConflictService) OverlappingPendingIDs(ctx context.Context, mentorID string, date time.Time, startTime, endTime string, excludeSessionID string) ([]string, error) {
	startMin, err := models.MinutesOfDay(startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}
	endMin, err := models.MinutesOfDay(endTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}

	candidates, err := s.sessions.ListMentorSessionsOnDate(ctx, mentorID, date,
		[]models.SessionStatus{models.SessionPending}, excludeSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending sessions: %w", err)
	}

	ids := []string{}
	for _, c := range candidates {
		cStart, err := models.MinutesOfDay(c.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid stored start time on session %s: %w", c.ID, err)
		}
		cEnd, err := models.MinutesOfDay(c.EndTime)
		if err != nil {
			return nil, fmt.Errorf("invalid stored end time on session %s: %w", c.ID, err)
		}

		if models.Overlaps(startMin, endMin, cStart, cEnd) {
			ids = append(ids, c.ID)
		}
	}

	return ids, nil
}
