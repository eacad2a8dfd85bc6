package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// RescheduleStatus represents the status of a reschedule negotiation
type RescheduleStatus string

const (
	ReschedulePending  RescheduleStatus = "pending"
	RescheduleAccepted RescheduleStatus = "accepted"
	RescheduleCanceled RescheduleStatus = "canceled"
)

// IsResolved returns true once the negotiation has reached a terminal state
func (s RescheduleStatus) IsResolved() bool {
	return s == RescheduleAccepted || s == RescheduleCanceled
}

// Proposal is a candidate (date, start, end, message) tuple within a
// reschedule negotiation
type Proposal struct {
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Message   string    `json:"message,omitempty"`
}

// RescheduleRequest is the negotiation attached to a session. At most one
// exists per session while pending; the party recorded in LastActionBy must
// wait for the other side before acting again.
type RescheduleRequest struct {
	ID              string           `json:"id"`
	SessionID       string           `json:"sessionId"`
	InitiatedBy     string           `json:"initiatedBy"`
	LastActionBy    string           `json:"lastActionBy"`
	Status          RescheduleStatus `json:"status"`
	OldProposal     Proposal         `json:"oldProposal"`
	CurrentProposal Proposal         `json:"currentProposal"`
	CounterProposal *Proposal        `json:"counterProposal,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// IsTurnOf reports whether the given actor may act on the pending request
func (r *RescheduleRequest) IsTurnOf(actorID string) bool {
	return r.LastActionBy != actorID
}

// OpenReschedulePayload is the payload for opening a negotiation
type OpenReschedulePayload struct {
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" binding:"required"`
	Message   string `json:"message" binding:"max=2000"`
}

// CounterProposalPayload is the payload for the single permitted counter round
type CounterProposalPayload struct {
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" binding:"required"`
	Message   string `json:"message" binding:"max=2000"`
}

// AcceptReschedulePayload selects which proposal to accept
type AcceptReschedulePayload struct {
	UseCounterProposal bool `json:"useCounterProposal"`
}

// ScanRescheduleRequest scans a single PostgreSQL row into a RescheduleRequest
// Expected columns: id, session_id, initiated_by, last_action_by, status,
// old_date, old_start_time, old_end_time, old_message,
// cur_date, cur_start_time, cur_end_time, cur_message,
// counter_date, counter_start_time, counter_end_time, counter_message,
// created_at, updated_at
func ScanRescheduleRequest(row pgx.Row) (*RescheduleRequest, error) {
	var r RescheduleRequest
	var oldMessage, curMessage *string
	var counterDate *time.Time
	var counterStart, counterEnd, counterMessage *string

	err := row.Scan(
		&r.ID,
		&r.SessionID,
		&r.InitiatedBy,
		&r.LastActionBy,
		&r.Status,
		&r.OldProposal.Date,
		&r.OldProposal.StartTime,
		&r.OldProposal.EndTime,
		&oldMessage,
		&r.CurrentProposal.Date,
		&r.CurrentProposal.StartTime,
		&r.CurrentProposal.EndTime,
		&curMessage,
		&counterDate,
		&counterStart,
		&counterEnd,
		&counterMessage,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if oldMessage != nil {
		r.OldProposal.Message = *oldMessage
	}
	if curMessage != nil {
		r.CurrentProposal.Message = *curMessage
	}
	if counterDate != nil && counterStart != nil && counterEnd != nil {
		counter := Proposal{
			Date:      *counterDate,
			StartTime: *counterStart,
			EndTime:   *counterEnd,
		}
		if counterMessage != nil {
			counter.Message = *counterMessage
		}
		r.CounterProposal = &counter
	}

	return &r, nil
}
