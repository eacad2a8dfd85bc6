package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// SessionStatus represents the status of a mentoring session
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionApproved  SessionStatus = "approved"
	SessionUpcoming  SessionStatus = "upcoming"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCanceled  SessionStatus = "canceled"
	SessionRejected  SessionStatus = "rejected"

	// SessionExpired is a display-only status derived at read time for
	// upcoming sessions whose end time has passed. It is never stored.
	SessionExpired SessionStatus = "expired"
)

// ActiveStatuses are statuses shown on the active sessions page
var ActiveStatuses = []SessionStatus{SessionPending, SessionApproved, SessionUpcoming, SessionActive}

// PastStatuses are statuses shown on the past sessions page
var PastStatuses = []SessionStatus{SessionCompleted, SessionCanceled, SessionRejected}

// IsTerminalStatus returns true if the status is terminal (no further transitions allowed)
func (s SessionStatus) IsTerminalStatus() bool {
	return s == SessionCompleted || s == SessionCanceled || s == SessionRejected || s == SessionExpired
}

// CanTransitionTo checks if a status transition is valid
func (s SessionStatus) CanTransitionTo(newStatus SessionStatus) bool {
	if s.IsTerminalStatus() {
		return false
	}

	switch s {
	case SessionPending:
		return newStatus == SessionApproved || newStatus == SessionRejected || newStatus == SessionCanceled
	case SessionApproved:
		return newStatus == SessionUpcoming || newStatus == SessionCanceled
	case SessionUpcoming:
		return newStatus == SessionActive || newStatus == SessionCanceled
	case SessionActive:
		return newStatus == SessionCompleted
	default:
		return false
	}
}

// Pricing distinguishes free sessions from paid ones
type Pricing string

const (
	PricingFree Pricing = "free"
	PricingPaid Pricing = "paid"
)

// PaymentStatus is a participant's payment state for a paid session
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Participant is one booked attendee of a session
type Participant struct {
	UserID        string        `json:"userId"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// Session represents a booked mentoring appointment
type Session struct {
	ID           string        `json:"id"`
	MentorID     string        `json:"mentorId"`
	Participants []Participant `json:"participants"`
	Date         time.Time     `json:"date"`
	StartTime    string        `json:"startTime"`
	EndTime      string        `json:"endTime"`
	Hours        int           `json:"hours"`
	Pricing      Pricing       `json:"pricing"`
	TotalAmount  float64       `json:"totalAmount"`
	Status       SessionStatus `json:"status"`
	RejectReason *string       `json:"rejectReason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`

	// Reschedule is the attached negotiation, if any. Retained read-only
	// after acceptance for audit.
	Reschedule *RescheduleRequest `json:"rescheduleRequest,omitempty"`
}

// DeriveDisplayStatus computes the status shown to callers. Upcoming
// sessions whose end time has passed read as expired without a backing
// transition record. Callable identically on server and client payloads.
func DeriveDisplayStatus(s *Session, now time.Time) SessionStatus {
	if s.Status == SessionUpcoming && now.After(EndOfRange(s.Date, s.EndTime)) {
		return SessionExpired
	}
	return s.Status
}

// AllPaid reports whether every participant has completed payment
func (s *Session) AllPaid() bool {
	for _, p := range s.Participants {
		if p.PaymentStatus != PaymentCompleted {
			return false
		}
	}
	return true
}

// HasParticipant reports whether the given user is booked on the session
func (s *Session) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// SessionGroup represents the set of sessions to fetch
type SessionGroup string

const (
	SessionGroupActive SessionGroup = "active"
	SessionGroupPast   SessionGroup = "past"
)

// GetStatuses returns the statuses for a session group
func (g SessionGroup) GetStatuses() []SessionStatus {
	switch g {
	case SessionGroupActive:
		return ActiveStatuses
	case SessionGroupPast:
		return PastStatuses
	default:
		return nil
	}
}

// CreateSessionPayload is the booking request payload
type CreateSessionPayload struct {
	MentorID  string   `json:"mentorId" binding:"required"`
	Date      string   `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string   `json:"startTime" binding:"required"`
	Hours     int      `json:"hours" binding:"required,min=1,max=8"`
	Pricing   Pricing  `json:"pricing" binding:"required,oneof=free paid"`
	Message   string   `json:"message" binding:"max=2000"`
	CoGuests  []string `json:"coGuests" binding:"max=10,dive,required"`
}

// RejectSessionPayload is the payload for rejecting a booking request
type RejectSessionPayload struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// SessionsResponse is the response for listing sessions
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

// ScanSession scans a single PostgreSQL row into a Session struct
// Expected columns: id, mentor_id, session_date, start_time, end_time,
// hours, pricing, total_amount, status, reject_reason, created_at, updated_at
func ScanSession(row pgx.Row) (*Session, error) {
	var s Session
	var rejectReason *string

	err := row.Scan(
		&s.ID,
		&s.MentorID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.Hours,
		&s.Pricing,
		&s.TotalAmount,
		&s.Status,
		&rejectReason,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.RejectReason = rejectReason
	return &s, nil
}

// ScanSessions scans multiple PostgreSQL rows into a slice of Session structs
func ScanSessions(rows pgx.Rows) ([]*Session, error) {
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		session, err := ScanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
