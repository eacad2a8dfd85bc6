package models_test

import (
	"testing"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	allowed := map[models.SessionStatus][]models.SessionStatus{
		models.SessionPending:  {models.SessionApproved, models.SessionRejected, models.SessionCanceled},
		models.SessionApproved: {models.SessionUpcoming, models.SessionCanceled},
		models.SessionUpcoming: {models.SessionActive, models.SessionCanceled},
		models.SessionActive:   {models.SessionCompleted},
	}

	all := []models.SessionStatus{
		models.SessionPending, models.SessionApproved, models.SessionUpcoming,
		models.SessionActive, models.SessionCompleted, models.SessionCanceled,
		models.SessionRejected, models.SessionExpired,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, models.SessionCompleted.IsTerminalStatus())
	assert.True(t, models.SessionCanceled.IsTerminalStatus())
	assert.True(t, models.SessionRejected.IsTerminalStatus())
	assert.True(t, models.SessionExpired.IsTerminalStatus())

	assert.False(t, models.SessionPending.IsTerminalStatus())
	assert.False(t, models.SessionApproved.IsTerminalStatus())
	assert.False(t, models.SessionUpcoming.IsTerminalStatus())
	assert.False(t, models.SessionActive.IsTerminalStatus())
}

func TestDeriveDisplayStatus(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	session := &models.Session{
		Status:  models.SessionUpcoming,
		Date:    date,
		EndTime: "11:00",
	}

	before := time.Date(2026, 3, 10, 10, 59, 0, 0, time.UTC)
	assert.Equal(t, models.SessionUpcoming, models.DeriveDisplayStatus(session, before))

	atEnd := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, models.SessionUpcoming, models.DeriveDisplayStatus(session, atEnd))

	after := time.Date(2026, 3, 10, 11, 0, 1, 0, time.UTC)
	assert.Equal(t, models.SessionExpired, models.DeriveDisplayStatus(session, after))

	// Only upcoming sessions expire; an overdue approved session is still
	// waiting on payment, and terminal statuses stay as stored.
	session.Status = models.SessionApproved
	assert.Equal(t, models.SessionApproved, models.DeriveDisplayStatus(session, after))

	session.Status = models.SessionCompleted
	assert.Equal(t, models.SessionCompleted, models.DeriveDisplayStatus(session, after))
}

func TestAllPaid(t *testing.T) {
	session := &models.Session{
		Participants: []models.Participant{
			{UserID: "u1", PaymentStatus: models.PaymentCompleted},
			{UserID: "u2", PaymentStatus: models.PaymentPending},
		},
	}
	assert.False(t, session.AllPaid())

	session.Participants[1].PaymentStatus = models.PaymentCompleted
	assert.True(t, session.AllPaid())

	empty := &models.Session{}
	assert.True(t, empty.AllPaid())
}

func TestHasParticipant(t *testing.T) {
	session := &models.Session{
		MentorID: "mentor-1",
		Participants: []models.Participant{
			{UserID: "u1"},
			{UserID: "u2"},
		},
	}

	assert.True(t, session.HasParticipant("u1"))
	assert.True(t, session.HasParticipant("u2"))
	assert.False(t, session.HasParticipant("mentor-1"))
	assert.False(t, session.HasParticipant("stranger"))
}

func TestSessionGroupGetStatuses(t *testing.T) {
	assert.Equal(t, models.ActiveStatuses, models.SessionGroupActive.GetStatuses())
	assert.Equal(t, models.PastStatuses, models.SessionGroupPast.GetStatuses())
	assert.Nil(t, models.SessionGroup("everything").GetStatuses())
	assert.Nil(t, models.SessionGroup("").GetStatuses())
}
