package models_test

import (
	"testing"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRescheduleStatusIsResolved(t *testing.T) {
	assert.False(t, models.ReschedulePending.IsResolved())
	assert.True(t, models.RescheduleAccepted.IsResolved())
	assert.True(t, models.RescheduleCanceled.IsResolved())
}

func TestIsTurnOf(t *testing.T) {
	req := &models.RescheduleRequest{
		InitiatedBy:  "mentor-1",
		LastActionBy: "mentor-1",
	}

	// The initiator just acted, so the other side holds the turn
	assert.False(t, req.IsTurnOf("mentor-1"))
	assert.True(t, req.IsTurnOf("participant-1"))

	// After a counter the turn passes back
	req.LastActionBy = "participant-1"
	assert.True(t, req.IsTurnOf("mentor-1"))
	assert.False(t, req.IsTurnOf("participant-1"))
}

func TestParseRole(t *testing.T) {
	role, err := models.ParseRole("mentor")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleMentor, role)

	role, err = models.ParseRole("participant")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleParticipant, role)

	_, err = models.ParseRole("admin")
	assert.Error(t, err)
}
