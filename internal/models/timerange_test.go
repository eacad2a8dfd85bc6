package models_test

import (
	"testing"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub002/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutesOfDay(t *testing.T) {
	m, err := models.MinutesOfDay("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	m, err = models.MinutesOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = models.MinutesOfDay("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, m)

	_, err = models.MinutesOfDay("9:30am")
	assert.Error(t, err)

	_, err = models.MinutesOfDay("25:00")
	assert.Error(t, err)

	_, err = models.MinutesOfDay("")
	assert.Error(t, err)
}

func TestClockFromMinutes(t *testing.T) {
	assert.Equal(t, "00:00", models.ClockFromMinutes(0))
	assert.Equal(t, "09:30", models.ClockFromMinutes(570))
	assert.Equal(t, "14:00", models.ClockFromMinutes(840))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 int
		want                       bool
	}{
		{"identical ranges", 600, 660, 600, 660, true},
		{"partial overlap", 600, 660, 630, 690, true},
		{"containment", 600, 720, 630, 660, true},
		{"disjoint", 600, 660, 720, 780, false},
		{"touching at boundary", 600, 660, 660, 720, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.Overlaps(tt.start1, tt.end1, tt.start2, tt.end2))
			// Overlap must be symmetric
			assert.Equal(t, tt.want, models.Overlaps(tt.start2, tt.end2, tt.start1, tt.end1))
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, models.ValidateSchedule("10:00", "11:00", 1))
	assert.NoError(t, models.ValidateSchedule("09:00", "12:00", 3))

	assert.Error(t, models.ValidateSchedule("10:00", "11:00", 2), "hours must match the range")
	assert.Error(t, models.ValidateSchedule("11:00", "10:00", 1), "end must be after start")
	assert.Error(t, models.ValidateSchedule("10:00", "10:00", 0))
	assert.Error(t, models.ValidateSchedule("bad", "11:00", 1))
}

func TestEndOfRange(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := models.EndOfRange(date, "14:30")
	assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), end)
}
