package models

import (
	"fmt"
	"time"
)

// Wall-clock times are carried as "HH:MM" strings and compared as
// minutes since midnight. Cross-midnight ranges are not modeled.

// MinutesOfDay parses an "HH:MM" wall-clock value into minutes since midnight
func MinutesOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: must be HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockFromMinutes formats minutes since midnight as "HH:MM"
func ClockFromMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Overlaps reports whether two half-open intervals [start1,end1) and
// [start2,end2) share any instant. Ranges that touch exactly at a
// boundary do not overlap.
func Overlaps(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// ValidateSchedule checks that a (start, end, hours) triple is a
// well-formed same-day range with end = start + hours.
func ValidateSchedule(startTime, endTime string, hours int) error {
	if hours <= 0 {
		return fmt.Errorf("hours must be positive")
	}

	start, err := MinutesOfDay(startTime)
	if err != nil {
		return err
	}
	end, err := MinutesOfDay(endTime)
	if err != nil {
		return err
	}

	if end <= start {
		return fmt.Errorf("end time %s must be after start time %s", endTime, startTime)
	}
	if end-start != hours*60 {
		return fmt.Errorf("end time %s is not start time %s plus %d hour(s)", endTime, startTime, hours)
	}
	return nil
}

// EndOfRange returns the absolute instant at which a session on the given
// calendar day ends.
func EndOfRange(date time.Time, endTime string) time.Time {
	end, err := MinutesOfDay(endTime)
	if err != nil {
		return date
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, end/60, end%60, 0, 0, date.Location())
}
