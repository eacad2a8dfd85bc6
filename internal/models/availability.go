package models

// BusySlot is one reserved time range on a mentor's calendar
type BusySlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// AvailabilityResponse lists a mentor's reserved slots on one date
type AvailabilityResponse struct {
	MentorID string     `json:"mentorId"`
	Date     string     `json:"date"`
	Busy     []BusySlot `json:"busy"`
}
