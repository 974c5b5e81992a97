package model

import "time"

// DateLayout is the canonical day-granularity date format used for storage
// and wire encoding. Time-of-day is never significant for check-in dates.
const DateLayout = "2006-01-02"

// Check-in metric bounds, matching the dashboard sliders.
const (
	SleepHoursMin  = 0.0
	SleepHoursMax  = 12.0
	SleepHoursStep = 0.5

	RatingMin = 1
	RatingMax = 5
)

// CheckIn is a single daily health check-in. At most one check-in exists
// per (owner, date) pair; resubmitting for the same day overwrites the
// four metric fields and keeps the original id and creation timestamp.
type CheckIn struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Date        time.Time `json:"date"`
	SleepHours  float64   `json:"sleep_hours"`
	Hunger      int       `json:"hunger"`
	Soreness    int       `json:"soreness"`
	Performance int       `json:"performance_rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// Day returns the check-in date truncated to day granularity.
func (c CheckIn) Day() string {
	return c.Date.Format(DateLayout)
}

// SameDay reports whether t falls on the same calendar day as the check-in.
func (c CheckIn) SameDay(t time.Time) bool {
	return c.Day() == t.Format(DateLayout)
}
