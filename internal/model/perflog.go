package model

import "time"

// PerformanceEntry is a free-form match/session log entry shown on the
// dashboard, newest first.
type PerformanceEntry struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Performance string    `json:"performance"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
