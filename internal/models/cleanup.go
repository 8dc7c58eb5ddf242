package models

import "time"

// CleanupRun records one retention sweep.
type CleanupRun struct {
	ID           int64     `json:"id"`
	RanAt        time.Time `json:"ran_at"`
	DeletedCount int64     `json:"deleted_count"`
	WindowDays   int       `json:"window_days"`
}
