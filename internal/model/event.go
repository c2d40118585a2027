package model

import "time"

const (
	EventStart             = "start"
	EventNewTastingStarted = "new_tasting_started"
	EventTastingSaved      = "tasting_saved"
	EventTastingDeleted    = "tasting_deleted"
	EventSearch            = "search"

	MaxEventLength = 64
)

type Event struct {
	ID     int64
	TS     time.Time
	UserID *int64
	ChatID *int64
	Event  string
	Props  map[string]any
}

// DayStats is what /stats reports for one day.
type DayStats struct {
	DAU     int64
	Started int64
	Saved   int64
}
