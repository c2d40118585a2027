package model

import "time"

// User is keyed by the telegram user id.
type User struct {
	ID          int64
	CreatedAt   time.Time
	TZOffsetMin int
}
