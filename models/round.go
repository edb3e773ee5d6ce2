package models

import (
	"time"
)

// RoundStatus represents the lifecycle state of a betting round
type RoundStatus string

const (
	RoundStatusActive RoundStatus = "active"
	RoundStatusClosed RoundStatus = "closed"
)

// Round represents a bounded betting session. At most one round is active at
// any time; the invariant is enforced by a partial unique index on status.
type Round struct {
	ID        int64       `db:"id"`
	Status    RoundStatus `db:"status"`
	CreatedAt time.Time   `db:"created_at"`
	ClosedAt  *time.Time  `db:"closed_at"`
}

// IsActive checks if the round is still accepting bankroll activity
func (r *Round) IsActive() bool {
	return r.Status == RoundStatusActive
}
