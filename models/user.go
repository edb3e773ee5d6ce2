package models

import (
	"time"
)

// User represents a participant known to the ledger. Users are created lazily
// the first time the dispatch layer resolves a front-end handle.
type User struct {
	ID          int64     `db:"id"`
	ExternalID  string    `db:"external_id"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
