package models

import (
	"time"
)

// Pool identifies which of a user's two credit pools an operation targets
type Pool string

const (
	// PoolWallet is the persistent pool that survives across rounds
	PoolWallet Pool = "wallet"
	// PoolBankroll is the round-scoped pool, reclaimed at round end
	PoolBankroll Pool = "bankroll"
)

// Wallet is a user's persistent credit pool. One row per user, seeded at the
// opening balance on first access.
type Wallet struct {
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BankrollEntry is a user's credit pool for one round. Created lazily at the
// opening balance, deleted when the round settles. FromWallet marks entries
// that received a wallet transfer and therefore qualify for the rank
// multiplier at round end.
type BankrollEntry struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	RoundID    int64     `db:"round_id"`
	Balance    int64     `db:"balance"`
	FromWallet bool      `db:"from_wallet"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
