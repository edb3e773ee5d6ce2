package models

import (
	"time"
)

// BetKind distinguishes round-scoped bets from wallet-only side bets
type BetKind string

const (
	// BetKindStandard bets belong to a round and accept bankroll stakes
	BetKindStandard BetKind = "standard"
	// BetKindWalletOnly bets may exist without a round; stakes always draw
	// from the wallet pool
	BetKindWalletOnly BetKind = "wallet_only"
)

// BetStatus represents the state of a bet
type BetStatus string

const (
	BetStatusOpen      BetStatus = "open"
	BetStatusLocked    BetStatus = "locked"
	BetStatusResolved  BetStatus = "resolved"
	BetStatusCancelled BetStatus = "cancelled"
)

// Option count bounds for a bet
const (
	MinBetOptions = 2
	MaxBetOptions = 8
)

// Bet represents a multi-option proposition participants can stake on
type Bet struct {
	ID         int64      `db:"id"`
	RoundID    *int64     `db:"round_id"` // nil for wallet-only bets
	Question   string     `db:"question"`
	Kind       BetKind    `db:"kind"`
	Status     BetStatus  `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at"`
}

// BetOption represents one possible outcome of a bet
type BetOption struct {
	ID          int64     `db:"id"`
	BetID       int64     `db:"bet_id"`
	Label       string    `db:"label"`
	OptionOrder int16     `db:"option_order"`
	IsWinner    bool      `db:"is_winner"`
	CreatedAt   time.Time `db:"created_at"`
}

// BetDetail combines a bet with its options
type BetDetail struct {
	Bet     *Bet
	Options []*BetOption
}

// CanAcceptWagers checks if the bet is still open for stakes
func (b *Bet) CanAcceptWagers() bool {
	return b.Status == BetStatusOpen
}

// CanResolve checks if the bet may transition to resolved
func (b *Bet) CanResolve() bool {
	return b.Status == BetStatusOpen || b.Status == BetStatusLocked
}

// CanCancel checks if the bet may transition to cancelled
func (b *Bet) CanCancel() bool {
	return b.Status == BetStatusOpen || b.Status == BetStatusLocked
}

// IsTerminal checks if the bet reached one of its final states
func (b *Bet) IsTerminal() bool {
	return b.Status == BetStatusResolved || b.Status == BetStatusCancelled
}

// Option looks up an option of this bet by ID
func (d *BetDetail) Option(optionID int64) *BetOption {
	for _, opt := range d.Options {
		if opt.ID == optionID {
			return opt
		}
	}
	return nil
}
