package models

import (
	"time"
)

// WagerResult represents the outcome of a wager
type WagerResult string

const (
	WagerResultPending WagerResult = "pending"
	WagerResultWin     WagerResult = "win"
	WagerResultLose    WagerResult = "lose"
)

// PayoutMultiplier is the canonical fixed payout policy: a winning stake pays
// back stake × 2 to its original pool. Pot-proportional and odds-weighted
// payouts are extension points, not implemented.
const PayoutMultiplier = 2

// Wager represents one user's stake on one option of one bet, drawn from one
// credit pool. RoundID mirrors the bet's round so bankroll payouts can find
// their entry after the stake was reserved.
type Wager struct {
	ID               int64       `db:"id"`
	UserID           int64       `db:"user_id"`
	BetID            int64       `db:"bet_id"`
	OptionID         int64       `db:"option_id"`
	RoundID          *int64      `db:"round_id"`
	Pool             Pool        `db:"pool"`
	Amount           int64       `db:"amount"`
	Result           WagerResult `db:"result"`
	Payout           int64       `db:"payout"`
	BalanceHistoryID *int64      `db:"balance_history_id"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// IsPending checks if the wager is still awaiting resolution
func (w *Wager) IsPending() bool {
	return w.Result == WagerResultPending
}

// WinPayout returns the amount credited back if this wager wins
func (w *Wager) WinPayout() int64 {
	return w.Amount * PayoutMultiplier
}

// PendingWagerDetail is a pending wager joined with the labels the dispatch
// layer needs for rendering
type PendingWagerDetail struct {
	Wager       *Wager
	Question    string
	OptionLabel string
}
