package models

import (
	"time"

	"github.com/google/uuid"
)

// Reward multipliers are carried in tenths so floor(balance × multiplier)
// stays exact in integer arithmetic.
var rewardMultiplierTenths = []int64{25, 22, 20, 18, 16}

// RewardMultiplierTenths returns the end-of-round wallet reward multiplier (in
// tenths) for a bankroll entry at the given 1-based rank. Only entries funded
// by a wallet transfer earn the rank schedule; all others pass through at 1.0×.
func RewardMultiplierTenths(rank int, fromWallet bool) int64 {
	if !fromWallet {
		return 10
	}
	if rank < 1 {
		return 10
	}
	if rank > len(rewardMultiplierTenths) {
		return rewardMultiplierTenths[len(rewardMultiplierTenths)-1]
	}
	return rewardMultiplierTenths[rank-1]
}

// RewardBonus computes floor(balance × multiplier) for a positive balance.
// Entries with balance <= 0 earn nothing.
func RewardBonus(balance, multiplierTenths int64) int64 {
	if balance <= 0 {
		return 0
	}
	return balance * multiplierTenths / 10
}

// SessionReportLine is one ranked entry of an end-of-round settlement
type SessionReportLine struct {
	Rank            int
	UserID          int64
	DisplayName     string
	OriginalBalance int64
	FromWallet      bool
	Multiplier      float64
	Bonus           int64
}

// SessionReport is the ordered settlement produced when a round ends, handed
// to the dispatch layer for rendering
type SessionReport struct {
	ID         uuid.UUID
	RoundID    int64
	Lines      []SessionReportLine
	TotalBonus int64
	CreatedAt  time.Time
}

// BetResolution is the outcome of resolving a bet
type BetResolution struct {
	Bet           *Bet
	WinningOption *BetOption
	Winners       []*Wager
	Losers        []*Wager
	TotalStaked   int64
	PayoutDetails map[int64]int64 // user ID -> total payout
}
