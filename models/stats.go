package models

// WagerStats represents aggregated wager statistics for a user
type WagerStats struct {
	WagersPlaced int
	TotalStaked  int64
	TotalWon     int64
	TotalLost    int64
}

// WinPercentage returns winnings as a percentage of the total staked
func (s *WagerStats) WinPercentage() float64 {
	if s.TotalStaked == 0 {
		return 0
	}
	return float64(s.TotalWon) / float64(s.TotalStaked) * 100
}

// ScoreboardEntry represents a user's position in the round scoreboard,
// ordered by bankroll balance
type ScoreboardEntry struct {
	Rank        int
	UserID      int64
	DisplayName string
	Balance     int64
	FromWallet  bool
}
