package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardMultiplierTenths(t *testing.T) {
	tests := []struct {
		name       string
		rank       int
		fromWallet bool
		want       int64
	}{
		{"rank 1 wallet-funded", 1, true, 25},
		{"rank 2 wallet-funded", 2, true, 22},
		{"rank 3 wallet-funded", 3, true, 20},
		{"rank 4 wallet-funded", 4, true, 18},
		{"rank 5 wallet-funded", 5, true, 16},
		{"rank 6 clamps to tail", 6, true, 16},
		{"rank 50 clamps to tail", 50, true, 16},
		{"rank 1 not wallet-funded", 1, false, 10},
		{"rank 6 not wallet-funded", 6, false, 10},
		{"invalid rank", 0, true, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewardMultiplierTenths(tt.rank, tt.fromWallet))
		})
	}
}

func TestRewardBonus(t *testing.T) {
	// 1234 × 2.5 floors to 3085
	assert.Equal(t, int64(3085), RewardBonus(1234, 25))

	// 999 × 2.2 floors to 2197 (2197.8)
	assert.Equal(t, int64(2197), RewardBonus(999, 22))

	// 1.0× passes the balance through
	assert.Equal(t, int64(777), RewardBonus(777, 10))

	// Non-positive balances earn nothing
	assert.Zero(t, RewardBonus(0, 25))
	assert.Zero(t, RewardBonus(-100, 25))
}

func TestRewardBonus_RankedTransfers(t *testing.T) {
	// Three wallet-funded entries at 500/300/100 settle to 1250/660/200
	balances := []int64{500, 300, 100}
	expected := []int64{1250, 660, 200}

	for i, balance := range balances {
		tenths := RewardMultiplierTenths(i+1, true)
		assert.Equal(t, expected[i], RewardBonus(balance, tenths), "rank %d", i+1)
	}
}

func TestWagerWinPayout(t *testing.T) {
	w := &Wager{Amount: 350}
	assert.Equal(t, int64(700), w.WinPayout())
}
