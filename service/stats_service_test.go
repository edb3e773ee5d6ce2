package service

import (
	"context"
	"testing"

	"wagerbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatsService_GetScoreboard(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	m.roundRepo.On("GetActive", mock.Anything).Return(createTestRound(7), nil)
	m.balanceRepo.On("ListEntriesByRound", mock.Anything, int64(7)).Return([]*models.BankrollEntry{
		{UserID: 5, RoundID: 7, Balance: 1800, FromWallet: true},
		{UserID: 6, RoundID: 7, Balance: 900, FromWallet: false},
	}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(5)).Return(createTestUser(5, "u-5"), nil)
	m.userRepo.On("GetByID", mock.Anything, int64(6)).Return(createTestUser(6, "u-6"), nil)

	svc := NewStatsService(m.factory, testConfig())
	scoreboard, err := svc.GetScoreboard(ctx)

	require.NoError(t, err)
	require.Len(t, scoreboard, 2)
	assert.Equal(t, 1, scoreboard[0].Rank)
	assert.Equal(t, int64(1800), scoreboard[0].Balance)
	assert.True(t, scoreboard[0].FromWallet)
	assert.Equal(t, 2, scoreboard[1].Rank)
}

func TestStatsService_GetScoreboard_NoActiveRound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	m.roundRepo.On("GetActive", mock.Anything).Return(nil, nil)

	svc := NewStatsService(m.factory, testConfig())
	_, err := svc.GetScoreboard(ctx)

	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestStatsService_GetUserStats(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	user := createTestUser(5, "u-5")
	m.userRepo.On("GetByID", mock.Anything, int64(5)).Return(user, nil)
	m.wagerRepo.On("GetStatsByUser", mock.Anything, int64(5), (*int64)(nil)).
		Return(&models.WagerStats{WagersPlaced: 10, TotalStaked: 1000, TotalWon: 800, TotalLost: 600}, nil)
	m.roundRepo.On("GetActive", mock.Anything).Return(createTestRound(7), nil)
	m.wagerRepo.On("GetStatsByUser", mock.Anything, int64(5), mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == 7
	})).Return(&models.WagerStats{WagersPlaced: 2, TotalStaked: 300, TotalWon: 400}, nil)

	svc := NewStatsService(m.factory, testConfig())
	stats, err := svc.GetUserStats(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, user, stats.User)
	assert.Equal(t, 10, stats.Lifetime.WagersPlaced)
	require.NotNil(t, stats.Round)
	assert.Equal(t, 2, stats.Round.WagersPlaced)
}

func TestStatsService_GetUserStats_NoRoundSlice(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	m.userRepo.On("GetByID", mock.Anything, int64(5)).Return(createTestUser(5, "u-5"), nil)
	m.wagerRepo.On("GetStatsByUser", mock.Anything, int64(5), (*int64)(nil)).
		Return(&models.WagerStats{}, nil)
	m.roundRepo.On("GetActive", mock.Anything).Return(nil, nil)

	svc := NewStatsService(m.factory, testConfig())
	stats, err := svc.GetUserStats(ctx, 5)

	require.NoError(t, err)
	assert.Nil(t, stats.Round)
}

func TestStatsService_GetUserStats_UnknownUser(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	m.userRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	svc := NewStatsService(m.factory, testConfig())
	_, err := svc.GetUserStats(ctx, 404)

	assert.ErrorIs(t, err, ErrNotFound)
}
