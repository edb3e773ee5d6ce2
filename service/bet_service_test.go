package service

import (
	"context"
	"testing"

	"wagerbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBetService_CreateBet_Standard(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	round := createTestRound(7)
	m.roundRepo.On("GetActiveForShare", mock.Anything).Return(round, nil)
	m.betRepo.On("CreateWithOptions", mock.Anything, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Kind == models.BetKindStandard &&
			b.Status == models.BetStatusOpen &&
			b.RoundID != nil && *b.RoundID == 7
	}), mock.AnythingOfType("[]*models.BetOption")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bet).ID = 42
	})

	svc := NewBetService(m.factory, testConfig())
	detail, err := svc.CreateBet(ctx, "who wins game five", []string{"red", "blue", "draw"}, models.BetKindStandard)

	require.NoError(t, err)
	assert.Equal(t, int64(42), detail.Bet.ID)
	assert.Len(t, detail.Options, 3)
	assert.Equal(t, int16(0), detail.Options[0].OptionOrder)
	assert.Equal(t, int16(2), detail.Options[2].OptionOrder)
	m.betRepo.AssertExpectations(t)
}

func TestBetService_CreateBet_StandardNeedsActiveRound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()
	m.roundRepo.On("GetActiveForShare", mock.Anything).Return(nil, nil)

	svc := NewBetService(m.factory, testConfig())
	_, err := svc.CreateBet(ctx, "who wins", []string{"red", "blue"}, models.BetKindStandard)

	assert.ErrorIs(t, err, ErrNoActiveSession)
	m.betRepo.AssertNotCalled(t, "CreateWithOptions", mock.Anything, mock.Anything, mock.Anything)
}

func TestBetService_CreateBet_WalletOnlyWithoutRound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	m.betRepo.On("CreateWithOptions", mock.Anything, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Kind == models.BetKindWalletOnly && b.RoundID == nil
	}), mock.Anything).Return(nil)

	svc := NewBetService(m.factory, testConfig())
	detail, err := svc.CreateBet(ctx, "side bet", []string{"yes", "no"}, models.BetKindWalletOnly)

	require.NoError(t, err)
	assert.Nil(t, detail.Bet.RoundID)
	m.roundRepo.AssertNotCalled(t, "GetActiveForShare", mock.Anything)
}

func TestBetService_CreateBet_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewBetService(new(MockUnitOfWorkFactory), testConfig())

	tests := []struct {
		name     string
		question string
		options  []string
		kind     models.BetKind
	}{
		{"empty question", "  ", []string{"a", "b"}, models.BetKindStandard},
		{"one option", "q", []string{"only"}, models.BetKindStandard},
		{"nine options", "q", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}, models.BetKindStandard},
		{"blank option", "q", []string{"a", " "}, models.BetKindStandard},
		{"duplicate option", "q", []string{"Yes", "yes"}, models.BetKindStandard},
		{"unknown kind", "q", []string{"a", "b"}, models.BetKind("exotic")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBet(ctx, tt.question, tt.options, tt.kind)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestBetService_PlaceWager_BankrollStake(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()
	m.expectHistory(99)

	round := createTestRound(7)
	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusOpen)
	option := createTestOption(11, 1, "red", 0)

	m.betRepo.On("GetByIDForShare", mock.Anything, int64(1)).Return(bet, nil)
	m.betRepo.On("GetDetailByID", mock.Anything, int64(1)).Return(createTestDetail(bet, option), nil)
	m.userRepo.On("GetByID", mock.Anything, int64(5)).Return(createTestUser(5, "u-5"), nil)
	m.roundRepo.On("GetActiveForShare", mock.Anything).Return(round, nil)
	m.balanceRepo.On("ReserveBankroll", mock.Anything, int64(5), int64(7), int64(200), testOpeningBalance).
		Return(int64(800), nil)
	m.wagerRepo.On("Create", mock.Anything, mock.MatchedBy(func(w *models.Wager) bool {
		return w.UserID == 5 &&
			w.BetID == 1 &&
			w.OptionID == 11 &&
			w.Pool == models.PoolBankroll &&
			w.Amount == 200 &&
			w.Result == models.WagerResultPending &&
			w.RoundID != nil && *w.RoundID == 7 &&
			w.BalanceHistoryID != nil && *w.BalanceHistoryID == 99
	})).Return(nil)

	svc := NewBetService(m.factory, testConfig())
	wager, err := svc.PlaceWager(ctx, 1, 5, 11, 200, models.PoolBankroll)

	require.NoError(t, err)
	assert.Equal(t, models.PoolBankroll, wager.Pool)
	m.balanceRepo.AssertExpectations(t)
	m.wagerRepo.AssertExpectations(t)
}

func TestBetService_PlaceWager_WalletOnlyForcesWalletPool(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()
	m.expectHistory(100)

	bet := createTestBet(2, nil, models.BetKindWalletOnly, models.BetStatusOpen)
	option := createTestOption(21, 2, "yes", 0)

	m.betRepo.On("GetByIDForShare", mock.Anything, int64(2)).Return(bet, nil)
	m.betRepo.On("GetDetailByID", mock.Anything, int64(2)).Return(createTestDetail(bet, option), nil)
	m.userRepo.On("GetByID", mock.Anything, int64(5)).Return(createTestUser(5, "u-5"), nil)
	m.balanceRepo.On("ReserveWallet", mock.Anything, int64(5), int64(50), testOpeningBalance).
		Return(int64(950), nil)
	m.wagerRepo.On("Create", mock.Anything, mock.MatchedBy(func(w *models.Wager) bool {
		return w.Pool == models.PoolWallet && w.RoundID == nil
	})).Return(nil)

	svc := NewBetService(m.factory, testConfig())

	// Bankroll was requested; wallet-only bets ignore that
	wager, err := svc.PlaceWager(ctx, 2, 5, 21, 50, models.PoolBankroll)

	require.NoError(t, err)
	assert.Equal(t, models.PoolWallet, wager.Pool)
	m.roundRepo.AssertNotCalled(t, "GetActiveForShare", mock.Anything)
	m.balanceRepo.AssertNotCalled(t, "ReserveBankroll", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBetService_PlaceWager_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusOpen)
	option := createTestOption(11, 1, "red", 0)

	m.betRepo.On("GetByIDForShare", mock.Anything, int64(1)).Return(bet, nil)
	m.betRepo.On("GetDetailByID", mock.Anything, int64(1)).Return(createTestDetail(bet, option), nil)
	m.userRepo.On("GetByID", mock.Anything, int64(5)).Return(createTestUser(5, "u-5"), nil)
	m.roundRepo.On("GetActiveForShare", mock.Anything).Return(createTestRound(7), nil)
	m.balanceRepo.On("ReserveBankroll", mock.Anything, int64(5), int64(7), int64(5000), testOpeningBalance).
		Return(int64(0), ErrInsufficientFunds)

	svc := NewBetService(m.factory, testConfig())
	_, err := svc.PlaceWager(ctx, 1, 5, 11, 5000, models.PoolBankroll)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	m.wagerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.historyRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestBetService_PlaceWager_RejectsClosedBet(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	for _, status := range []models.BetStatus{models.BetStatusLocked, models.BetStatusResolved, models.BetStatusCancelled} {
		bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, status)
		m.betRepo.ExpectedCalls = nil
		m.betRepo.On("GetByIDForShare", mock.Anything, int64(1)).Return(bet, nil)

		svc := NewBetService(m.factory, testConfig())
		_, err := svc.PlaceWager(ctx, 1, 5, 11, 100, models.PoolBankroll)
		assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
	}
}

func TestBetService_PlaceWager_RejectsForeignOption(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusOpen)
	option := createTestOption(11, 1, "red", 0)

	m.betRepo.On("GetByIDForShare", mock.Anything, int64(1)).Return(bet, nil)
	m.betRepo.On("GetDetailByID", mock.Anything, int64(1)).Return(createTestDetail(bet, option), nil)

	svc := NewBetService(m.factory, testConfig())
	_, err := svc.PlaceWager(ctx, 1, 5, 999, 100, models.PoolBankroll)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBetService_PlaceWager_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc := NewBetService(new(MockUnitOfWorkFactory), testConfig())

	for _, amount := range []int64{0, -5} {
		_, err := svc.PlaceWager(ctx, 1, 5, 11, amount, models.PoolWallet)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestBetService_PlaceWager_BankrollWithoutActiveRound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusOpen)
	option := createTestOption(11, 1, "red", 0)

	m.betRepo.On("GetByIDForShare", mock.Anything, int64(1)).Return(bet, nil)
	m.betRepo.On("GetDetailByID", mock.Anything, int64(1)).Return(createTestDetail(bet, option), nil)
	m.userRepo.On("GetByID", mock.Anything, int64(5)).Return(createTestUser(5, "u-5"), nil)
	m.roundRepo.On("GetActiveForShare", mock.Anything).Return(nil, nil)

	svc := NewBetService(m.factory, testConfig())
	_, err := svc.PlaceWager(ctx, 1, 5, 11, 100, models.PoolBankroll)

	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestBetService_LockBet(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusOpen)
	m.betRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(bet, nil)
	m.betRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Status == models.BetStatusLocked
	})).Return(nil)

	svc := NewBetService(m.factory, testConfig())
	locked, err := svc.LockBet(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, models.BetStatusLocked, locked.Status)
}

func TestBetService_LockBet_OnlyOpen(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusLocked)
	m.betRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(bet, nil)

	svc := NewBetService(m.factory, testConfig())
	_, err := svc.LockBet(ctx, 1)

	assert.ErrorIs(t, err, ErrInvalidState)
	m.betRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestBetService_CancelBet_RefundsPendingWagersToOriginalPools(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()
	m.expectHistory(101)

	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusLocked)
	wagers := []*models.Wager{
		createTestWager(30, 5, 1, 11, models.PoolBankroll, int64Ptr(7), 200),
		createTestWager(31, 6, 1, 12, models.PoolWallet, int64Ptr(7), 75),
	}

	m.betRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(bet, nil)
	m.wagerRepo.On("GetByBet", mock.Anything, int64(1)).Return(wagers, nil)
	m.balanceRepo.On("CreditBankroll", mock.Anything, int64(5), int64(7), int64(200), testOpeningBalance, false).
		Return(int64(1000), nil)
	m.balanceRepo.On("CreditWallet", mock.Anything, int64(6), int64(75), testOpeningBalance).
		Return(int64(1075), nil)
	m.wagerRepo.On("DeleteByBet", mock.Anything, int64(1)).Return(int64(2), nil)
	m.betRepo.On("DeleteOptions", mock.Anything, int64(1)).Return(nil)
	m.betRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Status == models.BetStatusCancelled
	})).Return(nil)

	svc := NewBetService(m.factory, testConfig())
	err := svc.CancelBet(ctx, 1)

	require.NoError(t, err)
	m.balanceRepo.AssertExpectations(t)
	m.wagerRepo.AssertExpectations(t)
	m.betRepo.AssertExpectations(t)
}

func TestBetService_CancelBet_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	bet := createTestBet(1, int64Ptr(7), models.BetKindStandard, models.BetStatusResolved)
	m.betRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(bet, nil)

	svc := NewBetService(m.factory, testConfig())
	err := svc.CancelBet(ctx, 1)

	assert.ErrorIs(t, err, ErrAlreadyResolved)
	m.wagerRepo.AssertNotCalled(t, "GetByBet", mock.Anything, mock.Anything)
}

func TestBetService_CancelBet_NotFound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTransaction()

	m.betRepo.On("GetByIDForUpdate", mock.Anything, int64(404)).Return(nil, nil)

	svc := NewBetService(m.factory, testConfig())
	err := svc.CancelBet(ctx, 404)

	assert.ErrorIs(t, err, ErrNotFound)
}
