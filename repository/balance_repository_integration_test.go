package repository_test

import (
	"context"
	"sync"
	"testing"

	"wagerbot/repository"
	"wagerbot/repository/testutil"
	"wagerbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceRepository_WalletLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(testDB.DB)
	balanceRepo := repository.NewBalanceRepository(testDB.DB)

	user, err := userRepo.Create(ctx, "u-1", "one")
	require.NoError(t, err)

	t.Run("wallet seeds lazily at opening balance", func(t *testing.T) {
		wallet, err := balanceRepo.GetOrCreateWallet(ctx, user.ID, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), wallet.Balance)

		// Second access returns the same row, not a reseed
		again, err := balanceRepo.GetOrCreateWallet(ctx, user.ID, 5555)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), again.Balance)
	})

	t.Run("reserve decrements when funds suffice", func(t *testing.T) {
		newBalance, err := balanceRepo.ReserveWallet(ctx, user.ID, 300, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(700), newBalance)
	})

	t.Run("reserve fails without any change when funds are short", func(t *testing.T) {
		_, err := balanceRepo.ReserveWallet(ctx, user.ID, 10000, 1000)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		wallet, err := balanceRepo.GetOrCreateWallet(ctx, user.ID, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(700), wallet.Balance)
	})

	t.Run("credit increments", func(t *testing.T) {
		newBalance, err := balanceRepo.CreditWallet(ctx, user.ID, 50, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(750), newBalance)
	})

	t.Run("reserve seeds an untouched wallet first", func(t *testing.T) {
		fresh, err := userRepo.Create(ctx, "u-2", "two")
		require.NoError(t, err)

		newBalance, err := balanceRepo.ReserveWallet(ctx, fresh.ID, 400, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(600), newBalance)
	})
}

// Concurrent reservations against one wallet must never over-spend: with 700
// credits and two 500-credit reservations racing, exactly one wins.
func TestBalanceRepository_ConcurrentReserve_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(testDB.DB)
	balanceRepo := repository.NewBalanceRepository(testDB.DB)

	user, err := userRepo.Create(ctx, "u-race", "racer")
	require.NoError(t, err)

	_, err = balanceRepo.GetOrCreateWallet(ctx, user.ID, 700)
	require.NoError(t, err)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = balanceRepo.ReserveWallet(ctx, user.ID, 500, 700)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, service.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, succeeded)

	wallet, err := balanceRepo.GetOrCreateWallet(ctx, user.ID, 700)
	require.NoError(t, err)
	assert.Equal(t, int64(200), wallet.Balance)
}

func TestBalanceRepository_BankrollEntries_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(testDB.DB)
	roundRepo := repository.NewRoundRepository(testDB.DB)
	balanceRepo := repository.NewBalanceRepository(testDB.DB)

	round, err := roundRepo.Create(ctx)
	require.NoError(t, err)

	alice, err := userRepo.Create(ctx, "u-a", "alice")
	require.NoError(t, err)
	bob, err := userRepo.Create(ctx, "u-b", "bob")
	require.NoError(t, err)

	t.Run("entry seeds lazily per round", func(t *testing.T) {
		entry, err := balanceRepo.GetOrCreateEntry(ctx, alice.ID, round.ID, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), entry.Balance)
		assert.False(t, entry.FromWallet)
	})

	t.Run("credit with markFromWallet flags the entry", func(t *testing.T) {
		_, err := balanceRepo.CreditBankroll(ctx, alice.ID, round.ID, 500, 1000, true)
		require.NoError(t, err)

		entry, err := balanceRepo.GetOrCreateEntry(ctx, alice.ID, round.ID, 1000)
		require.NoError(t, err)
		assert.True(t, entry.FromWallet)

		// A later plain credit does not clear the flag
		_, err = balanceRepo.CreditBankroll(ctx, alice.ID, round.ID, 10, 1000, false)
		require.NoError(t, err)
		entry, err = balanceRepo.GetOrCreateEntry(ctx, alice.ID, round.ID, 1000)
		require.NoError(t, err)
		assert.True(t, entry.FromWallet)
	})

	t.Run("list orders by balance descending", func(t *testing.T) {
		_, err := balanceRepo.GetOrCreateEntry(ctx, bob.ID, round.ID, 1000)
		require.NoError(t, err)

		entries, err := balanceRepo.ListEntriesByRound(ctx, round.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, alice.ID, entries[0].UserID)
		assert.Equal(t, int64(1510), entries[0].Balance)
		assert.Equal(t, bob.ID, entries[1].UserID)
	})

	t.Run("delete reclaims the round's entries", func(t *testing.T) {
		deleted, err := balanceRepo.DeleteEntriesByRound(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		entries, err := balanceRepo.ListEntriesByRound(ctx, round.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
