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

func TestRoundRepository_SingleActiveInvariant_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	roundRepo := repository.NewRoundRepository(testDB.DB)

	round, err := roundRepo.Create(ctx)
	require.NoError(t, err)
	assert.True(t, round.IsActive())

	t.Run("second active round is rejected", func(t *testing.T) {
		_, err := roundRepo.Create(ctx)
		assert.ErrorIs(t, err, service.ErrAlreadyActive)
	})

	t.Run("concurrent starts admit exactly one", func(t *testing.T) {
		require.NoError(t, roundRepo.Close(ctx, round.ID))

		const attempts = 4
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		wg.Add(attempts)
		for i := 0; i < attempts; i++ {
			go func(i int) {
				defer wg.Done()
				_, errs[i] = roundRepo.Create(ctx)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, service.ErrAlreadyActive)
			}
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("closing frees the slot", func(t *testing.T) {
		active, err := roundRepo.GetActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)

		require.NoError(t, roundRepo.Close(ctx, active.ID))

		none, err := roundRepo.GetActive(ctx)
		require.NoError(t, err)
		assert.Nil(t, none)

		next, err := roundRepo.Create(ctx)
		require.NoError(t, err)
		assert.True(t, next.IsActive())
	})

	t.Run("closing a closed round fails", func(t *testing.T) {
		err := roundRepo.Close(ctx, round.ID)
		assert.ErrorIs(t, err, service.ErrInvalidState)
	})
}
