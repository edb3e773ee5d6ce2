package service

import (
	"context"
	"fmt"

	"wagerbot/config"
	"wagerbot/models"
)

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory, cfg *config.Config) StatsService {
	return &statsService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GetScoreboard returns the active round's bankroll standings, ordered by
// balance descending with ties broken by user ID
func (s *statsService) GetScoreboard(ctx context.Context) ([]*models.ScoreboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active round: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("%w: no round in progress", ErrNoActiveSession)
	}

	entries, err := uow.BalanceRepository().ListEntriesByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bankroll entries: %w", err)
	}

	scoreboard := make([]*models.ScoreboardEntry, 0, len(entries))
	for i, entry := range entries {
		line := &models.ScoreboardEntry{
			Rank:       i + 1,
			UserID:     entry.UserID,
			Balance:    entry.Balance,
			FromWallet: entry.FromWallet,
		}
		user, err := uow.UserRepository().GetByID(ctx, entry.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user %d: %w", entry.UserID, err)
		}
		if user != nil {
			line.DisplayName = user.DisplayName
		}
		scoreboard = append(scoreboard, line)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return scoreboard, nil
}

// GetUserStats returns a user's lifetime wager statistics plus the slice
// scoped to the active round, when one exists
func (s *statsService) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	lifetime, err := uow.WagerRepository().GetStatsByUser(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get lifetime stats: %w", err)
	}

	stats := &UserStats{
		User:     user,
		Lifetime: lifetime,
	}

	round, err := uow.RoundRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active round: %w", err)
	}
	if round != nil {
		roundStats, err := uow.WagerRepository().GetStatsByUser(ctx, userID, &round.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get round stats: %w", err)
		}
		stats.Round = roundStats
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stats, nil
}
