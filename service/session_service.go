package service

import (
	"context"
	"fmt"
	"time"

	"wagerbot/config"
	"wagerbot/events"
	"wagerbot/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// sessionService implements the SessionService interface
type sessionService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewSessionService creates a new session service
func NewSessionService(uowFactory UnitOfWorkFactory, cfg *config.Config) SessionService {
	return &sessionService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// StartSession creates a new active round. The database enforces that at most
// one round is active, so a concurrent start surfaces as ErrAlreadyActive.
func (s *sessionService) StartSession(ctx context.Context) (*models.Round, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().Create(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("roundID", round.ID).Info("Started round")
	return round, nil
}

// EndSession settles and closes the active round as one atomic unit:
// unresolved standard bets are cancelled and refunded, bankroll standings are
// snapshotted and ranked, wallet rewards are credited, and the round's
// bankroll entries are reclaimed.
func (s *sessionService) EndSession(ctx context.Context) (*models.SessionReport, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Exclusive round lock fences out every concurrent bankroll mutation:
	// wager placement, transfers and bet resolution all take the shared lock
	round, err := uow.RoundRepository().GetActiveForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active round: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("%w: no round to end", ErrNoActiveSession)
	}

	// Unresolved bets on the round are cancelled and their pending stakes
	// refunded, so the snapshot below reflects returned stakes
	unresolved, err := uow.BetRepository().ListUnresolvedByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved bets: %w", err)
	}
	for _, bet := range unresolved {
		locked, err := uow.BetRepository().GetByIDForUpdate(ctx, bet.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock bet %d: %w", bet.ID, err)
		}
		if locked == nil || !locked.CanCancel() {
			continue
		}
		if _, _, err := cancelAndRefundBet(ctx, uow, locked, s.config.OpeningBalance); err != nil {
			return nil, err
		}
	}

	// Snapshot standings: ordered by balance descending, ties by user ID
	entries, err := uow.BalanceRepository().ListEntriesByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot bankroll entries: %w", err)
	}

	report := &models.SessionReport{
		ID:        uuid.New(),
		RoundID:   round.ID,
		CreatedAt: time.Now(),
	}

	for i, entry := range entries {
		rank := i + 1
		tenths := models.RewardMultiplierTenths(rank, entry.FromWallet)
		bonus := models.RewardBonus(entry.Balance, tenths)

		line := models.SessionReportLine{
			Rank:            rank,
			UserID:          entry.UserID,
			OriginalBalance: entry.Balance,
			FromWallet:      entry.FromWallet,
			Multiplier:      float64(tenths) / 10,
			Bonus:           bonus,
		}

		user, err := uow.UserRepository().GetByID(ctx, entry.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user %d: %w", entry.UserID, err)
		}
		if user != nil {
			line.DisplayName = user.DisplayName
		}

		if bonus > 0 {
			_, err := creditToPool(ctx, uow, entry.UserID, models.PoolWallet, nil, bonus, s.config.OpeningBalance,
				models.TransactionTypeSessionReward, &round.ID, relatedTypePtr(models.RelatedTypeRound),
				map[string]any{
					"rank":             rank,
					"bankroll_balance": entry.Balance,
					"multiplier":       line.Multiplier,
				})
			if err != nil {
				return nil, fmt.Errorf("failed to credit reward for user %d: %w", entry.UserID, err)
			}
		}

		report.Lines = append(report.Lines, line)
		report.TotalBonus += bonus
	}

	// Round-scoped credits are reclaimed, never carried over
	if _, err := uow.BalanceRepository().DeleteEntriesByRound(ctx, round.ID); err != nil {
		return nil, fmt.Errorf("failed to reclaim bankroll entries: %w", err)
	}

	if err := uow.RoundRepository().Close(ctx, round.ID); err != nil {
		return nil, fmt.Errorf("failed to close round: %w", err)
	}

	uow.EventBus().Publish(events.SessionEndedEvent{
		EventID:    uuid.New(),
		RoundID:    round.ID,
		Entries:    len(report.Lines),
		TotalBonus: report.TotalBonus,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":    round.ID,
		"entries":    len(report.Lines),
		"totalBonus": report.TotalBonus,
	}).Info("Ended round")

	return report, nil
}

// GetActiveRound returns the active round, or nil if none
func (s *sessionService) GetActiveRound(ctx context.Context) (*models.Round, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active round: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return round, nil
}
