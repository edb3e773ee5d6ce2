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

// settlementService implements the SettlementService interface
type settlementService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, cfg *config.Config) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// ResolveBet designates the winning option and settles every wager on the bet
// in one transaction: winners are credited stake × 2 to the pool the stake was
// reserved from, losers' stakes stay gone.
func (s *settlementService) ResolveBet(ctx context.Context, betID, winningOptionID int64) (*models.BetResolution, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Exclusive lock: resolution must not interleave with wager acceptance,
	// locking, cancellation or a concurrent resolve of the same bet
	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}
	if bet.Status == models.BetStatusResolved {
		return nil, fmt.Errorf("%w: bet %d", ErrAlreadyResolved, betID)
	}
	if !bet.CanResolve() {
		return nil, fmt.Errorf("%w: bet %d is %s and cannot be resolved", ErrInvalidState, betID, bet.Status)
	}

	if bet.Kind == models.BetKindStandard {
		// Bankroll payouts land in round-scoped entries, so a standard bet is
		// only resolvable while its round is still the active one
		round, err := uow.RoundRepository().GetActiveForShare(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to look up active round: %w", err)
		}
		if round == nil || bet.RoundID == nil || *bet.RoundID != round.ID {
			return nil, fmt.Errorf("%w: bet %d belongs to a round that is no longer active", ErrInvalidState, betID)
		}
	}

	detail, err := uow.BetRepository().GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet options: %w", err)
	}
	winningOption := detail.Option(winningOptionID)
	if winningOption == nil {
		return nil, fmt.Errorf("%w: option %d does not belong to bet %d", ErrNotFound, winningOptionID, betID)
	}

	wagers, err := uow.WagerRepository().GetByBet(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}

	resolution := &models.BetResolution{
		Bet:           bet,
		WinningOption: winningOption,
		PayoutDetails: make(map[int64]int64),
	}

	for _, w := range wagers {
		if !w.IsPending() {
			continue
		}
		resolution.TotalStaked += w.Amount

		if w.OptionID == winningOptionID {
			payout := w.WinPayout()
			history, err := creditToPool(ctx, uow, w.UserID, w.Pool, w.RoundID, payout, s.config.OpeningBalance,
				models.TransactionTypeWagerWin, &w.ID, relatedTypePtr(models.RelatedTypeWager),
				map[string]any{"bet_id": betID, "stake": w.Amount})
			if err != nil {
				return nil, fmt.Errorf("failed to pay out wager %d: %w", w.ID, err)
			}

			w.Result = models.WagerResultWin
			w.Payout = payout
			w.BalanceHistoryID = &history.ID
			resolution.Winners = append(resolution.Winners, w)
			resolution.PayoutDetails[w.UserID] += payout
		} else {
			// The stake was already reserved at placement; losing just
			// finalizes the wager
			w.Result = models.WagerResultLose
			w.Payout = 0
			resolution.Losers = append(resolution.Losers, w)
		}

		if err := uow.WagerRepository().UpdateResult(ctx, w); err != nil {
			return nil, fmt.Errorf("failed to update wager %d: %w", w.ID, err)
		}
	}

	if err := uow.BetRepository().MarkWinningOption(ctx, winningOptionID); err != nil {
		return nil, fmt.Errorf("failed to mark winning option: %w", err)
	}

	now := time.Now()
	bet.Status = models.BetStatusResolved
	bet.ResolvedAt = &now
	if err := uow.BetRepository().Update(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to mark bet resolved: %w", err)
	}

	uow.EventBus().Publish(events.BetResolvedEvent{
		EventID:         uuid.New(),
		BetID:           betID,
		WinningOptionID: winningOptionID,
		WinnerCount:     len(resolution.Winners),
		LoserCount:      len(resolution.Losers),
		TotalStaked:     resolution.TotalStaked,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":       betID,
		"winningOpt":  winningOptionID,
		"winners":     len(resolution.Winners),
		"losers":      len(resolution.Losers),
		"totalStaked": resolution.TotalStaked,
	}).Info("Resolved bet")

	return resolution, nil
}
