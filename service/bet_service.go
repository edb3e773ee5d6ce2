package service

import (
	"context"
	"fmt"
	"strings"

	"wagerbot/config"
	"wagerbot/events"
	"wagerbot/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// betService implements the BetService interface
type betService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory, cfg *config.Config) BetService {
	return &betService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// CreateBet creates a bet with its options. Standard bets bind to the active
// round and fail without one; wallet-only bets never carry a round.
func (s *betService) CreateBet(ctx context.Context, question string, options []string, kind models.BetKind) (*models.BetDetail, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", ErrInvalidInput)
	}
	if kind != models.BetKindStandard && kind != models.BetKindWalletOnly {
		return nil, fmt.Errorf("%w: unknown bet kind %q", ErrInvalidInput, kind)
	}
	if len(options) < models.MinBetOptions || len(options) > models.MaxBetOptions {
		return nil, fmt.Errorf("%w: a bet needs between %d and %d options, got %d",
			ErrInvalidInput, models.MinBetOptions, models.MaxBetOptions, len(options))
	}

	seen := make(map[string]bool, len(options))
	for i, label := range options {
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("%w: option %d is empty", ErrInvalidInput, i+1)
		}
		key := strings.ToLower(label)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate option %q", ErrInvalidInput, label)
		}
		seen[key] = true
		options[i] = label
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet := &models.Bet{
		Question: question,
		Kind:     kind,
		Status:   models.BetStatusOpen,
	}

	if kind == models.BetKindStandard {
		// Shared lock so end-of-round settlement cannot close the round under
		// us while we attach the bet to it
		round, err := uow.RoundRepository().GetActiveForShare(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to look up active round: %w", err)
		}
		if round == nil {
			return nil, fmt.Errorf("%w: standard bets need an active round", ErrNoActiveSession)
		}
		bet.RoundID = &round.ID
	}

	betOptions := make([]*models.BetOption, len(options))
	for i, label := range options {
		betOptions[i] = &models.BetOption{
			Label:       label,
			OptionOrder: int16(i),
		}
	}

	if err := uow.BetRepository().CreateWithOptions(ctx, bet, betOptions); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":   bet.ID,
		"kind":    bet.Kind,
		"options": len(betOptions),
	}).Info("Created bet")

	return &models.BetDetail{Bet: bet, Options: betOptions}, nil
}

// PlaceWager validates and accepts a stake on an open bet, reserving the
// amount from the chosen pool in the same transaction
func (s *betService) PlaceWager(ctx context.Context, betID, userID, optionID, amount int64, pool models.Pool) (*models.Wager, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: wager amount must be positive, got %d", ErrInvalidInput, amount)
	}
	if pool != models.PoolWallet && pool != models.PoolBankroll {
		return nil, fmt.Errorf("%w: unknown pool %q", ErrInvalidInput, pool)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Shared lock on the bet row: many wagers may land concurrently, but none
	// may interleave with lock, cancel or resolve, which take the exclusive lock
	bet, err := uow.BetRepository().GetByIDForShare(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}
	if !bet.CanAcceptWagers() {
		return nil, fmt.Errorf("%w: bet %d is %s and no longer accepts wagers", ErrInvalidState, betID, bet.Status)
	}

	detail, err := uow.BetRepository().GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet options: %w", err)
	}
	option := detail.Option(optionID)
	if option == nil {
		return nil, fmt.Errorf("%w: option %d does not belong to bet %d", ErrNotFound, optionID, betID)
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	// Wallet-only bets always draw from the wallet, whatever was requested
	if bet.Kind == models.BetKindWalletOnly {
		pool = models.PoolWallet
	}

	var roundID *int64
	if pool == models.PoolBankroll {
		// Bankroll stakes are only valid while the bet's round is still the
		// active one. The shared round lock keeps settlement out until commit.
		round, err := uow.RoundRepository().GetActiveForShare(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to look up active round: %w", err)
		}
		if round == nil || bet.RoundID == nil || *bet.RoundID != round.ID {
			return nil, fmt.Errorf("%w: bankroll stakes need the bet's round to be active", ErrNoActiveSession)
		}
		roundID = bet.RoundID
	} else if bet.Kind == models.BetKindStandard {
		// Wallet stake on a standard bet: carry the round for bookkeeping but
		// reserve from the wallet
		roundID = bet.RoundID
	}

	history, err := reserveFromPool(ctx, uow, userID, pool, roundID, amount, s.config.OpeningBalance,
		models.TransactionTypeWagerReserve, &betID, relatedTypePtr(models.RelatedTypeBet),
		map[string]any{"option_id": optionID})
	if err != nil {
		return nil, err
	}

	wager := &models.Wager{
		UserID:           userID,
		BetID:            betID,
		OptionID:         optionID,
		RoundID:          roundID,
		Pool:             pool,
		Amount:           amount,
		Result:           models.WagerResultPending,
		BalanceHistoryID: &history.ID,
	}

	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		EventID:  uuid.New(),
		WagerID:  wager.ID,
		UserID:   userID,
		BetID:    betID,
		OptionID: optionID,
		Pool:     pool,
		Amount:   amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"wagerID": wager.ID,
		"betID":   betID,
		"userID":  userID,
		"pool":    pool,
		"amount":  amount,
	}).Info("Placed wager")

	return wager, nil
}

// LockBet transitions an open bet to locked so no further wagers land
func (s *betService) LockBet(ctx context.Context, betID int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}
	if bet.Status != models.BetStatusOpen {
		return nil, fmt.Errorf("%w: bet %d is %s, only open bets can be locked", ErrInvalidState, betID, bet.Status)
	}

	bet.Status = models.BetStatusLocked
	if err := uow.BetRepository().Update(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to lock bet: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("betID", betID).Info("Locked bet")
	return bet, nil
}

// CancelBet cancels an open or locked bet, refunding every pending wager to
// the pool it was reserved from
func (s *betService) CancelBet(ctx context.Context, betID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}
	if bet.Status == models.BetStatusResolved {
		return fmt.Errorf("%w: bet %d is already resolved", ErrAlreadyResolved, betID)
	}
	if !bet.CanCancel() {
		return fmt.Errorf("%w: bet %d is %s and cannot be cancelled", ErrInvalidState, betID, bet.Status)
	}

	refunded, total, err := cancelAndRefundBet(ctx, uow, bet, s.config.OpeningBalance)
	if err != nil {
		return err
	}

	uow.EventBus().Publish(events.BetCancelledEvent{
		EventID:        uuid.New(),
		BetID:          betID,
		RefundedWagers: refunded,
		RefundedTotal:  total,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":          betID,
		"refundedWagers": refunded,
		"refundedTotal":  total,
	}).Info("Cancelled bet")

	return nil
}

// cancelAndRefundBet refunds every pending wager on the bet to its original
// pool, removes the bet's wagers and options, and marks the bet cancelled.
// Callers must already hold the exclusive lock on the bet row.
func cancelAndRefundBet(ctx context.Context, uow UnitOfWork, bet *models.Bet, openingBalance int64) (refunded int, total int64, err error) {
	wagers, err := uow.WagerRepository().GetByBet(ctx, bet.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list wagers for bet %d: %w", bet.ID, err)
	}

	for _, w := range wagers {
		if !w.IsPending() {
			continue
		}
		_, err := creditToPool(ctx, uow, w.UserID, w.Pool, w.RoundID, w.Amount, openingBalance,
			models.TransactionTypeWagerRefund, &w.ID, relatedTypePtr(models.RelatedTypeWager),
			map[string]any{"bet_id": bet.ID})
		if err != nil {
			return 0, 0, fmt.Errorf("failed to refund wager %d: %w", w.ID, err)
		}
		refunded++
		total += w.Amount
	}

	if _, err := uow.WagerRepository().DeleteByBet(ctx, bet.ID); err != nil {
		return 0, 0, fmt.Errorf("failed to delete wagers for bet %d: %w", bet.ID, err)
	}
	if err := uow.BetRepository().DeleteOptions(ctx, bet.ID); err != nil {
		return 0, 0, fmt.Errorf("failed to delete options for bet %d: %w", bet.ID, err)
	}

	bet.Status = models.BetStatusCancelled
	if err := uow.BetRepository().Update(ctx, bet); err != nil {
		return 0, 0, fmt.Errorf("failed to mark bet %d cancelled: %w", bet.ID, err)
	}

	return refunded, total, nil
}

// GetBetDetail retrieves a bet with its options
func (s *betService) GetBetDetail(ctx context.Context, betID int64) (*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.BetRepository().GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

// ListPendingWagers returns a user's pending wagers with rendering labels
func (s *betService) ListPendingWagers(ctx context.Context, userID int64) ([]*models.PendingWagerDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pending, err := uow.WagerRepository().GetPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending wagers: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return pending, nil
}
