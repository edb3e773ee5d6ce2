package service

import (
	"context"
	"fmt"

	"wagerbot/config"
	"wagerbot/models"

	log "github.com/sirupsen/logrus"
)

// balanceService implements the BalanceService interface
type balanceService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewBalanceService creates a new balance service
func NewBalanceService(uowFactory UnitOfWorkFactory, cfg *config.Config) BalanceService {
	return &balanceService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GetBalance returns the user's balance in the given pool, seeding the backing
// row at the opening balance on first access. Bankroll balances resolve
// against the active round; asking for one without an active round fails.
func (s *balanceService) GetBalance(ctx context.Context, userID int64, pool models.Pool) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var balance int64
	switch pool {
	case models.PoolWallet:
		wallet, err := uow.BalanceRepository().GetOrCreateWallet(ctx, userID, s.config.OpeningBalance)
		if err != nil {
			return 0, fmt.Errorf("failed to get wallet: %w", err)
		}
		balance = wallet.Balance

	case models.PoolBankroll:
		round, err := uow.RoundRepository().GetActiveForShare(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to look up active round: %w", err)
		}
		if round == nil {
			return 0, fmt.Errorf("%w: bankroll balances only exist during a round", ErrNoActiveSession)
		}
		entry, err := uow.BalanceRepository().GetOrCreateEntry(ctx, userID, round.ID, s.config.OpeningBalance)
		if err != nil {
			return 0, fmt.Errorf("failed to get bankroll entry: %w", err)
		}
		balance = entry.Balance

	default:
		return 0, fmt.Errorf("%w: unknown pool %q", ErrInvalidInput, pool)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

// TransferToBankroll moves amount from the user's wallet into their bankroll
// entry for the active round. The debit and credit share a transaction, so
// both apply or neither does; the entry is marked wallet-funded, which
// qualifies it for the rank multiplier at round end.
func (s *balanceService) TransferToBankroll(ctx context.Context, userID, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("%w: transfer amount must be positive, got %d", ErrInvalidInput, amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetActiveForShare(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to look up active round: %w", err)
	}
	if round == nil {
		return 0, 0, fmt.Errorf("%w: transfers need an active round", ErrNoActiveSession)
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	walletHistory, err := reserveFromPool(ctx, uow, userID, models.PoolWallet, &round.ID, amount, s.config.OpeningBalance,
		models.TransactionTypeTransferOut, &round.ID, relatedTypePtr(models.RelatedTypeRound), nil)
	if err != nil {
		return 0, 0, err
	}

	bankrollBalance, err := uow.BalanceRepository().CreditBankroll(ctx, userID, round.ID, amount, s.config.OpeningBalance, true)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to credit bankroll: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		Pool:            models.PoolBankroll,
		RoundID:         &round.ID,
		BalanceBefore:   bankrollBalance - amount,
		BalanceAfter:    bankrollBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
		RelatedID:       &round.ID,
		RelatedType:     relatedTypePtr(models.RelatedTypeRound),
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return 0, 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"roundID": round.ID,
		"amount":  amount,
	}).Info("Transferred wallet credits to bankroll")

	return walletHistory.BalanceAfter, bankrollBalance, nil
}

// GetHistory returns the user's recent balance history, newest first
func (s *balanceService) GetHistory(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return history, nil
}
