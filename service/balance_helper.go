package service

import (
	"context"
	"fmt"

	"wagerbot/events"
	"wagerbot/models"

	"github.com/google/uuid"
)

// RecordBalanceChange records a balance history entry and emits the matching
// event. This is the single entry point for every balance change the ledger
// performs; the event reaches subscribers only after the transaction commits.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		EventID:         uuid.New(),
		UserID:          history.UserID,
		Pool:            history.Pool,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}

// reserveFromPool runs the atomic decrement-if-sufficient against a user's
// pool and records the audit entry. Returns the history row so callers can
// link the reservation to the entity that caused it.
func reserveFromPool(ctx context.Context, uow UnitOfWork, userID int64, pool models.Pool, roundID *int64, amount, openingBalance int64, txType models.TransactionType, relatedID *int64, relatedType *models.RelatedType, metadata map[string]any) (*models.BalanceHistory, error) {
	var newBalance int64
	var err error

	switch pool {
	case models.PoolWallet:
		newBalance, err = uow.BalanceRepository().ReserveWallet(ctx, userID, amount, openingBalance)
	case models.PoolBankroll:
		if roundID == nil {
			return nil, fmt.Errorf("%w: bankroll operation requires a round", ErrInvalidInput)
		}
		newBalance, err = uow.BalanceRepository().ReserveBankroll(ctx, userID, *roundID, amount, openingBalance)
	default:
		return nil, fmt.Errorf("%w: unknown pool %q", ErrInvalidInput, pool)
	}
	if err != nil {
		return nil, err
	}

	history := &models.BalanceHistory{
		UserID:              userID,
		Pool:                pool,
		RoundID:             roundID,
		BalanceBefore:       newBalance + amount,
		BalanceAfter:        newBalance,
		ChangeAmount:        -amount,
		TransactionType:     txType,
		TransactionMetadata: metadata,
		RelatedID:           relatedID,
		RelatedType:         relatedType,
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	return history, nil
}

// creditToPool atomically increments a user's pool and records the audit entry
func creditToPool(ctx context.Context, uow UnitOfWork, userID int64, pool models.Pool, roundID *int64, amount, openingBalance int64, txType models.TransactionType, relatedID *int64, relatedType *models.RelatedType, metadata map[string]any) (*models.BalanceHistory, error) {
	var newBalance int64
	var err error

	switch pool {
	case models.PoolWallet:
		newBalance, err = uow.BalanceRepository().CreditWallet(ctx, userID, amount, openingBalance)
	case models.PoolBankroll:
		if roundID == nil {
			return nil, fmt.Errorf("%w: bankroll operation requires a round", ErrInvalidInput)
		}
		newBalance, err = uow.BalanceRepository().CreditBankroll(ctx, userID, *roundID, amount, openingBalance, false)
	default:
		return nil, fmt.Errorf("%w: unknown pool %q", ErrInvalidInput, pool)
	}
	if err != nil {
		return nil, err
	}

	history := &models.BalanceHistory{
		UserID:              userID,
		Pool:                pool,
		RoundID:             roundID,
		BalanceBefore:       newBalance - amount,
		BalanceAfter:        newBalance,
		ChangeAmount:        amount,
		TransactionType:     txType,
		TransactionMetadata: metadata,
		RelatedID:           relatedID,
		RelatedType:         relatedType,
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	return history, nil
}

func relatedTypePtr(t models.RelatedType) *models.RelatedType {
	return &t
}
