package testutil

import (
	"time"

	"wagerbot/models"
)

// DefaultOpeningBalance mirrors the engine's default opening balance
const DefaultOpeningBalance = int64(1000)

// CreateTestBet creates a standard bet bound to a round with default values
func CreateTestBet(roundID int64, question string) *models.Bet {
	return &models.Bet{
		RoundID:   &roundID,
		Question:  question,
		Kind:      models.BetKindStandard,
		Status:    models.BetStatusOpen,
		CreatedAt: time.Now(),
	}
}

// CreateTestWalletOnlyBet creates a wallet-only bet with default values
func CreateTestWalletOnlyBet(question string) *models.Bet {
	return &models.Bet{
		Question:  question,
		Kind:      models.BetKindWalletOnly,
		Status:    models.BetStatusOpen,
		CreatedAt: time.Now(),
	}
}

// CreateTestOptions builds bet options from labels in order
func CreateTestOptions(labels ...string) []*models.BetOption {
	options := make([]*models.BetOption, len(labels))
	for i, label := range labels {
		options[i] = &models.BetOption{
			Label:       label,
			OptionOrder: int16(i),
		}
	}
	return options
}

// CreateTestWager creates a pending wager with default values
func CreateTestWager(userID, betID, optionID int64, pool models.Pool, amount int64) *models.Wager {
	return &models.Wager{
		UserID:   userID,
		BetID:    betID,
		OptionID: optionID,
		Pool:     pool,
		Amount:   amount,
		Result:   models.WagerResultPending,
	}
}

// CreateTestBalanceHistory creates a balance history entry with default amounts
func CreateTestBalanceHistory(userID int64, pool models.Pool, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		Pool:            pool,
		BalanceBefore:   DefaultOpeningBalance,
		BalanceAfter:    DefaultOpeningBalance - 100,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
