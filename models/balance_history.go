package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial       TransactionType = "initial"
	TransactionTypeWagerReserve  TransactionType = "wager_reserve"
	TransactionTypeWagerWin      TransactionType = "wager_win"
	TransactionTypeWagerRefund   TransactionType = "wager_refund"
	TransactionTypeTransferOut   TransactionType = "transfer_out"
	TransactionTypeTransferIn    TransactionType = "transfer_in"
	TransactionTypeSessionReward TransactionType = "session_reward"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeBet   RelatedType = "bet"
	RelatedTypeWager RelatedType = "wager"
	RelatedTypeRound RelatedType = "round"
)

// BalanceHistory represents a historical balance change on one of a user's
// pools. Every mutation the ledger performs records exactly one entry.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	Pool                Pool            `db:"pool"`
	RoundID             *int64          `db:"round_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}
