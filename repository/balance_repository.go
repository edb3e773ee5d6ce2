package repository

import (
	"context"
	"fmt"

	"wagerbot/database"
	"wagerbot/models"
	"wagerbot/service"

	"github.com/jackc/pgx/v5"
)

// BalanceRepository implements the service.BalanceRepository interface.
// Every conditional update is a single statement so two concurrent
// reservations can never both succeed against insufficient funds.
type BalanceRepository struct {
	q queryable
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

// newBalanceRepositoryWithTx creates a new balance repository with a transaction
func newBalanceRepositoryWithTx(tx queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

// GetOrCreateWallet returns the user's wallet, seeding it at the opening
// balance on first access
func (r *BalanceRepository) GetOrCreateWallet(ctx context.Context, userID, openingBalance int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = wallets.user_id
		RETURNING user_id, balance, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID, openingBalance).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// ReserveWallet atomically decrements the wallet if balance >= amount,
// seeding the row first if absent. Returns the new balance.
func (r *BalanceRepository) ReserveWallet(ctx context.Context, userID, amount, openingBalance int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", service.ErrInvalidInput)
	}

	if err := r.ensureWallet(ctx, userID, openingBalance); err != nil {
		return 0, err
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		wallet, gErr := r.GetOrCreateWallet(ctx, userID, openingBalance)
		if gErr != nil {
			return 0, gErr
		}
		return 0, fmt.Errorf("%w: wallet has %d, need %d", service.ErrInsufficientFunds, wallet.Balance, amount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to reserve %d from wallet of user %d: %w", amount, userID, err)
	}

	return newBalance, nil
}

// CreditWallet atomically increments the wallet, seeding the row at the
// opening balance first if absent. Returns the new balance.
func (r *BalanceRepository) CreditWallet(ctx context.Context, userID, amount, openingBalance int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", service.ErrInvalidInput)
	}

	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2 + $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + $3, updated_at = NOW()
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, userID, openingBalance, amount).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to credit %d to wallet of user %d: %w", amount, userID, err)
	}

	return newBalance, nil
}

// GetOrCreateEntry returns the user's bankroll entry for the round, seeding
// it at the opening balance on first access
func (r *BalanceRepository) GetOrCreateEntry(ctx context.Context, userID, roundID, openingBalance int64) (*models.BankrollEntry, error) {
	query := `
		INSERT INTO bankroll_entries (user_id, round_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, round_id) DO UPDATE SET user_id = bankroll_entries.user_id
		RETURNING id, user_id, round_id, balance, from_wallet, created_at, updated_at
	`

	var entry models.BankrollEntry
	err := r.q.QueryRow(ctx, query, userID, roundID, openingBalance).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.RoundID,
		&entry.Balance,
		&entry.FromWallet,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create bankroll entry for user %d in round %d: %w", userID, roundID, err)
	}

	return &entry, nil
}

// ReserveBankroll atomically decrements the bankroll entry if
// balance >= amount, seeding the row first if absent. Returns the new balance.
func (r *BalanceRepository) ReserveBankroll(ctx context.Context, userID, roundID, amount, openingBalance int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", service.ErrInvalidInput)
	}

	if err := r.ensureEntry(ctx, userID, roundID, openingBalance); err != nil {
		return 0, err
	}

	query := `
		UPDATE bankroll_entries
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND round_id = $3 AND balance >= $1
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, amount, userID, roundID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		entry, gErr := r.GetOrCreateEntry(ctx, userID, roundID, openingBalance)
		if gErr != nil {
			return 0, gErr
		}
		return 0, fmt.Errorf("%w: bankroll has %d, need %d", service.ErrInsufficientFunds, entry.Balance, amount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to reserve %d from bankroll of user %d in round %d: %w", amount, userID, roundID, err)
	}

	return newBalance, nil
}

// CreditBankroll atomically increments the bankroll entry, seeding it at the
// opening balance first if absent. markFromWallet additionally flags the
// entry as wallet-funded.
func (r *BalanceRepository) CreditBankroll(ctx context.Context, userID, roundID, amount, openingBalance int64, markFromWallet bool) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", service.ErrInvalidInput)
	}

	query := `
		INSERT INTO bankroll_entries (user_id, round_id, balance, from_wallet)
		VALUES ($1, $2, $3 + $4, $5)
		ON CONFLICT (user_id, round_id) DO UPDATE
		SET balance = bankroll_entries.balance + $4,
		    from_wallet = bankroll_entries.from_wallet OR $5,
		    updated_at = NOW()
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, userID, roundID, openingBalance, amount, markFromWallet).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to credit %d to bankroll of user %d in round %d: %w", amount, userID, roundID, err)
	}

	return newBalance, nil
}

// ListEntriesByRound returns all bankroll entries for a round, ordered by
// balance descending with ties broken by user ID ascending. This is the
// deterministic ranking order for end-of-round settlement.
func (r *BalanceRepository) ListEntriesByRound(ctx context.Context, roundID int64) ([]*models.BankrollEntry, error) {
	query := `
		SELECT id, user_id, round_id, balance, from_wallet, created_at, updated_at
		FROM bankroll_entries
		WHERE round_id = $1
		ORDER BY balance DESC, user_id ASC
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bankroll entries for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var entries []*models.BankrollEntry
	for rows.Next() {
		var entry models.BankrollEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.RoundID,
			&entry.Balance,
			&entry.FromWallet,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bankroll entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bankroll entries: %w", err)
	}

	return entries, nil
}

// DeleteEntriesByRound removes all bankroll entries for a round
func (r *BalanceRepository) DeleteEntriesByRound(ctx context.Context, roundID int64) (int64, error) {
	query := `
		DELETE FROM bankroll_entries
		WHERE round_id = $1
	`

	result, err := r.q.Exec(ctx, query, roundID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bankroll entries for round %d: %w", roundID, err)
	}

	return result.RowsAffected(), nil
}

func (r *BalanceRepository) ensureWallet(ctx context.Context, userID, openingBalance int64) error {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, userID, openingBalance); err != nil {
		return fmt.Errorf("failed to ensure wallet for user %d: %w", userID, err)
	}
	return nil
}

func (r *BalanceRepository) ensureEntry(ctx context.Context, userID, roundID, openingBalance int64) error {
	query := `
		INSERT INTO bankroll_entries (user_id, round_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, round_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, userID, roundID, openingBalance); err != nil {
		return fmt.Errorf("failed to ensure bankroll entry for user %d in round %d: %w", userID, roundID, err)
	}
	return nil
}
