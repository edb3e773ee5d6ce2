package repository

import (
	"context"
	"fmt"

	"wagerbot/database"
	"wagerbot/models"
)

// WagerRepository implements the service.WagerRepository interface
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

// Create inserts a new wager
func (r *WagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	query := `
		INSERT INTO wagers (user_id, bet_id, option_id, round_id, pool, amount, result, payout, balance_history_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.UserID,
		wager.BetID,
		wager.OptionID,
		wager.RoundID,
		wager.Pool,
		wager.Amount,
		wager.Result,
		wager.Payout,
		wager.BalanceHistoryID,
	).Scan(&wager.ID, &wager.CreatedAt, &wager.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create wager for user %d on bet %d: %w", wager.UserID, wager.BetID, err)
	}

	return nil
}

// GetByBet returns all wagers on a bet
func (r *WagerRepository) GetByBet(ctx context.Context, betID int64) ([]*models.Wager, error) {
	query := `
		SELECT id, user_id, bet_id, option_id, round_id, pool, amount, result, payout, balance_history_id, created_at, updated_at
		FROM wagers
		WHERE bet_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers for bet %d: %w", betID, err)
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		var wager models.Wager
		err := rows.Scan(
			&wager.ID,
			&wager.UserID,
			&wager.BetID,
			&wager.OptionID,
			&wager.RoundID,
			&wager.Pool,
			&wager.Amount,
			&wager.Result,
			&wager.Payout,
			&wager.BalanceHistoryID,
			&wager.CreatedAt,
			&wager.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, &wager)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}

	return wagers, nil
}

// GetPendingByUser returns a user's pending wagers with bet and option labels
func (r *WagerRepository) GetPendingByUser(ctx context.Context, userID int64) ([]*models.PendingWagerDetail, error) {
	query := `
		SELECT w.id, w.user_id, w.bet_id, w.option_id, w.round_id, w.pool, w.amount, w.result, w.payout,
		       w.balance_history_id, w.created_at, w.updated_at,
		       b.question, o.label
		FROM wagers w
		JOIN bets b ON b.id = w.bet_id
		JOIN bet_options o ON o.id = w.option_id
		WHERE w.user_id = $1 AND w.result = 'pending'
		ORDER BY w.created_at
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending wagers for user %d: %w", userID, err)
	}
	defer rows.Close()

	var details []*models.PendingWagerDetail
	for rows.Next() {
		var wager models.Wager
		var detail models.PendingWagerDetail
		err := rows.Scan(
			&wager.ID,
			&wager.UserID,
			&wager.BetID,
			&wager.OptionID,
			&wager.RoundID,
			&wager.Pool,
			&wager.Amount,
			&wager.Result,
			&wager.Payout,
			&wager.BalanceHistoryID,
			&wager.CreatedAt,
			&wager.UpdatedAt,
			&detail.Question,
			&detail.OptionLabel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending wager: %w", err)
		}
		detail.Wager = &wager
		details = append(details, &detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending wagers: %w", err)
	}

	return details, nil
}

// UpdateResult updates a wager's result, payout and balance history link
func (r *WagerRepository) UpdateResult(ctx context.Context, wager *models.Wager) error {
	query := `
		UPDATE wagers
		SET result = $1, payout = $2, balance_history_id = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, wager.Result, wager.Payout, wager.BalanceHistoryID, wager.ID)
	if err != nil {
		return fmt.Errorf("failed to update result for wager %d: %w", wager.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wager %d not found", wager.ID)
	}

	return nil
}

// DeleteByBet removes all wagers on a bet
func (r *WagerRepository) DeleteByBet(ctx context.Context, betID int64) (int64, error) {
	query := `
		DELETE FROM wagers
		WHERE bet_id = $1
	`

	result, err := r.q.Exec(ctx, query, betID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete wagers for bet %d: %w", betID, err)
	}

	return result.RowsAffected(), nil
}

// GetStatsByUser aggregates resolved-wager statistics for a user, optionally
// scoped to a round
func (r *WagerRepository) GetStatsByUser(ctx context.Context, userID int64, roundID *int64) (*models.WagerStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(payout) FILTER (WHERE result = 'win'), 0),
			COALESCE(SUM(amount) FILTER (WHERE result = 'lose'), 0)
		FROM wagers
		WHERE user_id = $1
		  AND result IN ('win', 'lose')
		  AND ($2::BIGINT IS NULL OR round_id = $2)
	`

	var stats models.WagerStats
	err := r.q.QueryRow(ctx, query, userID, roundID).Scan(
		&stats.WagersPlaced,
		&stats.TotalStaked,
		&stats.TotalWon,
		&stats.TotalLost,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get wager stats for user %d: %w", userID, err)
	}

	return &stats, nil
}
