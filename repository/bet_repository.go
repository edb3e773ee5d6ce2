package repository

import (
	"context"
	"fmt"

	"wagerbot/database"
	"wagerbot/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// CreateWithOptions creates a bet and its options atomically
func (r *BetRepository) CreateWithOptions(ctx context.Context, bet *models.Bet, options []*models.BetOption) error {
	betQuery := `
		INSERT INTO bets (round_id, question, kind, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, betQuery,
		bet.RoundID,
		bet.Question,
		bet.Kind,
		bet.Status,
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	optionQuery := `
		INSERT INTO bet_options (bet_id, label, option_order)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	for _, option := range options {
		option.BetID = bet.ID
		err := r.q.QueryRow(ctx, optionQuery,
			option.BetID,
			option.Label,
			option.OptionOrder,
		).Scan(&option.ID, &option.CreatedAt)

		if err != nil {
			return fmt.Errorf("failed to create option %q for bet %d: %w", option.Label, bet.ID, err)
		}
	}

	return nil
}

// GetByID retrieves a bet by ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate retrieves a bet holding an exclusive row lock. Lock,
// cancel and resolve all go through here so bet transitions serialize.
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

// GetByIDForShare retrieves a bet holding a shared row lock. Wager acceptance
// uses this so no stake can slip in mid-resolution.
func (r *BetRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Bet, error) {
	return r.getByID(ctx, id, "FOR SHARE")
}

func (r *BetRepository) getByID(ctx context.Context, id int64, lock string) (*models.Bet, error) {
	query := `
		SELECT id, round_id, question, kind, status, created_at, resolved_at
		FROM bets
		WHERE id = $1
	`
	if lock != "" {
		query += " " + lock
	}

	var bet models.Bet
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.RoundID,
		&bet.Question,
		&bet.Kind,
		&bet.Status,
		&bet.CreatedAt,
		&bet.ResolvedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}

	return &bet, nil
}

// GetDetailByID retrieves a bet with its options
func (r *BetRepository) GetDetailByID(ctx context.Context, id int64) (*models.BetDetail, error) {
	bet, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, nil
	}

	query := `
		SELECT id, bet_id, label, option_order, is_winner, created_at
		FROM bet_options
		WHERE bet_id = $1
		ORDER BY option_order
	`

	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get options for bet %d: %w", id, err)
	}
	defer rows.Close()

	var options []*models.BetOption
	for rows.Next() {
		var option models.BetOption
		err := rows.Scan(
			&option.ID,
			&option.BetID,
			&option.Label,
			&option.OptionOrder,
			&option.IsWinner,
			&option.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet option: %w", err)
		}
		options = append(options, &option)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bet options: %w", err)
	}

	return &models.BetDetail{Bet: bet, Options: options}, nil
}

// Update updates a bet's status and resolution timestamp
func (r *BetRepository) Update(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets
		SET status = $1, resolved_at = $2
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, bet.Status, bet.ResolvedAt, bet.ID)
	if err != nil {
		return fmt.Errorf("failed to update bet %d: %w", bet.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", bet.ID)
	}

	return nil
}

// MarkWinningOption sets is_winner on the option
func (r *BetRepository) MarkWinningOption(ctx context.Context, optionID int64) error {
	query := `
		UPDATE bet_options
		SET is_winner = TRUE
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, optionID)
	if err != nil {
		return fmt.Errorf("failed to mark winning option %d: %w", optionID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("option %d not found", optionID)
	}

	return nil
}

// DeleteOptions removes all options of a bet
func (r *BetRepository) DeleteOptions(ctx context.Context, betID int64) error {
	query := `
		DELETE FROM bet_options
		WHERE bet_id = $1
	`

	if _, err := r.q.Exec(ctx, query, betID); err != nil {
		return fmt.Errorf("failed to delete options for bet %d: %w", betID, err)
	}

	return nil
}

// ListUnresolvedByRound returns open and locked bets belonging to a round
func (r *BetRepository) ListUnresolvedByRound(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	query := `
		SELECT id, round_id, question, kind, status, created_at, resolved_at
		FROM bets
		WHERE round_id = $1 AND status IN ('open', 'locked')
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved bets for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.RoundID,
			&bet.Question,
			&bet.Kind,
			&bet.Status,
			&bet.CreatedAt,
			&bet.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
