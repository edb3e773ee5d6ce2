package repository

import (
	"context"
	"errors"
	"fmt"

	"wagerbot/database"
	"wagerbot/models"
	"wagerbot/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RoundRepository implements the service.RoundRepository interface
type RoundRepository struct {
	q queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

// newRoundRepositoryWithTx creates a new round repository with a transaction
func newRoundRepositoryWithTx(tx queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

// Create inserts a new active round. The partial unique index on active
// rounds is the atomic guard for the single-active invariant.
func (r *RoundRepository) Create(ctx context.Context) (*models.Round, error) {
	query := `
		INSERT INTO rounds (status)
		VALUES ('active')
		RETURNING id, status, created_at, closed_at
	`

	var round models.Round
	err := r.q.QueryRow(ctx, query).Scan(
		&round.ID,
		&round.Status,
		&round.CreatedAt,
		&round.ClosedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: a round is already active", service.ErrAlreadyActive)
		}
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	return &round, nil
}

// GetActive returns the active round, or nil if none
func (r *RoundRepository) GetActive(ctx context.Context) (*models.Round, error) {
	return r.getActive(ctx, "")
}

// GetActiveForUpdate returns the active round holding an exclusive row lock
func (r *RoundRepository) GetActiveForUpdate(ctx context.Context) (*models.Round, error) {
	return r.getActive(ctx, "FOR UPDATE")
}

// GetActiveForShare returns the active round holding a shared row lock
func (r *RoundRepository) GetActiveForShare(ctx context.Context) (*models.Round, error) {
	return r.getActive(ctx, "FOR SHARE")
}

func (r *RoundRepository) getActive(ctx context.Context, lock string) (*models.Round, error) {
	query := `
		SELECT id, status, created_at, closed_at
		FROM rounds
		WHERE status = 'active'
	`
	if lock != "" {
		query += " " + lock
	}

	var round models.Round
	err := r.q.QueryRow(ctx, query).Scan(
		&round.ID,
		&round.Status,
		&round.CreatedAt,
		&round.ClosedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}

	return &round, nil
}

// GetByID retrieves a round by ID
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForShare retrieves a round by ID holding a shared row lock
func (r *RoundRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Round, error) {
	return r.getByID(ctx, id, "FOR SHARE")
}

func (r *RoundRepository) getByID(ctx context.Context, id int64, lock string) (*models.Round, error) {
	query := `
		SELECT id, status, created_at, closed_at
		FROM rounds
		WHERE id = $1
	`
	if lock != "" {
		query += " " + lock
	}

	var round models.Round
	err := r.q.QueryRow(ctx, query, id).Scan(
		&round.ID,
		&round.Status,
		&round.CreatedAt,
		&round.ClosedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}

	return &round, nil
}

// Close marks a round closed
func (r *RoundRepository) Close(ctx context.Context, id int64) error {
	query := `
		UPDATE rounds
		SET status = 'closed', closed_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to close round %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: round %d is not active", service.ErrInvalidState, id)
	}

	return nil
}
