package service

import (
	"context"

	"wagerbot/events"
	"wagerbot/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by internal ID, returning nil if absent
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByExternalID retrieves a user by front-end handle, returning nil if absent
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// Create creates a new user
	Create(ctx context.Context, externalID, displayName string) (*models.User, error)

	// UpdateDisplayName refreshes the stored display name
	UpdateDisplayName(ctx context.Context, id int64, displayName string) error
}

// RoundRepository defines the interface for round lifecycle data access
type RoundRepository interface {
	// Create inserts a new active round. The partial unique index on active
	// rounds makes this the atomic guard for the single-active invariant;
	// a conflict surfaces as ErrAlreadyActive.
	Create(ctx context.Context) (*models.Round, error)

	// GetActive returns the active round, or nil if none
	GetActive(ctx context.Context) (*models.Round, error)

	// GetActiveForUpdate returns the active round with an exclusive row lock
	// held for the rest of the transaction, or nil if none. Used by
	// end-of-round settlement to fence out all round-scoped activity.
	GetActiveForUpdate(ctx context.Context) (*models.Round, error)

	// GetActiveForShare returns the active round with a shared row lock, so
	// bankroll activity can proceed concurrently but not while settlement
	// holds the exclusive lock
	GetActiveForShare(ctx context.Context) (*models.Round, error)

	// GetByID retrieves a round by ID, returning nil if absent
	GetByID(ctx context.Context, id int64) (*models.Round, error)

	// GetByIDForShare retrieves a round by ID with a shared row lock
	GetByIDForShare(ctx context.Context, id int64) (*models.Round, error)

	// Close marks a round closed
	Close(ctx context.Context, id int64) error
}

// BalanceRepository defines atomic access to the two credit pools. All
// conditional updates are single statements; the check-then-act split lives
// nowhere in this interface.
type BalanceRepository interface {
	// GetOrCreateWallet returns the user's wallet, seeding it at the opening
	// balance on first access
	GetOrCreateWallet(ctx context.Context, userID, openingBalance int64) (*models.Wallet, error)

	// ReserveWallet atomically decrements the wallet if balance >= amount,
	// seeding the row first if absent. Returns the new balance, or
	// ErrInsufficientFunds without any change.
	ReserveWallet(ctx context.Context, userID, amount, openingBalance int64) (int64, error)

	// CreditWallet atomically increments the wallet, seeding the row at the
	// opening balance first if absent. Returns the new balance.
	CreditWallet(ctx context.Context, userID, amount, openingBalance int64) (int64, error)

	// GetOrCreateEntry returns the user's bankroll entry for the round,
	// seeding it at the opening balance on first access
	GetOrCreateEntry(ctx context.Context, userID, roundID, openingBalance int64) (*models.BankrollEntry, error)

	// ReserveBankroll atomically decrements the bankroll entry if
	// balance >= amount, seeding the row first if absent
	ReserveBankroll(ctx context.Context, userID, roundID, amount, openingBalance int64) (int64, error)

	// CreditBankroll atomically increments the bankroll entry, seeding it at
	// the opening balance first if absent. markFromWallet additionally flags
	// the entry as wallet-funded.
	CreditBankroll(ctx context.Context, userID, roundID, amount, openingBalance int64, markFromWallet bool) (int64, error)

	// ListEntriesByRound returns all bankroll entries for a round ordered by
	// balance descending, ties by user ID ascending
	ListEntriesByRound(ctx context.Context, roundID int64) ([]*models.BankrollEntry, error)

	// DeleteEntriesByRound removes all bankroll entries for a round and
	// returns how many were deleted
	DeleteEntriesByRound(ctx context.Context, roundID int64) (int64, error)
}

// BetRepository defines the interface for bet and option data access
type BetRepository interface {
	// CreateWithOptions creates a bet and its options atomically
	CreateWithOptions(ctx context.Context, bet *models.Bet, options []*models.BetOption) error

	// GetByID retrieves a bet by ID, returning nil if absent
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetByIDForUpdate retrieves a bet holding an exclusive row lock for the
	// rest of the transaction. Used by lock/cancel/resolve.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error)

	// GetByIDForShare retrieves a bet holding a shared row lock, so wager
	// acceptance cannot interleave with resolution
	GetByIDForShare(ctx context.Context, id int64) (*models.Bet, error)

	// GetDetailByID retrieves a bet with its options, returning nil if absent
	GetDetailByID(ctx context.Context, id int64) (*models.BetDetail, error)

	// Update updates a bet's status and resolution timestamp
	Update(ctx context.Context, bet *models.Bet) error

	// MarkWinningOption sets is_winner on the option
	MarkWinningOption(ctx context.Context, optionID int64) error

	// DeleteOptions removes all options of a bet
	DeleteOptions(ctx context.Context, betID int64) error

	// ListUnresolvedByRound returns open and locked bets belonging to a round
	ListUnresolvedByRound(ctx context.Context, roundID int64) ([]*models.Bet, error)
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create inserts a new wager
	Create(ctx context.Context, wager *models.Wager) error

	// GetByBet returns all wagers on a bet
	GetByBet(ctx context.Context, betID int64) ([]*models.Wager, error)

	// GetPendingByUser returns a user's pending wagers with bet and option labels
	GetPendingByUser(ctx context.Context, userID int64) ([]*models.PendingWagerDetail, error)

	// UpdateResult updates a wager's result, payout and balance history link
	UpdateResult(ctx context.Context, wager *models.Wager) error

	// DeleteByBet removes all wagers on a bet and returns how many were deleted
	DeleteByBet(ctx context.Context, betID int64) (int64, error)

	// GetStatsByUser aggregates resolved-wager statistics for a user,
	// optionally scoped to a round
	GetStatsByUser(ctx context.Context, userID int64, roundID *int64) (*models.WagerStats, error)
}

// BalanceHistoryRepository defines the interface for the balance audit trail
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns recent balance history for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UserService defines identity resolution at the core boundary
type UserService interface {
	// EnsureUser resolves a front-end handle to a user, creating one lazily
	// and refreshing the display name
	EnsureUser(ctx context.Context, externalID, displayName string) (*models.User, error)
}

// BalanceService defines the operations the dispatch layer sees on the two
// credit pools. Reserve and Credit are internal primitives exercised through
// the bet and settlement services; they are not exposed here.
type BalanceService interface {
	// GetBalance returns the user's balance in the given pool, seeding the
	// backing row at the opening balance if absent. Bankroll balances resolve
	// against the active round.
	GetBalance(ctx context.Context, userID int64, pool models.Pool) (int64, error)

	// TransferToBankroll moves amount from the user's wallet into their
	// bankroll entry for the active round, marking the entry wallet-funded.
	// Both sides apply or neither does.
	TransferToBankroll(ctx context.Context, userID, amount int64) (walletBalance, bankrollBalance int64, err error)

	// GetHistory returns the user's recent balance history
	GetHistory(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// BetService defines proposition lifecycle and wager acceptance
type BetService interface {
	// CreateBet creates a bet with 2–8 options. Standard bets require an
	// active round; wallet-only bets do not.
	CreateBet(ctx context.Context, question string, options []string, kind models.BetKind) (*models.BetDetail, error)

	// PlaceWager validates and accepts a stake on an open bet. Wallet-only
	// bets silently force pool to wallet regardless of the requested pool.
	PlaceWager(ctx context.Context, betID, userID, optionID, amount int64, pool models.Pool) (*models.Wager, error)

	// LockBet transitions an open bet to locked
	LockBet(ctx context.Context, betID int64) (*models.Bet, error)

	// CancelBet cancels an open or locked bet, refunding pending wagers to
	// their original pool and removing the bet's options and wagers
	CancelBet(ctx context.Context, betID int64) error

	// GetBetDetail retrieves a bet with its options
	GetBetDetail(ctx context.Context, betID int64) (*models.BetDetail, error)

	// ListPendingWagers returns a user's pending wagers for rendering
	ListPendingWagers(ctx context.Context, userID int64) ([]*models.PendingWagerDetail, error)
}

// SettlementService defines per-bet resolution
type SettlementService interface {
	// ResolveBet designates the winning option and pays every winning wager
	// stake × 2 to its original pool, as one atomic unit
	ResolveBet(ctx context.Context, betID, winningOptionID int64) (*models.BetResolution, error)
}

// SessionService defines round lifecycle and end-of-round settlement
type SessionService interface {
	// StartSession creates a new active round
	StartSession(ctx context.Context) (*models.Round, error)

	// EndSession settles and closes the active round, returning the ordered
	// settlement report
	EndSession(ctx context.Context) (*models.SessionReport, error)

	// GetActiveRound returns the active round, or nil if none
	GetActiveRound(ctx context.Context) (*models.Round, error)
}

// StatsService defines aggregated statistics for rendering
type StatsService interface {
	// GetScoreboard returns the active round's bankroll standings
	GetScoreboard(ctx context.Context) ([]*models.ScoreboardEntry, error)

	// GetUserStats returns lifetime and active-round wager statistics
	GetUserStats(ctx context.Context, userID int64) (*UserStats, error)
}

// UserStats bundles a user's lifetime and current-round wager statistics
type UserStats struct {
	User     *models.User
	Lifetime *models.WagerStats
	Round    *models.WagerStats
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	RoundRepository() RoundRepository
	BalanceRepository() BalanceRepository
	BetRepository() BetRepository
	WagerRepository() WagerRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
