package service

import (
	"context"

	"wagerbot/events"
	"wagerbot/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, externalID, displayName string) (*models.User, error) {
	args := m.Called(ctx, externalID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateDisplayName(ctx context.Context, id int64, displayName string) error {
	args := m.Called(ctx, id, displayName)
	return args.Error(0)
}

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Create(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetActive(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetActiveForUpdate(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetActiveForShare(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) Close(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetOrCreateWallet(ctx context.Context, userID, openingBalance int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID, openingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockBalanceRepository) ReserveWallet(ctx context.Context, userID, amount, openingBalance int64) (int64, error) {
	args := m.Called(ctx, userID, amount, openingBalance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) CreditWallet(ctx context.Context, userID, amount, openingBalance int64) (int64, error) {
	args := m.Called(ctx, userID, amount, openingBalance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) GetOrCreateEntry(ctx context.Context, userID, roundID, openingBalance int64) (*models.BankrollEntry, error) {
	args := m.Called(ctx, userID, roundID, openingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankrollEntry), args.Error(1)
}

func (m *MockBalanceRepository) ReserveBankroll(ctx context.Context, userID, roundID, amount, openingBalance int64) (int64, error) {
	args := m.Called(ctx, userID, roundID, amount, openingBalance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) CreditBankroll(ctx context.Context, userID, roundID, amount, openingBalance int64, markFromWallet bool) (int64, error) {
	args := m.Called(ctx, userID, roundID, amount, openingBalance, markFromWallet)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) ListEntriesByRound(ctx context.Context, roundID int64) ([]*models.BankrollEntry, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankrollEntry), args.Error(1)
}

func (m *MockBalanceRepository) DeleteEntriesByRound(ctx context.Context, roundID int64) (int64, error) {
	args := m.Called(ctx, roundID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) CreateWithOptions(ctx context.Context, bet *models.Bet, options []*models.BetOption) error {
	args := m.Called(ctx, bet, options)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetDetailByID(ctx context.Context, id int64) (*models.BetDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetDetail), args.Error(1)
}

func (m *MockBetRepository) Update(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) MarkWinningOption(ctx context.Context, optionID int64) error {
	args := m.Called(ctx, optionID)
	return args.Error(0)
}

func (m *MockBetRepository) DeleteOptions(ctx context.Context, betID int64) error {
	args := m.Called(ctx, betID)
	return args.Error(0)
}

func (m *MockBetRepository) ListUnresolvedByRound(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByBet(ctx context.Context, betID int64) ([]*models.Wager, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetPendingByUser(ctx context.Context, userID int64) ([]*models.PendingWagerDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PendingWagerDetail), args.Error(1)
}

func (m *MockWagerRepository) UpdateResult(ctx context.Context, wager *models.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) DeleteByBet(ctx context.Context, betID int64) (int64, error) {
	args := m.Called(ctx, betID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWagerRepository) GetStatsByUser(ctx context.Context, userID int64, roundID *int64) (*models.WagerStats, error) {
	args := m.Called(ctx, userID, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WagerStats), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher that records
// published events for assertions
type MockEventPublisher struct {
	mock.Mock
	Published []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Published = append(m.Published, event)
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback are expectation-driven; repository getters return whatever was
// injected through SetRepositories.
type MockUnitOfWork struct {
	mock.Mock

	userRepo    UserRepository
	roundRepo   RoundRepository
	balanceRepo BalanceRepository
	betRepo     BetRepository
	wagerRepo   WagerRepository
	historyRepo BalanceHistoryRepository
	eventBus    EventPublisher
}

// SetRepositories injects the repository doubles this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	roundRepo RoundRepository,
	balanceRepo BalanceRepository,
	betRepo BetRepository,
	wagerRepo WagerRepository,
	historyRepo BalanceHistoryRepository,
) {
	m.userRepo = userRepo
	m.roundRepo = roundRepo
	m.balanceRepo = balanceRepo
	m.betRepo = betRepo
	m.wagerRepo = wagerRepo
	m.historyRepo = historyRepo
}

// SetEventBus injects the event publisher double
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository { return m.userRepo }

func (m *MockUnitOfWork) RoundRepository() RoundRepository { return m.roundRepo }

func (m *MockUnitOfWork) BalanceRepository() BalanceRepository { return m.balanceRepo }

func (m *MockUnitOfWork) BetRepository() BetRepository { return m.betRepo }

func (m *MockUnitOfWork) WagerRepository() WagerRepository { return m.wagerRepo }

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository { return m.historyRepo }

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

// noopPublisher drops events when a test does not care about them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
