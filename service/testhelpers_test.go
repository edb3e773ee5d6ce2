package service

import (
	"wagerbot/config"
	"wagerbot/models"

	"github.com/stretchr/testify/mock"
)

// Test utilities shared across the service tests

const testOpeningBalance = int64(1000)

type serviceMocks struct {
	factory     *MockUnitOfWorkFactory
	uow         *MockUnitOfWork
	userRepo    *MockUserRepository
	roundRepo   *MockRoundRepository
	balanceRepo *MockBalanceRepository
	betRepo     *MockBetRepository
	wagerRepo   *MockWagerRepository
	historyRepo *MockBalanceHistoryRepository
}

func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		factory:     new(MockUnitOfWorkFactory),
		uow:         new(MockUnitOfWork),
		userRepo:    new(MockUserRepository),
		roundRepo:   new(MockRoundRepository),
		balanceRepo: new(MockBalanceRepository),
		betRepo:     new(MockBetRepository),
		wagerRepo:   new(MockWagerRepository),
		historyRepo: new(MockBalanceHistoryRepository),
	}
	m.uow.SetRepositories(m.userRepo, m.roundRepo, m.balanceRepo, m.betRepo, m.wagerRepo, m.historyRepo)
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *serviceMocks) expectTransaction() {
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
}

// expectHistory accepts any Record call and stamps an ID so callers can link
// wagers to the history row
func (m *serviceMocks) expectHistory(id int64) {
	m.historyRepo.On("Record", mock.Anything, mock.AnythingOfType("*models.BalanceHistory")).
		Return(nil).
		Run(func(args mock.Arguments) {
			history := args.Get(1).(*models.BalanceHistory)
			history.ID = id
		})
}

func testConfig() *config.Config {
	return &config.Config{
		OpeningBalance: testOpeningBalance,
		Environment:    "test",
	}
}

func createTestUser(id int64, externalID string) *models.User {
	return &models.User{
		ID:          id,
		ExternalID:  externalID,
		DisplayName: "tester",
	}
}

func createTestRound(id int64) *models.Round {
	return &models.Round{
		ID:     id,
		Status: models.RoundStatusActive,
	}
}

func createTestBet(id int64, roundID *int64, kind models.BetKind, status models.BetStatus) *models.Bet {
	return &models.Bet{
		ID:       id,
		RoundID:  roundID,
		Question: "who wins game five",
		Kind:     kind,
		Status:   status,
	}
}

func createTestOption(id, betID int64, label string, order int16) *models.BetOption {
	return &models.BetOption{
		ID:          id,
		BetID:       betID,
		Label:       label,
		OptionOrder: order,
	}
}

func createTestDetail(bet *models.Bet, options ...*models.BetOption) *models.BetDetail {
	return &models.BetDetail{Bet: bet, Options: options}
}

func createTestWager(id, userID, betID, optionID int64, pool models.Pool, roundID *int64, amount int64) *models.Wager {
	return &models.Wager{
		ID:       id,
		UserID:   userID,
		BetID:    betID,
		OptionID: optionID,
		RoundID:  roundID,
		Pool:     pool,
		Amount:   amount,
		Result:   models.WagerResultPending,
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
