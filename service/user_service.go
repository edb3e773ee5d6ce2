package service

import (
	"context"
	"fmt"

	"wagerbot/config"
	"wagerbot/events"
	"wagerbot/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// EnsureUser resolves a front-end handle to a user, creating one lazily with
// an opening-balance wallet and refreshing the display name on later calls
func (s *userService) EnsureUser(ctx context.Context, externalID, displayName string) (*models.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external ID cannot be empty", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if user != nil {
		if displayName != "" && displayName != user.DisplayName {
			if err := uow.UserRepository().UpdateDisplayName(ctx, user.ID, displayName); err != nil {
				return nil, fmt.Errorf("failed to refresh display name: %w", err)
			}
			user.DisplayName = displayName
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return user, nil
	}

	// Unknown handle: create the user and seed the wallet at the opening
	// balance. The unique constraint on external_id prevents duplicates.
	user, err = uow.UserRepository().Create(ctx, externalID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	wallet, err := uow.BalanceRepository().GetOrCreateWallet(ctx, user.ID, s.config.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to seed wallet: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          user.ID,
		Pool:            models.PoolWallet,
		BalanceBefore:   0,
		BalanceAfter:    wallet.Balance,
		ChangeAmount:    wallet.Balance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"external_id":  externalID,
			"display_name": displayName,
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		EventID:        uuid.New(),
		UserID:         user.ID,
		ExternalID:     externalID,
		DisplayName:    displayName,
		InitialBalance: wallet.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":     user.ID,
		"external_id": externalID,
		"balance":     wallet.Balance,
	}).Info("Created user with opening wallet balance")

	return user, nil
}
