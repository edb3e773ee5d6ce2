package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"wagerbot/config"
	"wagerbot/database"
	"wagerbot/events"
	"wagerbot/repository"
	"wagerbot/service"
)

// Services bundles everything the dispatch layer calls into the engine. The
// dispatch layer itself (chat adapter, HTTP surface, whatever carries user
// input) lives outside this module and embeds these.
type Services struct {
	User       service.UserService
	Balance    service.BalanceService
	Bet        service.BetService
	Settlement service.SettlementService
	Session    service.SessionService
	Stats      service.StatsService
}

// Run initializes the engine, hands the wired services to attach (the
// dispatch layer's entry point, may be nil), and blocks until the context is
// cancelled
func Run(ctx context.Context, attach func(*Services) error) error {
	log.Println("Starting wagerbot engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	subscribeEventLogging(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	services := NewServices(uowFactory, cfg)
	log.Println("Services initialized successfully")

	if attach != nil {
		if err := attach(services); err != nil {
			db.Close()
			return fmt.Errorf("failed to attach dispatch layer: %w", err)
		}
	}

	// Wait for context cancellation
	log.Printf("Engine is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down engine...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

// NewServices wires the full service set over one unit of work factory
func NewServices(uowFactory service.UnitOfWorkFactory, cfg *config.Config) *Services {
	return &Services{
		User:       service.NewUserService(uowFactory, cfg),
		Balance:    service.NewBalanceService(uowFactory, cfg),
		Bet:        service.NewBetService(uowFactory, cfg),
		Settlement: service.NewSettlementService(uowFactory, cfg),
		Session:    service.NewSessionService(uowFactory, cfg),
		Stats:      service.NewStatsService(uowFactory, cfg),
	}
}

// subscribeEventLogging attaches audit logging for every domain event
func subscribeEventLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		ev := e.(events.BalanceChangeEvent)
		log.Printf("balance change: user=%d pool=%s %d -> %d (%s)",
			ev.UserID, ev.Pool, ev.OldBalance, ev.NewBalance, ev.TransactionType)
	})
	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) {
		ev := e.(events.UserCreatedEvent)
		log.Printf("user created: user=%d external=%s balance=%d",
			ev.UserID, ev.ExternalID, ev.InitialBalance)
	})
	bus.Subscribe(events.EventTypeWagerPlaced, func(ctx context.Context, e events.Event) {
		ev := e.(events.WagerPlacedEvent)
		log.Printf("wager placed: wager=%d user=%d bet=%d pool=%s amount=%d",
			ev.WagerID, ev.UserID, ev.BetID, ev.Pool, ev.Amount)
	})
	bus.Subscribe(events.EventTypeBetResolved, func(ctx context.Context, e events.Event) {
		ev := e.(events.BetResolvedEvent)
		log.Printf("bet resolved: bet=%d option=%d winners=%d losers=%d",
			ev.BetID, ev.WinningOptionID, ev.WinnerCount, ev.LoserCount)
	})
	bus.Subscribe(events.EventTypeBetCancelled, func(ctx context.Context, e events.Event) {
		ev := e.(events.BetCancelledEvent)
		log.Printf("bet cancelled: bet=%d refunded=%d total=%d",
			ev.BetID, ev.RefundedWagers, ev.RefundedTotal)
	})
	bus.Subscribe(events.EventTypeSessionEnded, func(ctx context.Context, e events.Event) {
		ev := e.(events.SessionEndedEvent)
		log.Printf("session ended: round=%d entries=%d total bonus=%d",
			ev.RoundID, ev.Entries, ev.TotalBonus)
	})
}
