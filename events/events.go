package events

import (
	"context"
	"sync"

	"wagerbot/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeUserCreated   EventType = "user_created"
	EventTypeWagerPlaced   EventType = "wager_placed"
	EventTypeBetResolved   EventType = "bet_resolved"
	EventTypeBetCancelled  EventType = "bet_cancelled"
	EventTypeSessionEnded  EventType = "session_ended"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	EventID         uuid.UUID
	UserID          int64
	Pool            models.Pool
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	EventID        uuid.UUID
	UserID         int64
	ExternalID     string
	DisplayName    string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// WagerPlacedEvent represents a wager that was accepted
type WagerPlacedEvent struct {
	EventID  uuid.UUID
	WagerID  int64
	UserID   int64
	BetID    int64
	OptionID int64
	Pool     models.Pool
	Amount   int64
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// BetResolvedEvent represents a bet that was resolved with a winning option
type BetResolvedEvent struct {
	EventID         uuid.UUID
	BetID           int64
	WinningOptionID int64
	WinnerCount     int
	LoserCount      int
	TotalStaked     int64
}

func (e BetResolvedEvent) Type() EventType {
	return EventTypeBetResolved
}

// BetCancelledEvent represents a bet that was cancelled
type BetCancelledEvent struct {
	EventID        uuid.UUID
	BetID          int64
	RefundedWagers int
	RefundedTotal  int64
}

func (e BetCancelledEvent) Type() EventType {
	return EventTypeBetCancelled
}

// SessionEndedEvent represents a round that was settled and closed
type SessionEndedEvent struct {
	EventID    uuid.UUID
	RoundID    int64
	Entries    int
	TotalBonus int64
}

func (e SessionEndedEvent) Type() EventType {
	return EventTypeSessionEnded
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and flushes
// them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional wrapper around a bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until the owning transaction commits
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the transaction; don't tie them to its context.
	eventCtx := context.Background()

	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops all pending events. Called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
