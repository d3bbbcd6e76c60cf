package events

import (
	"context"
	"sync"

	"crapstable/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypePlayerCreated  EventType = "player_created"
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeBetRemoved     EventType = "bet_removed"
	EventTypeRollResolved   EventType = "roll_resolved"
	EventTypePayoutMismatch EventType = "payout_mismatch"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	DiscordID       int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// PlayerCreatedEvent represents a new player creation
type PlayerCreatedEvent struct {
	DiscordID      int64
	Username       string
	InitialBalance int64
}

func (e PlayerCreatedEvent) Type() EventType {
	return EventTypePlayerCreated
}

// BetPlacedEvent represents a bet that was placed on the table
type BetPlacedEvent struct {
	DiscordID int64
	Area      models.Area
	Amount    int64
	Cost      int64 // amount plus any commission
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetRemovedEvent represents chips taken off a bet
type BetRemovedEvent struct {
	DiscordID int64
	Area      models.Area
	Refund    int64
}

func (e BetRemovedEvent) Type() EventType {
	return EventTypeBetRemoved
}

// RollResolvedEvent carries the full outcome of one dice throw
type RollResolvedEvent struct {
	DiscordID int64
	Outcome   models.RollOutcome
	Nonce     uint64
}

func (e RollResolvedEvent) Type() EventType {
	return EventTypeRollResolved
}

// PayoutMismatchEvent fires when the independent payout check disagrees
// with what the table actually paid
type PayoutMismatchEvent struct {
	Validation models.RollValidation
}

func (e PayoutMismatchEvent) Type() EventType {
	return EventTypePayoutMismatch
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

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

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

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	// Events outlive the transaction, so emission must not inherit a
	// context that dies with it.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
