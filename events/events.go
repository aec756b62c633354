package events

import (
	"context"
	"sync"

	"levelbot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType identifies an event on the bus
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeLevelChange   EventType = "level_change"
	EventTypeWagerSettled  EventType = "wager_settled"

	EventTypeActivityCounted EventType = "activity_counted"
)

// AllEventTypes lists every type emitted by the bot
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeLevelChange,
	EventTypeWagerSettled,
	EventTypeActivityCounted,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every applied ledger mutation
type BalanceChangeEvent struct {
	GuildID         int64                    `json:"guild_id"`
	DiscordID       int64                    `json:"discord_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// LevelChangeEvent is emitted when a member's level role was changed
type LevelChangeEvent struct {
	GuildID   int64  `json:"guild_id"`
	DiscordID int64  `json:"discord_id"`
	Level     string `json:"level"`
	Total     int64  `json:"total"`
}

func (e LevelChangeEvent) Type() EventType {
	return EventTypeLevelChange
}

// ActivityCountedEvent is emitted for every message that passed the debounce
type ActivityCountedEvent struct {
	GuildID   int64 `json:"guild_id"`
	DiscordID int64 `json:"discord_id"`
	Live      int64 `json:"live"`
}

func (e ActivityCountedEvent) Type() EventType {
	return EventTypeActivityCounted
}

// Game names carried by WagerSettledEvent
const (
	GameBlackjack = "blackjack"
	GameDice      = "dice"
)

// WagerSettledEvent is emitted once per finished blackjack hand or dice wager
type WagerSettledEvent struct {
	GuildID   int64  `json:"guild_id"`
	DiscordID int64  `json:"discord_id"`
	Game      string `json:"game"`
	Outcome   string `json:"outcome"`
	Bet       int64  `json:"bet"`
	Payout    int64  `json:"payout"`
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus fans events out to subscribers in-process
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

// SubscribeAll adds handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit calls every handler for the event's type on its own goroutine. A
// panicking handler is logged and does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

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

// Publish emits the event immediately. Used by code that does not run inside a
// database transaction.
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus wraps real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues the event
func (b *TransactionalBus) Publish(event Event) error {
	b.pending = append(b.pending, event)
	return nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush emits every queued event. Called after a successful commit; handlers
// get a background context since the transaction context may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing transactional bus")

	for _, ev := range b.pending {
		if b.real != nil {
			b.real.Emit(context.Background(), ev)
		}
	}
	b.pending = nil
	return nil
}

// Discard drops every queued event. Called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
