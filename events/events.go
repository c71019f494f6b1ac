package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDistributionCompleted EventType = "distribution.completed"
	EventTypePayoutCompleted       EventType = "payout.completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DistributionCompletedEvent is emitted once a distribution run and all of its payouts are persisted
type DistributionCompletedEvent struct {
	DistributionRunID string          `json:"distributionRunId"`
	OfferingID        string          `json:"offeringId"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PayoutCount       int             `json:"payoutCount"`
	DistributionDate  time.Time       `json:"distributionDate"`
	ReportedBy        string          `json:"reportedBy,omitempty"`
}

func (e DistributionCompletedEvent) Type() EventType {
	return EventTypeDistributionCompleted
}

// PayoutCompletedEvent is emitted for each payout of a persisted distribution run
type PayoutCompletedEvent struct {
	PayoutID          string          `json:"payoutId"`
	DistributionRunID string          `json:"distributionRunId"`
	OfferingID        string          `json:"offeringId"`
	InvestorID        string          `json:"investorId"`
	Amount            decimal.Decimal `json:"amount"`
}

func (e PayoutCompletedEvent) Type() EventType {
	return EventTypePayoutCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// orderedQueueSize bounds how far an ordered subscriber may lag before Emit blocks
const orderedQueueSize = 256

type delivery struct {
	ctx   context.Context
	event Event
}

// orderedSubscriber delivers events to one handler on a single goroutine, in emit order
type orderedSubscriber struct {
	handler Handler
	queue   chan delivery
	done    chan struct{}
}

func (s *orderedSubscriber) run() {
	defer close(s.done)
	for d := range s.queue {
		callHandler(s.handler, d.ctx, d.event, -1)
	}
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	ordered  map[EventType][]*orderedSubscriber
	closed   bool
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		ordered:  make(map[EventType][]*orderedSubscriber),
	}
}

// SubscribeOrdered adds a handler that receives the given event types one at a time,
// in the order they were emitted. Sinks that must preserve event order use this.
func (b *Bus) SubscribeOrdered(handler Handler, eventTypes ...EventType) {
	sub := &orderedSubscriber{
		handler: handler,
		queue:   make(chan delivery, orderedQueueSize),
		done:    make(chan struct{}),
	}
	go sub.run()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.ordered[eventType] = append(b.ordered[eventType], sub)
	}

	log.WithField("eventTypes", eventTypes).Debug("Subscribed ordered handler on main event bus")
}

// Close stops accepting events and waits until ordered subscribers drain their queues
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true

	seen := make(map[*orderedSubscriber]bool)
	var subs []*orderedSubscriber
	for _, list := range b.ordered {
		for _, sub := range list {
			if !seen[sub] {
				seen[sub] = true
				subs = append(subs, sub)
			}
		}
	}
	for _, sub := range subs {
		close(sub.queue)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		<-sub.done
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
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers.
// Ordered subscribers are queued before Emit returns, so successive calls from one
// goroutine reach each of them in call order.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		log.WithField("eventType", event.Type()).Warn("Dropping event emitted after bus close")
		return
	}

	handlers := b.handlers[event.Type()]
	ordered := b.ordered[event.Type()]

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers) + len(ordered),
	}).Debug("Emitting event to handlers on main event bus")

	for _, sub := range ordered {
		sub.queue <- delivery{ctx: ctx, event: event}
	}

	// Handlers run asynchronously so slow sinks never block the caller
	for i, handler := range handlers {
		go callHandler(handler, ctx, event, i)
	}
}

func callHandler(h Handler, ctx context.Context, event Event, handlerIndex int) {
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
}

// TransactionalBus holds events raised inside a unit of work until it commits.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus wraps a bus with commit-coupled buffering
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush emits all queued events, called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	// Event delivery outlives the transaction context
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops queued events, called after a rollback
func (b *TransactionalBus) Discard() {
	log.WithFields(log.Fields{
		"discardedEventCount": len(b.pending),
	}).Debug("Discarding pending events from transactional bus")
	b.pending = nil
}
