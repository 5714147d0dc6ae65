// Package event provides the typed event stream at the heart of
// OBSCopilot: event kinds, the fan-out Bus, and the Clock that drives
// time-based triggers.
package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/justedave0/obscopilot"
	"github.com/justedave0/obscopilot/id"
)

// Handler consumes one event. A returned error is logged by the bus and
// never propagated to the publisher or to other handlers.
type Handler func(ctx context.Context, ev Event) error

// Bus is an in-process publish/subscribe hub. Each subscription owns a
// dedicated delivery goroutine, so one slow handler never delays
// delivery to the others, while each individual handler still sees
// events in publish order. Duplicate subscriptions are not deduplicated;
// each receives its own deliveries.
//
// Construct with NewBus, pass explicitly, and shut down with Close.
type Bus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[Kind][]*subscription
	byID   map[id.SubscriptionID]*subscription
	closed bool

	wg sync.WaitGroup
}

// subscription carries one handler plus its private delivery queue.
// The queue is unbounded so that publishers never block behind a slow
// handler.
type subscription struct {
	id   id.SubscriptionID
	kind Kind
	fn   Handler

	mu      sync.Mutex
	cond    *sync.Cond
	pending []Event
	done    bool
}

func newSubscription(kind Kind, fn Handler) *subscription {
	s := &subscription{
		id:   id.NewSubscriptionID(),
		kind: kind,
		fn:   fn,
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// enqueue appends the event to the subscription's queue and wakes the pump.
func (s *subscription) enqueue(ev Event) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()
	s.cond.Signal()
}

// stop marks the subscription finished. Pending events are still delivered.
func (s *subscription) stop() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	s.cond.Signal()
}

// NewBus creates an event bus. If logger is nil, slog.Default() is used.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		logger: logger,
		subs:   make(map[Kind][]*subscription),
		byID:   make(map[id.SubscriptionID]*subscription),
	}
}

// Subscribe registers a handler for one event kind and returns a token
// for Unsubscribe. Subscribing to a closed bus returns ErrBusClosed.
func (b *Bus) Subscribe(kind Kind, fn Handler) (id.SubscriptionID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return id.Nil, obscopilot.ErrBusClosed
	}

	sub := newSubscription(kind, fn)
	b.subs[kind] = append(b.subs[kind], sub)
	b.byID[sub.id] = sub

	b.wg.Add(1)
	go b.pump(sub)

	return sub.id, nil
}

// Unsubscribe removes a subscription. Events already queued for it are
// still delivered. No-op for an unknown or already removed token.
func (b *Bus) Unsubscribe(token id.SubscriptionID) {
	b.mu.Lock()
	sub, ok := b.byID[token]
	if ok {
		delete(b.byID, token)
		b.subs[sub.kind] = removeSub(b.subs[sub.kind], sub)
	}
	b.mu.Unlock()

	if ok {
		sub.stop()
	}
}

// Publish delivers the event to every handler subscribed to its kind.
// Delivery is asynchronous; Publish returns once the event is queued for
// every current subscriber. Publishing to a closed bus returns
// ErrBusClosed.
func (b *Bus) Publish(ev Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()

		return obscopilot.ErrBusClosed
	}

	targets := b.subs[ev.Kind]
	snapshot := make([]*subscription, len(targets))
	copy(snapshot, targets)
	b.mu.RUnlock()

	for _, sub := range snapshot {
		sub.enqueue(ev)
	}

	return nil
}

// Close stops accepting publishes and subscriptions, then waits for
// every queued delivery to finish or for ctx to expire.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return nil
	}
	b.closed = true

	all := make([]*subscription, 0, len(b.byID))
	for _, sub := range b.byID {
		all = append(all, sub)
	}
	b.subs = make(map[Kind][]*subscription)
	b.byID = make(map[id.SubscriptionID]*subscription)
	b.mu.Unlock()

	for _, sub := range all {
		sub.stop()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pump drains one subscription's queue in order, isolating handler
// panics and logging handler errors.
func (b *Bus) pump(sub *subscription) {
	defer b.wg.Done()

	for {
		sub.mu.Lock()
		for len(sub.pending) == 0 && !sub.done {
			sub.cond.Wait()
		}
		if len(sub.pending) == 0 && sub.done {
			sub.mu.Unlock()

			return
		}

		batch := sub.pending
		sub.pending = nil
		sub.mu.Unlock()

		for _, ev := range batch {
			b.deliver(sub, ev)
		}
	}
}

func (b *Bus) deliver(sub *subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panic",
				slog.String("kind", string(ev.Kind)),
				slog.String("subscription", sub.id.String()),
				slog.Any("panic", r),
			)
		}
	}()

	if err := sub.fn(context.Background(), ev); err != nil {
		b.logger.Error("event handler error",
			slog.String("kind", string(ev.Kind)),
			slog.String("subscription", sub.id.String()),
			slog.Any("error", err),
		)
	}
}

func removeSub(subs []*subscription, target *subscription) []*subscription {
	for i, s := range subs {
		if s == target {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}

	return subs
}
