package broadcast

import (
	"log/slog"
	"slices"
	"sync"
)

// Sequenced wraps a published event with the sequence id it was stamped
// with at publish time.
type Sequenced[T any] struct {
	SequenceID int64
	Event      T
}

// Broadcaster fans published events out to all registered listeners,
// synchronously and in registration order. Each event is stamped with a
// monotonically increasing sequence id, starting at 0. The counter is
// in-memory state only and resets when the broadcaster is reconstructed.
type Broadcaster[T any] struct {
	lock   sync.Mutex
	seq    int64
	nextID int64
	subs   []subscriber[T] // in registration order
}

type subscriber[T any] struct {
	id int64
	fn func(Sequenced[T])
}

// New creates a new broadcaster with an empty listener set.
func New[T any]() *Broadcaster[T] { return &Broadcaster[T]{} }

type Subscription[T any] struct {
	b  *Broadcaster[T]
	id int64
}

// Close unsubscribes and destroys the subscription.
// Closing an already closed subscription is a no-op.
func (s Subscription[T]) Close() {
	s.b.lock.Lock()
	defer s.b.lock.Unlock()
	s.b.subs = slices.DeleteFunc(s.b.subs, func(sub subscriber[T]) bool {
		return sub.id == s.id
	})
}

// Subscribe registers fn and calls it for every subsequently published
// event. Subscribing the same function twice yields two independent
// subscriptions and two deliveries per event.
func (b *Broadcaster[T]) Subscribe(fn func(Sequenced[T])) Subscription[T] {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscriber[T]{id: b.nextID, fn: fn})
	return Subscription[T]{b: b, id: b.nextID}
}

// Publish stamps event with the next sequence id and delivers it to every
// listener registered at the time of the call, in registration order.
// Delivery runs to completion before Publish returns. A panicking listener
// doesn't prevent delivery to the listeners after it. Closing a
// subscription from within a listener takes effect for later publishes.
func (b *Broadcaster[T]) Publish(event T) (notified int, seq int64) {
	b.lock.Lock()
	seq = b.seq
	b.seq++
	subs := slices.Clone(b.subs)
	b.lock.Unlock()

	msg := Sequenced[T]{SequenceID: seq, Event: event}
	for _, s := range subs {
		deliver(s.fn, msg)
		notified++
	}
	return notified, seq
}

func deliver[T any](fn func(Sequenced[T]), msg Sequenced[T]) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("broadcast listener panicked", slog.Any("panic", r))
		}
	}()
	fn(msg)
}
