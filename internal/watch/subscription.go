package watch

import (
	"context"
)

// Snapshot is one delivery of a watched result set. Err is set when the
// reload failed; Items then holds the zero value and the subscriber should
// surface the error state rather than an empty list.
type Snapshot[T any] struct {
	Items T
	Err   error
}

// Loader produces the full current result set for a topic.
type Loader[T any] func(ctx context.Context) (T, error)

// Subscription delivers snapshots of a watched result set. The channel
// carries an initial snapshot and then one per change signal, keeping only
// the newest when the consumer lags.
type Subscription[T any] struct {
	updates chan Snapshot[T]
	cancel  func()
}

// Updates is the snapshot stream. It is closed when the subscription's
// context ends or Close is called.
func (s *Subscription[T]) Updates() <-chan Snapshot[T] {
	return s.updates
}

// Close detaches from the hub. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.cancel()
}

// Subscribe attaches a loader to a topic. The loader runs once right away
// and again after every Notify on the topic; each run's result replaces
// any undelivered snapshot.
func Subscribe[T any](ctx context.Context, h *Hub, topic string, load Loader[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	signals, unregister := h.register(topic)

	sub := &Subscription[T]{
		updates: make(chan Snapshot[T], 1),
		cancel: func() {
			unregister()
			cancel()
		},
	}

	go func() {
		defer close(sub.updates)
		sub.deliver(ctx, load)
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				sub.deliver(ctx, load)
			}
		}
	}()

	return sub
}

func (s *Subscription[T]) deliver(ctx context.Context, load Loader[T]) {
	items, err := load(ctx)
	snap := Snapshot[T]{Items: items, Err: err}
	if err != nil {
		var zero T
		snap.Items = zero
	}

	// replace the pending snapshot instead of queueing behind it
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	case <-ctx.Done():
	}
}
