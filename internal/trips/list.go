// Package trips adapts the trip storage into a live list view. The view
// replaces its contents wholesale on every change snapshot and keeps a
// load failure distinct from an empty list.
package trips

import (
	"context"
	"sync"

	"tripmate/internal/core"
	"tripmate/internal/watch"
)

// Lister is the slice of the repository the list view needs.
type Lister interface {
	ListTrips(ctx context.Context, ownerID string) ([]core.Trip, error)
}

// ListState is a point-in-time view of an owner's trips. Loading is true
// until the first snapshot lands. Err set means the last reload failed and
// Trips is empty because of the failure, not because the owner has none.
type ListState struct {
	Trips   []core.Trip
	Loading bool
	Err     error
}

// List is a live view over one owner's trips, newest first. It tracks the
// watch topic for the owner and replaces its state on every snapshot.
type List struct {
	mu      sync.RWMutex
	state   ListState
	updates chan ListState
	sub     *watch.Subscription[[]core.Trip]
}

// NewList starts watching ownerID's trips. The view begins in the loading
// state and leaves it when the first snapshot arrives.
func NewList(ctx context.Context, hub *watch.Hub, store Lister, ownerID string) *List {
	l := &List{
		state:   ListState{Loading: true},
		updates: make(chan ListState, 1),
	}
	l.sub = watch.Subscribe(ctx, hub, watch.TripsTopic(ownerID), func(ctx context.Context) ([]core.Trip, error) {
		return store.ListTrips(ctx, ownerID)
	})

	go func() {
		defer close(l.updates)
		for snap := range l.sub.Updates() {
			l.apply(ListState{Trips: snap.Items, Err: snap.Err})
		}
	}()

	return l
}

// State returns the latest view.
func (l *List) State() ListState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Updates streams state changes, newest only when the consumer lags. The
// channel closes when the list is closed.
func (l *List) Updates() <-chan ListState {
	return l.updates
}

// Close stops watching.
func (l *List) Close() {
	l.sub.Close()
}

func (l *List) apply(s ListState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()

	select {
	case <-l.updates:
	default:
	}
	l.updates <- s
}
