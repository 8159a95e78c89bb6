package trips

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tripmate/internal/core"
	"tripmate/internal/log"
	"tripmate/internal/watch"
)

type fakeLister struct {
	mu    sync.Mutex
	trips map[string][]core.Trip
	err   error
}

func (f *fakeLister) ListTrips(_ context.Context, ownerID string) ([]core.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]core.Trip, len(f.trips[ownerID]))
	copy(out, f.trips[ownerID])
	return out, nil
}

func (f *fakeLister) set(ownerID string, trips []core.Trip, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trips == nil {
		f.trips = make(map[string][]core.Trip)
	}
	f.trips[ownerID] = trips
	f.err = err
}

func recvList(t *testing.T, l *List) ListState {
	t.Helper()
	select {
	case s, ok := <-l.Updates():
		if !ok {
			t.Fatal("updates channel closed")
		}
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for list state")
		return ListState{}
	}
}

func TestListStartsLoading(t *testing.T) {
	store := &fakeLister{}
	store.set("u1", nil, nil)
	hub := watch.NewHub(log.New(log.Config{Level: slog.LevelError, Component: "test"}))

	l := NewList(context.Background(), hub, store, "u1")
	defer l.Close()

	// State() before the first snapshot may already have flipped, but the
	// first delivered snapshot always ends the loading phase.
	got := recvList(t, l)
	if got.Loading {
		t.Errorf("first snapshot = %+v, want loading over", got)
	}
	if got.Err != nil || len(got.Trips) != 0 {
		t.Errorf("first snapshot = %+v, want empty list", got)
	}
}

func TestListReplacesOnNotify(t *testing.T) {
	store := &fakeLister{}
	store.set("u1", []core.Trip{{ID: "t1", Name: "old"}}, nil)
	hub := watch.NewHub(log.New(log.Config{Level: slog.LevelError, Component: "test"}))

	l := NewList(context.Background(), hub, store, "u1")
	defer l.Close()
	recvList(t, l)

	store.set("u1", []core.Trip{{ID: "t2", Name: "new"}, {ID: "t1", Name: "old"}}, nil)
	hub.Notify(watch.TripsTopic("u1"))

	got := recvList(t, l)
	if len(got.Trips) != 2 || got.Trips[0].ID != "t2" {
		t.Errorf("state after notify = %+v, want full replacement", got)
	}
}

func TestListErrorDistinctFromEmpty(t *testing.T) {
	wantErr := errors.New("backend down")
	store := &fakeLister{}
	store.set("u1", []core.Trip{{ID: "t1"}}, nil)
	hub := watch.NewHub(log.New(log.Config{Level: slog.LevelError, Component: "test"}))

	l := NewList(context.Background(), hub, store, "u1")
	defer l.Close()
	recvList(t, l)

	store.set("u1", nil, wantErr)
	hub.Notify(watch.TripsTopic("u1"))

	got := recvList(t, l)
	if !errors.Is(got.Err, wantErr) {
		t.Fatalf("state err = %v, want %v", got.Err, wantErr)
	}
	if len(got.Trips) != 0 {
		t.Errorf("error state carries trips %v", got.Trips)
	}

	// recovery clears the error
	store.set("u1", []core.Trip{}, nil)
	hub.Notify(watch.TripsTopic("u1"))
	got = recvList(t, l)
	if got.Err != nil {
		t.Errorf("state after recovery = %+v, want no error", got)
	}
}

func TestListScopedToOwner(t *testing.T) {
	store := &fakeLister{}
	store.set("u1", nil, nil)
	store.set("u2", nil, nil)
	hub := watch.NewHub(log.New(log.Config{Level: slog.LevelError, Component: "test"}))

	l := NewList(context.Background(), hub, store, "u1")
	defer l.Close()
	recvList(t, l)

	hub.Notify(watch.TripsTopic("u2"))
	select {
	case got := <-l.Updates():
		t.Errorf("received %+v for another owner's topic", got)
	case <-time.After(50 * time.Millisecond):
	}
}
