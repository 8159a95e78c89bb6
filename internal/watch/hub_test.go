package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tripmate/internal/log"
)

func testHub() *Hub {
	return NewHub(log.New(log.Config{Level: slog.LevelError, Component: "test"}))
}

func recvSnapshot[T any](t *testing.T, sub *Subscription[T]) Snapshot[T] {
	t.Helper()
	select {
	case snap, ok := <-sub.Updates():
		if !ok {
			t.Fatal("updates channel closed")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot[T]{}
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	hub := testHub()
	sub := Subscribe(context.Background(), hub, TripsTopic("u1"), func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	defer sub.Close()

	snap := recvSnapshot(t, sub)
	if snap.Err != nil || len(snap.Items) != 2 {
		t.Errorf("initial snapshot = %+v", snap)
	}
}

func TestNotifyTriggersReload(t *testing.T) {
	hub := testHub()

	var mu sync.Mutex
	items := []string{"first"}

	sub := Subscribe(context.Background(), hub, ExpensesTopic("t1"), func(context.Context) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make([]string, len(items))
		copy(out, items)
		return out, nil
	})
	defer sub.Close()

	recvSnapshot(t, sub)

	mu.Lock()
	items = []string{"first", "second"}
	mu.Unlock()
	hub.Notify(ExpensesTopic("t1"))

	snap := recvSnapshot(t, sub)
	if len(snap.Items) != 2 {
		t.Errorf("snapshot after notify = %+v, want full replacement set", snap)
	}
}

func TestNotifyIsScopedToTopic(t *testing.T) {
	hub := testHub()

	loads := make(chan string, 10)
	subA := Subscribe(context.Background(), hub, TripsTopic("a"), func(context.Context) (int, error) {
		loads <- "a"
		return 0, nil
	})
	defer subA.Close()
	subB := Subscribe(context.Background(), hub, TripsTopic("b"), func(context.Context) (int, error) {
		loads <- "b"
		return 0, nil
	})
	defer subB.Close()

	recvSnapshot(t, subA)
	recvSnapshot(t, subB)
	<-loads
	<-loads

	hub.Notify(TripsTopic("a"))
	recvSnapshot(t, subA)
	if got := <-loads; got != "a" {
		t.Errorf("reload on topic %q, want a", got)
	}

	select {
	case snap := <-subB.Updates():
		t.Errorf("unrelated topic received %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoaderErrorBecomesErrorSnapshot(t *testing.T) {
	hub := testHub()
	wantErr := errors.New("storage offline")

	sub := Subscribe(context.Background(), hub, TripsTopic("u1"), func(context.Context) ([]string, error) {
		return []string{"stale"}, wantErr
	})
	defer sub.Close()

	snap := recvSnapshot(t, sub)
	if !errors.Is(snap.Err, wantErr) {
		t.Fatalf("snapshot err = %v, want %v", snap.Err, wantErr)
	}
	if snap.Items != nil {
		t.Errorf("error snapshot carries items %v, want none", snap.Items)
	}
}

func TestLaggingSubscriberCoalesces(t *testing.T) {
	hub := testHub()

	var mu sync.Mutex
	version := 0

	sub := Subscribe(context.Background(), hub, TripsTopic("u1"), func(context.Context) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		version++
		return version, nil
	})
	defer sub.Close()

	recvSnapshot(t, sub)

	// several notifies without draining
	for i := 0; i < 5; i++ {
		hub.Notify(TripsTopic("u1"))
	}
	time.Sleep(100 * time.Millisecond)

	snap := recvSnapshot(t, sub)
	mu.Lock()
	latest := version
	mu.Unlock()
	if snap.Items != latest {
		t.Errorf("snapshot version = %d, want latest %d", snap.Items, latest)
	}
}

func TestCloseUnregistersAndClosesUpdates(t *testing.T) {
	hub := testHub()
	topic := TripsTopic("u1")

	sub := Subscribe(context.Background(), hub, topic, func(context.Context) (int, error) {
		return 1, nil
	})
	recvSnapshot(t, sub)
	if got := hub.Subscribers(topic); got != 1 {
		t.Fatalf("Subscribers() = %d, want 1", got)
	}

	sub.Close()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.Updates():
			if !ok {
				if got := hub.Subscribers(topic); got != 0 {
					t.Errorf("Subscribers() after close = %d, want 0", got)
				}
				return
			}
		case <-deadline:
			t.Fatal("updates channel never closed")
		}
	}
}

func TestContextCancelEndsSubscription(t *testing.T) {
	hub := testHub()
	ctx, cancel := context.WithCancel(context.Background())

	sub := Subscribe(ctx, hub, TripsTopic("u1"), func(context.Context) (int, error) {
		return 1, nil
	})
	recvSnapshot(t, sub)

	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel never closed after context cancel")
		}
	}
}
