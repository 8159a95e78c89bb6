package session

import (
	"testing"
	"time"

	"tripmate/internal/core"
)

func recvState(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state")
		return State{}
	}
}

func TestInitialStateIsLoading(t *testing.T) {
	m := NewManager()

	got := m.Current()
	if !got.Loading || got.User != nil {
		t.Errorf("Current() = %+v, want loading with no user", got)
	}
}

func TestSubscribeDeliversCurrentStateFirst(t *testing.T) {
	m := NewManager()
	ch, cancel := m.Subscribe()
	defer cancel()

	got := recvState(t, ch)
	if !got.Loading {
		t.Errorf("first delivery = %+v, want loading", got)
	}
}

func TestSetUserPublishesVerifiedUser(t *testing.T) {
	m := NewManager()
	ch, cancel := m.Subscribe()
	defer cancel()
	recvState(t, ch) // initial

	m.SetUser(&core.User{ID: "u1", Email: "a@example.com", EmailVerified: true})

	got := recvState(t, ch)
	if got.Loading || !got.SignedIn() || got.User.ID != "u1" {
		t.Errorf("state = %+v, want signed in as u1", got)
	}
}

func TestUnverifiedUserStaysSignedOut(t *testing.T) {
	m := NewManager()

	m.SetUser(&core.User{ID: "u1", Email: "a@example.com", EmailVerified: false})

	got := m.Current()
	if got.SignedIn() || got.Loading {
		t.Errorf("state = %+v, want signed out and not loading", got)
	}
}

func TestClear(t *testing.T) {
	m := NewManager()
	m.SetUser(&core.User{ID: "u1", EmailVerified: true})
	m.Clear()

	got := m.Current()
	if got.SignedIn() {
		t.Errorf("state after Clear() = %+v, want signed out", got)
	}
}

func TestLaggingSubscriberGetsLatestOnly(t *testing.T) {
	m := NewManager()
	ch, cancel := m.Subscribe()
	defer cancel()
	// do not drain: initial state sits in the buffer

	m.SetUser(&core.User{ID: "first", EmailVerified: true})
	m.SetUser(&core.User{ID: "second", EmailVerified: true})

	got := recvState(t, ch)
	if got.User == nil || got.User.ID != "second" {
		t.Errorf("state = %+v, want latest user second", got)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	m := NewManager()
	ch, cancel := m.Subscribe()
	recvState(t, ch)
	cancel()

	m.SetUser(&core.User{ID: "u1", EmailVerified: true})

	select {
	case s, ok := <-ch:
		if ok {
			t.Errorf("received %+v after cancel", s)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
