// Package session tracks the current authenticated user and broadcasts
// changes to subscribers. Only verified accounts are ever published; an
// unverified login never becomes the current user.
package session

import (
	"sync"

	"tripmate/internal/core"
)

// State is a point-in-time view of the session. Loading is true until the
// first publish, so consumers can tell "still resolving" apart from
// "resolved to signed out".
type State struct {
	User    *core.User
	Loading bool
}

// SignedIn reports whether a verified user is current.
func (s State) SignedIn() bool {
	return s.User != nil
}

// Manager holds the session state and fans changes out to subscribers.
// Each subscriber gets the current state immediately on subscribe and a
// fresh State on every change.
type Manager struct {
	mu    sync.RWMutex
	state State
	subs  map[int]chan State
	next  int
}

func NewManager() *Manager {
	return &Manager{
		state: State{Loading: true},
		subs:  make(map[int]chan State),
	}
}

// Current returns the latest published state.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetUser publishes a verified user as the current session. Unverified
// users are published as signed out.
func (m *Manager) SetUser(user *core.User) {
	if user != nil && !user.EmailVerified {
		user = nil
	}
	m.publish(State{User: user})
}

// Clear publishes a signed-out state.
func (m *Manager) Clear() {
	m.publish(State{})
}

func (m *Manager) publish(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	for _, ch := range m.subs {
		// drop the stale value if the subscriber has not drained yet
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Subscribe registers a listener. The returned channel carries the current
// state right away and then one value per change, keeping only the latest
// when the listener lags. Call the cancel func to unsubscribe.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	ch := make(chan State, 1)
	ch <- m.state
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
	return ch, cancel
}
