// Package watch implements live result-set subscriptions. A Hub carries
// change signals per topic; subscriptions re-run their loader on every
// signal and deliver a full replacement snapshot, never a diff.
package watch

import (
	"sync"

	"tripmate/internal/log"
)

// Topic names. One topic per watched result set.
const (
	topicTripsPrefix    = "trips/"
	topicExpensesPrefix = "expenses/"
)

// TripsTopic is the change topic for an owner's trip list.
func TripsTopic(ownerID string) string {
	return topicTripsPrefix + ownerID
}

// ExpensesTopic is the change topic for a trip's expense ledger.
func ExpensesTopic(tripID string) string {
	return topicExpensesPrefix + tripID
}

// Hub fans change signals out to topic subscribers. Signals carry no
// payload; subscribers reload from storage so every delivery reflects the
// full current result set.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[int]chan struct{}
	next   int
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[int]chan struct{}),
		logger: logger.WithComponent(log.ComponentWatch),
	}
}

// Notify signals every subscriber of the topic. Signals coalesce: a
// subscriber that has not consumed the previous signal yet gets exactly
// one pending signal, not a queue.
func (h *Hub) Notify(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.topics[topic]
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	if len(subs) > 0 {
		h.logger.Debug("Change notified", log.FieldTopic, topic, "subscribers", len(subs))
	}
}

// Subscribers reports how many subscriptions a topic currently has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) register(topic string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[int]chan struct{})
	}
	h.topics[topic][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.topics[topic], id)
		if len(h.topics[topic]) == 0 {
			delete(h.topics, topic)
		}
	}
	return ch, cancel
}
