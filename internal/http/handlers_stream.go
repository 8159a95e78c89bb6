package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"tripmate/internal/core"
	"tripmate/internal/ledger"
	"tripmate/internal/trips"
)

type tripsStreamEvent struct {
	Trips   []tripPayload `json:"trips"`
	Loading bool          `json:"loading"`
	Error   string        `json:"error,omitempty"`
}

type expensesStreamEvent struct {
	Expenses []expensePayload `json:"expenses"`
	Summary  summaryPayload   `json:"summary"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
}

// expenseListerFunc binds the signed-in owner into the view's loader.
type expenseListerFunc func(ctx context.Context, tripID string) ([]core.Expense, error)

func (f expenseListerFunc) ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error) {
	return f(ctx, tripID)
}

// handleTripsStream pushes the owner's trip list over server-sent events.
// Every change snapshot replaces the previous one wholesale.
func (s *Server) handleTripsStream(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	list := trips.NewList(r.Context(), s.deps.Hub, s.deps.Trips, user.ID)
	defer list.Close()
	s.deps.Metrics.WatchSubscribers.Inc()
	defer s.deps.Metrics.WatchSubscribers.Dec()

	prepareSSE(w)
	// First event carries only the loading flag; snapshots follow.
	if err := writeSSE(w, flusher, tripsStreamEvent{Trips: []tripPayload{}, Loading: true}); err != nil {
		return
	}
	for state := range list.Updates() {
		event := tripsStreamEvent{
			Trips:   toTripPayloads(state.Trips),
			Loading: state.Loading,
		}
		if state.Err != nil {
			event.Error = state.Err.Error()
		}
		if err := writeSSE(w, flusher, event); err != nil {
			return
		}
	}
}

// handleExpensesStream pushes one trip's ledger, totals included, over
// server-sent events.
func (s *Server) handleExpensesStream(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	tripID := r.PathValue("tripID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The stream itself loads by trip only, so prove ownership up front.
	if _, err := s.deps.Trips.GetTrip(r.Context(), user.ID, tripID); err != nil {
		writeDomainError(w, err)
		return
	}

	lister := expenseListerFunc(func(ctx context.Context, tripID string) ([]core.Expense, error) {
		return s.deps.Expenses.ListExpenses(ctx, user.ID, tripID)
	})
	view := ledger.NewView(r.Context(), s.deps.Hub, lister, tripID)
	defer view.Close()
	s.deps.Metrics.WatchSubscribers.Inc()
	defer s.deps.Metrics.WatchSubscribers.Dec()

	prepareSSE(w)
	if err := writeSSE(w, flusher, expensesStreamEvent{Expenses: []expensePayload{}, Summary: toSummaryPayload(core.LedgerSummary{}), Loading: true}); err != nil {
		return
	}
	for state := range view.Updates() {
		event := expensesStreamEvent{
			Expenses: toExpensePayloads(state.Expenses),
			Summary:  toSummaryPayload(state.Summary),
			Loading:  state.Loading,
		}
		if state.Err != nil {
			event.Error = state.Err.Error()
		}
		if err := writeSSE(w, flusher, event); err != nil {
			return
		}
	}
}

func prepareSSE(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
