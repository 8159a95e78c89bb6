// Package ledger drives a trip's expense screen: a live aggregated view of
// the ledger and the add/edit form's state machine.
package ledger

import (
	"context"
	"sync"

	"tripmate/internal/core"
	"tripmate/internal/watch"
)

// ExpenseLister is the slice of the repository the live view needs.
type ExpenseLister interface {
	ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error)
}

// ViewState is a point-in-time view of a trip's ledger. The summary is
// recomputed from scratch on every snapshot. Err set means the reload
// failed; the zeroed summary then reflects the failure, not an empty
// ledger.
type ViewState struct {
	Expenses []core.Expense
	Summary  core.LedgerSummary
	Loading  bool
	Err      error
}

// View is a live aggregation over one trip's expenses.
type View struct {
	mu      sync.RWMutex
	state   ViewState
	updates chan ViewState
	sub     *watch.Subscription[[]core.Expense]
}

// NewView starts watching tripID's ledger. Every change snapshot replaces
// the expense list and recomputes totals, per-category breakdown and chart
// slices in one pass.
func NewView(ctx context.Context, hub *watch.Hub, store ExpenseLister, tripID string) *View {
	v := &View{
		state:   ViewState{Loading: true},
		updates: make(chan ViewState, 1),
	}
	v.sub = watch.Subscribe(ctx, hub, watch.ExpensesTopic(tripID), func(ctx context.Context) ([]core.Expense, error) {
		return store.ListExpenses(ctx, tripID)
	})

	go func() {
		defer close(v.updates)
		for snap := range v.sub.Updates() {
			next := ViewState{Expenses: snap.Items, Err: snap.Err}
			if snap.Err == nil {
				next.Summary = core.Summarize(snap.Items)
			}
			v.apply(next)
		}
	}()

	return v
}

// State returns the latest view.
func (v *View) State() ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Updates streams recomputed views, newest only when the consumer lags.
func (v *View) Updates() <-chan ViewState {
	return v.updates
}

// Close stops watching.
func (v *View) Close() {
	v.sub.Close()
}

func (v *View) apply(s ViewState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()

	select {
	case <-v.updates:
	default:
	}
	v.updates <- s
}
