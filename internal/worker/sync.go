// Package worker mirrors ledger writes into the configured export backend.
// The worker consumes change events published by the API server; storage
// stays the source of truth and export is eventually consistent. Exported
// rows are stamped in storage so the periodic catch-up scan can replay
// anything missed while the worker was down.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripmate/internal/amqp"
	"tripmate/internal/core"
	"tripmate/internal/log"
	"tripmate/internal/metrics"
	"tripmate/internal/storage"
)

// Store is the slice of the repository the worker reads and stamps.
type Store interface {
	GetTrip(ctx context.Context, ownerID, tripID string) (*core.Trip, error)
	GetExpense(ctx context.Context, tripID, expenseID string) (*core.Expense, error)
	ListPendingExports(ctx context.Context, limit int) ([]storage.PendingExport, error)
	MarkExpenseExported(ctx context.Context, expenseID string) error
}

// Writer appends one expense row to the export target.
type Writer interface {
	AppendExpense(ctx context.Context, trip core.Trip, e core.Expense) (string, error)
}

type SyncWorker struct {
	store   Store
	writer  Writer
	metrics *metrics.Metrics
	logger  *log.Logger
}

func NewSyncWorker(store Store, writer Writer, m *metrics.Metrics, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		store:   store,
		writer:  writer,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange exports the expense behind a change event. Trip events and
// deletions carry nothing to append and are acknowledged as-is. A missing
// expense means the row was deleted after the event was published; that is
// not an error worth redelivering.
func (w *SyncWorker) HandleChange(ctx context.Context, event *amqp.ChangeEvent) error {
	if event.Entity != amqp.EntityExpense {
		return nil
	}
	if event.Action == amqp.ActionDeleted {
		return nil
	}

	trip, err := w.store.GetTrip(ctx, event.OwnerID, event.TripID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.logger.InfoContext(ctx, "trip gone before export, skipping", log.FieldTripID, event.TripID)
			return nil
		}
		return fmt.Errorf("load trip %s: %w", event.TripID, err)
	}
	expense, err := w.store.GetExpense(ctx, event.TripID, event.ExpenseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.logger.InfoContext(ctx, "expense gone before export, skipping", log.FieldExpenseID, event.ExpenseID)
			return nil
		}
		return fmt.Errorf("load expense %s: %w", event.ExpenseID, err)
	}

	return w.export(ctx, *trip, *expense)
}

// ProcessPending replays up to batchSize expenses that never reached the
// export backend, oldest first. Returns the number exported.
func (w *SyncWorker) ProcessPending(ctx context.Context, batchSize int) (int, error) {
	pending, err := w.store.ListPendingExports(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending exports: %w", err)
	}

	exported := 0
	for _, p := range pending {
		if err := w.export(ctx, p.Trip, p.Expense); err != nil {
			return exported, err
		}
		exported++
	}
	return exported, nil
}

// Run drives the catch-up scan: one pass at startup, then one per
// interval, until ctx is done.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration, batchSize int) error {
	if _, err := w.ProcessPending(ctx, batchSize); err != nil {
		w.logger.Warn("Startup export scan failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := w.ProcessPending(ctx, batchSize)
			if err != nil {
				w.logger.Warn("Periodic export scan failed", "error", err)
				continue
			}
			if n > 0 {
				w.logger.Info("Exported missed expenses", "count", n)
			}
		}
	}
}

func (w *SyncWorker) export(ctx context.Context, trip core.Trip, expense core.Expense) error {
	rowRef, err := w.writer.AppendExpense(ctx, trip, expense)
	if err != nil {
		return fmt.Errorf("append expense %s: %w", expense.ID, err)
	}
	if err := w.store.MarkExpenseExported(ctx, expense.ID); err != nil {
		return fmt.Errorf("mark expense %s exported: %w", expense.ID, err)
	}

	w.metrics.ExportedRows.Inc()
	w.logger.InfoContext(ctx, "expense exported",
		log.FieldTripID, trip.ID,
		log.FieldExpenseID, expense.ID,
		log.FieldSheetsRef, rowRef,
	)
	return nil
}
