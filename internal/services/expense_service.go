package services

import (
	"context"
	"fmt"
	"time"

	"tripmate/internal/amqp"
	"tripmate/internal/cache"
	"tripmate/internal/core"
	"tripmate/internal/ledger"
	"tripmate/internal/log"
	"tripmate/internal/metrics"
	"tripmate/internal/storage"
	"tripmate/internal/watch"
)

const (
	summaryCacheSize = 256
	summaryCacheTTL  = time.Minute
)

// ExpenseService handles ledger writes and summaries. Every write checks
// that the trip belongs to the calling owner before touching the ledger.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	hub        *watch.Hub
	metrics    *metrics.Metrics
	logger     *log.Logger
	summaries  *cache.LRU[core.LedgerSummary]
}

func NewExpenseService(repo *storage.SQLiteRepository, amqpClient *amqp.Client, hub *watch.Hub, m *metrics.Metrics, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		storage:    repo,
		amqpClient: amqpClient,
		hub:        hub,
		metrics:    m,
		logger:     logger.WithComponent(log.ComponentExpense),
		summaries:  cache.NewLRU[core.LedgerSummary](summaryCacheSize, summaryCacheTTL),
	}
}

// SummaryCache exposes the cache for cleanup registration.
func (s *ExpenseService) SummaryCache() cache.Cleaner {
	return s.summaries
}

// CreateExpense validates and saves a new expense under the trip's ledger.
func (s *ExpenseService) CreateExpense(ctx context.Context, ownerID string, e *core.Expense) error {
	if _, err := s.storage.GetTrip(ctx, ownerID, e.TripID); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}

	if err := s.storage.CreateExpense(ctx, e); err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	s.afterWrite(ctx, amqp.ActionCreated, ownerID, e.TripID, e.ID)
	return nil
}

// UpdateExpense rewrites an existing expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, ownerID string, e *core.Expense) error {
	if _, err := s.storage.GetTrip(ctx, ownerID, e.TripID); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return err
	}
	s.afterWrite(ctx, amqp.ActionUpdated, ownerID, e.TripID, e.ID)
	return nil
}

// DeleteExpense removes one expense from the trip's ledger.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, tripID, expenseID string) error {
	if _, err := s.storage.GetTrip(ctx, ownerID, tripID); err != nil {
		return err
	}
	if err := s.storage.DeleteExpense(ctx, tripID, expenseID); err != nil {
		return err
	}
	s.afterWrite(ctx, amqp.ActionDeleted, ownerID, tripID, expenseID)
	return nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, ownerID, tripID, expenseID string) (*core.Expense, error) {
	if _, err := s.storage.GetTrip(ctx, ownerID, tripID); err != nil {
		return nil, err
	}
	return s.storage.GetExpense(ctx, tripID, expenseID)
}

func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID, tripID string) ([]core.Expense, error) {
	if _, err := s.storage.GetTrip(ctx, ownerID, tripID); err != nil {
		return nil, err
	}
	return s.storage.ListExpenses(ctx, tripID)
}

// Summary returns the trip's aggregated ledger, cached briefly and
// invalidated on every write to the trip.
func (s *ExpenseService) Summary(ctx context.Context, ownerID, tripID string) (core.LedgerSummary, error) {
	if _, err := s.storage.GetTrip(ctx, ownerID, tripID); err != nil {
		return core.LedgerSummary{}, err
	}

	if summary, ok := s.summaries.Get(tripID); ok {
		return summary, nil
	}

	expenses, err := s.storage.ListExpenses(ctx, tripID)
	if err != nil {
		return core.LedgerSummary{}, err
	}
	summary := core.Summarize(expenses)
	s.summaries.Set(tripID, summary)
	return summary, nil
}

// FormPersister binds the entry form's persistence port to one owner, so a
// submitted draft runs through the same ownership and validation path as
// the direct API.
func (s *ExpenseService) FormPersister(ownerID string) ledger.Persister {
	return &formPersister{svc: s, ownerID: ownerID}
}

type formPersister struct {
	svc     *ExpenseService
	ownerID string
}

func (p *formPersister) CreateExpense(ctx context.Context, e *core.Expense) error {
	return p.svc.CreateExpense(ctx, p.ownerID, e)
}

func (p *formPersister) UpdateExpense(ctx context.Context, e *core.Expense) error {
	return p.svc.UpdateExpense(ctx, p.ownerID, e)
}

func (s *ExpenseService) afterWrite(ctx context.Context, action, ownerID, tripID, expenseID string) {
	s.metrics.ExpensesWritten.WithLabelValues(action).Inc()
	s.summaries.Delete(tripID)

	if s.amqpClient != nil {
		event := amqp.NewExpenseEvent(action, ownerID, tripID, expenseID)
		if err := s.amqpClient.PublishChange(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish change event",
				"error", err,
				log.FieldTripID, tripID,
				log.FieldExpenseID, expenseID)
		} else {
			s.metrics.EventsPublished.Inc()
		}
	}

	s.hub.Notify(watch.ExpensesTopic(tripID))
}
