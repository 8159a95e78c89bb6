// Package memory implements the export port in process, mainly for tests
// and local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tripmate/internal/core"
)

// Row is one mirrored expense with the trip it belongs to.
type Row struct {
	TripID   string
	TripName string
	Expense  core.Expense
}

type Store struct {
	mu   sync.Mutex
	rows []Row
}

func New() *Store {
	return &Store{}
}

// AppendExpense records the row and returns a synthetic reference.
func (s *Store) AppendExpense(_ context.Context, trip core.Trip, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{TripID: trip.ID, TripName: trip.Name, Expense: e})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}
