package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"tripmate/internal/amqp"
	"tripmate/internal/core"
	"tripmate/internal/export/memory"
	"tripmate/internal/log"
	"tripmate/internal/metrics"
	"tripmate/internal/storage"
)

func newFixture(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	store := memory.New()
	logger := log.New(log.Config{Level: slog.LevelError})
	return NewSyncWorker(repo, store, metrics.New(), logger), repo, store
}

func seedTrip(t *testing.T, repo *storage.SQLiteRepository, ownerID string) *core.Trip {
	t.Helper()

	user := &core.User{Email: ownerID + "@example.com", FullName: "Owner"}
	if err := repo.CreateUser(context.Background(), user, "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	trip := &core.Trip{
		OwnerID:     user.ID,
		Name:        "Tuscany",
		Destination: "Italy",
		StartDate:   "2026-09-01",
		EndDate:     "2026-09-10",
		Type:        core.TypeRoadTrip,
	}
	if err := repo.CreateTrip(context.Background(), trip); err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip
}

func seedExpense(t *testing.T, repo *storage.SQLiteRepository, tripID string) *core.Expense {
	t.Helper()

	date, _ := core.ParseISODate("2026-09-02")
	e := &core.Expense{
		TripID:     tripID,
		Title:      "Dinner",
		Amount:     core.Money{Cents: 8000},
		Category:   core.CategoryFood,
		SplitCount: 2,
		PerPerson:  core.Money{Cents: 4000},
		Date:       date,
	}
	if err := repo.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}

func TestHandleChangeExportsExpense(t *testing.T) {
	w, repo, store := newFixture(t)
	trip := seedTrip(t, repo, "ada")
	expense := seedExpense(t, repo, trip.ID)

	event := amqp.NewExpenseEvent(amqp.ActionCreated, trip.OwnerID, trip.ID, expense.ID)
	if err := w.HandleChange(context.Background(), event); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	if rows[0].TripName != "Tuscany" || rows[0].Expense.Title != "Dinner" {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestHandleChangeSkipsNonExportableEvents(t *testing.T) {
	w, repo, store := newFixture(t)
	trip := seedTrip(t, repo, "ada")
	expense := seedExpense(t, repo, trip.ID)

	events := []*amqp.ChangeEvent{
		amqp.NewTripEvent(amqp.ActionCreated, trip.OwnerID, trip.ID),
		amqp.NewExpenseEvent(amqp.ActionDeleted, trip.OwnerID, trip.ID, expense.ID),
	}
	for _, event := range events {
		if err := w.HandleChange(context.Background(), event); err != nil {
			t.Fatalf("HandleChange(%s/%s) error = %v", event.Entity, event.Action, err)
		}
	}

	if rows := store.Rows(); len(rows) != 0 {
		t.Fatalf("exported %d rows, want 0", len(rows))
	}
}

func TestHandleChangeToleratesVanishedExpense(t *testing.T) {
	w, repo, store := newFixture(t)
	trip := seedTrip(t, repo, "ada")

	event := amqp.NewExpenseEvent(amqp.ActionCreated, trip.OwnerID, trip.ID, "gone")
	if err := w.HandleChange(context.Background(), event); err != nil {
		t.Fatalf("HandleChange() error = %v, want nil for vanished expense", err)
	}
	if rows := store.Rows(); len(rows) != 0 {
		t.Fatalf("exported %d rows, want 0", len(rows))
	}
}

func TestProcessPendingExportsMissedRows(t *testing.T) {
	w, repo, store := newFixture(t)
	trip := seedTrip(t, repo, "ada")
	seedExpense(t, repo, trip.ID)

	date, _ := core.ParseISODate("2026-09-03")
	second := &core.Expense{
		TripID:     trip.ID,
		Title:      "Fuel",
		Amount:     core.Money{Cents: 4550},
		Category:   core.CategoryTravel,
		SplitCount: 1,
		PerPerson:  core.Money{Cents: 4550},
		Date:       date,
	}
	if err := repo.CreateExpense(context.Background(), second); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	n, err := w.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("ProcessPending() = %d, want 2", n)
	}
	if rows := store.Rows(); len(rows) != 2 {
		t.Fatalf("exported %d rows, want 2", len(rows))
	}

	// exported rows are stamped, a second scan finds nothing
	n, err = w.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("second ProcessPending() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("second ProcessPending() = %d, want 0", n)
	}
}

func TestProcessPendingHonorsBatchSize(t *testing.T) {
	w, repo, store := newFixture(t)
	trip := seedTrip(t, repo, "ada")
	for i := 0; i < 3; i++ {
		seedExpense(t, repo, trip.ID)
	}

	n, err := w.ProcessPending(context.Background(), 2)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("first batch = %d, want 2", n)
	}

	n, err = w.ProcessPending(context.Background(), 2)
	if err != nil {
		t.Fatalf("second ProcessPending() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("second batch = %d, want 1", n)
	}
	if rows := store.Rows(); len(rows) != 3 {
		t.Fatalf("exported %d rows, want 3", len(rows))
	}
}

func TestHandleChangeStampsExportedRow(t *testing.T) {
	w, repo, store := newFixture(t)
	trip := seedTrip(t, repo, "ada")
	expense := seedExpense(t, repo, trip.ID)

	event := amqp.NewExpenseEvent(amqp.ActionCreated, trip.OwnerID, trip.ID, expense.ID)
	if err := w.HandleChange(context.Background(), event); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}

	n, err := w.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("catch-up scan exported %d rows after event delivery, want 0", n)
	}
	if rows := store.Rows(); len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
}
