// Package storage provides the SQLite-backed document repository: users,
// per-user trips and per-trip expenses, mirroring the hosted document
// store's namespace layout.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tripmate/internal/core"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("already exists")
	ErrTokenExpired = errors.New("token expired")
)

// Token purposes for auth_tokens rows.
const (
	TokenPurposeVerify = "verify"
	TokenPurposeReset  = "reset"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Pragmas go through the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applyMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ---- users ----

// CreateUser persists a new account with its password hash. The ID and
// CreatedAt fields are assigned here.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User, passwordHash string) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, email_verified, photo_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FullName, passwordHash, boolToInt(u.EmailVerified), u.PhotoURL, u.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "email", u.Email)
	return nil
}

// GetUserByEmail returns the user and the stored password hash.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, string, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, email_verified, photo_url, created_at
		 FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	u, _, err := r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, email_verified, photo_url, created_at
		 FROM users WHERE id = ?`, id))
	return u, err
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, string, error) {
	var (
		u         core.User
		hash      string
		verified  int
		createdAt int64
	)
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &hash, &verified, &u.PhotoURL, &createdAt)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("scan user: %w", err)
	}
	u.EmailVerified = verified != 0
	u.CreatedAt = time.Unix(0, createdAt)
	return &u, hash, nil
}

// MarkEmailVerified flips the verification flag after a verify token is
// consumed.
func (r *SQLiteRepository) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET email_verified = 1 WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	return requireRow(res)
}

// UpdatePasswordHash replaces the stored credential after a password reset.
func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return requireRow(res)
}

// UpdatePhotoURL stores the blob download URL on the profile.
func (r *SQLiteRepository) UpdatePhotoURL(ctx context.Context, userID, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET photo_url = ? WHERE id = ?`, url, userID)
	if err != nil {
		return fmt.Errorf("update photo url: %w", err)
	}
	return requireRow(res)
}

// ---- auth tokens ----

// CreateToken stores a single-use verification or reset token.
func (r *SQLiteRepository) CreateToken(ctx context.Context, token, userID, purpose string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (token, user_id, purpose, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		token, userID, purpose, expiresAt.UnixNano(), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// ConsumeToken deletes the token and returns its user ID. The delete and
// the read are one statement so a token can only ever be consumed once.
// Expired tokens are deleted and reported as ErrTokenExpired.
func (r *SQLiteRepository) ConsumeToken(ctx context.Context, token, purpose string) (string, error) {
	var (
		userID    string
		expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM auth_tokens WHERE token = ? AND purpose = ? RETURNING user_id, expires_at`,
		token, purpose,
	).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume token: %w", err)
	}

	if time.Now().UnixNano() > expiresAt {
		return "", ErrTokenExpired
	}
	return userID, nil
}

// ---- trips ----

// CreateTrip persists a trip under its owner's namespace. ID and CreatedAt
// are assigned here (create-with-generated-id semantics).
func (r *SQLiteRepository) CreateTrip(ctx context.Context, t *core.Trip) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trips (id, owner_id, name, destination, start_date, end_date, friends, trip_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name, t.Destination, t.StartDate, t.EndDate, t.Friends, string(t.Type), t.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip saved",
		"trip_id", t.ID,
		"user_id", t.OwnerID,
		"destination", t.Destination)
	return nil
}

// GetTrip fetches one trip, scoped to its owner.
func (r *SQLiteRepository) GetTrip(ctx context.Context, ownerID, tripID string) (*core.Trip, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, destination, start_date, end_date, friends, trip_type, created_at
		 FROM trips WHERE id = ? AND owner_id = ?`, tripID, ownerID)

	t, err := scanTrip(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// ListTrips returns all of an owner's trips, newest first.
func (r *SQLiteRepository) ListTrips(ctx context.Context, ownerID string) ([]core.Trip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, destination, start_date, end_date, friends, trip_type, created_at
		 FROM trips WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []core.Trip
	for rows.Next() {
		t, err := scanTrip(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}
	return trips, nil
}

// DeleteTrip removes a trip and, via foreign key cascade, its expenses.
func (r *SQLiteRepository) DeleteTrip(ctx context.Context, ownerID, tripID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ? AND owner_id = ?`, tripID, ownerID)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return requireRow(res)
}

func scanTrip(scan func(...any) error) (*core.Trip, error) {
	var (
		t         core.Trip
		tripType  string
		createdAt int64
	)
	err := scan(&t.ID, &t.OwnerID, &t.Name, &t.Destination, &t.StartDate, &t.EndDate, &t.Friends, &tripType, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Type = core.TripType(tripType)
	t.CreatedAt = time.Unix(0, createdAt)
	return &t, nil
}

// ---- expenses ----

// CreateExpense persists an expense under its trip's namespace. ID,
// CreatedAt and UpdatedAt are assigned here.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, title, amount_cents, category, split_count, per_person_cents, spent_on, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TripID, e.Title, e.Amount.Cents, string(e.Category), e.SplitCount, e.PerPerson.Cents,
		e.Date.UnixNano(), e.CreatedAt.UnixNano(), e.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"trip_id", e.TripID,
		"amount_cents", e.Amount.Cents,
		"category", string(e.Category))
	return nil
}

// UpdateExpense rewrites an existing expense; CreatedAt is preserved,
// UpdatedAt is refreshed.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e *core.Expense) error {
	e.UpdatedAt = time.Now()
	// Clearing exported_at queues the edited row for re-export.
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET title = ?, amount_cents = ?, category = ?, split_count = ?, per_person_cents = ?, spent_on = ?, updated_at = ?, exported_at = NULL
		 WHERE id = ? AND trip_id = ?`,
		e.Title, e.Amount.Cents, string(e.Category), e.SplitCount, e.PerPerson.Cents,
		e.Date.UnixNano(), e.UpdatedAt.UnixNano(), e.ID, e.TripID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, tripID, expenseID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND trip_id = ?`, expenseID, tripID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, tripID, expenseID string) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, trip_id, title, amount_cents, category, split_count, per_person_cents, spent_on, created_at, updated_at
		 FROM expenses WHERE id = ? AND trip_id = ?`, expenseID, tripID)

	e, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns a trip's expenses in insertion order.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, trip_id, title, amount_cents, category, split_count, per_person_cents, spent_on, created_at, updated_at
		 FROM expenses WHERE trip_id = ? ORDER BY created_at`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// PendingExport pairs an unexported expense with its trip for the sync
// worker's catch-up scan.
type PendingExport struct {
	Trip    core.Trip
	Expense core.Expense
}

// ListPendingExports returns expenses not yet mirrored to the export
// backend, oldest first, joined with their trips.
func (r *SQLiteRepository) ListPendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.trip_id, e.title, e.amount_cents, e.category, e.split_count, e.per_person_cents, e.spent_on, e.created_at, e.updated_at,
		        t.id, t.owner_id, t.name, t.destination, t.start_date, t.end_date, t.friends, t.trip_type, t.created_at
		 FROM expenses e JOIN trips t ON t.id = e.trip_id
		 WHERE e.exported_at IS NULL ORDER BY e.created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	defer rows.Close()

	var pending []PendingExport
	for rows.Next() {
		var (
			p                             PendingExport
			category, tripType            string
			spentOn, createdAt, updatedAt int64
			tripCreatedAt                 int64
		)
		err := rows.Scan(
			&p.Expense.ID, &p.Expense.TripID, &p.Expense.Title, &p.Expense.Amount.Cents, &category,
			&p.Expense.SplitCount, &p.Expense.PerPerson.Cents, &spentOn, &createdAt, &updatedAt,
			&p.Trip.ID, &p.Trip.OwnerID, &p.Trip.Name, &p.Trip.Destination, &p.Trip.StartDate,
			&p.Trip.EndDate, &p.Trip.Friends, &tripType, &tripCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		p.Expense.Category = core.Category(category)
		p.Expense.Date = time.Unix(0, spentOn)
		p.Expense.CreatedAt = time.Unix(0, createdAt)
		p.Expense.UpdatedAt = time.Unix(0, updatedAt)
		p.Trip.Type = core.TripType(tripType)
		p.Trip.CreatedAt = time.Unix(0, tripCreatedAt)
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending exports: %w", err)
	}
	return pending, nil
}

// MarkExpenseExported stamps the row so the catch-up scan skips it.
func (r *SQLiteRepository) MarkExpenseExported(ctx context.Context, expenseID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET exported_at = ? WHERE id = ?`,
		time.Now().UnixNano(), expenseID)
	if err != nil {
		return fmt.Errorf("mark expense exported: %w", err)
	}
	return requireRow(res)
}

func scanExpense(scan func(...any) error) (*core.Expense, error) {
	var (
		e                  core.Expense
		category           string
		spentOn, createdAt int64
		updatedAt          int64
	)
	err := scan(&e.ID, &e.TripID, &e.Title, &e.Amount.Cents, &category, &e.SplitCount, &e.PerPerson.Cents,
		&spentOn, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = core.Category(category)
	e.Date = time.Unix(0, spentOn)
	e.CreatedAt = time.Unix(0, createdAt)
	e.UpdatedAt = time.Unix(0, updatedAt)
	return &e, nil
}

// ---- aggregates ----

// ProfileStats computes the profile screen's one-shot aggregate: trip count
// and total spent across all of the owner's trips.
func (r *SQLiteRepository) ProfileStats(ctx context.Context, ownerID string) (core.ProfileStats, error) {
	var stats core.ProfileStats

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trips WHERE owner_id = ?`, ownerID).Scan(&stats.TripCount)
	if err != nil {
		return stats, fmt.Errorf("count trips: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(e.amount_cents), 0)
		 FROM expenses e JOIN trips t ON e.trip_id = t.id
		 WHERE t.owner_id = ?`, ownerID).Scan(&stats.TotalSpent.Cents)
	if err != nil {
		return stats, fmt.Errorf("sum expenses: %w", err)
	}

	return stats, nil
}

// ---- helpers ----

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text;
	// there is no exported error code type to match against.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
