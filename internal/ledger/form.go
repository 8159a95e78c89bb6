package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripmate/internal/core"
)

// FormState is the phase of the add/edit expense form.
type FormState int

const (
	StateIdle FormState = iota
	StateDrafting
	StateEditing
	StateValidating
	StatePersisting
)

func (s FormState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrafting:
		return "drafting"
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StatePersisting:
		return "persisting"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

// ErrInvalidTransition is returned for operations that are not legal in
// the form's current state.
var (
	ErrInvalidTransition = errors.New("operation not allowed in current form state")
	ErrValidation        = errors.New("draft failed validation")
)

// Persister saves a finished draft. Create is used from the drafting
// branch, Update from the editing branch.
type Persister interface {
	CreateExpense(ctx context.Context, e *core.Expense) error
	UpdateExpense(ctx context.Context, e *core.Expense) error
}

// Draft holds the raw form input before validation. Amount and date stay
// as entered; SplitNames wins over SplitCount when both are set.
type Draft struct {
	Title      string
	Amount     string
	Category   string
	SplitNames string
	SplitCount int
	Date       string
}

// Form is the expense entry state machine. It starts idle, moves to
// drafting or editing, passes through validating and persisting on submit,
// and returns to idle on success or back to the input state on failure.
// A Form is not safe for concurrent use.
type Form struct {
	state     FormState
	tripID    string
	draft     Draft
	editing   *core.Expense
	fieldErrs map[string]string
	persister Persister
}

func NewForm(tripID string, persister Persister) *Form {
	return &Form{
		state:     StateIdle,
		tripID:    tripID,
		persister: persister,
	}
}

func (f *Form) State() FormState { return f.state }
func (f *Form) Current() Draft   { return f.draft }

// FieldErrors returns the validation failures of the last submit, keyed by
// field name. Empty after a successful submit.
func (f *Form) FieldErrors() map[string]string { return f.fieldErrs }

// Begin opens a blank form for a new expense.
func (f *Form) Begin() error {
	if f.state != StateIdle {
		return ErrInvalidTransition
	}
	f.state = StateDrafting
	f.draft = Draft{SplitCount: 1}
	f.editing = nil
	f.fieldErrs = nil
	return nil
}

// BeginEdit opens the form prefilled from an existing expense.
func (f *Form) BeginEdit(e core.Expense) error {
	if f.state != StateIdle {
		return ErrInvalidTransition
	}
	f.state = StateEditing
	cp := e
	f.editing = &cp
	f.draft = Draft{
		Title:      e.Title,
		Amount:     e.Amount.String(),
		Category:   string(e.Category),
		SplitCount: e.SplitCount,
		Date:       e.Date.Format("2006-01-02"),
	}
	f.fieldErrs = nil
	return nil
}

// SetDraft replaces the draft. Only legal while drafting or editing.
func (f *Form) SetDraft(d Draft) error {
	if f.state != StateDrafting && f.state != StateEditing {
		return ErrInvalidTransition
	}
	f.draft = d
	return nil
}

// Cancel abandons the draft and returns to idle.
func (f *Form) Cancel() {
	f.state = StateIdle
	f.draft = Draft{}
	f.editing = nil
	f.fieldErrs = nil
}

// Submit validates the draft and persists it. Validation failures return
// the form to its input state with FieldErrors populated; persistence
// failures do the same and return the storage error. On success the form
// is idle again.
func (f *Form) Submit(ctx context.Context) (*core.Expense, error) {
	if f.state != StateDrafting && f.state != StateEditing {
		return nil, ErrInvalidTransition
	}
	inputState := f.state

	f.state = StateValidating
	expense, errs := f.validate()
	if len(errs) > 0 {
		f.fieldErrs = errs
		f.state = inputState
		return nil, ErrValidation
	}
	f.fieldErrs = nil

	f.state = StatePersisting
	var err error
	if inputState == StateEditing {
		err = f.persister.UpdateExpense(ctx, expense)
	} else {
		err = f.persister.CreateExpense(ctx, expense)
	}
	if err != nil {
		f.state = inputState
		return nil, fmt.Errorf("persist expense: %w", err)
	}

	f.state = StateIdle
	f.draft = Draft{}
	f.editing = nil
	return expense, nil
}

func (f *Form) validate() (*core.Expense, map[string]string) {
	errs := make(map[string]string)

	title := strings.TrimSpace(f.draft.Title)
	if title == "" {
		errs["title"] = "title is required"
	}

	amount, err := core.ParseAmount(f.draft.Amount)
	if err != nil {
		errs["amount"] = "enter a valid amount"
	} else if amount.Cents <= 0 {
		errs["amount"] = "amount must be greater than zero"
	}

	category, err := core.ParseCategory(f.draft.Category)
	if err != nil {
		errs["category"] = "unknown category"
	}

	// A blank date means "today", matching the entry screen's default.
	var date time.Time
	if strings.TrimSpace(f.draft.Date) == "" {
		now := time.Now()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else if date, err = core.ParseISODate(f.draft.Date); err != nil {
		errs["date"] = "enter a date as YYYY-MM-DD"
	}

	splitCount := core.NormalizeSplitCount(f.draft.SplitCount)
	if names := core.SplitParticipants(f.draft.SplitNames); len(names) > 0 {
		splitCount = len(names)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	expense := &core.Expense{
		TripID:     f.tripID,
		Title:      title,
		Amount:     amount,
		Category:   category,
		SplitCount: splitCount,
		PerPerson:  core.PerPerson(amount, splitCount),
		Date:       date,
	}
	if f.editing != nil {
		expense.ID = f.editing.ID
		expense.CreatedAt = f.editing.CreatedAt
	}
	return expense, nil
}
