package core

import (
	"errors"
	"testing"
)

func validTrip() Trip {
	return Trip{
		Name:        "Goa Trip",
		Destination: "Goa",
		StartDate:   "2025-12-20",
		EndDate:     "2025-12-25",
		Type:        TypeBeachVacation,
	}
}

func TestTripValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Trip)
		wantErr error
	}{
		{"valid", func(*Trip) {}, nil},
		{"missing name", func(tr *Trip) { tr.Name = "  " }, ErrEmptyName},
		{"missing destination", func(tr *Trip) { tr.Destination = "" }, ErrEmptyDestination},
		{"unknown type", func(tr *Trip) { tr.Type = "Cruise" }, ErrInvalidTripType},
		{"bad start date", func(tr *Trip) { tr.StartDate = "20-12-2025" }, ErrInvalidDate},
		{"start after end", func(tr *Trip) { tr.StartDate = "2025-12-26" }, ErrDatesOutOfOrder},
		{"open end date ok", func(tr *Trip) { tr.EndDate = "" }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := validTrip()
			tc.mutate(&tr)
			err := tr.Validate()
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Title:      "Dinner",
		Amount:     Money{Cents: 120000},
		Category:   CategoryFood,
		SplitCount: 4,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{"missing title", func(e *Expense) { e.Title = "" }, ErrEmptyTitle},
		{"negative amount", func(e *Expense) { e.Amount.Cents = -1 }, ErrInvalidAmount},
		{"unknown category", func(e *Expense) { e.Category = "Misc" }, ErrInvalidCategory},
		{"zero split", func(e *Expense) { e.SplitCount = 0 }, ErrInvalidSplitCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		if got, err := ParseCategory(string(c)); err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("food"); err == nil {
		t.Error("category labels are case-sensitive")
	}
}
