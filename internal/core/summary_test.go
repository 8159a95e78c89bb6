package core

import (
	"math/rand"
	"testing"
)

func expense(title string, cents int64, cat Category) Expense {
	return Expense{Title: title, Amount: Money{Cents: cents}, Category: cat, SplitCount: 1}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total.Cents != 0 {
		t.Errorf("empty ledger total = %d, want 0", s.Total.Cents)
	}
	if len(s.ByCategory) != 0 || len(s.Slices) != 0 {
		t.Errorf("empty ledger must omit category rows and chart slices")
	}
}

func TestSummarizeTotals(t *testing.T) {
	expenses := []Expense{
		expense("Dinner", 120000, CategoryFood),
		expense("Flight", 450000, CategoryTravel),
		expense("Lunch", 30000, CategoryFood),
		expense("Souvenirs", 15000, CategoryShopping),
	}
	s := Summarize(expenses)

	if want := int64(615000); s.Total.Cents != want {
		t.Errorf("total = %d, want %d", s.Total.Cents, want)
	}

	// Category totals must sum exactly to the grand total.
	var sum int64
	for _, ca := range s.ByCategory {
		sum += ca.Amount.Cents
	}
	if sum != s.Total.Cents {
		t.Errorf("category totals sum %d != total %d", sum, s.Total.Cents)
	}

	// Enum order, present categories only.
	wantOrder := []Category{CategoryFood, CategoryTravel, CategoryShopping}
	if len(s.ByCategory) != len(wantOrder) {
		t.Fatalf("got %d categories, want %d", len(s.ByCategory), len(wantOrder))
	}
	for i, c := range wantOrder {
		if s.ByCategory[i].Category != c {
			t.Errorf("category[%d] = %s, want %s", i, s.ByCategory[i].Category, c)
		}
	}
	if s.ByCategory[0].Amount.Cents != 150000 {
		t.Errorf("Food total = %d, want 150000", s.ByCategory[0].Amount.Cents)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	expenses := []Expense{
		expense("a", 100, CategoryFood),
		expense("b", 250, CategoryHotel),
		expense("c", 9999, CategoryOther),
		expense("d", 1, CategoryFood),
		expense("e", 4200, CategoryTravel),
	}
	want := Summarize(expenses)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([]Expense, len(expenses))
		copy(shuffled, expenses)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Summarize(shuffled)
		if got.Total != want.Total {
			t.Fatalf("total depends on insertion order: %d vs %d", got.Total.Cents, want.Total.Cents)
		}
		if len(got.ByCategory) != len(want.ByCategory) {
			t.Fatalf("category count depends on insertion order")
		}
		for j := range got.ByCategory {
			if got.ByCategory[j] != want.ByCategory[j] {
				t.Fatalf("category row %d depends on insertion order: %+v vs %+v", j, got.ByCategory[j], want.ByCategory[j])
			}
		}
	}
}

func TestSummarizeColorsStable(t *testing.T) {
	// Same category must get the same color regardless of which other
	// categories appear or in what order.
	a := Summarize([]Expense{expense("x", 100, CategoryOther)})
	b := Summarize([]Expense{
		expense("w", 100, CategoryShopping),
		expense("x", 100, CategoryOther),
		expense("y", 100, CategoryFood),
	})
	colorOf := func(s LedgerSummary, c Category) string {
		for _, sl := range s.Slices {
			if sl.Category == c {
				return sl.Color
			}
		}
		return ""
	}
	if colorOf(a, CategoryOther) != colorOf(b, CategoryOther) {
		t.Errorf("Other color differs across snapshots")
	}
	if colorOf(b, CategoryFood) != "#2563eb" {
		t.Errorf("Food color = %q, want #2563eb", colorOf(b, CategoryFood))
	}
}
