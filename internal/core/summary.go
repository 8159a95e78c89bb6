package core

// CategoryAmount is an amount aggregated under one category label.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// ChartSlice is a chart-ready category total with its assigned color.
type ChartSlice struct {
	Category Category
	Amount   Money
	Color    string
}

// LedgerSummary is the denormalized view of one trip's expense list. It is
// never persisted; it is recomputed in full on every change.
type LedgerSummary struct {
	Total      Money
	ByCategory []CategoryAmount
	Slices     []ChartSlice
}

// categoryColors assigns each category a fixed color. Colors used to cycle
// positionally by first-appearance order, which made charts depend on map
// iteration order; the table keeps them stable across snapshots.
var categoryColors = map[Category]string{
	CategoryFood:     "#2563eb",
	CategoryTravel:   "#16a34a",
	CategoryHotel:    "#dc2626",
	CategoryShopping: "#f59e0b",
	CategoryOther:    "#9333ea",
}

// ColorFor returns the chart color assigned to a category.
func ColorFor(c Category) string {
	return categoryColors[c]
}

// Summarize recomputes the ledger summary from the full expense list.
// Category totals are emitted in enum order, only for categories present.
// An empty list yields zero totals and no slices, so charts are omitted
// rather than rendered empty.
func Summarize(expenses []Expense) LedgerSummary {
	var s LedgerSummary
	if len(expenses) == 0 {
		return s
	}

	totals := make(map[Category]int64, len(categoryColors))
	for _, e := range expenses {
		s.Total.Cents += e.Amount.Cents
		totals[e.Category] += e.Amount.Cents
	}

	for _, c := range Categories() {
		cents, ok := totals[c]
		if !ok {
			continue
		}
		amount := Money{Cents: cents}
		s.ByCategory = append(s.ByCategory, CategoryAmount{Category: c, Amount: amount})
		s.Slices = append(s.Slices, ChartSlice{Category: c, Amount: amount, Color: ColorFor(c)})
	}
	return s
}
