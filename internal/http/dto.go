package http

import (
	"time"

	"tripmate/internal/core"
)

// Wire representations for the JSON API. Amounts travel both as integer
// cents and as a formatted string so clients never re-derive rounding.

type userPayload struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	EmailVerified bool   `json:"emailVerified"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

type tripPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Friends     string `json:"friends,omitempty"`
	Type        string `json:"type"`
	CreatedAt   string `json:"createdAt"`
}

type expensePayload struct {
	ID             string `json:"id"`
	TripID         string `json:"tripId"`
	Title          string `json:"title"`
	AmountCents    int64  `json:"amountCents"`
	Amount         string `json:"amount"`
	Category       string `json:"category"`
	SplitCount     int    `json:"splitCount"`
	PerPersonCents int64  `json:"perPersonCents"`
	PerPerson      string `json:"perPerson"`
	Date           string `json:"date"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type categoryAmountPayload struct {
	Category string `json:"category"`
	Cents    int64  `json:"cents"`
	Amount   string `json:"amount"`
}

type chartSlicePayload struct {
	Category string `json:"category"`
	Cents    int64  `json:"cents"`
	Amount   string `json:"amount"`
	Color    string `json:"color"`
}

type summaryPayload struct {
	TotalCents int64                   `json:"totalCents"`
	Total      string                  `json:"total"`
	ByCategory []categoryAmountPayload `json:"byCategory"`
	Slices     []chartSlicePayload     `json:"slices"`
}

type statsPayload struct {
	TripCount       int    `json:"tripCount"`
	TotalSpentCents int64  `json:"totalSpentCents"`
	TotalSpent      string `json:"totalSpent"`
}

func toUserPayload(u *core.User) userPayload {
	return userPayload{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		EmailVerified: u.EmailVerified,
		PhotoURL:      u.PhotoURL,
		CreatedAt:     u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTripPayload(t core.Trip) tripPayload {
	return tripPayload{
		ID:          t.ID,
		Name:        t.Name,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Friends:     t.Friends,
		Type:        string(t.Type),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTripPayloads(trips []core.Trip) []tripPayload {
	out := make([]tripPayload, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripPayload(t))
	}
	return out
}

func toExpensePayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:             e.ID,
		TripID:         e.TripID,
		Title:          e.Title,
		AmountCents:    e.Amount.Cents,
		Amount:         e.Amount.String(),
		Category:       string(e.Category),
		SplitCount:     e.SplitCount,
		PerPersonCents: e.PerPerson.Cents,
		PerPerson:      e.PerPerson.String(),
		Date:           e.Date.Format("2006-01-02"),
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toExpensePayloads(expenses []core.Expense) []expensePayload {
	out := make([]expensePayload, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpensePayload(e))
	}
	return out
}

func toSummaryPayload(s core.LedgerSummary) summaryPayload {
	p := summaryPayload{
		TotalCents: s.Total.Cents,
		Total:      s.Total.String(),
		ByCategory: make([]categoryAmountPayload, 0, len(s.ByCategory)),
		Slices:     make([]chartSlicePayload, 0, len(s.Slices)),
	}
	for _, ca := range s.ByCategory {
		p.ByCategory = append(p.ByCategory, categoryAmountPayload{
			Category: string(ca.Category),
			Cents:    ca.Amount.Cents,
			Amount:   ca.Amount.String(),
		})
	}
	for _, sl := range s.Slices {
		p.Slices = append(p.Slices, chartSlicePayload{
			Category: string(sl.Category),
			Cents:    sl.Amount.Cents,
			Amount:   sl.Amount.String(),
			Color:    sl.Color,
		})
	}
	return p
}

func toStatsPayload(s core.ProfileStats) statsPayload {
	return statsPayload{
		TripCount:       s.TripCount,
		TotalSpentCents: s.TotalSpent.Cents,
		TotalSpent:      s.TotalSpent.String(),
	}
}
