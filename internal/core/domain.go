package core

import (
	"errors"
	"strings"
	"time"
)

// Category is the fixed expense classification used by the ledger.
type Category string

const (
	CategoryFood     Category = "Food"
	CategoryTravel   Category = "Travel"
	CategoryHotel    Category = "Hotel"
	CategoryShopping Category = "Shopping"
	CategoryOther    Category = "Other"
)

// TripType is the fixed trip classification offered by the planner.
type TripType string

const (
	TypeRoadTrip      TripType = "Road Trip"
	TypeBeachVacation TripType = "Beach Vacation"
	TypeCityEscape    TripType = "City Escape"
	TypeHiking        TripType = "Hiking Adventure"
	TypeIntlSEAsia    TripType = "International – Southeast Asia"
	TypeIntlEurope    TripType = "International – Europe"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyTitle        = errors.New("empty title")
	ErrEmptyName         = errors.New("empty trip name")
	ErrEmptyDestination  = errors.New("empty destination")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidTripType   = errors.New("invalid trip type")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDatesOutOfOrder   = errors.New("start date must not be after end date")
	ErrInvalidSplitCount = errors.New("invalid split count")
)

type (
	// User mirrors the identity-provider account plus the profile fields
	// this application maintains.
	User struct {
		ID            string
		Email         string
		FullName      string
		EmailVerified bool
		PhotoURL      string
		CreatedAt     time.Time
	}

	// Trip is a user-owned planned journey. Dates are ISO date strings
	// (YYYY-MM-DD) exactly as the planner form persists them.
	Trip struct {
		ID          string
		OwnerID     string
		Name        string
		Destination string
		StartDate   string
		EndDate     string
		Friends     string // free text
		Type        TripType
		CreatedAt   time.Time
	}

	// Expense is a single spend entry attached to one trip.
	Expense struct {
		ID         string
		TripID     string
		Title      string
		Amount     Money
		Category   Category
		SplitCount int
		PerPerson  Money
		Date       time.Time
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// ProfileStats is a one-shot aggregate for the profile screen.
	ProfileStats struct {
		TripCount  int
		TotalSpent Money
	}
)

// Categories returns the fixed category enumeration in declaration order.
func Categories() []Category {
	return []Category{CategoryFood, CategoryTravel, CategoryHotel, CategoryShopping, CategoryOther}
}

// TripTypes returns the fixed trip type enumeration in declaration order.
func TripTypes() []TripType {
	return []TripType{TypeRoadTrip, TypeBeachVacation, TypeCityEscape, TypeHiking, TypeIntlSEAsia, TypeIntlEurope}
}

// ParseCategory validates a category label against the fixed enumeration.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// ParseTripType validates a trip type label against the fixed enumeration.
func ParseTripType(s string) (TripType, error) {
	for _, t := range TripTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrInvalidTripType
}

// ParseISODate parses a YYYY-MM-DD date string.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return errors.New("trip name too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Destination) == "" {
		return ErrEmptyDestination
	}
	if _, err := ParseTripType(string(t.Type)); err != nil {
		return err
	}
	var start, end time.Time
	if t.StartDate != "" {
		var err error
		if start, err = ParseISODate(t.StartDate); err != nil {
			return err
		}
	}
	if t.EndDate != "" {
		var err error
		if end, err = ParseISODate(t.EndDate); err != nil {
			return err
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return ErrDatesOutOfOrder
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	if e.SplitCount < 1 {
		return ErrInvalidSplitCount
	}
	return nil
}
