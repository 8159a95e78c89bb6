package amqp

import (
	"encoding/json"
	"time"
)

// Entities and actions carried by change events.
const (
	EntityTrip    = "trip"
	EntityExpense = "expense"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is a lightweight notification that a trip or expense changed.
// It carries only identifiers; the worker fetches the current rows from the
// database, so a coalesced or re-delivered event is harmless.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	OwnerID   string    `json:"owner_id"`
	TripID    string    `json:"trip_id"`
	ExpenseID string    `json:"expense_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTripEvent builds a change event for a trip.
func NewTripEvent(action, ownerID, tripID string) *ChangeEvent {
	return &ChangeEvent{
		Entity:    EntityTrip,
		Action:    action,
		OwnerID:   ownerID,
		TripID:    tripID,
		Timestamp: time.Now(),
	}
}

// NewExpenseEvent builds a change event for an expense.
func NewExpenseEvent(action, ownerID, tripID, expenseID string) *ChangeEvent {
	return &ChangeEvent{
		Entity:    EntityExpense,
		Action:    action,
		OwnerID:   ownerID,
		TripID:    tripID,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
