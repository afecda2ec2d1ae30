package events

import (
	"encoding/json"
	"time"
)

// Event types published on the expense stream.
const (
	TypeExpenseCreated  = "expense.created"
	TypeExpenseDeleted  = "expense.deleted"
	TypeExpenseImported = "expense.imported"
)

// ExpenseEvent describes one expense lifecycle event. It carries only
// identifiers; consumers fetch details from the database if they need them.
type ExpenseEvent struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	ExpenseID  int64     `json:"expense_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewExpenseEvent creates an event stamped with the current time.
func NewExpenseEvent(eventType string, userID, expenseID int64) *ExpenseEvent {
	return &ExpenseEvent{
		Type:       eventType,
		UserID:     userID,
		ExpenseID:  expenseID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON creates an event from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
