package amqp

import (
	"encoding/json"
	"time"
)

// Expense lifecycle actions carried on the event stream.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEvent is the message published whenever an expense changes.
// It carries only identifiers; consumers that need the full row fetch it
// from the store.
type ExpenseEvent struct {
	Action     string    `json:"action"`
	ExpenseID  int64     `json:"expense_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewExpenseEvent creates an event stamped with the current time.
func NewExpenseEvent(action string, expenseID, userID int64) *ExpenseEvent {
	return &ExpenseEvent{
		Action:     action,
		ExpenseID:  expenseID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes an event from JSON bytes.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
