package amqp

import (
	"encoding/json"
	"time"
)

// Event actions published after a mutation has been stored.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionBulkDeleted = "bulk_deleted"
)

// ExpenseEvent announces a change to the expense ledger. Single-record events
// carry the ID; bulk deletes carry the number of removed rows and the
// category filter, if one was used.
type ExpenseEvent struct {
	Action    string    `json:"action"`
	ID        int64     `json:"id,omitempty"`
	Count     int64     `json:"count,omitempty"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent creates a single-record event.
func NewExpenseEvent(action string, id int64) *ExpenseEvent {
	return &ExpenseEvent{
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// NewBulkDeleteEvent creates an event for a bulk delete.
func NewBulkDeleteEvent(count int64, category string) *ExpenseEvent {
	return &ExpenseEvent{
		Action:    ActionBulkDeleted,
		Count:     count,
		Category:  category,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes an event from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
