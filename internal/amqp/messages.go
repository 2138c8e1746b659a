package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entities and actions carried by change events.
const (
	EntityCategory    = "category"
	EntityTransaction = "transaction"
	EntityUser        = "user"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntityChange is the audit event published after every successful
// mutation. It carries identifiers only; consumers that need the row
// fetch it themselves.
type EntityChange struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEntityChange stamps the event with the current time.
func NewEntityChange(entity, action string, id, userID int64) *EntityChange {
	return &EntityChange{
		Entity:     entity,
		Action:     action,
		ID:         id,
		UserID:     userID,
		OccurredAt: time.Now(),
	}
}

func (m *EntityChange) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntityChangeFromJSON(data []byte) (*EntityChange, error) {
	var m EntityChange
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal entity change: %w", err)
	}
	if m.Entity == "" || m.Action == "" {
		return nil, fmt.Errorf("entity change missing entity or action")
	}
	return &m, nil
}
