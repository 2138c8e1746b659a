package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{40, 30 * time.Second}, // shift overflow also capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "closed connection", err: errors.New("connection closed by server"), expected: true},
		{name: "unexpected EOF", err: errors.New("unexpected EOF"), expected: true},
		{name: "auth failure", err: errors.New("ACCESS_REFUSED - login refused"), expected: false},
		{name: "handler error", err: errors.New("handle message: boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestEntityChangeRoundtrip(t *testing.T) {
	ev := NewEntityChange(EntityTransaction, ActionCreated, 7, 42)
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := EntityChangeFromJSON(body)
	if err != nil {
		t.Fatalf("EntityChangeFromJSON: %v", err)
	}
	if decoded.Entity != EntityTransaction || decoded.Action != ActionCreated {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.ID != 7 || decoded.UserID != 42 {
		t.Errorf("decoded ids = %d/%d, want 7/42", decoded.ID, decoded.UserID)
	}
	if decoded.OccurredAt.IsZero() {
		t.Error("decoded OccurredAt is zero")
	}
}

func TestEntityChangeFromJSONRejectsGarbage(t *testing.T) {
	if _, err := EntityChangeFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := EntityChangeFromJSON([]byte(`{"id": 3}`)); err == nil {
		t.Error("expected error for message without entity/action")
	}
}
