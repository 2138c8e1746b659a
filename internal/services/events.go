package services

import (
	"context"
	"log/slog"

	"budget/internal/amqp"
)

// publishChange emits an audit event after a successful mutation.
// Publishing is best effort: a broker failure is logged and never fails
// the request, and a nil client disables events entirely.
func publishChange(ctx context.Context, events *amqp.Client, entity, action string, id, userID int64) {
	if events == nil {
		return
	}
	ev := amqp.NewEntityChange(entity, action, id, userID)
	if err := events.PublishEntityChange(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entity change",
			"error", err,
			"entity", entity,
			"action", action,
			"id", id,
			"user_id", userID)
	}
}
