package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
)

// publishEvent is best effort: the write it describes has already happened.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}
