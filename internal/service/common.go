package service

import (
	"context"
	"time"

	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/pkg/logger"
	"intellius-chat-be/pkg/events"
)

const eventPublishTimeout = 5 * time.Second

// Clock returns the current time; tests swap it for a fixed one.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func storeError(err error) error {
	return apperror.Dependency("Database unavailable", err)
}

// publishAsync fires an audit event without holding up the request.
func publishAsync(pub events.Publisher, log logger.ILogger, event events.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()

		if err := pub.Publish(ctx, event); err != nil {
			log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}()
}
