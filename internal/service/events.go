package service

import (
	"context"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/pkg/events"
)

// publishEvent never fails the caller; a broker outage only costs the event.
func publishEvent(ctx context.Context, pub events.Publisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
