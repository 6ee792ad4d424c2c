package service

import (
	"context"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// EventPublisher is satisfied by *mykafka.Producer. A nil publisher drops events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key, eventType string, payload any) error
}

func publish(ctx context.Context, p EventPublisher, topic, key, eventType string, payload any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, eventType, payload); err != nil {
		logging.FromContext(ctx).Warn("publish_failed", "topic", topic, "event", eventType, "error", err)
	}
}
