package notify

import (
	"context"

	"github.com/veloflow/service-template/pkg/logger"
)

// NoopPublisher drops every event. Used when no bus is configured, so a
// template deployed without EVENT_BUS_NAME still runs.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) Publish(_ context.Context, eventType string, _ Event) error {
	logger.Log.Debug().Str("event_type", eventType).Msg("No event bus configured, skipping event emission")
	return nil
}

var _ Publisher = (*NoopPublisher)(nil)
