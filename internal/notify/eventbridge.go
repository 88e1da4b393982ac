package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// EventBridgePublisher posts events to a named EventBridge bus.
type EventBridgePublisher struct {
	client  *eventbridge.Client
	busName string
}

// NewEventBridgePublisher builds a publisher for the given bus name.
func NewEventBridgePublisher(cfg aws.Config, busName string) (*EventBridgePublisher, error) {
	if busName == "" {
		return nil, fmt.Errorf("event bus name must be provided")
	}
	return &EventBridgePublisher{
		client:  eventbridge.NewFromConfig(cfg),
		busName: busName,
	}, nil
}

func (p *EventBridgePublisher) Publish(ctx context.Context, eventType string, ev Event) error {
	detail, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event detail: %w", err)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				Source:       aws.String(Source),
				DetailType:   aws.String(eventType),
				Detail:       aws.String(string(detail)),
				EventBusName: aws.String(p.busName),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("eventbridge put-events failed: %w", err)
	}

	// PutEvents reports partial failures per entry rather than as an error.
	if out.FailedEntryCount > 0 && len(out.Entries) > 0 {
		entry := out.Entries[0]
		return fmt.Errorf("eventbridge rejected entry: %s - %s",
			aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
	}
	return nil
}

var _ Publisher = (*EventBridgePublisher)(nil)
