package notify

import "context"

// Event detail types, matching the orchestrator's routing rules.
const (
	TypeProgress  = "service.progress"
	TypeCompleted = "service.completed"
	TypeFailed    = "service.failed"
)

// Event statuses carried inside the detail payload.
const (
	StatusInProgress = "in_progress"
	StatusSuccess    = "success"
	StatusError      = "error"
)

// Source identifies service-emitted events on the bus.
const Source = "veloflow.service"

// Event is the detail payload published for every progress, success or error
// message. Consumers forward it to WebSocket clients for live UI updates.
type Event struct {
	JobID     string         `json:"job_id"`
	ServiceID string         `json:"service_id"`
	StageID   string         `json:"stage_id,omitempty"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp"`
	OutputKey string         `json:"output_key,omitempty"`
	ErrorType string         `json:"error_type,omitempty"`
}

// Publisher posts one event to the bus. Implementations do a single publish
// attempt; retry and delivery guarantees are explicitly out of contract, the
// orchestrator detects completion from the uploaded object, never from these
// events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, ev Event) error
}
