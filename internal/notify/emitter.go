package notify

import (
	"context"
	"time"

	"github.com/veloflow/service-template/pkg/logger"
)

// Emitter builds and publishes the per-invocation progress events. Its
// methods never return an error and never panic: a dead bus degrades the
// emitter to a no-op. Downstream consumers must not rely on these events for
// completion detection.
type Emitter struct {
	jobID     string
	serviceID string
	stageID   string
	pub       Publisher
	now       func() time.Time
}

// NewEmitter creates an emitter for one invocation. A nil publisher is
// replaced with a NoopPublisher.
func NewEmitter(pub Publisher, serviceID, jobID, stageID string) *Emitter {
	if pub == nil {
		pub = NewNoopPublisher()
	}
	return &Emitter{
		jobID:     jobID,
		serviceID: serviceID,
		stageID:   stageID,
		pub:       pub,
		now:       time.Now,
	}
}

// Progress emits an in-progress update. Convention caps emission at roughly
// one per second; nothing enforces it.
func (e *Emitter) Progress(ctx context.Context, message string) {
	e.publish(ctx, TypeProgress, Event{
		Status:  StatusInProgress,
		Message: message,
	})
}

// Success emits the terminal success event with the output location.
func (e *Emitter) Success(ctx context.Context, message, outputKey string, metadata map[string]any) {
	e.publish(ctx, TypeCompleted, Event{
		Status:    StatusSuccess,
		Message:   message,
		OutputKey: outputKey,
		Metadata:  metadata,
	})
}

// Error emits the terminal failure event.
func (e *Emitter) Error(ctx context.Context, message, errorType string, metadata map[string]any) {
	e.publish(ctx, TypeFailed, Event{
		Status:    StatusError,
		Message:   message,
		ErrorType: errorType,
		Metadata:  metadata,
	})
}

func (e *Emitter) publish(ctx context.Context, eventType string, ev Event) {
	ev.JobID = e.jobID
	ev.ServiceID = e.serviceID
	ev.StageID = e.stageID
	ev.Timestamp = e.now().UTC().Format(time.RFC3339)

	if err := e.pub.Publish(ctx, eventType, ev); err != nil {
		// Never fail the invocation over a lost status update.
		logger.Log.Warn().Err(err).
			Str("event_type", eventType).
			Str("job_id", e.jobID).
			Msg("Failed to emit event")
		return
	}

	logger.Log.Debug().
		Str("event_type", eventType).
		Str("job_id", e.jobID).
		Str("message", ev.Message).
		Msg("Emitted event")
}
