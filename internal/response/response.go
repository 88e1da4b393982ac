package response

import (
	"github.com/veloflow/service-template/internal/fault"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the invocation's terminal artifact, returned to the orchestrator
// as JSON. Exactly one of the two variants is ever produced per invocation;
// partial success does not exist.
type Result struct {
	Status       string         `json:"status"`
	OutputBucket string         `json:"output_bucket,omitempty"`
	OutputKey    string         `json:"output_key,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorType    string         `json:"error_type,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Success builds the success variant.
func Success(outputBucket, outputKey string, metadata map[string]any) Result {
	return Result{
		Status:       StatusSuccess,
		OutputBucket: outputBucket,
		OutputKey:    outputKey,
		Metadata:     metadata,
	}
}

// Error builds the error variant. The error_type comes from the fault
// taxonomy's explicit kind tag, not from the error's dynamic type.
func Error(err error, metadata map[string]any) Result {
	return Result{
		Status:    StatusError,
		Error:     err.Error(),
		ErrorType: fault.KindOf(err),
		Metadata:  metadata,
	}
}
