package event

import (
	"fmt"

	"github.com/veloflow/service-template/internal/fault"
)

// InvocationTypeDirect is the only invocation type the handler accepts. The
// orchestrator sets it on every direct Lambda invocation.
const InvocationTypeDirect = "direct"

const defaultCustomerTier = "standard"

// Request is the inbound invocation event.
//
// output_key is optional: multi-stage workflows provide the stage-specific
// destination, legacy single-stage workflows rely on the fallback computed by
// ResolveOutputKey.
type Request struct {
	InvocationType string         `json:"invocation_type"`
	JobID          string         `json:"job_id"`
	InputBucket    string         `json:"input_bucket"`
	InputKey       string         `json:"input_key"`
	OutputBucket   string         `json:"output_bucket"`
	OutputKey      string         `json:"output_key,omitempty"`
	ReferenceDate  string         `json:"reference_date,omitempty"`
	CustomerTier   string         `json:"customer_tier,omitempty"`
	StageConfig    map[string]any `json:"stage_config,omitempty"`
}

// Validate checks the request fail-fast: invocation type first, then each
// required field in a fixed order. It has no side effects.
func (r *Request) Validate() error {
	if r.InvocationType != InvocationTypeDirect {
		return fault.Validation(`invalid invocation type. Expected "direct"`)
	}

	required := []struct {
		name  string
		value string
	}{
		{"job_id", r.JobID},
		{"input_bucket", r.InputBucket},
		{"input_key", r.InputKey},
		{"output_bucket", r.OutputBucket},
	}
	for _, f := range required {
		if f.value == "" {
			return fault.Validation("missing required field: %s", f.name)
		}
	}

	return nil
}

// ResolveOutputKey returns the caller-provided output key unchanged, or the
// legacy single-stage fallback derived from the job ID. The hardcoded .xlsx
// extension matches the historical convention; services producing other
// formats must always receive an explicit output_key.
func (r *Request) ResolveOutputKey() string {
	if r.OutputKey != "" {
		return r.OutputKey
	}
	return fmt.Sprintf("jobs/%s/output.xlsx", r.JobID)
}

// Tier returns the customer tier, defaulting to "standard".
func (r *Request) Tier() string {
	if r.CustomerTier == "" {
		return defaultCustomerTier
	}
	return r.CustomerTier
}

// StageID extracts the optional stage identifier from the stage config.
func (r *Request) StageID() string {
	if r.StageConfig == nil {
		return ""
	}
	if v, ok := r.StageConfig["stage_id"].(string); ok {
		return v
	}
	return ""
}
