package scaffold

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the service.yaml file describing a service to the registry:
// identity, capabilities, resource constraints and the parameters surfaced
// in the workflow UI.
type Manifest struct {
	Name         string         `yaml:"name"`
	Type         string         `yaml:"type"`
	DisplayName  string         `yaml:"display_name"`
	Version      string         `yaml:"version"`
	Priority     int            `yaml:"priority"`
	Capabilities map[string]any `yaml:"capabilities,omitempty"`
	Constraints  Constraints    `yaml:"constraints"`
	Parameters   []Parameter    `yaml:"parameters,omitempty"`
	Metadata     map[string]any `yaml:"metadata,omitempty"`
}

// Constraints mirror the deployed Lambda's limits so the orchestrator can
// schedule within them.
type Constraints struct {
	MaxConcurrency     int `yaml:"max_concurrency"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	TimeoutSeconds     int `yaml:"timeout_seconds"`
	MemoryMB           int `yaml:"memory_mb"`
}

// Parameter is one user-configurable option for a workflow stage.
type Parameter struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required"`
	Description string   `yaml:"description,omitempty"`
	Options     []string `yaml:"options,omitempty"`
	Default     any      `yaml:"default,omitempty"`
}

// LoadManifest reads and validates a service.yaml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("manifest %s: name must be set", path)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("manifest %s: type must be set", path)
	}
	if m.Version == "" {
		m.Version = "1.0.0"
	}
	if m.Priority == 0 {
		m.Priority = 10
	}

	return &m, nil
}

// ServiceID derives the registry key for a deployment stage, e.g.
// "pdf-to-xls-dev-v1".
func (m *Manifest) ServiceID(stage string) string {
	return fmt.Sprintf("%s-%s-v1", m.Name, stage)
}

// LambdaName derives the deployed function name for a stage.
func (m *Manifest) LambdaName(stage string) string {
	return fmt.Sprintf("veloflow-%s-%s", stage, m.Name)
}
