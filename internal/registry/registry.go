package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/veloflow/service-template/internal/scaffold"
	"github.com/veloflow/service-template/pkg/logger"
)

// functionGetter and itemPutter narrow the AWS clients to the two calls the
// registry makes, so tests can stand in fakes.
type functionGetter interface {
	GetFunction(ctx context.Context, in *lambda.GetFunctionInput, opts ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
}

type itemPutter interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client registers services in the per-stage DynamoDB service registry that
// the orchestrator reads for discovery and dispatch.
type Client struct {
	fns functionGetter
	ddb itemPutter
	now func() time.Time
}

// New builds a registry client from a resolved AWS config.
func New(cfg aws.Config) *Client {
	return &Client{
		fns: lambda.NewFromConfig(cfg),
		ddb: dynamodb.NewFromConfig(cfg),
		now: time.Now,
	}
}

// TableName returns the registry table for a deployment stage.
func TableName(stage string) string {
	return fmt.Sprintf("veloflow-%s-service-registry", stage)
}

// Register verifies the deployed Lambda exists, then upserts the service's
// registry entry for the given stage.
func (c *Client) Register(ctx context.Context, stage string, m *scaffold.Manifest) error {
	lambdaName := m.LambdaName(stage)

	out, err := c.fns.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(lambdaName),
	})
	if err != nil {
		return fmt.Errorf("lambda function %s not found (deploy it to %s first): %w", lambdaName, stage, err)
	}
	functionArn := aws.ToString(out.Configuration.FunctionArn)

	registeredAt := c.now().UTC().Format(time.RFC3339)

	entry := map[string]any{
		"service_id":   m.ServiceID(stage),
		"service_type": m.Type,
		"service_name": m.DisplayName,
		"lambda_arn":   functionArn,
		"lambda_name":  lambdaName,
		"enabled":      true,
		"priority":     m.Priority,
		"capabilities": m.Capabilities,
		"constraints": map[string]any{
			"max_concurrency":       m.Constraints.MaxConcurrency,
			"rate_limit_per_minute": m.Constraints.RateLimitPerMinute,
			"timeout_seconds":       m.Constraints.TimeoutSeconds,
			"memory_mb":             m.Constraints.MemoryMB,
		},
		// Fresh registrations start healthy with zeroed counters; the
		// orchestrator's health checker takes over from here.
		"health": map[string]any{
			"status":            "healthy",
			"last_check":        registeredAt,
			"error_rate":        0.0,
			"avg_duration_ms":   0,
			"p99_duration_ms":   0,
			"success_count_24h": 0,
			"failure_count_24h": 0,
		},
		"metadata": buildEntryMetadata(m, stage, registeredAt),
	}
	if len(m.Parameters) > 0 {
		params := make([]map[string]any, 0, len(m.Parameters))
		for _, p := range m.Parameters {
			param := map[string]any{
				"name":     p.Name,
				"type":     p.Type,
				"required": p.Required,
			}
			if p.Description != "" {
				param["description"] = p.Description
			}
			if len(p.Options) > 0 {
				param["options"] = p.Options
			}
			if p.Default != nil {
				param["default"] = p.Default
			}
			params = append(params, param)
		}
		entry["parameter_definitions"] = params
	}

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("marshal registry entry: %w", err)
	}

	if _, err := c.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(TableName(stage)),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put registry entry for %s: %w", m.ServiceID(stage), err)
	}

	logger.Log.Info().
		Str("service_id", m.ServiceID(stage)).
		Str("lambda", lambdaName).
		Str("table", TableName(stage)).
		Msg("Registered service")
	return nil
}

func buildEntryMetadata(m *scaffold.Manifest, stage, registeredAt string) map[string]any {
	metadata := map[string]any{
		"version":       m.Version,
		"environment":   stage,
		"registered_at": registeredAt,
	}
	for k, v := range m.Metadata {
		metadata[k] = v
	}
	return metadata
}
