package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veloflow/service-template/internal/config"
)

// RedisPublisher posts events to a Redis Pub/Sub channel. It is the local
// development stand-in for EventBridge.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// envelope mirrors the EventBridge entry shape so local subscribers can reuse
// the same decoding as bus consumers.
type envelope struct {
	Source     string `json:"source"`
	DetailType string `json:"detail_type"`
	Detail     Event  `json:"detail"`
}

// NewRedisPublisher connects to Redis and verifies the connection with a
// bounded ping before accepting events.
func NewRedisPublisher(cfg config.BusConfig) (*RedisPublisher, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	channel := cfg.RedisChannel
	if channel == "" {
		channel = "veloflow:service-events"
	}

	return &RedisPublisher{
		client:  client,
		channel: channel,
	}, nil
}

func buildRedisOptions(cfg config.BusConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, ev Event) error {
	payload, err := json.Marshal(envelope{
		Source:     Source,
		DetailType: eventType,
		Detail:     ev,
	})
	if err != nil {
		return fmt.Errorf("encode event envelope: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

var _ Publisher = (*RedisPublisher)(nil)
