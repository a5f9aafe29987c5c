package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/obiora/bankcore/pkg/domain/events"
	"github.com/obiora/bankcore/pkg/eventbus"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus publishes domain events onto a Redis Stream for downstream
// consumers (notifications, reporting). Registration of in-process handlers
// is also supported so the server can react locally to its own events.
type RedisBus struct {
	client *redis.Client
	stream string
	local  *MemoryBus
	logger *slog.Logger
}

// NewWithRedis creates a Redis Streams event bus.
func NewWithRedis(url, stream string, logger *slog.Logger) (*RedisBus, error) {
	if url == "" || stream == "" {
		return nil, fmt.Errorf("redis event bus: url and stream are required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	return &RedisBus{
		client: client,
		stream: stream,
		local:  NewWithMemory(logger),
		logger: logger.With("bus", "redis"),
	}, nil
}

// Register adds a local handler for a specific event type.
func (b *RedisBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.local.Register(eventType, handler)
}

// Publish appends the event to the stream and dispatches it locally.
func (b *RedisBus) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis event bus: marshal %s: %w", event.Type(), err)
	}
	env, err := json.Marshal(envelope{Type: event.Type(), Payload: payload})
	if err != nil {
		return fmt.Errorf("redis event bus: marshal envelope: %w", err)
	}
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(env)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: publish %s: %w", event.Type(), err)
	}
	return b.local.Publish(ctx, event)
}

var _ eventbus.Bus = (*RedisBus)(nil)
