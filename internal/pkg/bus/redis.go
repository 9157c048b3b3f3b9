package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/sse"
	"github.com/redis/go-redis/v9"
)

const DefaultChannelPrefix = "presence:"

// RedisPublisher fans messages out through Redis pub/sub so every API instance
// can forward them to its own SSE subscribers.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := p.client.Publish(ctx, p.prefix+topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// RedisRelay subscribes to every prefixed channel and forwards messages into the local hub.
type RedisRelay struct {
	client *redis.Client
	hub    *sse.Hub
	prefix string
}

func NewRedisRelay(client *redis.Client, hub *sse.Hub, prefix string) *RedisRelay {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisRelay{client: client, hub: hub, prefix: prefix}
}

type relayedMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Run blocks until ctx is cancelled or the subscription fails.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer pubsub.Close()

	// Wait for the subscription confirmation so publish calls made after Run starts are not lost
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	slog.Info("Redis relay subscribed", "pattern", r.prefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(m)
		}
	}
}

func (r *RedisRelay) forward(m *redis.Message) {
	var msg relayedMessage
	if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
		slog.Warn("Dropping malformed relay message", "channel", m.Channel, "error", err)
		return
	}
	topic := strings.TrimPrefix(m.Channel, r.prefix)
	r.hub.Publish(topic, sse.Event{Event: msg.Event, Data: msg.Data})
}
