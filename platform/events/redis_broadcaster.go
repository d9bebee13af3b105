package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Broadcaster fans realtime notifications out to subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, topic string, payload []byte) error
}

// RedisBroadcaster PUBLISHes payloads on "<prefix>:<topic>".
type RedisBroadcaster struct {
	client *redis.Client
	prefix string
}

func NewRedisBroadcaster(client *redis.Client, prefix string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, prefix: strings.TrimSuffix(prefix, ":")}
}

func (b *RedisBroadcaster) Channel(topic string) string {
	if b.prefix == "" {
		return topic
	}
	return b.prefix + ":" + topic
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, b.Channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", b.Channel(topic), err)
	}
	return nil
}

// NoopBroadcaster drops notifications. Used when redis is not configured.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(context.Context, string, []byte) error { return nil }
