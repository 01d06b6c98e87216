package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// BrokerPublisher delivers notifications to the team and event topics of a
// Broker, feeding the SSE stream and the WebSocket feed.
type BrokerPublisher struct {
	Broker *Broker
}

func (p BrokerPublisher) Publish(_ context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	p.Broker.Publish(TeamTopic(n.TeamID), data)
	p.Broker.Publish(EventTopic(n.EventID), data)
	return nil
}

// redisClient is the subset of *redis.Client used to publish.
type redisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes notifications as JSON on a Redis channel for the
// chat bot.
type RedisPublisher struct {
	client  redisClient
	channel string
}

func NewRedisPublisher(client redisClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.channel, err)
	}
	return nil
}

// Fanout delivers to every publisher, even after one fails.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, n Notification) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
