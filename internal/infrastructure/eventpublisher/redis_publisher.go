package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/tripledger/internal/domain"
)

// RedisPublisher fans events out over redis pub/sub, one channel per trip
// named "<prefix>:<tripID>".
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client redis.UniversalClient, channelPrefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: channelPrefix}
}

// Channel returns the channel events of a trip are published on.
func (p *RedisPublisher) Channel(tripID string) string {
	return p.prefix + ":" + tripID
}

// Publish sends the JSON encoded event.
func (p *RedisPublisher) Publish(ctx context.Context, event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	if err := p.client.Publish(ctx, p.Channel(event.TripID), data).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}

	return nil
}
