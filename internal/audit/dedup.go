package audit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "audit:seen:"

// SeenCache is an optional fast path in front of the store's idempotent
// append: a redelivered event id found here is skipped without touching the
// store at all. Cache misses and cache failures fall through to the store,
// so correctness never depends on redis being up.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenCache wraps a redis client. TTL bounds how long an event id is
// remembered; it only needs to outlive the bus's redelivery horizon.
func NewSeenCache(client *redis.Client, ttl time.Duration) *SeenCache {
	return &SeenCache{client: client, ttl: ttl}
}

// Seen reports whether the event id was already recorded.
func (c *SeenCache) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := c.client.Get(ctx, seenKeyPrefix+eventID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Mark remembers the event id for the configured TTL.
func (c *SeenCache) Mark(ctx context.Context, eventID string) error {
	return c.client.Set(ctx, seenKeyPrefix+eventID, "1", c.ttl).Err()
}
