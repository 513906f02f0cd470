// Package rediscache provides the Redis-backed basket snapshot cache. The
// cache is a read accelerator only: every entry is TTL-bounded and every
// basket mutation invalidates it, so the database remains the source of
// truth.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/shoply/internal/domain/basket"
)

const keyPrefix = "basket:snapshot:"

// DefaultTTL bounds how long a snapshot may be served without revalidation.
const DefaultTTL = 15 * time.Minute

var _ basket.SnapshotCache = (*BasketCache)(nil)

// BasketCache caches basket snapshots in Redis keyed by customer ID.
type BasketCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a BasketCache. A non-positive ttl falls back to DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *BasketCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BasketCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for the customer, or nil on a miss.
func (c *BasketCache) Get(ctx context.Context, customerID string) (*basket.Snapshot, error) {
	data, err := c.client.Get(ctx, keyPrefix+customerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read snapshot")
	}

	var snap basket.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &snap, nil
}

// Set stores the snapshot with the configured TTL.
func (c *BasketCache) Set(ctx context.Context, customerID string, s *basket.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if err := c.client.Set(ctx, keyPrefix+customerID, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	return nil
}

// Invalidate drops the cached snapshot for the customer.
func (c *BasketCache) Invalidate(ctx context.Context, customerID string) error {
	if err := c.client.Del(ctx, keyPrefix+customerID).Err(); err != nil {
		return errors.Wrap(err, "drop snapshot")
	}
	return nil
}
