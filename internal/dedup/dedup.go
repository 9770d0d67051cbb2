// Package dedup absorbs redelivered webhook events. The platform retries
// deliveries it considers unacknowledged, so the same event can arrive more
// than once; marking an event seen before replying is what makes the whole
// dispatch pipeline idempotent.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dedup:"

// DefaultWindow is how long an event id is remembered. The platform does
// not redeliver indefinitely, and unbounded retention would leak memory
// across thousands of tenants.
const DefaultWindow = 24 * time.Hour

// Deduplicator reports whether an event was already processed, marking it
// seen as a side effect of the same call. The check-and-set must be atomic
// per tenant: two concurrent deliveries of the same event must not both
// observe "not seen". The key is always (tenantID, eventID) — two tenants
// may legitimately receive events with the same raw id.
type Deduplicator interface {
	Seen(ctx context.Context, tenantID, eventID string) (bool, error)
}

// RedisDeduplicator implements Deduplicator using Redis SET NX EX, which is
// an atomic check-and-set with built-in expiry. Shared Redis makes dedup
// hold across dispatcher replicas.
type RedisDeduplicator struct {
	rdb    *redis.Client
	window time.Duration
}

func NewRedis(rdb *redis.Client, window time.Duration) *RedisDeduplicator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisDeduplicator{rdb: rdb, window: window}
}

func (d *RedisDeduplicator) Seen(ctx context.Context, tenantID, eventID string) (bool, error) {
	key := keyPrefix + tenantID + ":" + eventID
	first, err := d.rdb.SetNX(ctx, key, "1", d.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX: %w", err)
	}
	return !first, nil
}
