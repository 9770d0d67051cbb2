// Package quota enforces per-tenant daily send limits. A day is a calendar
// date in the tenant's configured time zone; the counter resets the first
// time a send is attempted on a later day.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "quota:"
	dayFormat = "2006-01-02"

	// keyTTL outlives any day in any time zone so counters never linger,
	// while surviving until the stats surface stops caring about them.
	keyTTL = 48 * time.Hour
)

// Tracker performs the atomic check-and-increment of a tenant's daily send
// count. TryConsume returns false and leaves the counter unchanged when the
// current day's count has reached limit; limit <= 0 means unlimited — the
// call always succeeds but still increments, so usage stays observable.
// Day rollover and the check-and-increment are one atomic step per tenant;
// tenants never contend with each other.
type Tracker interface {
	TryConsume(ctx context.Context, tenantID string, limit int, loc *time.Location) (bool, error)
	Usage(ctx context.Context, tenantID string, loc *time.Location) (int, error)
}

// tryConsumeScript is the Redis-side check-and-increment. Running it as a
// script makes the limit check and the increment a single atomic step even
// across dispatcher replicas.
var tryConsumeScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if limit > 0 and count >= limit then
	return 0
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// RedisTracker implements Tracker on Redis. Rollover falls out of the key
// schema: each calendar day in the tenant's zone gets its own key, and old
// keys expire on their own.
type RedisTracker struct {
	rdb *redis.Client

	// Now is overridable in tests.
	Now func() time.Time
}

func NewRedis(rdb *redis.Client) *RedisTracker {
	return &RedisTracker{rdb: rdb, Now: time.Now}
}

func (t *RedisTracker) TryConsume(ctx context.Context, tenantID string, limit int, loc *time.Location) (bool, error) {
	key := t.key(tenantID, loc)
	ok, err := tryConsumeScript.Run(ctx, t.rdb, []string{key}, limit, int(keyTTL.Seconds())).Int()
	if err != nil {
		return false, fmt.Errorf("redis quota script: %w", err)
	}
	return ok == 1, nil
}

func (t *RedisTracker) Usage(ctx context.Context, tenantID string, loc *time.Location) (int, error) {
	n, err := t.rdb.Get(ctx, t.key(tenantID, loc)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis GET: %w", err)
	}
	return n, nil
}

func (t *RedisTracker) key(tenantID string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return keyPrefix + tenantID + ":" + t.Now().In(loc).Format(dayFormat)
}
