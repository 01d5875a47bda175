package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterKeyPrefix namespaces rate limit counters in Redis.
const counterKeyPrefix = "ratelimit:"

// RedisStore is a fixed-window counter store backed by Redis. Counters are
// shared by every replica pointing at the same Redis, so the attempt limit
// holds across a horizontally scaled deployment. Atomicity comes from INCR;
// the window boundary is the key's TTL, set only on the first increment.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store using the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr implements Store.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	rkey := counterKeyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	// NX: only the first increment of a window starts the TTL clock.
	pipe.ExpireNX(ctx, rkey, window)
	ttl := pipe.PTTL(ctx, rkey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("incrementing rate limit counter: %w", err)
	}

	reset := time.Now().Add(ttl.Val())
	return int(incr.Val()), reset, nil
}
