// Package ratelimit implements fixed-window request counting for the
// authentication surface. A Store tracks attempt counts per client key
// (origin IP) within non-overlapping windows; the Echo middleware in this
// package turns counts into allow/reject decisions and standard RateLimit
// response headers.
//
// Two stores are provided: an in-process map for single-instance
// deployments and a Redis-backed store so counters are shared when the
// service runs with multiple replicas.
package ratelimit

import (
	"context"
	"time"
)

// Store is a keyed fixed-window attempt counter. Implementations must be
// safe for concurrent use: parallel attempts against the same key must
// never undercount.
type Store interface {
	// Incr records one attempt for key and returns the total count of
	// attempts within the current window, along with the time the window
	// resets. A new window starts automatically when the previous one
	// has elapsed.
	Incr(ctx context.Context, key string, window time.Duration) (count int, reset time.Time, err error)
}
