// Package ratelimit throttles login attempts with a fixed window per key.
// Keys are derived by the caller (client IP plus principal kind); a nil
// limiter in the wiring disables throttling entirely.
package ratelimit

import (
	"context"
	"time"
)

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
