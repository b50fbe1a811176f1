// Package ratelimit implements the sliding-window limiter applied to the
// authentication routes. Counters live in process memory by default or in
// Redis when several server instances share one budget.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the time until the oldest counted request leaves the window.
	Reset time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
