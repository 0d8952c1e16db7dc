package ratelimit

import (
	"context"
	"time"
)

// TickGuard serializes dispatch ticks across processes and enforces the
// minimum wall-clock spacing between them. Acquire reports false when a tick
// is already running or the previous tick finished less than interval ago.
type TickGuard interface {
	Acquire(ctx context.Context, interval time.Duration) (bool, error)
	Release(ctx context.Context) error
}
