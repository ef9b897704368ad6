package marketdata

import (
	"context"
	"time"
)

// Limiter enforces a minimum interval between upstream calls across every
// caller sharing it. Callers queue on a single slot, so the elapsed time is
// computed by one caller at a time.
type Limiter struct {
	interval time.Duration
	slot     chan struct{}
	last     time.Time // guarded by slot
}

// NewLimiter returns a limiter admitting one call per interval. A
// non-positive interval admits calls immediately.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		slot:     make(chan struct{}, 1),
	}
}

// Wait blocks until the caller may issue an upstream call or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.slot }()

	if !l.last.IsZero() {
		if wait := l.interval - time.Since(l.last); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	l.last = time.Now()
	return nil
}
