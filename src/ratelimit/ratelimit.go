// Package ratelimit bounds how often a user may create transactions. Local
// keeps token buckets in process; Redis shares a fixed window across
// instances.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Local is a per-key token bucket refilling limit tokens per window.
type Local struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSweep time.Time
}

func NewLocal(limit int, window time.Duration) *Local {
	return &Local{
		limit:    limit,
		window:   window,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *Local) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	l.sweep(now)
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.AllowN(now, 1), nil
}

// sweep drops buckets that have refilled completely, at most once per
// window. A full bucket behaves exactly like a fresh one. Callers hold mu.
func (l *Local) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(l.limit) {
			delete(l.limiters, key)
		}
	}
}
