package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per key, typically the client IP.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*client
	rps   rate.Limit
	burst int
	now   func() time.Time
}

// New allows rps requests per second per key with the given burst.
// A non-positive rps disables limiting.
func New(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{m: make(map[string]*client), rps: rate.Limit(rps), burst: burst, now: time.Now}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.rps <= 0 {
		return true
	}
	now := l.now()
	l.mu.Lock()
	c, ok := l.m[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = c
	}
	c.seen = now
	l.mu.Unlock()
	return c.lim.AllowN(now, 1)
}

// Prune forgets keys idle for longer than idle and returns how many remain.
func (l *Limiter) Prune(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, c := range l.m {
		if c.seen.Before(cutoff) {
			delete(l.m, k)
		}
	}
	return len(l.m)
}
