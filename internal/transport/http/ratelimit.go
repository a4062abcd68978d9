package http

import (
	"sync"
	"time"
)

// rateLimiter counts requests per key in fixed one-minute windows.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	counters map[string]*rateWindow
}

type rateWindow struct {
	start time.Time
	count int
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:    limit,
		window:   time.Minute,
		now:      time.Now,
		counters: make(map[string]*rateWindow),
	}
}

func (r *rateLimiter) allow(key string) bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.counters[key]
	if !ok || now.Sub(w.start) >= r.window {
		r.sweep(now)
		w = &rateWindow{start: now}
		r.counters[key] = w
	}
	w.count++
	return w.count <= r.limit
}

// sweep drops expired windows so idle clients do not accumulate.
func (r *rateLimiter) sweep(now time.Time) {
	for key, w := range r.counters {
		if now.Sub(w.start) >= r.window {
			delete(r.counters, key)
		}
	}
}
