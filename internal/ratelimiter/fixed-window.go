package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts requests per client IP within a fixed
// window. Windows are tracked per client and roll over lazily on the next
// request, so no background goroutine is needed. Entries for clients that
// stopped sending are swept out at most once per frame, keeping the map
// bounded by the set of clients active in the last frame.
type FixedWindowRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*window
	limit     int
	frame     time.Duration
	lastSweep time.Time
}

type window struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(limit int, frame time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients:   make(map[string]*window),
		limit:     limit,
		frame:     frame,
		lastSweep: time.Now(),
	}
}

func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	w, ok := rl.clients[ip]
	if !ok || now.Sub(w.start) >= rl.frame {
		rl.clients[ip] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}

	return false, rl.frame - now.Sub(w.start)
}

// sweep drops windows that already expired. Caller must hold mu.
func (rl *FixedWindowRateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.frame {
		return
	}
	for ip, w := range rl.clients {
		if now.Sub(w.start) >= rl.frame {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}
