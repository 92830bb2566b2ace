package fiber

import (
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Simple in-memory fixed-window counters keyed by client IP, in front of
// the per-user store-backed window in core. Good for single-instance
// setups; a multi-instance deployment wants a shared store instead.

type bucket struct {
	window time.Time
	count  int
}

type ipLimiter struct {
	mu      sync.Mutex
	data    map[string]bucket
	limit   int
	per     time.Duration
	sweptAt time.Time
}

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{
		data:  make(map[string]bucket),
		limit: perMinute,
		per:   time.Minute,
	}
}

// allow reports whether a request identified by key is within its limit.
// Buckets from previous windows are swept once per window turn so the map
// stays bounded by the number of distinct clients seen in the current one.
func (rl *ipLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	win := now.Truncate(rl.per)
	if win.After(rl.sweptAt) {
		for k, b := range rl.data {
			if b.window.Before(win) {
				delete(rl.data, k)
			}
		}
		rl.sweptAt = win
	}

	b, ok := rl.data[key]
	if !ok || b.window.Before(win) {
		rl.data[key] = bucket{window: win, count: 1}
		return true
	}
	if b.count >= rl.limit {
		return false
	}
	b.count++
	rl.data[key] = b
	return true
}

func (a *Adapter) limitByIP(c fiber.Ctx) error {
	if !a.limiter.allow(c.IP(), time.Now()) {
		return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
			"error": "too many requests",
		})
	}
	return c.Next()
}
