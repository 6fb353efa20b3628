package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/supplysetu/internal/logger"
)

type phoneLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PhoneRateLimiter throttles login attempts per phone number, falling back to
// the client IP when the body carries none.
type PhoneRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*phoneLimiter
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewPhoneRateLimiter allows perMinute attempts per key with the given burst.
func NewPhoneRateLimiter(perMinute, burst int) *PhoneRateLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &PhoneRateLimiter{
		limiters: make(map[string]*phoneLimiter),
		rate:     rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (rl *PhoneRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &phoneLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Prune drops limiters idle for longer than idle and returns how many were removed.
func (rl *PhoneRateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Handler returns the middleware guarding login routes.
func (rl *PhoneRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			PhoneNumber string `json:"phone_number"`
		}
		_ = c.BodyParser(&body)

		key := body.PhoneNumber
		if key == "" {
			key = c.IP()
		}

		if !rl.Allow(key) {
			logger.FromContext(c).Warn("login rate limit exceeded", zap.String("key", key))
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
		}
		return c.Next()
	}
}
