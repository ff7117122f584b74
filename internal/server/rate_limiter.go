package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/composable-commerce/storefront/internal/audit"
)

// idleClientTTL is how long an untouched client keeps its buckets
const idleClientTTL = time.Hour

// tokenBucket refills rate tokens per period up to twice the rate
type tokenBucket struct {
	rate       int
	period     time.Duration
	tokens     int
	maxTokens  int
	lastUpdate time.Time
}

func newTokenBucket(rate int, period time.Duration, now time.Time) *tokenBucket {
	return &tokenBucket{
		rate:       rate,
		period:     period,
		tokens:     rate,
		maxTokens:  rate * 2,
		lastUpdate: now,
	}
}

func (b *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastUpdate)
	tokensToAdd := int(float64(elapsed) / float64(b.period) * float64(b.rate))
	if tokensToAdd > 0 {
		b.tokens = min(b.tokens+tokensToAdd, b.maxTokens)
		b.lastUpdate = now
	}
}

type clientBuckets struct {
	minute   *tokenBucket
	hour     *tokenBucket
	lastSeen time.Time
}

// RateLimiter keeps a per-minute and a per-hour token bucket for each client.
// A zero rate disables that bucket.
type RateLimiter struct {
	perMinute int
	perHour   int
	clients   map[string]*clientBuckets
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(perMinute, perHour int) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		perHour:   perHour,
		clients:   make(map[string]*clientBuckets),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow checks if a request from client is allowed
func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	c, ok := r.clients[client]
	if !ok {
		c = &clientBuckets{}
		if r.perMinute > 0 {
			c.minute = newTokenBucket(r.perMinute, time.Minute, now)
		}
		if r.perHour > 0 {
			c.hour = newTokenBucket(r.perHour, time.Hour, now)
		}
		r.clients[client] = c
	}
	c.lastSeen = now

	for _, b := range []*tokenBucket{c.minute, c.hour} {
		if b == nil {
			continue
		}
		b.refill(now)
		if b.tokens <= 0 {
			return false
		}
	}

	if c.minute != nil {
		c.minute.tokens--
	}
	if c.hour != nil {
		c.hour.tokens--
	}
	return true
}

// Clients returns the number of tracked clients
func (r *RateLimiter) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *RateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < idleClientTTL {
		return
	}
	for id, c := range r.clients {
		if now.Sub(c.lastSeen) >= idleClientTTL {
			delete(r.clients, id)
		}
	}
	r.lastSweep = now
}

// rateLimit rejects clients that ran out of tokens with 429
func rateLimit(limiter *RateLimiter, events *audit.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		client := c.ClientIP()
		if !limiter.Allow(client) {
			events.Log(&audit.Event{
				Type:      audit.EventRateLimited,
				Severity:  audit.SeverityWarning,
				Source:    "server",
				Resource:  c.Request.URL.Path,
				Action:    "request",
				Result:    "rejected",
				Details:   map[string]interface{}{"client": client},
				RequestID: c.GetString(requestIDKey),
			})
			c.Header("Retry-After", "60")
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
