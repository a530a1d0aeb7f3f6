// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the process-local rate limiter: one x/time/rate token
// bucket per identity, 429 with Retry-After on refusal and optional reject
// hooks. The router keys buckets by client IP and hooks the lookup route so a
// refused lookup still gets its usage log row.
//
// Buckets idle for longer than the TTL are dropped by a sweep that runs every
// sweepEvery bucket lookups, so memory follows the set of recent clients.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc maps a request to the identity that owns a rate-limit bucket.
type KeyFunc func(*gin.Context) string

// KeyByClientIP buckets requests by client IP. The API key a client sends is
// ignored here: it is unverified before admission, and keying on it would hand
// every made-up key a fresh bucket. Per-key consumption is bounded by quota.
func KeyByClientIP() KeyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per identity. Idle buckets are
// evicted opportunistically every sweepEvery lookups.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
}

const sweepEvery = 5000

// NewRateLimiter allows rps tokens per second with the given burst (coerced
// to at least 1) per identity returned by keyFn.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByClientIP()
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		now:      time.Now,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// limiter returns the bucket for key. The sweep runs before the lookup so an
// idle bucket is evicted even when it is the one requested.
func (rl *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Len reports the number of live buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Handler rejects over-limit requests with 429 and a Retry-After header
// holding the whole seconds until a token is available. onReject hooks run on
// every refused request before the response is written.
func (rl *RateLimiter) Handler(onReject ...func(*gin.Context)) gin.HandlerFunc {
	reject := func(c *gin.Context, retryAfter string) {
		for _, fn := range onReject {
			fn(c)
		}
		c.Header("Retry-After", retryAfter)
		abortJSON(c, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
	}

	return func(c *gin.Context) {
		now := rl.now()
		lim := rl.limiter(rl.keyFn(c), now)

		res := lim.ReserveN(now, 1)
		if !res.OK() {
			// rps == 0 with burst exhausted: never replenishes.
			reject(c, "60")
			return
		}
		delay := res.DelayFrom(now)
		if delay == 0 {
			c.Next()
			return
		}
		res.CancelAt(now)

		secs := int(math.Ceil(delay.Seconds()))
		if secs < 1 {
			secs = 1
		}
		reject(c, strconv.Itoa(secs))
	}
}
