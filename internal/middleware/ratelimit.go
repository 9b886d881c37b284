package middleware

import (
	"sync"
	"time"

	"github.com/ShalunBdk/VirtexShortLink/internal/metrics"
	"github.com/ShalunBdk/VirtexShortLink/pkg/detector"
	"github.com/ShalunBdk/VirtexShortLink/pkg/response"
	"github.com/gin-gonic/gin"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

const (
	bucketSweepInterval = time.Minute
	bucketIdleTimeout   = 3 * time.Minute
)

// rateLimiter is a per-IP token bucket. Buckets refill continuously at rps
// and cap at burst. Idle buckets are pruned so the map does not grow
// forever under IP churn; a pruned bucket would have been full anyway.
type rateLimiter struct {
	mu        sync.Mutex
	rps       float64
	burst     int
	bkts      map[string]*bucket
	lastSweep time.Time
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{
		rps:       rps,
		burst:     burst,
		bkts:      make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	if now.Sub(rl.lastSweep) >= bucketSweepInterval {
		for k, b := range rl.bkts {
			if now.Sub(b.lastRefill) >= bucketIdleTimeout {
				delete(rl.bkts, k)
			}
		}
		rl.lastSweep = now
	}

	bkt, ok := rl.bkts[key]
	if !ok {
		bkt = &bucket{tokens: float64(rl.burst), lastRefill: now}
		rl.bkts[key] = bkt
	}

	elapsed := now.Sub(bkt.lastRefill).Seconds()
	bkt.tokens = min(float64(rl.burst), bkt.tokens+elapsed*rl.rps)
	bkt.lastRefill = now

	if bkt.tokens >= 1 {
		bkt.tokens -= 1
		return true
	}
	return false
}

// RateLimit throttles shorten requests per client IP. Redirects are never
// rate limited.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	rl := newRateLimiter(rps, burst)

	return func(c *gin.Context) {
		ip := detector.ClientIP(
			c.Request.RemoteAddr,
			c.GetHeader("X-Forwarded-For"),
			c.GetHeader("X-Real-IP"),
		)

		if !rl.allow(ip) {
			metrics.RateLimited.Inc()
			response.TooManyRequests(c, "rate limit exceeded, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
