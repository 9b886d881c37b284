package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(1.0, 3))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/x", nil)
		req.RemoteAddr = "203.0.113.7:1000"
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d within burst should pass", i+1)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.RemoteAddr = "203.0.113.7:1000"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimit_PerIPBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(1.0, 1))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.RemoteAddr = "203.0.113.7:1000"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// same IP is out of tokens
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.RemoteAddr = "203.0.113.7:1000"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// a different IP has its own bucket
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.RemoteAddr = "203.0.113.8:1000"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_PrunesIdleBuckets(t *testing.T) {
	rl := newRateLimiter(1.0, 1)

	rl.allow("203.0.113.7")
	rl.allow("203.0.113.8")
	assert.Len(t, rl.bkts, 2)

	// age one bucket past the idle cutoff and force the next sweep
	rl.mu.Lock()
	rl.bkts["203.0.113.7"].lastRefill = time.Now().Add(-2 * bucketIdleTimeout)
	rl.lastSweep = time.Now().Add(-2 * bucketSweepInterval)
	rl.mu.Unlock()

	rl.allow("203.0.113.9")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.bkts, "203.0.113.7")
	assert.Contains(t, rl.bkts, "203.0.113.8")
	assert.Contains(t, rl.bkts, "203.0.113.9")
}
