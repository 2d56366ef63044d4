package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rl := newRateLimiter(cfg)

	router := gin.New()
	router.Use(rl.handle)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimiter(t *testing.T) {
	router := newLimitedRouter(RateLimitConfig{Name: "test", Limit: 3, Window: time.Second})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "4th request should be rate limited")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	// One token refills every 1/3s
	time.Sleep(400 * time.Millisecond)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code, "Request after refill should succeed")
}

func TestRateLimiterDifferentClients(t *testing.T) {
	router := newLimitedRouter(RateLimitConfig{
		Name:   "test",
		Limit:  2,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.GetHeader("X-Client-ID")
		},
	})

	send := func(client string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Client-ID", client)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("client-a"))
	assert.Equal(t, http.StatusOK, send("client-a"))
	assert.Equal(t, http.StatusTooManyRequests, send("client-a"))

	// Client B has its own bucket
	assert.Equal(t, http.StatusOK, send("client-b"))
	assert.Equal(t, http.StatusOK, send("client-b"))
}

func TestRateLimiterEvictIdle(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Name: "test", Limit: 5, Window: time.Minute})

	busy := rl.bucket("busy")
	rl.bucket("idle")
	require.True(t, busy.Allow())

	rl.evictIdle(time.Now().Add(time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "idle")
	assert.Contains(t, rl.buckets, "busy", "partially drained bucket is kept")
}

func TestTokenBucketRetryAfter(t *testing.T) {
	tb := NewTokenBucket(1, 0.5)
	assert.Equal(t, 0, tb.RetryAfter())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
	assert.Equal(t, 2, tb.RetryAfter())
}

func TestRedisRateLimitFallsBackWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RedisRateLimitMiddleware(nil, RateLimitConfig{Name: "test", Limit: 1, Window: time.Minute}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
