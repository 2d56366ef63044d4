package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/creativehub/nexus/internal/errors"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Name labels the limiter in metrics and Redis keys
	Name string
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc identifies the caller; defaults to the client IP
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig allows 100 requests per minute
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Name: "default", Limit: 100, Window: time.Minute}
}

// AuthRateLimitConfig returns stricter limits for auth endpoints
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Name: "auth", Limit: 10, Window: time.Minute}
}

// UploadRateLimitConfig returns limits for upload endpoints
func UploadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Name: "upload", Limit: 20, Window: time.Minute}
}

// SearchRateLimitConfig returns limits for search and suggestion endpoints.
// Suggestions fire on every keystroke, so the budget is generous.
func SearchRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Name: "search", Limit: 300, Window: time.Minute}
}

func (cfg RateLimitConfig) key(c *gin.Context) string {
	if cfg.KeyFunc != nil {
		return cfg.KeyFunc(c)
	}
	return c.ClientIP()
}

// TokenBucket for rate limiting
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	lastSeen   time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
		lastSeen:   time.Now(),
	}
}

// Allow takes a token if one is available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)
	tb.lastSeen = now
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RetryAfter returns seconds to wait before the next token is available
func (tb *TokenBucket) RetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens >= 1 {
		return 0
	}
	return int(math.Ceil((1 - tb.tokens) / tb.refillRate))
}

// idleSince reports whether the bucket is full and untouched since t
func (tb *TokenBucket) idleSince(t time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	return tb.tokens >= tb.maxTokens && tb.lastSeen.Before(t)
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = math.Min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// RateLimiter keeps one token bucket per caller key
type RateLimiter struct {
	buckets map[string]*TokenBucket
	config  RateLimitConfig
	mu      sync.Mutex
}

// NewRateLimiter creates an in-memory rate limiting middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	rl := newRateLimiter(config)
	go rl.cleanupRoutine(time.Minute)
	return rl.handle
}

func newRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
	}
}

func (rl *RateLimiter) handle(c *gin.Context) {
	key := rl.config.key(c)
	bucket := rl.bucket(key)
	if !bucket.Allow() {
		rejectRateLimited(c, rl.config, bucket.RetryAfter())
		return
	}
	c.Next()
}

func (rl *RateLimiter) bucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.config.Limit) / rl.config.Window.Seconds()
		bucket = NewTokenBucket(float64(rl.config.Limit), refillRate)
		rl.buckets[key] = bucket
	}
	return bucket
}

// cleanupRoutine drops buckets that have been full and idle for a whole interval
func (rl *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		rl.evictIdle(time.Now().Add(-interval))
	}
}

func (rl *RateLimiter) evictIdle(before time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, bucket := range rl.buckets {
		if bucket.idleSince(before) {
			delete(rl.buckets, key)
		}
	}
}

func rejectRateLimited(c *gin.Context, cfg RateLimitConfig, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	RecordRateLimitExceeded(cfg.Name, c.Request.Method)
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
	c.Header("X-RateLimit-Remaining", "0")
	util.RespondWithAPIError(c, errors.RateLimited("").WithDetails("retry after "+strconv.Itoa(retryAfter)+"s"))
}

// RateLimit returns a middleware with default configuration
func RateLimit() gin.HandlerFunc {
	return NewRateLimiter(DefaultRateLimitConfig())
}
