package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared across server
// instances. Without Redis it falls back to the in-memory token bucket.
// When Redis errors mid-request the request is let through and the failure logged.
func RedisRateLimitMiddleware(redisClient *cache.RedisClient, cfg RateLimitConfig) gin.HandlerFunc {
	if redisClient == nil {
		return NewRateLimiter(cfg)
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", cfg.Name, cfg.key(c))
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := redisClient.Incr(ctx, key)
		if err != nil {
			logger.Log.Warn("Rate limit check failed, allowing request",
				zap.String("limiter", cfg.Name),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count == 1 {
			if err := redisClient.Client().Expire(ctx, key, cfg.Window).Err(); err != nil {
				logger.Log.Warn("Failed to set rate limit expiration", zap.String("key", key), zap.Error(err))
			}
		}

		if count > int64(cfg.Limit) {
			retryAfter := int(cfg.Window.Seconds())
			if ttl, err := redisClient.Client().TTL(ctx, key).Result(); err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds()) + 1
			}
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.String("limiter", cfg.Name),
				zap.Int64("current_requests", count),
			)
			rejectRateLimited(c, cfg, retryAfter)
			return
		}

		c.Next()
	}
}
