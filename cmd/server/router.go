package main

import (
	"time"

	"github.com/creativehub/nexus/internal/auth"
	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/config"
	"github.com/creativehub/nexus/internal/handlers"
	"github.com/creativehub/nexus/internal/middleware"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const realtimePath = "/api/v1/realtime"

func newRouter(cfg *config.Config, h *handlers.Handlers, authService *auth.Service, hub *realtime.Hub, redisClient *cache.RedisClient) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TracingMiddleware(serviceName)...)

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.APIKeyHeader, "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	// Websocket upgrades must not be wrapped by the gzip writer
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{realtimePath, "/metrics"})))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RequirePublishableKey(cfg.PublishableKey))

	wsHandler := realtime.NewHandler(hub, authService, cfg.CORSAllowedOrigins)
	api.GET("/realtime", wsHandler.HandleWebSocket)

	api.Use(middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()))
	h.RegisterRoutes(api, handlers.RouteMiddleware{
		RequireAuth:  middleware.RequireAuth(authService),
		OptionalAuth: middleware.OptionalAuth(authService),
		AuthLimit:    rateLimiter(redisClient, middleware.AuthRateLimitConfig()),
		UploadLimit:  rateLimiter(redisClient, middleware.UploadRateLimitConfig()),
		SearchLimit:  rateLimiter(redisClient, middleware.SearchRateLimitConfig()),
	})

	return r
}

// rateLimiter shares limits across instances through Redis when it is
// available and falls back to a per-process token bucket otherwise
func rateLimiter(redisClient *cache.RedisClient, cfg middleware.RateLimitConfig) gin.HandlerFunc {
	if redisClient != nil {
		return middleware.RedisRateLimitMiddleware(redisClient, cfg)
	}
	return middleware.NewRateLimiter(cfg)
}
