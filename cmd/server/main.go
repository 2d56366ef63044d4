package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creativehub/nexus/internal/auth"
	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/config"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/email"
	"github.com/creativehub/nexus/internal/handlers"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
	"github.com/creativehub/nexus/internal/queue"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/creativehub/nexus/internal/search"
	"github.com/creativehub/nexus/internal/storage"
	"github.com/creativehub/nexus/internal/stream"
	"github.com/creativehub/nexus/internal/telemetry"
	"github.com/creativehub/nexus/internal/validation"
	"go.uber.org/zap"
)

const (
	serviceName         = "nexus-backend"
	reconcileInterval   = 6 * time.Hour
	shutdownGracePeriod = 30 * time.Second
	taskQueueSize       = 512
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("Nexus server starting",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	if err := run(cfg); err != nil {
		logger.FatalWithFields("Server failed", err)
	}
	logger.Log.Info("Server exited")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Initialize()

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
		SamplingRate: cfg.OTelSamplingRate,
	})
	if err != nil {
		logger.WarnWithFields("Tracing disabled: failed to initialize tracer", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
			logger.WarnWithFields("Failed to flush traces", err)
		}
	}()

	if err := database.Initialize(cfg.Database, !cfg.IsProduction(), telemetry.GORMTracingPlugin()); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	validator := validation.NewServiceValidator(cfg.RequiredServices)
	if err := validation.RegisterBindingValidators(); err != nil {
		return fmt.Errorf("register request validators: %w", err)
	}

	redisClient := connectRedis(cfg, validator)
	if redisClient != nil {
		defer redisClient.Close()
	}

	hub := realtime.NewHub()
	go hub.Run()
	broker := realtime.NewBroker(hub, redisClient)
	go broker.Run(ctx)

	authService := auth.NewService([]byte(cfg.JWTSecret))
	h := handlers.NewHandlers(authService, redisClient, broker)

	tasks := queue.NewTaskQueue(cfg.TaskWorkers, taskQueueSize)
	tasks.Start()
	h.SetTaskQueue(tasks)

	if uploader := connectStorage(ctx, cfg, validator); uploader != nil {
		h.SetStorage(uploader)
	}
	if cfg.EmailEnabled() {
		mailer, err := email.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
		if err != nil {
			logger.WarnWithFields("Email disabled: failed to initialize SES", err)
		} else {
			h.SetMailer(mailer)
		}
	}
	if cfg.StreamEnabled() {
		activity, err := stream.NewClient(cfg.StreamAPIKey, cfg.StreamAPISecret)
		if err != nil {
			logger.WarnWithFields("Activity feeds disabled: failed to initialize Stream", err)
		} else {
			h.SetActivityPublisher(activity)
		}
	}

	if esClient := connectSearch(ctx, cfg, validator); esClient != nil {
		h.SetSearchClient(esClient)
		reconciler := search.NewReconciliationService(esClient, reconcileInterval)
		reconciler.Start()
		defer reconciler.Stop()
	}

	if err := validator.ValidateServices(ctx); err != nil {
		return err
	}

	router := newRouter(cfg, h, authService, hub, redisClient)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Nexus backend listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.WarnWithFields("Realtime shutdown warning", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	// Requests are done, so nothing submits after this
	tasks.Stop(shutdownCtx)
	return nil
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// feed cache, availability cache and cross-instance realtime are then off.
func connectRedis(cfg *config.Config, validator *validation.ServiceValidator) *cache.RedisClient {
	if cfg.RedisURL == "" {
		logger.Log.Info("Redis not configured - caching and multi-instance realtime disabled")
		return nil
	}
	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.WarnWithFields("Redis disabled: connection failed", err)
		return nil
	}
	validator.Register("redis", client.Ping)
	return client
}

func connectStorage(ctx context.Context, cfg *config.Config, validator *validation.ServiceValidator) storage.MediaUploader {
	if !cfg.StorageEnabled() {
		logger.Log.Info("S3 not configured - media uploads disabled")
		return nil
	}
	uploader, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
	if err != nil {
		logger.WarnWithFields("Media uploads disabled: failed to initialize S3", err)
		return nil
	}
	validator.Register("s3", uploader.CheckBucketAccess)
	if err := uploader.CheckBucketAccess(ctx); err != nil {
		logger.WarnWithFields("S3 bucket access check failed; uploads may fail", err)
	}
	return uploader
}

func connectSearch(ctx context.Context, cfg *config.Config, validator *validation.ServiceValidator) *search.Client {
	if cfg.ElasticsearchURL == "" {
		logger.Log.Info("Elasticsearch not configured - search falls back to the database")
		return nil
	}
	client, err := search.NewClient(ctx, cfg.ElasticsearchURL)
	if err != nil {
		logger.WarnWithFields("Elasticsearch disabled: connection failed", err)
		return nil
	}
	validator.Register("elasticsearch", client.Ping)

	recreated, err := client.InitializeIndices(ctx)
	if err != nil {
		logger.WarnWithFields("Failed to initialize search indices", err)
		return client
	}
	if recreated {
		go func() {
			projects, profiles, err := search.NewReconciliationService(client, reconcileInterval).Backfill(context.Background())
			if err != nil {
				logger.WarnWithFields("Search backfill failed", err)
				return
			}
			logger.Log.Info("Search backfill complete", zap.Int("projects", projects), zap.Int("profiles", profiles))
		}()
	}
	return client
}
