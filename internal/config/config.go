package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the server configuration loaded from the environment
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	Database DatabaseConfig

	// JWTSecret signs session tokens
	JWTSecret string
	// PublishableKey must be presented by every client in the apikey header
	PublishableKey string

	RedisURL         string
	ElasticsearchURL string

	AWSRegion  string
	AWSBucket  string
	CDNBaseURL string

	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	StreamAPIKey    string
	StreamAPISecret string

	OTelEnabled      bool
	OTelEndpoint     string
	OTelSamplingRate float64

	CORSAllowedOrigins []string

	// TaskWorkers sizes the background task pool; 0 picks from the CPU count
	TaskWorkers int

	// RequiredServices turns optional integrations into hard startup requirements
	RequiredServices []string
}

// DatabaseConfig selects and addresses the database
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	URL        string
	SQLitePath string
}

// Load reads the .env file if present and builds a Config from the environment.
// JWT_SECRET and NEXUS_PUBLISHABLE_KEY are required; every other integration is
// optional and disabled when its variables are missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8787"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "server.log"),

		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnvOrDefault("DB_DRIVER", "postgres")),
			URL:        databaseURL(),
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "nexus.db"),
		},

		JWTSecret:      os.Getenv("JWT_SECRET"),
		PublishableKey: os.Getenv("NEXUS_PUBLISHABLE_KEY"),

		RedisURL:         os.Getenv("REDIS_URL"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),

		AWSRegion:  getEnvOrDefault("AWS_REGION", "us-east-1"),
		AWSBucket:  os.Getenv("AWS_BUCKET"),
		CDNBaseURL: os.Getenv("CDN_BASE_URL"),

		SESFromEmail: os.Getenv("SES_FROM_EMAIL"),
		SESFromName:  getEnvOrDefault("SES_FROM_NAME", "Nexus"),
		AppBaseURL:   getEnvOrDefault("APP_BASE_URL", "http://localhost:5173"),

		StreamAPIKey:    os.Getenv("STREAM_API_KEY"),
		StreamAPISecret: os.Getenv("STREAM_API_SECRET"),

		OTelEnabled:      os.Getenv("OTEL_ENABLED") == "true",
		OTelEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTelSamplingRate: parseFloatOrDefault(os.Getenv("OTEL_SAMPLING_RATE"), 1.0),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RequiredServices:   splitList(strings.ToLower(os.Getenv("REQUIRED_SERVICES"))),

		TaskWorkers: parseIntOrDefault(os.Getenv("TASK_WORKERS"), 0),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.PublishableKey == "" {
		return nil, fmt.Errorf("NEXUS_PUBLISHABLE_KEY environment variable is required")
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", cfg.Database.Driver)
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// StorageEnabled reports whether S3 media storage is configured
func (c *Config) StorageEnabled() bool {
	return c.AWSBucket != ""
}

// EmailEnabled reports whether SES email delivery is configured
func (c *Config) EmailEnabled() bool {
	return c.SESFromEmail != ""
}

// StreamEnabled reports whether activity fan-out is configured
func (c *Config) StreamEnabled() bool {
	return c.StreamAPIKey != "" && c.StreamAPISecret != ""
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "nexus")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatOrDefault(s string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return defaultValue
}

func parseIntOrDefault(s string, defaultValue int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
