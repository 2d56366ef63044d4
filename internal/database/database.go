package database

import (
	"fmt"
	"time"

	"github.com/creativehub/nexus/internal/config"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// driver remembers which dialect DB speaks, for dialect-specific indexes
var driver string

// DefaultCategories are created on every migration if missing
var DefaultCategories = []string{
	"Photography",
	"Illustration",
	"Graphic Design",
	"UI/UX",
	"3D",
	"Motion",
	"Video",
	"Typography",
	"Architecture",
	"Fashion",
}

// Initialize creates and configures the database connection.
// Plugins (such as query tracing) are registered before DB is published.
func Initialize(cfg config.DatabaseConfig, development bool, plugins ...gorm.Plugin) error {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if development {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := Open(cfg, gormLogger)
	if err != nil {
		return err
	}

	for _, plugin := range plugins {
		if err := db.Use(plugin); err != nil {
			return fmt.Errorf("failed to register gorm plugin %s: %w", plugin.Name(), err)
		}
	}

	if cfg.Driver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	DB = db
	driver = cfg.Driver
	logger.Log.Info("Database connected", zap.String("driver", cfg.Driver))

	return nil
}

// Open opens a gorm connection for the configured driver
func Open(cfg config.DatabaseConfig, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := AutoMigrate(DB); err != nil {
		return err
	}

	createIndexes()

	if err := EnsureCategories(DB); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.Category{},
		&models.Project{},
		&models.ProjectView{},
		&models.Like{},
		&models.Save{},
		&models.Comment{},
		&models.Notification{},
		&models.HireRequest{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// EnsureCategories inserts any missing default categories
func EnsureCategories(db *gorm.DB) error {
	for i, name := range DefaultCategories {
		category := models.Category{
			Name:      name,
			Slug:      models.Slugify(name),
			SortOrder: i,
		}
		if err := db.Where("slug = ?", category.Slug).FirstOrCreate(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

// createIndexes creates performance indexes. Failures are logged, not fatal.
func createIndexes() {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_profiles_username_lower ON profiles (LOWER(username))",
		"CREATE INDEX IF NOT EXISTS idx_projects_published_created ON projects (is_published, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_projects_owner_created ON projects (owner_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_projects_category_created ON projects (category_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_projects_like_count ON projects (like_count DESC)",
		"CREATE INDEX IF NOT EXISTS idx_comments_project_created ON comments (project_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created ON notifications (recipient_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (recipient_id) WHERE read_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_project_views_project_created ON project_views (project_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_hire_requests_freelancer_status ON hire_requests (freelancer_id, status)",
	}

	if driver == "postgres" {
		statements = append(statements,
			"CREATE EXTENSION IF NOT EXISTS pg_trgm",
			"CREATE INDEX IF NOT EXISTS idx_projects_title_trgm ON projects USING gin (LOWER(title) gin_trgm_ops)",
		)
	}

	for _, stmt := range statements {
		if err := DB.Exec(stmt).Error; err != nil {
			logger.WarnWithFields("Failed to create index", err, zap.String("statement", stmt))
		}
	}
}

// Use installs db as the global connection and returns a func that restores
// the previous one
func Use(db *gorm.DB, dialect string) (restore func()) {
	prevDB, prevDriver := DB, driver
	DB, driver = db, dialect
	return func() {
		DB, driver = prevDB, prevDriver
	}
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
