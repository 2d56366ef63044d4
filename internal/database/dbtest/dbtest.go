// Package dbtest provides an in-memory database and fixtures for tests
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Setup opens a fresh in-memory SQLite database, migrates it, seeds the
// default categories and installs it as database.DB for the test's duration.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:nexus_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.EnsureCategories(db))

	restore := database.Use(db, "sqlite")
	t.Cleanup(func() {
		restore()
		_ = sqlDB.Close()
	})

	return db
}

// CreateProfile inserts a profile with a throwaway password hash
func CreateProfile(t *testing.T, username string) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		Email:        username + "@example.com",
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		Skills:       []string{},
		OpenTo:       []string{},
	}
	require.NoError(t, database.DB.Create(profile).Error)
	return profile
}

// CategoryBySlug loads one of the seeded categories
func CategoryBySlug(t *testing.T, slug string) *models.Category {
	t.Helper()

	var category models.Category
	require.NoError(t, database.DB.Where("slug = ?", slug).First(&category).Error)
	return &category
}

// CreateProject inserts a published image project. mutate adjusts it before insert.
func CreateProject(t *testing.T, owner *models.Profile, title string, mutate ...func(*models.Project)) *models.Project {
	t.Helper()

	project := &models.Project{
		OwnerID:     owner.ID,
		Title:       title,
		MediaURL:    "https://cdn.example.com/" + title + ".png",
		MediaType:   models.MediaTypeImage,
		Tags:        []string{},
		IsPublished: true,
	}
	for _, fn := range mutate {
		fn(project)
	}
	require.NoError(t, database.DB.Create(project).Error)
	return project
}
