package main

import (
	"testing"

	"github.com/creativehub/nexus/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceURL(t *testing.T) {
	adminURL, name, err := maintenanceURL("postgres://nexus:secret@db:5432/nexus_dev?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "nexus_dev", name)
	assert.Equal(t, "postgres://nexus:secret@db:5432/postgres?sslmode=disable", adminURL)

	_, _, err = maintenanceURL("postgres://nexus@db:5432/")
	assert.Error(t, err)

	_, _, err = maintenanceURL("mysql://nexus@db/nexus")
	assert.Error(t, err)
}

func TestEnsureDatabaseSkipsSQLite(t *testing.T) {
	assert.NoError(t, ensureDatabase(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "nexus.db"}))
}
