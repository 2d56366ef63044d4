package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/creativehub/nexus/internal/config"
	"github.com/creativehub/nexus/internal/database"
	"github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Nexus database schema",
		// Bare "migrate" behaves like "migrate up"
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(true)
		},
	}

	var createDB bool
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(createDB)
		},
	}
	upCmd.Flags().BoolVar(&createDB, "create-db", true, "create the Postgres database first if it does not exist")

	createCmd := &cobra.Command{
		Use:   "create-db",
		Short: "Create the Postgres database if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return ensureDatabase(cfg.Database)
		},
	}

	rootCmd.AddCommand(upCmd, createCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runUp(createDB bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if createDB {
		if err := ensureDatabase(cfg.Database); err != nil {
			return err
		}
	}

	log.Println("🔄 Connecting to database...")
	if err := database.Initialize(cfg.Database, false); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	log.Println("📈 Running migrations...")
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("✅ All migrations completed successfully!")
	return nil
}

// ensureDatabase connects to the server's maintenance database and creates
// the configured database when it is missing. SQLite needs no bootstrap.
func ensureDatabase(cfg config.DatabaseConfig) error {
	if cfg.Driver != "postgres" {
		return nil
	}

	adminURL, name, err := maintenanceURL(cfg.URL)
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", adminURL)
	if err != nil {
		return fmt.Errorf("failed to open maintenance connection: %w", err)
	}
	defer db.Close()

	var exists bool
	if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check for database %q: %w", name, err)
	}
	if exists {
		return nil
	}

	log.Printf("🆕 Creating database %s...", name)
	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database %q: %w", name, err)
	}
	return nil
}

// maintenanceURL rewrites a postgres:// URL to point at the "postgres"
// database and returns the original database name
func maintenanceURL(databaseURL string) (string, string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", fmt.Errorf("DATABASE_URL must be a postgres:// URL, got %q", u.Scheme)
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", "", fmt.Errorf("DATABASE_URL has no database name")
	}
	u.Path = "/postgres"
	return u.String(), name, nil
}
