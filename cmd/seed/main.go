package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/creativehub/nexus/internal/config"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/seed"
	"github.com/creativehub/nexus/internal/stream"
	"github.com/spf13/cobra"
)

func main() {
	var withStream bool

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the Nexus database with sample data",
	}
	rootCmd.PersistentFlags().BoolVar(&withStream, "stream", true, "publish seeded projects to activity feeds when Stream is configured")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "dev",
			Short: "Seed development database with realistic data",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSeeder(cmd.Context(), withStream, "🌱 Seeding development database...", func(ctx context.Context, s *seed.Seeder) error {
					return s.SeedDev(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "test",
			Short: "Seed test database with a fixed set of profiles",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSeeder(cmd.Context(), withStream, "🧪 Seeding test database...", func(ctx context.Context, s *seed.Seeder) error {
					return s.SeedTest(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove all seed data except categories (use with caution)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSeeder(cmd.Context(), false, "🧹 Cleaning seed data...", func(ctx context.Context, s *seed.Seeder) error {
					return s.Clean(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "recount",
			Short: "Recompute denormalized like, save, comment and view counters",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSeeder(cmd.Context(), false, "🔢 Recounting counters...", func(ctx context.Context, s *seed.Seeder) error {
					return s.RecountCounters(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Print record counts and check denormalized counters",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSeeder(cmd.Context(), false, "🔍 Verifying seed data...", printReport)
			},
		},
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func withSeeder(ctx context.Context, withStream bool, banner string, fn func(context.Context, *seed.Seeder) error) error {
	log.Println(banner)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := database.Initialize(cfg.Database, false); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("✅ Database connected")

	seeder := seed.NewSeeder(database.DB)
	if withStream {
		if !cfg.StreamEnabled() {
			log.Println("⚠️  STREAM_API_KEY or STREAM_API_SECRET not set - skipping activity feeds")
		} else if client, err := stream.NewClient(cfg.StreamAPIKey, cfg.StreamAPISecret); err != nil {
			log.Printf("⚠️  Failed to initialize Stream client: %v", err)
		} else {
			seeder.SetActivityPublisher(client)
			log.Println("✅ Stream client configured")
		}
	}

	if err := fn(ctx, seeder); err != nil {
		return err
	}
	log.Println("✅ Done")
	return nil
}

func printReport(ctx context.Context, s *seed.Seeder) error {
	report, err := s.Verify(ctx)
	if err != nil {
		return err
	}

	fmt.Println("📊 Record counts:")
	fmt.Printf("  Profiles:       %d\n", report.Profiles)
	fmt.Printf("  Projects:       %d (%d published)\n", report.Projects, report.Published)
	fmt.Printf("  Comments:       %d\n", report.Comments)
	fmt.Printf("  Likes:          %d\n", report.Likes)
	fmt.Printf("  Saves:          %d\n", report.Saves)
	fmt.Printf("  Views:          %d\n", report.Views)
	fmt.Printf("  Hire requests:  %d\n", report.HireRequests)
	fmt.Printf("  Notifications:  %d\n", report.Notifications)
	fmt.Println()

	names := make([]string, 0, len(report.Drift))
	for name := range report.Drift {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if n := report.Drift[name]; n > 0 {
			fmt.Printf("  ❌ %s wrong on %d rows\n", name, n)
		}
	}
	if !report.Consistent() {
		return fmt.Errorf("counters are out of sync; run 'seed recount'")
	}
	fmt.Println("✅ All counters match")
	return nil
}
