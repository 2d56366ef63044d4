package main

import (
	"fmt"
	"os"

	"github.com/creativehub/nexus/pkg/client"
	"github.com/creativehub/nexus/pkg/config"
	"github.com/creativehub/nexus/pkg/credentials"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/creativehub/nexus/pkg/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nexus",
		Short: "Nexus CLI - browse and share creative portfolios",
		Long: `Nexus is a command-line client for CreativeHub. Browse the project
feed, like and save work, manage your profile and availability, follow
notifications in real time and run hire requests from the terminal.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initialize,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/nexus/config.toml)")
	root.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "Output format: text, json")

	root.AddCommand(
		newConfigCmd(),
		newAuthCmd(),
		newFeedCmd(),
		newSearchCmd(),
		newSuggestCmd(),
		newCategoriesCmd(),
		newProjectCmd(),
		newProfileCmd(),
		newAvailabilityCmd(),
		newNotificationsCmd(),
		newHireCmd(),
		newAnalyticsCmd(),
	)
	return root
}

func initialize(cmd *cobra.Command, args []string) error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(verbose)

	if outputFmt != "" {
		if !output.ValidateOutputFormat(outputFmt) {
			return clierrors.ValidationError("output", "must be text or json")
		}
		config.Set(config.KeyOutputFormat, outputFmt)
	}

	client.Reset()
	creds, err := credentials.Load()
	if err != nil {
		logger.Warn("Ignoring unreadable credentials", "err", err)
		return nil
	}
	if creds.IsValid() {
		client.SetAuthToken(creds.Token)
	} else if creds != nil && creds.IsExpired() {
		logger.Info("Stored session expired", "username", creds.Username)
	}
	return nil
}

func main() {
	err := newRootCmd().Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, clierrors.FormatError(err))
		os.Exit(1)
	}
}
