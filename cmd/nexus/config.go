package main

import (
	"fmt"

	"github.com/creativehub/nexus/pkg/config"
	"github.com/creativehub/nexus/pkg/output"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Backend connection settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <url>",
		Short: "Set the backend URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(config.KeyBackendURL, args[0], "Backend URL")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key <publishable-key>",
		Short: "Set the publishable API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(config.KeyPublishableKey, args[0], "Publishable key")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := config.CheckStatus()
			return output.PrintRecord("Configuration", status, []output.Field{
				{Label: "Config file", Value: config.GetConfigFilePath()},
				{Label: "Backend URL", Value: orNotSet(status.BackendURL)},
				{Label: "Publishable key", Value: orNotSet(status.PublishableKey)},
				{Label: "Status", Value: status.String()},
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the client is connected",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := config.CheckStatus()
			if output.IsJSON() {
				return output.JSON(status)
			}
			if status.Connected {
				output.PrintSuccess(status.String())
				return nil
			}
			output.PrintWarning(status.String())
			output.PrintInfo("Set the backend with 'nexus config set-url' and 'nexus config set-key', or %s and %s.",
				config.EnvBackendURL, config.EnvPublishableKey)
			return nil
		},
	})

	return cmd
}

func setConfigValue(key, value, label string) error {
	if err := config.SetString(key, value); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	output.PrintSuccess("%s saved to %s", label, config.GetConfigFilePath())
	if config.IsPlaceholder(value) {
		output.PrintWarning("%s looks like a placeholder; the client stays disconnected until it is replaced", label)
	}
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
