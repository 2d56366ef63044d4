package main

import (
	"strings"

	"github.com/creativehub/nexus/pkg/service"
	"github.com/spf13/cobra"
)

func newAvailabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show and edit work availability",
		Long: `Availability edits are written to a local cache first and then synced
to the backend. If the backend can't be reached the change is kept and
marked pending; 'nexus availability sync' retries it.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [username]",
		Short: "Show your availability, or another creator's",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewAvailabilityService()
			if len(args) == 1 {
				return svc.ShowFor(strings.TrimPrefix(args[0], "@"))
			}
			return svc.Show()
		},
	})

	var (
		status, note string
		rate         float64
		openTo       []string
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change your availability",
		Example: `  nexus availability set --status busy --note "Booked until May"
  nexus availability set --rate 85 --open-to freelance,collaboration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var change service.AvailabilityChange
			if cmd.Flags().Changed("status") {
				change.Status = &status
			}
			if cmd.Flags().Changed("rate") {
				change.HourlyRate = &rate
			}
			if cmd.Flags().Changed("open-to") {
				change.OpenTo = &openTo
			}
			if cmd.Flags().Changed("note") {
				change.Note = &note
			}
			return service.NewAvailabilityService().Set(change)
		},
	}
	setCmd.Flags().StringVar(&status, "status", "", "available, busy or unavailable")
	setCmd.Flags().Float64Var(&rate, "rate", 0, "Hourly rate")
	setCmd.Flags().StringSliceVar(&openTo, "open-to", nil, "freelance, full_time, collaboration")
	setCmd.Flags().StringVar(&note, "note", "", "Short note (max 280 characters)")

	cmd.AddCommand(setCmd, &cobra.Command{
		Use:   "sync",
		Short: "Push a pending local change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewAvailabilityService().Sync()
		},
	})
	return cmd
}
