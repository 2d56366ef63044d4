package main

import (
	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/service"
	"github.com/spf13/cobra"
)

var hireActions = []struct {
	action string
	short  string
}{
	{api.HireActionAccept, "Accept a pending request (freelancer)"},
	{api.HireActionDecline, "Decline a pending request (freelancer)"},
	{api.HireActionComplete, "Mark an accepted request complete (client)"},
	{api.HireActionCancel, "Cancel a pending or accepted request (client)"},
}

func newHireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hire",
		Short: "Send and manage hire requests",
	}

	var (
		input     api.HireRequestInput
		projectID string
	)
	requestCmd := &cobra.Command{
		Use:   "request <username>",
		Short: "Ask a creator to work with you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.FreelancerUsername = args[0]
			if projectID != "" {
				input.ProjectID = &projectID
			}
			return service.NewHiringService().Request(input)
		},
	}
	requestCmd.Flags().StringVarP(&input.Title, "title", "t", "", "What the work is")
	requestCmd.Flags().StringVarP(&input.Message, "message", "m", "", "Details for the creator")
	requestCmd.Flags().Float64VarP(&input.Budget, "budget", "b", 0, "Budget")
	requestCmd.Flags().StringVar(&projectID, "project", "", "Reference one of the creator's projects")
	_ = requestCmd.MarkFlagRequired("title")

	var (
		role, status  string
		limit, offset int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your hire requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewHiringService().List(role, status, limit, offset)
		},
	}
	listCmd.Flags().StringVar(&role, "role", "", "client or freelancer (default both)")
	listCmd.Flags().StringVar(&status, "status", "", "pending, accepted, declined, completed, cancelled")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Requests per page")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Requests to skip")

	cmd.AddCommand(requestCmd, listCmd)
	for _, a := range hireActions {
		action := a.action
		cmd.AddCommand(&cobra.Command{
			Use:   action + " <request-id>",
			Short: a.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return service.NewHiringService().Transition(args[0], action)
			},
		})
	}
	return cmd
}

func newAnalyticsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show views, likes and saves for your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewAnalyticsService().Show(days)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "Window in days")
	return cmd
}
