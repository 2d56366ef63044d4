package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/creativehub/nexus/pkg/service"
	"github.com/spf13/cobra"
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "Read and watch notifications",
	}

	var (
		unreadOnly    bool
		limit, offset int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewNotificationService().List(unreadOnly, limit, offset)
		},
	}
	listCmd.Flags().BoolVarP(&unreadOnly, "unread", "u", false, "Only unread notifications")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Notifications per page")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Notifications to skip")

	readCmd := &cobra.Command{
		Use:   "read [notification-id...]",
		Short: "Mark notifications read (all when no IDs are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewNotificationService().MarkRead(args)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <notification-id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewNotificationService().Delete(args[0])
		},
	}

	var projects bool
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print notifications as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			watcher := &service.NotificationWatcher{Projects: projects}
			return watcher.Watch(ctx)
		},
	}
	watchCmd.Flags().BoolVar(&projects, "projects", false, "Also stream project changes")

	cmd.AddCommand(listCmd, readCmd, deleteCmd, watchCmd)
	return cmd
}
