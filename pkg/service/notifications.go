package service

import (
	"context"
	"fmt"
	"time"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/config"
	"github.com/creativehub/nexus/pkg/client"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/creativehub/nexus/pkg/output"
	"github.com/creativehub/nexus/pkg/realtime"
	"github.com/fatih/color"
)

// NotificationService provides notification operations
type NotificationService struct{}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// List shows notifications newest first
func (ns *NotificationService) List(unreadOnly bool, limit, offset int) error {
	if err := requireLogin(); err != nil {
		return err
	}
	list, err := api.GetNotifications(unreadOnly, limit, offset)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(list.Notifications))
	for _, n := range list.Notifications {
		marker := " "
		if !n.IsRead {
			marker = "•"
		}
		rows = append(rows, []string{marker, n.ID, n.Type, output.Truncate(n.Message, 60), formatTime(n.CreatedAt)})
	}
	if err := output.PrintTable(list, []string{"", "ID", "TYPE", "MESSAGE", "WHEN"}, rows); err != nil {
		return err
	}
	if !output.IsJSON() {
		printFooter(list.Meta.PageMeta, len(rows))
		fmt.Fprintf(output.Writer, "%d unread\n", list.Meta.UnreadCount)
	}
	return nil
}

// MarkRead marks notifications read; no ids marks all of them
func (ns *NotificationService) MarkRead(ids []string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	res, err := api.MarkRead(ids)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(res)
	}
	output.PrintSuccess("Marked %d notification%s read, %d unread", res.Updated, pluralize(int(res.Updated)), res.UnreadCount)
	return nil
}

// Delete removes a notification
func (ns *NotificationService) Delete(id string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	if err := api.DeleteNotification(id); err != nil {
		return err
	}
	output.PrintSuccess("Notification %s deleted", id)
	return nil
}

// NotificationWatcher prints notifications as they arrive over the realtime socket
type NotificationWatcher struct {
	// Projects also streams project changes
	Projects bool
}

// Watch blocks until ctx is cancelled or the socket gives up
func (w *NotificationWatcher) Watch(ctx context.Context) error {
	if err := requireLogin(); err != nil {
		return err
	}
	socketURL, err := realtime.SocketURL(config.GetString(config.KeyBackendURL))
	if err != nil {
		return err
	}

	unread, err := api.GetUnreadCount()
	if err != nil {
		return err
	}

	cfg := realtime.DefaultConfig(socketURL)
	cfg.Token = client.AuthToken()
	cfg.APIKey = config.GetString(config.KeyPublishableKey)
	ws := realtime.NewClient(cfg)

	ws.On(realtime.TypeNotification, w.handleNotification)
	ws.On(realtime.TypeNotificationCount, func(m realtime.Message) {
		var p realtime.CountPayload
		if err := m.Decode(&p); err == nil {
			logger.Debug("Unread count changed", "unread", p.UnreadCount)
		}
	})
	ws.On(realtime.TypeError, func(m realtime.Message) {
		var p realtime.ErrorPayload
		if err := m.Decode(&p); err == nil {
			output.PrintWarning("%s: %s", p.Code, p.Message)
		}
	})
	if w.Projects {
		ws.On(realtime.TypeChange, w.handleChange)
		_ = ws.Subscribe(realtime.ChannelProjects)
	}

	if !output.IsJSON() {
		output.PrintInfo("Watching for notifications (%d unread). Press Ctrl+C to stop.", unread)
	}
	if err := ws.Run(ctx); err != nil {
		return err
	}
	if !output.IsJSON() {
		output.PrintSuccess("Notification watcher stopped")
	}
	return nil
}

func (w *NotificationWatcher) handleNotification(m realtime.Message) {
	var n api.Notification
	if err := m.Decode(&n); err != nil {
		logger.Warn("Invalid notification payload", "err", err)
		return
	}
	if output.IsJSON() {
		_ = output.JSON(n)
		return
	}
	w.printEvent(n.Type, n.Message)
}

func (w *NotificationWatcher) handleChange(m realtime.Message) {
	var change realtime.ChangePayload
	if err := m.Decode(&change); err != nil {
		logger.Warn("Invalid change payload", "err", err)
		return
	}
	if output.IsJSON() {
		_ = output.JSON(change)
		return
	}
	row := change.New
	if row == nil {
		row = change.Old
	}
	w.printEvent(change.Table+"."+change.Event, fmt.Sprintf("%v %v", row["id"], row["title"]))
}

func (w *NotificationWatcher) printEvent(kind, message string) {
	stamp := time.Now().Format("15:04:05")
	fmt.Fprintf(output.Writer, "[%s] %s %s\n", stamp, color.New(color.Bold).Sprint(kind), message)
}
