// Package notifications stores in-app notifications and pushes them to the
// recipient's realtime connections.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/realtime"
	"go.uber.org/zap"
)

// ErrNotFound is returned for notifications that do not exist or belong to someone else
var ErrNotFound = errors.New("notification not found")

// Service creates, lists and acknowledges notifications
type Service struct {
	publisher realtime.Publisher
	now       func() time.Time
}

// NewService creates a notification service. publisher may be nil.
func NewService(publisher realtime.Publisher) *Service {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &Service{publisher: publisher, now: func() time.Time { return time.Now().UTC() }}
}

// Event describes something a profile did that another profile should hear about
type Event struct {
	RecipientID   string
	ActorID       string
	Type          models.NotificationType
	ProjectID     string
	HireRequestID string
	Message       string
}

// Notify stores a notification and pushes it to the recipient. Self-actions
// are ignored and return nil, nil.
func (s *Service) Notify(ctx context.Context, ev Event) (*models.Notification, error) {
	if ev.RecipientID == "" || ev.RecipientID == ev.ActorID {
		return nil, nil
	}

	n := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Type:        ev.Type,
		Message:     ev.Message,
	}
	if ev.ProjectID != "" {
		n.ProjectID = &ev.ProjectID
	}
	if ev.HireRequestID != "" {
		n.HireRequestID = &ev.HireRequestID
	}

	if err := database.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.Get().NotificationsCreatedTotal.WithLabelValues(string(ev.Type)).Inc()

	if err := database.DB.WithContext(ctx).Preload("Actor").First(n, "id = ?", n.ID).Error; err != nil {
		logger.WarnWithFields("Failed to load notification actor", err)
	}
	s.push(ctx, n)
	return n, nil
}

// NotifyBestEffort is Notify for side effects that must not fail the caller
func (s *Service) NotifyBestEffort(ctx context.Context, ev Event) {
	if _, err := s.Notify(ctx, ev); err != nil {
		logger.Log.Warn("Failed to create notification",
			zap.String("type", string(ev.Type)),
			logger.WithUserID(ev.RecipientID),
			zap.Error(err),
		)
		metrics.Get().ErrorsTotal.WithLabelValues("notifications").Inc()
	}
}

// View is a notification as returned to its recipient
type View struct {
	ID            string                  `json:"id"`
	Type          models.NotificationType `json:"type"`
	Actor         *models.ProfileSummary  `json:"actor,omitempty"`
	ProjectID     *string                 `json:"project_id,omitempty"`
	HireRequestID *string                 `json:"hire_request_id,omitempty"`
	Message       string                  `json:"message"`
	IsRead        bool                    `json:"is_read"`
	ReadAt        *time.Time              `json:"read_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// ToView converts a notification with its Actor loaded
func ToView(n *models.Notification) View {
	return View{
		ID:            n.ID,
		Type:          n.Type,
		Actor:         n.Actor.Summary(),
		ProjectID:     n.ProjectID,
		HireRequestID: n.HireRequestID,
		Message:       n.Message,
		IsRead:        n.IsRead(),
		ReadAt:        n.ReadAt,
		CreatedAt:     n.CreatedAt,
	}
}

func (s *Service) push(ctx context.Context, n *models.Notification) {
	s.publisher.SendToUser(ctx, n.RecipientID, realtime.NewMessage(realtime.MessageTypeNotification, ToView(n)))
	s.pushCount(ctx, n.RecipientID)
}

func (s *Service) pushCount(ctx context.Context, recipientID string) {
	count, err := s.UnreadCount(ctx, recipientID)
	if err != nil {
		logger.WarnWithFields("Failed to count unread notifications", err, logger.WithUserID(recipientID))
		return
	}
	s.publisher.SendToUser(ctx, recipientID, realtime.NewMessage(realtime.MessageTypeNotificationCount,
		realtime.NotificationCountPayload{UnreadCount: count}))
}

// List returns a page of the recipient's notifications, newest first
func (s *Service) List(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]View, int64, error) {
	db := database.DB.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("read_at IS NULL")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	var rows []models.Notification
	if err := db.Preload("Actor").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	views := make([]View, len(rows))
	for i := range rows {
		views[i] = ToView(&rows[i])
	}
	return views, total, nil
}

// UnreadCount returns how many notifications the recipient has not read
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}

// MarkRead marks the given notifications, or all of them, as read and
// returns how many changed
func (s *Service) MarkRead(ctx context.Context, recipientID string, ids []string, all bool) (int64, error) {
	if !all && len(ids) == 0 {
		return 0, nil
	}

	db := database.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID)
	if !all {
		db = db.Where("id IN ?", ids)
	}
	res := db.Update("read_at", s.now())
	if res.Error != nil {
		return 0, fmt.Errorf("mark notifications read: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		s.pushCount(ctx, recipientID)
	}
	return res.RowsAffected, nil
}

// Delete removes one of the recipient's notifications
func (s *Service) Delete(ctx context.Context, recipientID, id string) error {
	res := database.DB.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.pushCount(ctx, recipientID)
	return nil
}
