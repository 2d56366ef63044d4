package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies what triggered a notification
type NotificationType string

const (
	NotificationLike             NotificationType = "like"
	NotificationComment          NotificationType = "comment"
	NotificationSave             NotificationType = "save"
	NotificationHireRequest      NotificationType = "hire_request"
	NotificationHireResponse     NotificationType = "hire_response"
	NotificationProjectPublished NotificationType = "project_published"
)

// Notification is an in-app message for a profile about someone else's action
type Notification struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RecipientID string           `gorm:"type:varchar(36);not null;index" json:"recipient_id"`
	ActorID     string           `gorm:"type:varchar(36);not null" json:"actor_id"`
	Actor       *Profile         `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`

	ProjectID     *string `gorm:"type:varchar(36)" json:"project_id,omitempty"`
	HireRequestID *string `gorm:"type:varchar(36)" json:"hire_request_id,omitempty"`

	Message string     `gorm:"type:text" json:"message"`
	ReadAt  *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// IsRead reports whether the recipient has seen the notification
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
