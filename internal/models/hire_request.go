package models

import (
	"time"

	"gorm.io/gorm"
)

// HireStatus is the lifecycle state of a hire request
type HireStatus string

const (
	HireStatusPending   HireStatus = "pending"
	HireStatusAccepted  HireStatus = "accepted"
	HireStatusDeclined  HireStatus = "declined"
	HireStatusCancelled HireStatus = "cancelled"
	HireStatusCompleted HireStatus = "completed"
)

// HireRequest is a client's offer of work to a freelancer
type HireRequest struct {
	ID           string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ClientID     string   `gorm:"type:varchar(36);not null;index" json:"client_id"`
	Client       *Profile `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	FreelancerID string   `gorm:"type:varchar(36);not null;index" json:"freelancer_id"`
	Freelancer   *Profile `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	ProjectID    *string  `gorm:"type:varchar(36)" json:"project_id,omitempty"`

	Title   string  `gorm:"type:varchar(120);not null" json:"title"`
	Message string  `gorm:"type:text" json:"message"`
	Budget  float64 `json:"budget"`

	Status      HireStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether no further transitions are possible
func (s HireStatus) IsTerminal() bool {
	return s == HireStatusDeclined || s == HireStatusCancelled || s == HireStatusCompleted
}

func (h *HireRequest) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = generateUUID()
	}
	if h.Status == "" {
		h.Status = HireStatusPending
	}
	return nil
}
