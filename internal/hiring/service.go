// Package hiring runs the simulated freelance workflow between a client and
// a freelancer.
package hiring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/creativehub/nexus/internal/availability"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/email"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/notifications"
	"github.com/creativehub/nexus/internal/queue"
	"github.com/creativehub/nexus/internal/telemetry"
	"gorm.io/gorm"
)

// Limits on request fields
const (
	MaxTitleLength   = 120
	MaxMessageLength = 5000
)

var (
	// ErrNotFound is returned for requests that do not exist or that the caller is not part of
	ErrNotFound = errors.New("hire request not found")
	// ErrFreelancerNotFound is returned when the freelancer username is unknown
	ErrFreelancerNotFound = errors.New("freelancer not found")
	// ErrSelfHire is returned when a profile tries to hire itself
	ErrSelfHire = errors.New("cannot hire yourself")
	// ErrUnavailable is returned when the freelancer is not taking work
	ErrUnavailable = errors.New("freelancer is unavailable")
)

// FieldError is a validation failure on one request field
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CreateRequest is the body of POST /hire-requests
type CreateRequest struct {
	FreelancerUsername string  `json:"freelancer_username"`
	ProjectID          *string `json:"project_id,omitempty"`
	Title              string  `json:"title"`
	Message            string  `json:"message"`
	Budget             float64 `json:"budget"`
}

// Validate trims and checks the request fields
func (r *CreateRequest) Validate() error {
	r.FreelancerUsername = models.NormalizeUsername(r.FreelancerUsername)
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)

	switch {
	case r.FreelancerUsername == "":
		return &FieldError{Field: "freelancer_username", Message: "is required"}
	case r.Title == "":
		return &FieldError{Field: "title", Message: "is required"}
	case utf8.RuneCountInString(r.Title) > MaxTitleLength:
		return &FieldError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	case utf8.RuneCountInString(r.Message) > MaxMessageLength:
		return &FieldError{Field: "message", Message: fmt.Sprintf("must be at most %d characters", MaxMessageLength)}
	case r.Budget < 0:
		return &FieldError{Field: "budget", Message: "must be zero or more"}
	}
	return nil
}

// Service creates hire requests and moves them through their lifecycle
type Service struct {
	notifier     *notifications.Service
	availability *availability.Service
	mailer       email.Mailer
	tasks        *queue.TaskQueue
	now          func() time.Time
}

// SetTaskQueue sends hire emails through a worker pool
func (s *Service) SetTaskQueue(tasks *queue.TaskQueue) {
	s.tasks = tasks
}

// NewService creates a hiring service. mailer may be nil.
func NewService(notifier *notifications.Service, availabilityService *availability.Service, mailer email.Mailer) *Service {
	return &Service{
		notifier:     notifier,
		availability: availabilityService,
		mailer:       mailer,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a pending request from client to the named freelancer
func (s *Service) Create(ctx context.Context, client *models.Profile, req CreateRequest) (*models.HireRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var freelancer models.Profile
	if err := database.DB.WithContext(ctx).First(&freelancer, "username = ?", req.FreelancerUsername).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFreelancerNotFound
		}
		return nil, fmt.Errorf("load freelancer: %w", err)
	}
	if freelancer.ID == client.ID {
		return nil, ErrSelfHire
	}

	status, err := s.availability.Get(ctx, freelancer.ID)
	if err != nil {
		return nil, fmt.Errorf("load freelancer availability: %w", err)
	}
	if status.Status == models.AvailabilityUnavailable {
		return nil, ErrUnavailable
	}

	if req.ProjectID != nil && *req.ProjectID != "" {
		var count int64
		if err := database.DB.WithContext(ctx).Model(&models.Project{}).
			Where("id = ? AND owner_id = ?", *req.ProjectID, freelancer.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check project: %w", err)
		}
		if count == 0 {
			return nil, &FieldError{Field: "project_id", Message: "must be one of the freelancer's projects"}
		}
	} else {
		req.ProjectID = nil
	}

	hr := &models.HireRequest{
		ClientID:     client.ID,
		FreelancerID: freelancer.ID,
		ProjectID:    req.ProjectID,
		Title:        req.Title,
		Message:      req.Message,
		Budget:       req.Budget,
		Status:       models.HireStatusPending,
	}
	if err := database.DB.WithContext(ctx).Create(hr).Error; err != nil {
		return nil, fmt.Errorf("create hire request: %w", err)
	}
	hr.Client = client
	hr.Freelancer = &freelancer
	metrics.Get().HireTransitionsTotal.WithLabelValues(string(models.HireStatusPending)).Inc()

	s.notifier.NotifyBestEffort(ctx, notifications.Event{
		RecipientID:   freelancer.ID,
		ActorID:       client.ID,
		Type:          models.NotificationHireRequest,
		HireRequestID: hr.ID,
		Message:       fmt.Sprintf("%s wants to hire you: %s", displayName(client), hr.Title),
	})
	s.sendEmail(hr, client, &freelancer)
	return hr, nil
}

// ListFilter narrows a participant's requests
type ListFilter struct {
	Role   Role
	Status models.HireStatus
	Limit  int
	Offset int
}

// List returns requests the profile is part of, newest first
func (s *Service) List(ctx context.Context, profileID string, f ListFilter) ([]models.HireRequest, int64, error) {
	db := database.DB.WithContext(ctx).Model(&models.HireRequest{})
	switch f.Role {
	case RoleClient:
		db = db.Where("client_id = ?", profileID)
	case RoleFreelancer:
		db = db.Where("freelancer_id = ?", profileID)
	default:
		db = db.Where("client_id = ? OR freelancer_id = ?", profileID, profileID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count hire requests: %w", err)
	}

	requests := []models.HireRequest{}
	if err := db.Preload("Client").Preload("Freelancer").
		Order("created_at DESC").Order("id ASC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("list hire requests: %w", err)
	}
	return requests, total, nil
}

// Get loads a request the profile is part of
func (s *Service) Get(ctx context.Context, profileID, id string) (*models.HireRequest, error) {
	var hr models.HireRequest
	err := database.DB.WithContext(ctx).Preload("Client").Preload("Freelancer").
		Where("id = ? AND (client_id = ? OR freelancer_id = ?)", id, profileID, profileID).
		First(&hr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load hire request: %w", err)
	}
	return &hr, nil
}

// Transition applies action by actor and notifies the other participant
func (s *Service) Transition(ctx context.Context, actor *models.Profile, id string, action Action) (*models.HireRequest, error) {
	hr, err := s.Get(ctx, actor.ID, id)
	if err != nil {
		return nil, err
	}

	role := RoleClient
	counterparty := hr.Freelancer
	if hr.FreelancerID == actor.ID {
		role = RoleFreelancer
		counterparty = hr.Client
	}

	from := hr.Status
	to, err := NextStatus(from, action, role)
	if err != nil {
		return hr, err
	}

	ctx, span := telemetry.TraceHireTransition(ctx, hr.ID, string(from), string(to))
	defer span.End()

	now := s.now()
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.HireStatusAccepted, models.HireStatusDeclined:
		updates["responded_at"] = now
	case models.HireStatusCompleted:
		updates["completed_at"] = now
	}

	// Conditional on the status we read, so concurrent transitions cannot both win
	res := database.DB.WithContext(ctx).Model(&models.HireRequest{}).
		Where("id = ? AND status = ?", hr.ID, from).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update hire request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return hr, ErrInvalidTransition
	}

	hr.Status = to
	switch to {
	case models.HireStatusAccepted, models.HireStatusDeclined:
		hr.RespondedAt = &now
	case models.HireStatusCompleted:
		hr.CompletedAt = &now
	}
	metrics.Get().HireTransitionsTotal.WithLabelValues(string(to)).Inc()

	s.notifier.NotifyBestEffort(ctx, notifications.Event{
		RecipientID:   counterparty.ID,
		ActorID:       actor.ID,
		Type:          models.NotificationHireResponse,
		HireRequestID: hr.ID,
		Message:       fmt.Sprintf("%s marked \"%s\" as %s", displayName(actor), hr.Title, to),
	})
	s.sendEmail(hr, actor, counterparty)
	return hr, nil
}

// sendEmail mails the recipient in the background; failures are only logged
func (s *Service) sendEmail(hr *models.HireRequest, from, to *models.Profile) {
	if s.mailer == nil || to == nil || to.Email == "" {
		return
	}
	msg := email.HireEmail{
		ToEmail:   to.Email,
		ToName:    displayName(to),
		FromName:  displayName(from),
		Title:     hr.Title,
		Message:   hr.Message,
		Status:    string(hr.Status),
		RequestID: hr.ID,
	}
	s.tasks.Go("hire_email", 15*time.Second, func(ctx context.Context) error {
		if err := s.mailer.SendHireEmail(ctx, msg); err != nil {
			logger.WarnWithFields("Failed to send hire request email", err, logger.WithHireRequestID(msg.RequestID))
			return err
		}
		return nil
	})
}

func displayName(p *models.Profile) string {
	if p == nil {
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}
