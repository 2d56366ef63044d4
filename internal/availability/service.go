// Package availability stores a creator's hiring availability with a Redis
// read-through cache in front of the database.
package availability

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"gorm.io/gorm"
)

// CacheTTL is how long a profile's availability stays cached
const CacheTTL = 10 * time.Minute

// ErrNotFound is returned when the profile does not exist
var ErrNotFound = errors.New("profile not found")

// FieldError is a validation failure on one field of an update
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UpdateRequest is the body of PUT /me/availability. UpdatedAt is the
// client's edit time; it is accepted but not used for conflict resolution.
type UpdateRequest struct {
	Status     models.AvailabilityStatus `json:"status"`
	HourlyRate float64                   `json:"hourly_rate"`
	OpenTo     []string                  `json:"open_to"`
	Note       string                    `json:"note"`
	UpdatedAt  *time.Time                `json:"updated_at,omitempty"`
}

// Validate checks the request and normalizes OpenTo
func (r *UpdateRequest) Validate() error {
	if !models.IsValidAvailabilityStatus(r.Status) {
		return &FieldError{Field: "status", Message: "must be available, busy or unavailable"}
	}
	if r.HourlyRate < 0 || math.IsNaN(r.HourlyRate) || math.IsInf(r.HourlyRate, 0) {
		return &FieldError{Field: "hourly_rate", Message: "must be zero or more"}
	}
	r.Note = strings.TrimSpace(r.Note)
	if utf8.RuneCountInString(r.Note) > models.MaxAvailabilityNoteLength {
		return &FieldError{Field: "note", Message: fmt.Sprintf("must be at most %d characters", models.MaxAvailabilityNoteLength)}
	}

	seen := make(map[string]bool, len(r.OpenTo))
	openTo := make([]string, 0, len(r.OpenTo))
	for _, v := range r.OpenTo {
		v = strings.ToLower(strings.TrimSpace(v))
		if !models.IsValidOpenTo(v) {
			return &FieldError{Field: "open_to", Message: fmt.Sprintf("unknown work arrangement %q", v)}
		}
		if !seen[v] {
			seen[v] = true
			openTo = append(openTo, v)
		}
	}
	r.OpenTo = openTo
	return nil
}

// Service reads and writes availability settings
type Service struct {
	cache *cache.RedisClient
	now   func() time.Time
}

// NewService creates an availability service. redisClient may be nil.
func NewService(redisClient *cache.RedisClient) *Service {
	return &Service{cache: redisClient, now: func() time.Time { return time.Now().UTC() }}
}

func cacheKey(profileID string) string {
	return "availability:" + profileID
}

// Get returns a profile's availability, from cache when possible
func (s *Service) Get(ctx context.Context, profileID string) (*models.Availability, error) {
	if s.cache != nil {
		var cached models.Availability
		hit, err := s.cache.GetJSON(ctx, cacheKey(profileID), &cached)
		if err != nil {
			logger.WarnWithFields("Availability cache read failed", err, logger.WithUserID(profileID))
		} else if hit {
			return &cached, nil
		}
	}

	var profile models.Profile
	if err := database.DB.WithContext(ctx).First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load availability: %w", err)
	}

	availability := profile.Availability()
	s.store(ctx, profileID, &availability)
	return &availability, nil
}

// Update validates and saves availability. The newest write wins regardless
// of the client's UpdatedAt; the stored timestamp is the server's clock.
func (s *Service) Update(ctx context.Context, profileID string, req UpdateRequest) (*models.Availability, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	res := database.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profileID).
		Select("availability_status", "hourly_rate", "open_to", "availability_note", "availability_updated_at").
		Updates(&models.Profile{
			AvailabilityStatus:    req.Status,
			HourlyRate:            req.HourlyRate,
			OpenTo:                req.OpenTo,
			AvailabilityNote:      req.Note,
			AvailabilityUpdatedAt: &now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("save availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	availability := &models.Availability{
		Status:     req.Status,
		HourlyRate: req.HourlyRate,
		OpenTo:     req.OpenTo,
		Note:       req.Note,
		UpdatedAt:  &now,
	}
	s.store(ctx, profileID, availability)
	return availability, nil
}

func (s *Service) store(ctx context.Context, profileID string, availability *models.Availability) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, cacheKey(profileID), availability, CacheTTL); err != nil {
		logger.WarnWithFields("Availability cache write failed", err, logger.WithUserID(profileID))
	}
}
