package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityStatus describes whether a creator is taking on work
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityBusy        AvailabilityStatus = "busy"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

// Work arrangements a creator can be open to
const (
	OpenToFreelance     = "freelance"
	OpenToFullTime      = "full_time"
	OpenToCollaboration = "collaboration"
)

// MaxAvailabilityNoteLength is the longest availability note a profile may carry
const MaxAvailabilityNoteLength = 280

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)

// Profile is a creator's account record
type Profile struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"-"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"not null" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	Location    string `json:"location"`
	Website     string `json:"website"`

	Skills []string `gorm:"serializer:json;type:text" json:"skills"`

	PasswordHash string `gorm:"type:text;not null" json:"-"`

	// Availability settings, edited together through the availability endpoints
	AvailabilityStatus    AvailabilityStatus `gorm:"type:varchar(20);not null;default:'available'" json:"availability_status"`
	HourlyRate            float64            `json:"hourly_rate"`
	OpenTo                []string           `gorm:"serializer:json;type:text" json:"open_to"`
	AvailabilityNote      string             `gorm:"type:varchar(280)" json:"availability_note"`
	AvailabilityUpdatedAt *time.Time         `json:"availability_updated_at,omitempty"`

	ProjectCount int `gorm:"default:0" json:"project_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PrivateProfile is the view of a profile its owner sees
type PrivateProfile struct {
	*Profile
	Email string `json:"email"`
}

// Private returns the owner's view of the profile, including the email address
func (p *Profile) Private() PrivateProfile {
	return PrivateProfile{Profile: p, Email: p.Email}
}

// ProfileSummary is the compact profile embedded in projects, comments and notifications
type ProfileSummary struct {
	ID                 string             `json:"id"`
	Username           string             `json:"username"`
	DisplayName        string             `json:"display_name"`
	AvatarURL          string             `json:"avatar_url"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
}

// Summary returns the compact public view of the profile
func (p *Profile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{
		ID:                 p.ID,
		Username:           p.Username,
		DisplayName:        p.DisplayName,
		AvatarURL:          p.AvatarURL,
		AvailabilityStatus: p.AvailabilityStatus,
	}
}

// Availability is the editable availability block of a profile
type Availability struct {
	Status     AvailabilityStatus `json:"status"`
	HourlyRate float64            `json:"hourly_rate"`
	OpenTo     []string           `json:"open_to"`
	Note       string             `json:"note"`
	UpdatedAt  *time.Time         `json:"updated_at,omitempty"`
}

// Availability returns the profile's availability settings
func (p *Profile) Availability() Availability {
	openTo := p.OpenTo
	if openTo == nil {
		openTo = []string{}
	}
	return Availability{
		Status:     p.AvailabilityStatus,
		HourlyRate: p.HourlyRate,
		OpenTo:     openTo,
		Note:       p.AvailabilityNote,
		UpdatedAt:  p.AvailabilityUpdatedAt,
	}
}

// IsValidAvailabilityStatus reports whether s is a known availability status
func IsValidAvailabilityStatus(s AvailabilityStatus) bool {
	switch s {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable:
		return true
	}
	return false
}

// IsValidOpenTo reports whether v is a known work arrangement
func IsValidOpenTo(v string) bool {
	switch v {
	case OpenToFreelance, OpenToFullTime, OpenToCollaboration:
		return true
	}
	return false
}

// NormalizeUsername lowercases and trims a username for storage and lookup
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(username, "@")))
}

// IsValidUsername reports whether a normalized username is acceptable
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	p.Username = NormalizeUsername(p.Username)
	if p.AvailabilityStatus == "" {
		p.AvailabilityStatus = AvailabilityAvailable
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}
