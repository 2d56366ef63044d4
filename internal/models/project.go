package models

import (
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MediaType is the kind of media a project showcases
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true,
}

// Upload limits per media type, in bytes
const (
	MaxImageSize int64 = 50 << 20
	MaxVideoSize int64 = 200 << 20
)

// Category groups projects by discipline
type Category struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is a creative work shared by a profile
type Project struct {
	ID      string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerID string   `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Owner   *Profile `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	CategoryID *string   `gorm:"type:varchar(36);index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Title       string `gorm:"type:varchar(120);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	MediaURL     string    `gorm:"not null" json:"media_url"`
	MediaKey     string    `json:"-"`
	MediaType    MediaType `gorm:"type:varchar(10);not null;index" json:"media_type"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`

	Tags []string `gorm:"serializer:json;type:text" json:"tags"`

	// Engagement counters, kept in sync by the engagement handlers
	LikeCount    int `gorm:"default:0" json:"like_count"`
	SaveCount    int `gorm:"default:0" json:"save_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`
	ViewCount    int `gorm:"default:0" json:"view_count"`

	IsFeatured  bool `json:"is_featured"`
	IsPublished bool `gorm:"index" json:"is_published"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProjectView records a single view of a project for analytics
type ProjectView struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID string    `gorm:"type:varchar(36);not null;index" json:"project_id"`
	ViewerID  *string   `gorm:"type:varchar(36);index" json:"viewer_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// EngagementScore weighs a project's counters into one ranking number
func (p *Project) EngagementScore() float64 {
	return float64(p.LikeCount)*3 + float64(p.SaveCount)*4 + float64(p.CommentCount)*2 + float64(p.ViewCount)*0.1
}

// IsValidMediaType reports whether m is a supported media type
func IsValidMediaType(m MediaType) bool {
	return m == MediaTypeImage || m == MediaTypeVideo
}

// MediaTypeForFilename infers the media type from a file extension
func MediaTypeForFilename(filename string) (MediaType, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return MediaTypeImage, true
	case videoExtensions[ext]:
		return MediaTypeVideo, true
	}
	return "", false
}

// MaxUploadSize returns the upload limit for a media type
func MaxUploadSize(m MediaType) int64 {
	if m == MediaTypeVideo {
		return MaxVideoSize
	}
	return MaxImageSize
}

// Slugify turns a category name into its URL slug
func Slugify(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (v *ProjectView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = generateUUID()
	}
	return nil
}
