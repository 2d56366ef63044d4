package models

import (
	"time"

	"gorm.io/gorm"
)

// Like is a profile's like on a project. A profile likes a project at most once.
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProfileID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_profile_project" json:"profile_id"`
	ProjectID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_profile_project;index" json:"project_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Save bookmarks a project for a profile. A profile saves a project at most once.
type Save struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProfileID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_saves_profile_project" json:"profile_id"`
	ProjectID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_saves_profile_project;index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Comment is a text reply on a project
type Comment struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID string   `gorm:"type:varchar(36);not null;index" json:"project_id"`
	AuthorID  string   `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author    *Profile `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string   `gorm:"type:text;not null" json:"content"`

	IsEdited bool       `json:"is_edited"`
	EditedAt *time.Time `json:"edited_at,omitempty"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MaxCommentLength is the longest comment body accepted
const MaxCommentLength = 2000

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (s *Save) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}
