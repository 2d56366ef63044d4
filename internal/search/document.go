package search

import (
	"time"

	"github.com/creativehub/nexus/internal/models"
)

// ProjectDoc is a project as stored in the search index
type ProjectDoc struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	OwnerID       string    `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	Category      string    `json:"category,omitempty"`
	MediaType     string    `json:"media_type"`
	LikeCount     int       `json:"like_count"`
	SaveCount     int       `json:"save_count"`
	CommentCount  int       `json:"comment_count"`
	ViewCount     int       `json:"view_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProfileDoc is a profile as stored in the search index
type ProfileDoc struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	DisplayName        string    `json:"display_name"`
	Bio                string    `json:"bio"`
	Skills             []string  `json:"skills"`
	AvailabilityStatus string    `json:"availability_status"`
	ProjectCount       int       `json:"project_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// ProjectToDoc converts a project with Owner and Category loaded
func ProjectToDoc(p *models.Project) ProjectDoc {
	doc := ProjectDoc{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Tags:         p.Tags,
		OwnerID:      p.OwnerID,
		MediaType:    string(p.MediaType),
		LikeCount:    p.LikeCount,
		SaveCount:    p.SaveCount,
		CommentCount: p.CommentCount,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if p.Owner != nil {
		doc.OwnerUsername = p.Owner.Username
	}
	if p.Category != nil {
		doc.Category = p.Category.Slug
	}
	return doc
}

// ProfileToDoc converts a profile to its search document
func ProfileToDoc(p *models.Profile) ProfileDoc {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return ProfileDoc{
		ID:                 p.ID,
		Username:           p.Username,
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		Skills:             skills,
		AvailabilityStatus: string(p.AvailabilityStatus),
		ProjectCount:       p.ProjectCount,
		CreatedAt:          p.CreatedAt,
	}
}
