package handlers

import (
	"context"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
)

// ProjectResponse is a project as returned by the API. IsLiked and IsSaved
// are only present for an authenticated viewer.
type ProjectResponse struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	MediaURL     string                 `json:"media_url"`
	MediaType    models.MediaType       `json:"media_type"`
	ThumbnailURL string                 `json:"thumbnail_url,omitempty"`
	Tags         []string               `json:"tags"`
	LikeCount    int                    `json:"like_count"`
	SaveCount    int                    `json:"save_count"`
	CommentCount int                    `json:"comment_count"`
	ViewCount    int                    `json:"view_count"`
	IsFeatured   bool                   `json:"is_featured"`
	IsPublished  bool                   `json:"is_published"`
	Owner        *models.ProfileSummary `json:"owner,omitempty"`
	Category     *models.Category       `json:"category,omitempty"`
	IsLiked      *bool                  `json:"is_liked,omitempty"`
	IsSaved      *bool                  `json:"is_saved,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func toProjectResponse(p *models.Project) ProjectResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		MediaURL:     p.MediaURL,
		MediaType:    p.MediaType,
		ThumbnailURL: p.ThumbnailURL,
		Tags:         tags,
		LikeCount:    p.LikeCount,
		SaveCount:    p.SaveCount,
		CommentCount: p.CommentCount,
		ViewCount:    p.ViewCount,
		IsFeatured:   p.IsFeatured,
		IsPublished:  p.IsPublished,
		Owner:        p.Owner.Summary(),
		Category:     p.Category,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// projectResponses converts projects and, for a signed-in viewer, marks the
// ones they liked or saved
func projectResponses(ctx context.Context, viewerID string, projects []models.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	ids := make([]string, len(projects))
	for i := range projects {
		out[i] = toProjectResponse(&projects[i])
		ids[i] = projects[i].ID
	}
	if viewerID == "" || len(ids) == 0 {
		return out
	}

	liked := viewerSet(ctx, &models.Like{}, viewerID, ids)
	saved := viewerSet(ctx, &models.Save{}, viewerID, ids)
	for i := range out {
		isLiked, isSaved := liked[out[i].ID], saved[out[i].ID]
		out[i].IsLiked = &isLiked
		out[i].IsSaved = &isSaved
	}
	return out
}

func projectResponse(ctx context.Context, viewerID string, project *models.Project) ProjectResponse {
	return projectResponses(ctx, viewerID, []models.Project{*project})[0]
}

// viewerSet returns which of ids the viewer has a like or save row for
func viewerSet(ctx context.Context, model interface{}, viewerID string, ids []string) map[string]bool {
	var projectIDs []string
	if err := database.DB.WithContext(ctx).Model(model).
		Where("profile_id = ? AND project_id IN ?", viewerID, ids).
		Pluck("project_id", &projectIDs).Error; err != nil {
		logger.WarnWithFields("Failed to load viewer engagement", err, logger.WithUserID(viewerID))
	}
	set := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		set[id] = true
	}
	return set
}

// changeRow is the row shape sent on the projects change feed. It carries no
// viewer flags since every subscriber receives the same event.
func changeRow(p *models.Project) ProjectResponse {
	return toProjectResponse(p)
}

// CommentResponse is a comment with its author
type CommentResponse struct {
	ID        string                 `json:"id"`
	ProjectID string                 `json:"project_id"`
	Author    *models.ProfileSummary `json:"author,omitempty"`
	Content   string                 `json:"content"`
	IsEdited  bool                   `json:"is_edited"`
	EditedAt  *time.Time             `json:"edited_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func toCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		ProjectID: c.ProjectID,
		Author:    c.Author.Summary(),
		Content:   c.Content,
		IsEdited:  c.IsEdited,
		EditedAt:  c.EditedAt,
		CreatedAt: c.CreatedAt,
	}
}

// HireRequestResponse is a hire request with both participants summarized
type HireRequestResponse struct {
	ID          string                 `json:"id"`
	Client      *models.ProfileSummary `json:"client,omitempty"`
	Freelancer  *models.ProfileSummary `json:"freelancer,omitempty"`
	ProjectID   *string                `json:"project_id,omitempty"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Budget      float64                `json:"budget"`
	Status      models.HireStatus      `json:"status"`
	RespondedAt *time.Time             `json:"responded_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func toHireRequestResponse(hr *models.HireRequest) HireRequestResponse {
	return HireRequestResponse{
		ID:          hr.ID,
		Client:      hr.Client.Summary(),
		Freelancer:  hr.Freelancer.Summary(),
		ProjectID:   hr.ProjectID,
		Title:       hr.Title,
		Message:     hr.Message,
		Budget:      hr.Budget,
		Status:      hr.Status,
		RespondedAt: hr.RespondedAt,
		CompletedAt: hr.CompletedAt,
		CreatedAt:   hr.CreatedAt,
		UpdatedAt:   hr.UpdatedAt,
	}
}
