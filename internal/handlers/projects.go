package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/creativehub/nexus/internal/storage"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Field limits for projects
const (
	maxTitleLength       = 120
	maxDescriptionLength = 5000
	// multipart overhead allowed on top of the largest media file
	formOverhead = 1 << 20
	// form parts above this are spooled to disk
	multipartMemory = 32 << 20
)

// projectInput is the shared shape of create requests, from JSON or form fields
type projectInput struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Tags         []string         `json:"tags"`
	MediaURL     string           `json:"media_url"`
	MediaType    models.MediaType `json:"media_type"`
	ThumbnailURL string           `json:"thumbnail_url"`
	IsPublished  *bool            `json:"is_published"`
}

// validate trims fields and resolves the category slug. It returns the
// offending field and message on failure.
func (in *projectInput) validate(ctx context.Context) (categoryID *string, field, message string) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Tags = util.NormalizeTags(in.Tags)

	switch {
	case in.Title == "":
		return nil, "title", "is required"
	case utf8.RuneCountInString(in.Title) > maxTitleLength:
		return nil, "title", "must be at most 120 characters"
	case utf8.RuneCountInString(in.Description) > maxDescriptionLength:
		return nil, "description", "must be at most 5000 characters"
	}

	slug := strings.ToLower(strings.TrimSpace(in.Category))
	if slug == "" {
		return nil, "", ""
	}
	var category models.Category
	if err := database.DB.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, "category", "unknown category"
	}
	return &category.ID, "", ""
}

// CreateProject publishes a new project from an uploaded file or an existing media URL
// POST /api/v1/projects
func (h *Handlers) CreateProject(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		in       projectInput
		upload   *storage.UploadResult
		uploaded bool
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, models.MaxVideoSize+formOverhead)
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				tooLarge(c, models.MaxVideoSize)
				return
			}
			util.RespondBadRequest(c, "invalid multipart form")
			return
		}
		in = projectInput{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Category:    c.PostForm("category"),
			Tags:        util.ParseCSV(c.PostForm("tags")),
		}
		if v, ok := c.GetPostForm("is_published"); ok {
			published := util.ParseBool(v)
			in.IsPublished = &published
		}
		uploaded = true
	} else if !bindJSON(c, &in) {
		return
	}

	categoryID, field, message := in.validate(ctx)
	if field != "" {
		util.RespondValidationError(c, field, message)
		return
	}

	if uploaded {
		var ok bool
		upload, in.MediaType, ok = h.receiveMedia(c, profile.ID)
		if !ok {
			return
		}
		in.MediaURL = upload.URL
	} else {
		in.MediaURL = strings.TrimSpace(in.MediaURL)
		if in.MediaURL == "" {
			util.RespondValidationError(c, "media", "a media file or media_url is required")
			return
		}
		if err := util.ValidateWebsite(in.MediaURL); err != nil {
			util.RespondValidationError(c, "media_url", "must be an http(s) URL")
			return
		}
		if in.MediaType == "" {
			in.MediaType, _ = models.MediaTypeForFilename(strings.SplitN(in.MediaURL, "?", 2)[0])
		}
		if !models.IsValidMediaType(in.MediaType) {
			util.RespondValidationError(c, "media_type", "must be image or video")
			return
		}
	}

	project := models.Project{
		OwnerID:      profile.ID,
		CategoryID:   categoryID,
		Title:        in.Title,
		Description:  in.Description,
		MediaURL:     in.MediaURL,
		MediaType:    in.MediaType,
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
		Tags:         in.Tags,
		IsPublished:  in.IsPublished == nil || *in.IsPublished,
	}
	if upload != nil {
		project.MediaKey = upload.Key
	}
	if err := database.DB.WithContext(ctx).Create(&project).Error; err != nil {
		logger.ErrorWithFields("Failed to create project", err, logger.WithUserID(profile.ID))
		if upload != nil {
			h.deleteMedia(upload.Key)
		}
		util.RespondInternalError(c, "failed to create project")
		return
	}
	if err := database.DB.WithContext(ctx).Preload("Owner").Preload("Category").First(&project, "id = ?", project.ID).Error; err != nil {
		logger.WarnWithFields("Failed to reload project", err, logger.WithProjectID(project.ID))
	}

	if project.IsPublished {
		adjustProjectCount(ctx, profile.ID, 1)
	}
	h.projectChanged(ctx, realtime.EventInsert, &project, false)

	c.JSON(http.StatusCreated, gin.H{"project": projectResponse(ctx, profile.ID, &project)})
}

// receiveMedia validates the "media" form file and uploads it
func (h *Handlers) receiveMedia(c *gin.Context, ownerID string) (*storage.UploadResult, models.MediaType, bool) {
	file, err := c.FormFile("media")
	if err != nil {
		util.RespondValidationError(c, "media", "a media file is required")
		return nil, "", false
	}
	if err := util.ValidateFilename(file.Filename); err != nil {
		util.RespondValidationError(c, "media", err.Error())
		return nil, "", false
	}
	mediaType, ok := models.MediaTypeForFilename(file.Filename)
	if !ok {
		util.RespondValidationError(c, "media", "unsupported file type; use jpg, jpeg, png, gif, webp, mp4, mov or webm")
		return nil, "", false
	}
	if limit := models.MaxUploadSize(mediaType); file.Size > limit {
		tooLarge(c, limit)
		return nil, "", false
	}
	if h.storage == nil {
		storageUnavailable(c)
		return nil, "", false
	}

	src, err := file.Open()
	if err != nil {
		util.RespondBadRequest(c, "failed to read upload")
		return nil, "", false
	}
	defer src.Close()

	result, err := h.storage.UploadMedia(c.Request.Context(), src, file.Size, ownerID, file.Filename)
	if err != nil {
		logger.ErrorWithFields("Failed to upload media", err, logger.WithUserID(ownerID))
		util.RespondInternalError(c, "failed to upload media")
		return nil, "", false
	}
	return result, mediaType, true
}

func (h *Handlers) deleteMedia(key string) {
	if h.storage == nil || key == "" {
		return
	}
	h.tasks.Go("media_delete", activityTimeout, func(ctx context.Context) error {
		return h.storage.DeleteFile(ctx, key)
	})
}

// GetProject returns a project and records the view
// GET /api/v1/projects/:id
func (h *Handlers) GetProject(c *gin.Context) {
	viewerID, _ := util.OptionalUserID(c)
	project, ok := loadProject(c, viewerID)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if viewerID != project.OwnerID && project.IsPublished {
		if recordView(ctx, project.ID, viewerID) {
			project.ViewCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{"project": projectResponse(ctx, viewerID, project)})
}

// recordView stores a view row and bumps the counter. Failures are logged only.
func recordView(ctx context.Context, projectID, viewerID string) bool {
	view := models.ProjectView{ProjectID: projectID}
	if viewerID != "" {
		view.ViewerID = &viewerID
	}
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&view).Error; err != nil {
			return err
		}
		return tx.Model(&models.Project{}).Where("id = ?", projectID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	})
	if err != nil {
		logger.WarnWithFields("Failed to record project view", err, logger.WithProjectID(projectID))
		return false
	}
	return true
}

// UpdateProject edits an owner's project
// PATCH /api/v1/projects/:id
func (h *Handlers) UpdateProject(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, profile.ID)
	if !ok {
		return
	}
	if project.OwnerID != profile.ID {
		util.RespondForbidden(c, "only the owner can edit this project")
		return
	}
	ctx := c.Request.Context()

	var req struct {
		Title        *string   `json:"title"`
		Description  *string   `json:"description"`
		Category     *string   `json:"category"`
		Tags         *[]string `json:"tags"`
		ThumbnailURL *string   `json:"thumbnail_url"`
		IsPublished  *bool     `json:"is_published"`
	}
	if !bindJSON(c, &req) {
		return
	}

	in := projectInput{Title: project.Title, Description: project.Description, Tags: project.Tags}
	if project.Category != nil {
		in.Category = project.Category.Slug
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	categoryID, field, message := in.validate(ctx)
	if field != "" {
		util.RespondValidationError(c, field, message)
		return
	}

	wasPublished := project.IsPublished
	project.Title = in.Title
	project.Description = in.Description
	project.CategoryID = categoryID
	project.Tags = in.Tags
	if req.ThumbnailURL != nil {
		project.ThumbnailURL = strings.TrimSpace(*req.ThumbnailURL)
	}
	if req.IsPublished != nil {
		project.IsPublished = *req.IsPublished
	}

	if err := database.DB.WithContext(ctx).Model(project).
		Select("title", "description", "category_id", "tags", "thumbnail_url", "is_published").
		Updates(project).Error; err != nil {
		logger.ErrorWithFields("Failed to update project", err, logger.WithProjectID(project.ID))
		util.RespondInternalError(c, "failed to update project")
		return
	}
	if err := database.DB.WithContext(ctx).Preload("Owner").Preload("Category").First(project, "id = ?", project.ID).Error; err != nil {
		logger.WarnWithFields("Failed to reload project", err, logger.WithProjectID(project.ID))
	}

	switch {
	case project.IsPublished && !wasPublished:
		adjustProjectCount(ctx, profile.ID, 1)
	case !project.IsPublished && wasPublished:
		adjustProjectCount(ctx, profile.ID, -1)
	}
	h.projectChanged(ctx, realtime.EventUpdate, project, wasPublished)

	c.JSON(http.StatusOK, gin.H{"project": projectResponse(ctx, profile.ID, project)})
}

// DeleteProject soft-deletes an owner's project and its media
// DELETE /api/v1/projects/:id
func (h *Handlers) DeleteProject(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, profile.ID)
	if !ok {
		return
	}
	if project.OwnerID != profile.ID {
		util.RespondForbidden(c, "only the owner can delete this project")
		return
	}
	ctx := c.Request.Context()

	if err := database.DB.WithContext(ctx).Delete(project).Error; err != nil {
		logger.ErrorWithFields("Failed to delete project", err, logger.WithProjectID(project.ID))
		util.RespondInternalError(c, "failed to delete project")
		return
	}

	h.deleteMedia(project.MediaKey)
	if project.IsPublished {
		adjustProjectCount(ctx, profile.ID, -1)
	}
	h.projectChanged(ctx, realtime.EventDelete, project, project.IsPublished)

	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": project.ID})
}
