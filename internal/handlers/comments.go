package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/notifications"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (r *commentRequest) normalize() (string, bool) {
	content := strings.TrimSpace(r.Content)
	if content == "" {
		return "is required", false
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return fmt.Sprintf("must be at most %d characters", models.MaxCommentLength), false
	}
	r.Content = content
	return "", true
}

// GetComments lists a project's comments, oldest first
// GET /api/v1/projects/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	viewerID, _ := util.OptionalUserID(c)
	project, ok := loadProject(c, viewerID)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	limit, offset := util.ParseLimitOffset(c.Query("limit"), c.Query("offset"), feed.DefaultLimit, feed.MaxLimit)

	db := database.DB.WithContext(ctx).Model(&models.Comment{}).Where("project_id = ?", project.ID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := db.Preload("Author").
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error; err != nil {
		util.RespondInternalError(c, "failed to load comments")
		return
	}

	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = toCommentResponse(&comments[i])
	}
	c.JSON(http.StatusOK, gin.H{"comments": out, "meta": pageMeta(total, limit, offset, len(out))})
}

// CreateComment adds a comment and notifies the project owner
// POST /api/v1/projects/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, profile.ID)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg, ok := req.normalize(); !ok {
		util.RespondValidationError(c, "content", msg)
		return
	}
	ctx := c.Request.Context()

	comment := models.Comment{ProjectID: project.ID, AuthorID: profile.ID, Content: req.Content}
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Project{}).Where("id = ?", project.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		logger.ErrorWithFields("Failed to create comment", err, logger.WithProjectID(project.ID))
		util.RespondInternalError(c, "failed to create comment")
		return
	}
	comment.Author = profile

	h.notifications.NotifyBestEffort(ctx, notifications.Event{
		RecipientID: project.OwnerID,
		ActorID:     profile.ID,
		Type:        models.NotificationComment,
		ProjectID:   project.ID,
		Message:     fmt.Sprintf("%s commented on %s: %s", profile.Username, project.Title, util.Truncate(comment.Content, 80)),
	})
	h.counterChanged(ctx, project.ID)

	c.JSON(http.StatusCreated, gin.H{"comment": toCommentResponse(&comment)})
}

func loadComment(c *gin.Context) (*models.Comment, bool) {
	var comment models.Comment
	err := database.DB.WithContext(c.Request.Context()).Preload("Author").First(&comment, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "comment")
		return nil, false
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load comment")
		return nil, false
	}
	return &comment, true
}

// UpdateComment edits the caller's own comment
// PATCH /api/v1/comments/:id
func (h *Handlers) UpdateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	comment, ok := loadComment(c)
	if !ok {
		return
	}
	if comment.AuthorID != userID {
		util.RespondForbidden(c, "only the author can edit this comment")
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg, ok := req.normalize(); !ok {
		util.RespondValidationError(c, "content", msg)
		return
	}

	now := time.Now().UTC()
	if err := database.DB.WithContext(c.Request.Context()).Model(comment).Updates(map[string]interface{}{
		"content":   req.Content,
		"is_edited": true,
		"edited_at": now,
	}).Error; err != nil {
		util.RespondInternalError(c, "failed to update comment")
		return
	}
	comment.Content = req.Content
	comment.IsEdited = true
	comment.EditedAt = &now

	c.JSON(http.StatusOK, gin.H{"comment": toCommentResponse(comment)})
}

// DeleteComment removes a comment. The author and the project owner may delete it.
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	comment, ok := loadComment(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var project models.Project
	if err := database.DB.WithContext(ctx).Unscoped().Select("id", "owner_id").First(&project, "id = ?", comment.ProjectID).Error; err != nil {
		util.RespondInternalError(c, "failed to load project")
		return
	}
	if comment.AuthorID != userID && project.OwnerID != userID {
		util.RespondForbidden(c, "only the author or the project owner can delete this comment")
		return
	}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(comment)
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Model(&models.Project{}).Where("id = ?", comment.ProjectID).
			UpdateColumn("comment_count", floorExpr("comment_count", -1)).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to delete comment")
		return
	}
	h.counterChanged(ctx, comment.ProjectID)

	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": comment.ID})
}
