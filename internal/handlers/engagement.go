package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/notifications"
	"github.com/creativehub/nexus/internal/telemetry"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// engagement describes one toggleable reaction backed by a (profile, project) row
type engagement struct {
	action    string
	column    string
	flag      string
	notify    models.NotificationType
	verb      string
	newRow    func(profileID, projectID string) interface{}
	model     interface{}
	countedBy func(*models.Project) int
}

var (
	likeEngagement = engagement{
		action: "like",
		column: "like_count",
		flag:   "is_liked",
		notify: models.NotificationLike,
		verb:   "liked",
		newRow: func(profileID, projectID string) interface{} {
			return &models.Like{ProfileID: profileID, ProjectID: projectID}
		},
		model:     &models.Like{},
		countedBy: func(p *models.Project) int { return p.LikeCount },
	}
	saveEngagement = engagement{
		action: "save",
		column: "save_count",
		flag:   "is_saved",
		notify: models.NotificationSave,
		verb:   "saved",
		newRow: func(profileID, projectID string) interface{} {
			return &models.Save{ProfileID: profileID, ProjectID: projectID}
		},
		model:     &models.Save{},
		countedBy: func(p *models.Project) int { return p.SaveCount },
	}
)

// LikeProject likes a project. Repeating it is a no-op.
// POST /api/v1/projects/:id/like
func (h *Handlers) LikeProject(c *gin.Context) { h.engage(c, likeEngagement, true) }

// UnlikeProject removes a like. Repeating it is a no-op.
// DELETE /api/v1/projects/:id/like
func (h *Handlers) UnlikeProject(c *gin.Context) { h.engage(c, likeEngagement, false) }

// SaveProject bookmarks a project
// POST /api/v1/projects/:id/save
func (h *Handlers) SaveProject(c *gin.Context) { h.engage(c, saveEngagement, true) }

// UnsaveProject removes a bookmark
// DELETE /api/v1/projects/:id/save
func (h *Handlers) UnsaveProject(c *gin.Context) { h.engage(c, saveEngagement, false) }

func (h *Handlers) engage(c *gin.Context, e engagement, on bool) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, profile.ID)
	if !ok {
		return
	}

	action := e.action
	if !on {
		action = "un" + e.action
	}
	ctx, span := telemetry.TraceEngagement(c.Request.Context(), action, project.ID, profile.ID)
	defer span.End()

	changed, err := toggle(ctx, e, profile.ID, project.ID, on)
	if err != nil {
		logger.ErrorWithFields("Failed to "+action+" project", err, logger.WithProjectID(project.ID), logger.WithUserID(profile.ID))
		util.RespondInternalError(c, "failed to "+action+" project")
		return
	}

	var current models.Project
	if err := database.DB.WithContext(ctx).Select("id", "like_count", "save_count").First(&current, "id = ?", project.ID).Error; err != nil {
		logger.WarnWithFields("Failed to reload counters", err, logger.WithProjectID(project.ID))
		current = *project
	}

	if changed {
		if on {
			h.notifications.NotifyBestEffort(ctx, notifications.Event{
				RecipientID: project.OwnerID,
				ActorID:     profile.ID,
				Type:        e.notify,
				ProjectID:   project.ID,
				Message:     fmt.Sprintf("%s %s %s", profile.Username, e.verb, project.Title),
			})
		}
		h.counterChanged(ctx, project.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"project_id": project.ID,
		e.flag:       on,
		e.column:     e.countedBy(&current),
		"changed":    changed,
	})
}

// toggle inserts or deletes the engagement row and moves the counter only
// when a row actually changed, so repeats never double count
func toggle(ctx context.Context, e engagement, profileID, projectID string, on bool) (bool, error) {
	changed := false
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		if on {
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(e.newRow(profileID, projectID))
		} else {
			res = tx.Where("profile_id = ? AND project_id = ?", profileID, projectID).Delete(e.model)
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true

		delta := 1
		if !on {
			delta = -1
		}
		return tx.Model(&models.Project{}).Where("id = ?", projectID).
			UpdateColumn(e.column, floorExpr(e.column, delta)).Error
	})
	return changed, err
}

// GetSavedProjects lists the caller's saved projects, most recently saved first
// GET /api/v1/me/saved
func (h *Handlers) GetSavedProjects(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	limit, offset := util.ParseLimitOffset(c.Query("limit"), c.Query("offset"), feed.DefaultLimit, feed.MaxLimit)

	db := database.DB.WithContext(ctx).Model(&models.Save{}).
		Joins("JOIN projects ON projects.id = saves.project_id AND projects.deleted_at IS NULL").
		Where("saves.profile_id = ?", userID).
		Where("(projects.is_published = ? OR projects.owner_id = ?)", true, userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count saved projects")
		return
	}

	var saves []models.Save
	if err := db.Preload("Project.Owner").Preload("Project.Category").
		Order("saves.created_at DESC").Order("saves.id ASC").
		Limit(limit).Offset(offset).
		Find(&saves).Error; err != nil {
		util.RespondInternalError(c, "failed to load saved projects")
		return
	}

	projects := make([]models.Project, 0, len(saves))
	for _, s := range saves {
		if s.Project != nil {
			projects = append(projects, *s.Project)
		}
	}
	out := projectResponses(ctx, userID, projects)
	c.JSON(http.StatusOK, gin.H{"projects": out, "meta": pageMeta(total, limit, offset, len(out))})
}
