package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/notifications"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/creativehub/nexus/internal/stream"
	"go.uber.org/zap"
)

const activityTimeout = 10 * time.Second

// projectChanged fans a project change out to the feed cache, the search
// index, the realtime change feed and the activity feeds. wasPublished is the
// visibility before the change; drafts never reach the change feed.
func (h *Handlers) projectChanged(ctx context.Context, event string, project *models.Project, wasPublished bool) {
	h.feed.Invalidate(ctx)

	switch event {
	case realtime.EventDelete:
		h.search.RemoveProjectAsync(project.ID)
	default:
		h.search.IndexProjectAsync(project.ID)
	}

	if project.IsPublished || wasPublished {
		var newRow interface{}
		if event != realtime.EventDelete {
			newRow = changeRow(project)
		}
		h.realtime.PublishChange(ctx, realtime.ChannelProjects, event, newRow, realtime.RowID{ID: project.ID})
	}

	nowPublished := project.IsPublished && event != realtime.EventDelete
	switch {
	case nowPublished && !wasPublished:
		h.publishActivity(project)
		h.notifyCollaborators(ctx, project)
	case wasPublished && !nowPublished:
		h.removeActivity(project)
	}
}

// counterChanged pushes fresh engagement counters to change feed subscribers
func (h *Handlers) counterChanged(ctx context.Context, projectID string) {
	h.feed.Invalidate(ctx)

	var project models.Project
	if err := database.DB.WithContext(ctx).Preload("Owner").Preload("Category").
		First(&project, "id = ?", projectID).Error; err != nil {
		logger.WarnWithFields("Failed to reload project after engagement", err, logger.WithProjectID(projectID))
		return
	}
	if project.IsPublished {
		h.realtime.PublishChange(ctx, realtime.ChannelProjects, realtime.EventUpdate, changeRow(&project), realtime.RowID{ID: project.ID})
	}
	h.search.IndexProjectAsync(projectID)
}

func (h *Handlers) publishActivity(project *models.Project) {
	if h.activity == nil {
		return
	}
	activity := &stream.Activity{
		Actor:        project.OwnerID,
		ProjectID:    project.ID,
		Title:        project.Title,
		MediaURL:     project.MediaURL,
		MediaType:    string(project.MediaType),
		ThumbnailURL: project.ThumbnailURL,
		Tags:         project.Tags,
	}
	if project.Category != nil {
		activity.Category = project.Category.Slug
	}
	h.tasks.Go("stream_publish", activityTimeout, func(ctx context.Context) error {
		if err := h.activity.PublishProject(ctx, activity); err != nil {
			logger.Log.Warn("Failed to publish project activity",
				logger.WithProjectID(activity.ProjectID), zap.Error(err))
			return err
		}
		return nil
	})
}

func (h *Handlers) removeActivity(project *models.Project) {
	if h.activity == nil {
		return
	}
	ownerID, projectID := project.OwnerID, project.ID
	h.tasks.Go("stream_remove", activityTimeout, func(ctx context.Context) error {
		if err := h.activity.RemoveProject(ctx, ownerID, projectID); err != nil {
			logger.Log.Warn("Failed to remove project activity",
				logger.WithProjectID(projectID), zap.Error(err))
			return err
		}
		return nil
	})
}

// notifyCollaborators tells clients with an active or finished engagement
// with the owner that new work is up
func (h *Handlers) notifyCollaborators(ctx context.Context, project *models.Project) {
	var clientIDs []string
	if err := database.DB.WithContext(ctx).Model(&models.HireRequest{}).
		Distinct("client_id").
		Where("freelancer_id = ? AND status IN ?", project.OwnerID,
			[]models.HireStatus{models.HireStatusAccepted, models.HireStatusCompleted}).
		Pluck("client_id", &clientIDs).Error; err != nil {
		logger.WarnWithFields("Failed to load collaborators", err, logger.WithProjectID(project.ID))
		return
	}

	name := ""
	if project.Owner != nil {
		name = project.Owner.Username
	}
	for _, clientID := range clientIDs {
		h.notifications.NotifyBestEffort(ctx, notifications.Event{
			RecipientID: clientID,
			ActorID:     project.OwnerID,
			Type:        models.NotificationProjectPublished,
			ProjectID:   project.ID,
			Message:     fmt.Sprintf("%s published %s", name, project.Title),
		})
	}
}

// adjustProjectCount moves the owner's published project counter, never below zero
func adjustProjectCount(ctx context.Context, ownerID string, delta int) {
	if delta == 0 {
		return
	}
	if err := database.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", ownerID).
		UpdateColumn("project_count", floorExpr("project_count", delta)).Error; err != nil {
		logger.WarnWithFields("Failed to update project count", err, logger.WithUserID(ownerID))
	}
}
