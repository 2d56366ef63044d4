package handlers

import (
	"errors"
	"net/http"

	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/notifications"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications, newest first
// GET /api/v1/notifications?unread=true&limit=&offset=
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	limit, offset := util.ParseLimitOffset(c.Query("limit"), c.Query("offset"), feed.DefaultLimit, feed.MaxLimit)
	ctx := c.Request.Context()

	views, total, err := h.notifications.List(ctx, userID, util.ParseBool(c.Query("unread")), limit, offset)
	if err != nil {
		logger.ErrorWithFields("Failed to list notifications", err, logger.WithUserID(userID))
		util.RespondInternalError(c, "failed to load notifications")
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		logger.WarnWithFields("Failed to count unread notifications", err, logger.WithUserID(userID))
	}

	meta := pageMeta(total, limit, offset, len(views))
	meta["unread_count"] = unread
	c.JSON(http.StatusOK, gin.H{"notifications": views, "meta": meta})
}

// GetUnreadCount returns how many notifications the caller has not read
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		util.RespondInternalError(c, "failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkNotificationsRead marks the given notifications, or all of them, read
// POST /api/v1/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req struct {
		IDs []string `json:"ids"`
		All bool     `json:"all"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !req.All && len(req.IDs) == 0 {
		util.RespondValidationError(c, "ids", "provide ids or set all to true")
		return
	}
	ctx := c.Request.Context()

	updated, err := h.notifications.MarkRead(ctx, userID, req.IDs, req.All)
	if err != nil {
		logger.ErrorWithFields("Failed to mark notifications read", err, logger.WithUserID(userID))
		util.RespondInternalError(c, "failed to mark notifications read")
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		logger.WarnWithFields("Failed to count unread notifications", err, logger.WithUserID(userID))
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "unread_count": unread})
}

// DeleteNotification removes one of the caller's notifications
// DELETE /api/v1/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	err := h.notifications.Delete(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, notifications.ErrNotFound) {
		util.RespondNotFound(c, "notification")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to delete notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": c.Param("id")})
}
