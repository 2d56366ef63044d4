package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/creativehub/nexus/internal/analytics"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// GetAnalytics summarizes engagement on the caller's projects
// GET /api/v1/me/analytics?days=30
func (h *Handlers) GetAnalytics(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	days := analytics.DefaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			util.RespondBadRequest(c, analytics.ErrInvalidDays.Error())
			return
		}
		days = n
	}

	report, err := h.analytics.Report(c.Request.Context(), userID, days)
	if errors.Is(err, analytics.ErrInvalidDays) {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		logger.ErrorWithFields("Failed to build analytics", err, logger.WithUserID(userID))
		util.RespondInternalError(c, "failed to build analytics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": report})
}
