package handlers

import (
	"errors"
	"net/http"

	"github.com/creativehub/nexus/internal/availability"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// GetProfileAvailability returns a profile's public availability
// GET /api/v1/profiles/:username/availability
func (h *Handlers) GetProfileAvailability(c *gin.Context) {
	profile, ok := loadProfileByUsername(c)
	if !ok {
		return
	}
	h.respondAvailability(c, profile.ID)
}

// GetMyAvailability returns the caller's availability
// GET /api/v1/me/availability
func (h *Handlers) GetMyAvailability(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	h.respondAvailability(c, userID)
}

func (h *Handlers) respondAvailability(c *gin.Context, profileID string) {
	settings, err := h.availability.Get(c.Request.Context(), profileID)
	if errors.Is(err, availability.ErrNotFound) {
		util.RespondNotFound(c, "profile")
		return
	}
	if err != nil {
		logger.ErrorWithFields("Failed to load availability", err, logger.WithUserID(profileID))
		util.RespondInternalError(c, "failed to load availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": settings})
}

// UpdateMyAvailability replaces the caller's availability settings. The
// latest write wins.
// PUT /api/v1/me/availability
func (h *Handlers) UpdateMyAvailability(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	var req availability.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.availability.Update(c.Request.Context(), profile.ID, req)
	var fe *availability.FieldError
	switch {
	case errors.As(err, &fe):
		util.RespondValidationError(c, fe.Field, fe.Message)
		return
	case errors.Is(err, availability.ErrNotFound):
		util.RespondNotFound(c, "profile")
		return
	case err != nil:
		logger.ErrorWithFields("Failed to update availability", err, logger.WithUserID(profile.ID))
		util.RespondInternalError(c, "failed to update availability")
		return
	}

	profile.AvailabilityStatus = settings.Status
	h.search.IndexProfileAsync(profile)
	c.JSON(http.StatusOK, gin.H{"availability": settings})
}
