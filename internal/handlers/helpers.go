package handlers

import (
	"errors"

	"github.com/creativehub/nexus/internal/database"
	apierrors "github.com/creativehub/nexus/internal/errors"
	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/util"
	"github.com/creativehub/nexus/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// bindJSON binds the request body and answers 422 for validation failures
// or 400 for malformed bodies. It returns false when a response was sent.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	if field, message, ok := validation.FirstFieldError(err); ok {
		util.RespondValidationError(c, field, message)
		return
	}
	util.RespondBadRequest(c, "invalid request body")
}

// respondParamError answers 400 for an invalid feed or search parameter
func respondParamError(c *gin.Context, err error) {
	var pe *feed.ParamError
	if errors.As(err, &pe) {
		util.RespondBadRequest(c, pe.Error())
		return
	}
	util.RespondBadRequest(c, err.Error())
}

// loadProject finds a project by id with owner and category. Drafts are only
// visible to their owner.
func loadProject(c *gin.Context, viewerID string) (*models.Project, bool) {
	var project models.Project
	err := database.DB.WithContext(c.Request.Context()).
		Preload("Owner").Preload("Category").
		First(&project, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !project.IsPublished && project.OwnerID != viewerID) {
		util.RespondNotFound(c, "project")
		return nil, false
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load project")
		return nil, false
	}
	return &project, true
}

// loadProfileByUsername answers 404 for unknown usernames
func loadProfileByUsername(c *gin.Context) (*models.Profile, bool) {
	var profile models.Profile
	err := database.DB.WithContext(c.Request.Context()).
		First(&profile, "username = ?", models.NormalizeUsername(c.Param("username"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "profile")
		return nil, false
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load profile")
		return nil, false
	}
	return &profile, true
}

// pageMeta is the pagination block of list responses
func pageMeta(total int64, limit, offset, count int) gin.H {
	return gin.H{
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"has_more": int64(offset+count) < total,
	}
}

func storageUnavailable(c *gin.Context) {
	util.RespondServiceUnavailable(c, "media storage")
}

func tooLarge(c *gin.Context, limit int64) {
	util.RespondWithAPIError(c, apierrors.PayloadTooLarge("media", limit>>20))
}
