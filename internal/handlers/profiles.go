package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// Profile field limits
const (
	maxDisplayNameLength = 80
	maxBioLength         = 500
	maxLocationLength    = 100
	maxSkills            = 20
)

// ProfileStats are aggregate numbers shown on a public profile
type ProfileStats struct {
	Projects      int64 `json:"projects"`
	LikesReceived int64 `json:"likes_received"`
	TotalViews    int64 `json:"total_views"`
}

func profileStats(c *gin.Context, profileID string) (ProfileStats, error) {
	var row struct {
		Projects int64
		Likes    int64
		Views    int64
	}
	err := database.DB.WithContext(c.Request.Context()).Model(&models.Project{}).
		Select("COUNT(*) AS projects, COALESCE(SUM(like_count), 0) AS likes, COALESCE(SUM(view_count), 0) AS views").
		Where("owner_id = ? AND is_published = ?", profileID, true).
		Scan(&row).Error
	return ProfileStats{Projects: row.Projects, LikesReceived: row.Likes, TotalViews: row.Views}, err
}

// GetProfile returns a public profile with stats
// GET /api/v1/profiles/:username
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, ok := loadProfileByUsername(c)
	if !ok {
		return
	}
	stats, err := profileStats(c, profile.ID)
	if err != nil {
		util.RespondInternalError(c, "failed to load profile stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "stats": stats})
}

// GetMe returns the caller's own profile, email included
// GET /api/v1/me
func (h *Handlers) GetMe(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	stats, err := profileStats(c, profile.ID)
	if err != nil {
		util.RespondInternalError(c, "failed to load profile stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile.Private(), "stats": stats})
}

// UpdateMe edits the caller's profile fields
// PATCH /api/v1/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	var req struct {
		DisplayName *string   `json:"display_name"`
		Bio         *string   `json:"bio"`
		AvatarURL   *string   `json:"avatar_url"`
		Location    *string   `json:"location"`
		Website     *string   `json:"website"`
		Skills      *[]string `json:"skills"`
	}
	if !bindJSON(c, &req) {
		return
	}

	var fields []string
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
			util.RespondValidationError(c, "display_name", "must be 1-80 characters")
			return
		}
		profile.DisplayName = name
		fields = append(fields, "display_name")
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			util.RespondValidationError(c, "bio", "must be at most 500 characters")
			return
		}
		profile.Bio = bio
		fields = append(fields, "bio")
	}
	if req.AvatarURL != nil {
		avatar := strings.TrimSpace(*req.AvatarURL)
		if err := util.ValidateWebsite(avatar); err != nil {
			util.RespondValidationError(c, "avatar_url", "must be an http(s) URL")
			return
		}
		profile.AvatarURL = avatar
		fields = append(fields, "avatar_url")
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		if utf8.RuneCountInString(location) > maxLocationLength {
			util.RespondValidationError(c, "location", "must be at most 100 characters")
			return
		}
		profile.Location = location
		fields = append(fields, "location")
	}
	if req.Website != nil {
		website := strings.TrimSpace(*req.Website)
		if err := util.ValidateWebsite(website); err != nil {
			util.RespondValidationError(c, "website", err.Error())
			return
		}
		profile.Website = website
		fields = append(fields, "website")
	}
	if req.Skills != nil {
		skills := util.NormalizeTags(*req.Skills)
		if len(*req.Skills) > maxSkills {
			util.RespondValidationError(c, "skills", "at most 20 skills")
			return
		}
		profile.Skills = skills
		fields = append(fields, "skills")
	}

	if len(fields) > 0 {
		if err := database.DB.WithContext(c.Request.Context()).Model(profile).Select(fields).Updates(profile).Error; err != nil {
			logger.ErrorWithFields("Failed to update profile", err, logger.WithUserID(profile.ID))
			util.RespondInternalError(c, "failed to update profile")
			return
		}
		h.search.IndexProfileAsync(profile)
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile.Private()})
}

// UploadAvatar stores a new profile picture
// POST /api/v1/me/avatar
func (h *Handlers) UploadAvatar(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, models.MaxImageSize+formOverhead)

	file, err := c.FormFile("avatar")
	if err != nil {
		util.RespondValidationError(c, "avatar", "an image file is required")
		return
	}
	if err := util.ValidateFilename(file.Filename); err != nil {
		util.RespondValidationError(c, "avatar", err.Error())
		return
	}
	if mediaType, ok := models.MediaTypeForFilename(file.Filename); !ok || mediaType != models.MediaTypeImage {
		util.RespondValidationError(c, "avatar", "must be a jpg, jpeg, png, gif or webp image")
		return
	}
	if file.Size > models.MaxImageSize {
		tooLarge(c, models.MaxImageSize)
		return
	}
	if h.storage == nil {
		storageUnavailable(c)
		return
	}

	src, err := file.Open()
	if err != nil {
		util.RespondBadRequest(c, "failed to read upload")
		return
	}
	defer src.Close()

	result, err := h.storage.UploadAvatar(c.Request.Context(), src, file.Size, profile.ID, file.Filename)
	if err != nil {
		logger.ErrorWithFields("Failed to upload avatar", err, logger.WithUserID(profile.ID))
		util.RespondInternalError(c, "failed to upload avatar")
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(profile).Update("avatar_url", result.URL).Error; err != nil {
		h.deleteMedia(result.Key)
		util.RespondInternalError(c, "failed to save avatar")
		return
	}
	profile.AvatarURL = result.URL
	h.search.IndexProfileAsync(profile)

	c.JSON(http.StatusOK, gin.H{"avatar_url": result.URL, "profile": profile.Private()})
}
