package handlers

import (
	"net/http"
	"strings"

	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/search"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// SearchProjects searches project text with category and media filters
// GET /api/v1/search/projects?q=&category=&media=&limit=&offset=
func (h *Handlers) SearchProjects(c *gin.Context) {
	q, err := feed.ParseQuery(c.Request.URL.Query())
	if err != nil {
		respondParamError(c, err)
		return
	}

	results, err := h.search.SearchProjects(c.Request.Context(), q)
	if err != nil {
		logger.ErrorWithFields("Project search failed", err)
		util.RespondInternalError(c, "search failed")
		return
	}

	viewerID, _ := util.OptionalUserID(c)
	projects := projectResponses(c.Request.Context(), viewerID, results.Projects)
	meta := pageMeta(results.Total, q.Limit, q.Offset, len(projects))
	meta["fallback"] = results.Fallback
	meta["query"] = q.Search
	c.JSON(http.StatusOK, gin.H{"projects": projects, "meta": meta})
}

// SearchProfiles searches profiles by username, display name and skills
// GET /api/v1/search/profiles?q=&limit=&offset=
func (h *Handlers) SearchProfiles(c *gin.Context) {
	limit, offset := util.ParseLimitOffset(c.Query("limit"), c.Query("offset"), feed.DefaultLimit, feed.MaxLimit)

	results, err := h.search.SearchProfiles(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		logger.ErrorWithFields("Profile search failed", err)
		util.RespondInternalError(c, "search failed")
		return
	}

	profiles := make([]*models.Profile, len(results.Profiles))
	for i := range results.Profiles {
		profiles[i] = &results.Profiles[i]
	}
	meta := pageMeta(results.Total, limit, offset, len(profiles))
	meta["fallback"] = results.Fallback
	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "meta": meta})
}

// GetSuggestions returns search-as-you-type suggestions
// GET /api/v1/search/suggestions?q=&limit=
func (h *Handlers) GetSuggestions(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	limit := util.ParseInt(c.Query("limit"), search.DefaultSuggestLimit)

	suggestions, fallback, err := h.search.Suggest(c.Request.Context(), query, limit)
	if err != nil {
		logger.ErrorWithFields("Suggestions failed", err)
		util.RespondInternalError(c, "suggestions failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"meta":        gin.H{"query": query, "fallback": fallback},
	})
}
