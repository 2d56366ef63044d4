package handlers

import (
	"net/http"

	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// GetFeed runs the feed pipeline with the filters from the query string
// GET /api/v1/feed?category=&q=&range=&from=&to=&media=&sort=&best_of=&limit=&offset=
func (h *Handlers) GetFeed(c *gin.Context) {
	q, err := feed.ParseQuery(c.Request.URL.Query())
	if err != nil {
		respondParamError(c, err)
		return
	}
	h.respondFeed(c, q)
}

// GetProfileProjects returns a profile's portfolio. Owners also see their drafts.
// GET /api/v1/profiles/:username/projects
func (h *Handlers) GetProfileProjects(c *gin.Context) {
	q, err := feed.ParseQuery(c.Request.URL.Query())
	if err != nil {
		respondParamError(c, err)
		return
	}
	profile, ok := loadProfileByUsername(c)
	if !ok {
		return
	}
	q.OwnerID = profile.ID
	if viewerID, ok := util.OptionalUserID(c); ok && viewerID == profile.ID {
		q.IncludeUnpublished = util.ParseBool(c.Query("include_drafts"))
	}
	h.respondFeed(c, q)
}

func (h *Handlers) respondFeed(c *gin.Context, q feed.Query) {
	result, err := h.feed.Run(c.Request.Context(), q)
	if err != nil {
		logger.ErrorWithFields("Failed to run feed", err)
		util.RespondInternalError(c, "failed to load feed")
		return
	}

	viewerID, _ := util.OptionalUserID(c)
	projects := projectResponses(c.Request.Context(), viewerID, result.Projects)
	meta := pageMeta(result.Total, q.Limit, q.Offset, len(projects))
	meta["sort"] = q.EffectiveSort()
	meta["filters"] = q.Filters()

	c.JSON(http.StatusOK, gin.H{"projects": projects, "meta": meta})
}
