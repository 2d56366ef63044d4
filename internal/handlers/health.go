package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 3 * time.Second

// Health reports the status of the database and optional integrations.
// Only a database failure makes the service unhealthy.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	components := gin.H{}
	status := "healthy"
	code := http.StatusOK

	if err := database.Health(); err != nil {
		components["database"] = gin.H{"status": "down", "error": err.Error()}
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		components["database"] = gin.H{"status": "up"}
	}

	degraded := false
	if h.redis == nil {
		components["redis"] = gin.H{"status": "disabled"}
	} else if err := h.redis.Ping(ctx); err != nil {
		components["redis"] = gin.H{"status": "degraded", "error": err.Error()}
		degraded = true
	} else {
		components["redis"] = gin.H{"status": "up"}
	}

	if !h.search.Enabled() {
		components["search"] = gin.H{"status": "disabled"}
	} else if err := h.search.Ping(ctx); err != nil {
		components["search"] = gin.H{"status": "degraded", "error": err.Error()}
		degraded = true
	} else {
		components["search"] = gin.H{"status": "up"}
	}

	if degraded && status == "healthy" {
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}
