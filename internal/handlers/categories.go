package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryResponse is a category with its published project count
type CategoryResponse struct {
	models.Category
	ProjectCount int64 `json:"project_count"`
}

// ListCategories returns every category in display order
// GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	var categories []models.Category
	if err := database.DB.WithContext(ctx).Order("sort_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		util.RespondInternalError(c, "failed to load categories")
		return
	}

	var counts []struct {
		CategoryID string
		Count      int64
	}
	if err := database.DB.WithContext(ctx).Model(&models.Project{}).
		Select("category_id, COUNT(*) AS count").
		Where("is_published = ? AND category_id IS NOT NULL", true).
		Group("category_id").
		Scan(&counts).Error; err != nil {
		util.RespondInternalError(c, "failed to count projects")
		return
	}
	byCategory := make(map[string]int64, len(counts))
	for _, row := range counts {
		byCategory[row.CategoryID] = row.Count
	}

	out := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = CategoryResponse{Category: cat, ProjectCount: byCategory[cat.ID]}
	}
	util.RespondWithData(c, http.StatusOK, out)
}

// GetCategory returns one category by slug
// GET /api/v1/categories/:slug
func (h *Handlers) GetCategory(c *gin.Context) {
	ctx := c.Request.Context()

	var category models.Category
	err := database.DB.WithContext(ctx).First(&category, "slug = ?", strings.ToLower(c.Param("slug"))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "category")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load category")
		return
	}

	var count int64
	if err := database.DB.WithContext(ctx).Model(&models.Project{}).
		Where("category_id = ? AND is_published = ?", category.ID, true).
		Count(&count).Error; err != nil {
		util.RespondInternalError(c, "failed to count projects")
		return
	}
	util.RespondWithData(c, http.StatusOK, CategoryResponse{Category: category, ProjectCount: count})
}
