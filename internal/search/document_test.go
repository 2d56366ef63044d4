package search

import (
	"testing"

	"github.com/creativehub/nexus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectToDoc(t *testing.T) {
	project := &models.Project{
		ID:        "p1",
		OwnerID:   "u1",
		Owner:     &models.Profile{ID: "u1", Username: "ada"},
		Category:  &models.Category{Name: "Motion", Slug: "motion"},
		Title:     "Desert Loop",
		MediaType: models.MediaTypeVideo,
		LikeCount: 3,
	}

	doc := ProjectToDoc(project)

	assert.Equal(t, "ada", doc.OwnerUsername)
	assert.Equal(t, "motion", doc.Category)
	assert.Equal(t, "video", doc.MediaType)
	assert.Equal(t, 3, doc.LikeCount)
	assert.NotNil(t, doc.Tags)
}

func TestProfileToDoc(t *testing.T) {
	doc := ProfileToDoc(&models.Profile{ID: "u1", Username: "ada", AvailabilityStatus: models.AvailabilityBusy})

	assert.Equal(t, "busy", doc.AvailabilityStatus)
	assert.NotNil(t, doc.Skills)
}

func TestBuildProjectQuery(t *testing.T) {
	q := buildProjectQuery(ProjectSearchParams{Query: "neon", Category: "photography", MediaType: "image", Limit: 10, Offset: 20})

	assert.Equal(t, 20, q["from"])
	assert.Equal(t, 10, q["size"])
	assert.Equal(t, false, q["_source"])

	fs := q["query"].(map[string]interface{})["function_score"].(map[string]interface{})
	boolQuery := fs["query"].(map[string]interface{})["bool"].(map[string]interface{})

	filters := boolQuery["filter"].([]map[string]interface{})
	require.Len(t, filters, 2)
	assert.Equal(t, map[string]interface{}{"category": "photography"}, filters[0]["term"])
	assert.Equal(t, map[string]interface{}{"media_type": "image"}, filters[1]["term"])

	must := boolQuery["must"].([]map[string]interface{})
	require.Len(t, must, 1)
	assert.Equal(t, "neon", must[0]["multi_match"].(map[string]interface{})["query"])
}

func TestBuildProjectQueryWithoutText(t *testing.T) {
	q := buildProjectQuery(ProjectSearchParams{Limit: 5})

	fs := q["query"].(map[string]interface{})["function_score"].(map[string]interface{})
	boolQuery := fs["query"].(map[string]interface{})["bool"].(map[string]interface{})
	_, hasMust := boolQuery["must"]
	assert.False(t, hasMust)
	assert.Empty(t, boolQuery["filter"])
}
