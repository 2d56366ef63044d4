package feed

import (
	"math"
	"sort"
	"time"

	"github.com/creativehub/nexus/internal/models"
)

// RankWindow bounds how many candidates are ranked in memory
const RankWindow = 500

// TrendingScore decays engagement with age: score / (age_hours + 2)^1.5
func TrendingScore(p *models.Project, now time.Time) float64 {
	ageHours := now.Sub(p.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return p.EngagementScore() / math.Pow(ageHours+2, 1.5)
}

// Rank orders projects for trending or best-of feeds. Ties fall back to
// newest first, then id.
func Rank(projects []models.Project, q Query, now time.Time) {
	score := func(p *models.Project) float64 {
		if q.BestOf {
			return p.EngagementScore()
		}
		return TrendingScore(p, now)
	}

	scores := make(map[string]float64, len(projects))
	for i := range projects {
		scores[projects[i].ID] = score(&projects[i])
	}

	sort.SliceStable(projects, func(i, j int) bool {
		a, b := &projects[i], &projects[j]
		if sa, sb := scores[a.ID], scores[b.ID]; sa != sb {
			return sa > sb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// orderClauses returns the database ORDER BY for plain sorts, with id as the
// final tie-breaker so pagination is stable.
func orderClauses(s Sort) []string {
	switch s {
	case SortOldest:
		return []string{"projects.created_at ASC", "projects.id ASC"}
	case SortMostLiked:
		return []string{"projects.like_count DESC", "projects.created_at DESC", "projects.id ASC"}
	case SortMostViewed:
		return []string{"projects.view_count DESC", "projects.created_at DESC", "projects.id ASC"}
	case SortMostCommented:
		return []string{"projects.comment_count DESC", "projects.created_at DESC", "projects.id ASC"}
	default:
		return []string{"projects.created_at DESC", "projects.id ASC"}
	}
}

func paginate(projects []models.Project, limit, offset int) []models.Project {
	if offset >= len(projects) {
		return []models.Project{}
	}
	end := offset + limit
	if end > len(projects) {
		end = len(projects)
	}
	return projects[offset:end]
}
