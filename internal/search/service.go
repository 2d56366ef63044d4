package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/queue"
	"github.com/creativehub/nexus/internal/telemetry"
	"go.uber.org/zap"
)

// indexTimeout bounds background indexing calls
const indexTimeout = 10 * time.Second

// candidatesPerKind bounds database lookups for suggestions
const candidatesPerKind = 50

// Service answers project, profile and suggestion searches. Elasticsearch is
// tried first when configured; the database is the fallback.
type Service struct {
	client *Client
	feed   *feed.Service
	cache  *cache.RedisClient
	tasks  *queue.TaskQueue
}

// NewService creates a search service. client and redisClient may be nil.
func NewService(client *Client, feedService *feed.Service, redisClient *cache.RedisClient) *Service {
	return &Service{client: client, feed: feedService, cache: redisClient}
}

// SetTaskQueue runs index updates through a worker pool
func (s *Service) SetTaskQueue(tasks *queue.TaskQueue) {
	s.tasks = tasks
}

// Enabled reports whether Elasticsearch is configured
func (s *Service) Enabled() bool {
	return s.client != nil
}

// ProjectResults is a page of project search results
type ProjectResults struct {
	Projects []models.Project
	Total    int64
	Fallback bool
}

// SearchProjects searches projects by text with the feed's category and media filters
func (s *Service) SearchProjects(ctx context.Context, q feed.Query) (*ProjectResults, error) {
	ctx, span := telemetry.TraceSearch(ctx, "projects", len(q.Search))
	defer span.End()

	if s.client != nil {
		hits, err := s.client.SearchProjects(ctx, ProjectSearchParams{
			Query:     q.Search,
			Category:  q.Category,
			MediaType: string(q.MediaType),
			Limit:     q.Limit,
			Offset:    q.Offset,
		})
		if err == nil {
			projects, err := loadProjectsInOrder(ctx, hits.IDs)
			if err == nil {
				recordSearch("projects", "elasticsearch", "ok")
				return &ProjectResults{Projects: projects, Total: hits.Total}, nil
			}
			logger.WarnWithFields("Failed to load searched projects", err)
		} else {
			logger.WarnWithFields("Elasticsearch project search failed, using database", err)
			recordSearch("projects", "elasticsearch", "error")
		}
	}

	res, err := s.feed.Run(ctx, q)
	if err != nil {
		recordSearch("projects", "database", "error")
		return nil, err
	}
	recordSearch("projects", "database", "ok")
	return &ProjectResults{Projects: res.Projects, Total: res.Total, Fallback: true}, nil
}

// loadProjectsInOrder loads published projects by id, keeping the ranking order
func loadProjectsInOrder(ctx context.Context, ids []string) ([]models.Project, error) {
	projects := []models.Project{}
	if len(ids) == 0 {
		return projects, nil
	}

	var found []models.Project
	if err := database.DB.WithContext(ctx).
		Where("id IN ? AND is_published = ?", ids, true).
		Preload("Owner").Preload("Category").
		Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Project, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	// Documents for deleted or unpublished projects are skipped until reindexed
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// ProfileResults is a page of profile search results
type ProfileResults struct {
	Profiles []models.Profile
	Total    int64
	Fallback bool
}

// SearchProfiles finds profiles by username, display name or skills
func (s *Service) SearchProfiles(ctx context.Context, text string, limit, offset int) (*ProfileResults, error) {
	ctx, span := telemetry.TraceSearch(ctx, "profiles", len(text))
	defer span.End()

	text = strings.TrimSpace(text)
	if s.client != nil && text != "" {
		hits, err := s.client.SearchProfiles(ctx, text, limit, offset)
		if err == nil {
			profiles, err := loadProfilesInOrder(ctx, hits.IDs)
			if err == nil {
				recordSearch("profiles", "elasticsearch", "ok")
				return &ProfileResults{Profiles: profiles, Total: hits.Total}, nil
			}
			logger.WarnWithFields("Failed to load searched profiles", err)
		} else {
			logger.WarnWithFields("Elasticsearch profile search failed, using database", err)
			recordSearch("profiles", "elasticsearch", "error")
		}
	}

	db := database.DB.WithContext(ctx).Model(&models.Profile{})
	if text != "" {
		pattern := "%" + feed.EscapeLike(strings.ToLower(text)) + "%"
		db = db.Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\' OR LOWER(skills) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		recordSearch("profiles", "database", "error")
		return nil, fmt.Errorf("count profiles: %w", err)
	}
	profiles := []models.Profile{}
	if err := db.Order("project_count DESC").Order("username ASC").
		Limit(limit).Offset(offset).Find(&profiles).Error; err != nil {
		recordSearch("profiles", "database", "error")
		return nil, fmt.Errorf("search profiles: %w", err)
	}

	recordSearch("profiles", "database", "ok")
	return &ProfileResults{Profiles: profiles, Total: total, Fallback: true}, nil
}

func loadProfilesInOrder(ctx context.Context, ids []string) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if len(ids) == 0 {
		return profiles, nil
	}

	var found []models.Profile
	if err := database.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Profile, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// Suggest returns search-as-you-type suggestions across projects, categories
// and profiles. The bool reports whether the database fallback answered.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, bool, error) {
	if TooShort(query) {
		return []Suggestion{}, false, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	ctx, span := telemetry.TraceSearch(ctx, "suggestions", len(query))
	defer span.End()

	if cached, hit := s.cachedSuggestions(ctx, query, limit); hit {
		return cached, false, nil
	}

	// Categories are a small table and always come from the database
	candidates, err := categoryCandidates(ctx, query)
	if err != nil {
		recordSearch("suggestions", "database", "error")
		return nil, false, err
	}

	fallback := true
	if s.client != nil {
		completions, err := s.client.SuggestCompletions(ctx, strings.TrimSpace(query), candidatesPerKind)
		if err == nil {
			candidates = append(candidates, completions...)
			fallback = false
			recordSearch("suggestions", "elasticsearch", "ok")
		} else {
			logger.WarnWithFields("Elasticsearch suggestions failed, using database", err)
			recordSearch("suggestions", "elasticsearch", "error")
		}
	}

	if fallback {
		more, err := databaseCandidates(ctx, query)
		if err != nil {
			recordSearch("suggestions", "database", "error")
			return nil, false, err
		}
		candidates = append(candidates, more...)
		recordSearch("suggestions", "database", "ok")
	}

	suggestions := RankSuggestions(query, candidates, limit)
	s.storeSuggestions(ctx, query, limit, suggestions)
	return suggestions, fallback, nil
}

func likePattern(query string) string {
	return "%" + feed.EscapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
}

func categoryCandidates(ctx context.Context, query string) ([]Suggestion, error) {
	var categories []models.Category
	if err := database.DB.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(query)).
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("suggest categories: %w", err)
	}
	out := make([]Suggestion, 0, len(categories))
	for _, c := range categories {
		out = append(out, Suggestion{Kind: KindCategory, Text: c.Name, ID: c.Slug})
	}
	return out, nil
}

func databaseCandidates(ctx context.Context, query string) ([]Suggestion, error) {
	pattern := likePattern(query)

	var projects []models.Project
	if err := database.DB.WithContext(ctx).
		Select("id", "title").
		Where(`is_published = ? AND LOWER(title) LIKE ? ESCAPE '\'`, true, pattern).
		Order("like_count DESC").
		Limit(candidatesPerKind).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("suggest projects: %w", err)
	}

	var profiles []models.Profile
	if err := database.DB.WithContext(ctx).
		Select("id", "username").
		Where(`LOWER(username) LIKE ? ESCAPE '\'`, pattern).
		Limit(candidatesPerKind).
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("suggest profiles: %w", err)
	}

	out := make([]Suggestion, 0, len(projects)+len(profiles))
	for _, p := range projects {
		out = append(out, Suggestion{Kind: KindProject, Text: p.Title, ID: p.ID})
	}
	for _, p := range profiles {
		out = append(out, Suggestion{Kind: KindProfile, Text: p.Username, ID: p.Username})
	}
	return out, nil
}

func recordSearch(kind, backend, outcome string) {
	metrics.Get().SearchQueriesTotal.WithLabelValues(kind, backend, outcome).Inc()
}

// IndexProjectAsync reindexes a project in the background. Unpublished or
// deleted projects are removed from the index.
func (s *Service) IndexProjectAsync(projectID string) {
	if s.client == nil {
		return
	}
	s.tasks.Go("search_index_project", indexTimeout, func(ctx context.Context) error {
		if err := s.syncProject(ctx, projectID); err != nil {
			logger.Log.Warn("Failed to sync project to search index",
				logger.WithProjectID(projectID), zap.Error(err))
			return err
		}
		return nil
	})
}

func (s *Service) syncProject(ctx context.Context, projectID string) error {
	var project models.Project
	err := database.DB.WithContext(ctx).Preload("Owner").Preload("Category").
		Where("id = ?", projectID).Limit(1).Find(&project).Error
	if err != nil {
		return err
	}
	if project.ID == "" || !project.IsPublished {
		return s.client.DeleteProject(ctx, projectID)
	}
	return s.client.IndexProject(ctx, ProjectToDoc(&project))
}

// RemoveProjectAsync drops a project from the index in the background
func (s *Service) RemoveProjectAsync(projectID string) {
	if s.client == nil {
		return
	}
	s.tasks.Go("search_remove_project", indexTimeout, func(ctx context.Context) error {
		if err := s.client.DeleteProject(ctx, projectID); err != nil {
			logger.Log.Warn("Failed to remove project from search index",
				logger.WithProjectID(projectID), zap.Error(err))
			return err
		}
		return nil
	})
}

// IndexProfileAsync reindexes a profile in the background
func (s *Service) IndexProfileAsync(profile *models.Profile) {
	if s.client == nil || profile == nil {
		return
	}
	doc := ProfileToDoc(profile)
	s.tasks.Go("search_index_profile", indexTimeout, func(ctx context.Context) error {
		if err := s.client.IndexProfile(ctx, doc); err != nil {
			logger.Log.Warn("Failed to index profile",
				logger.WithUserID(doc.ID), zap.Error(err))
			return err
		}
		return nil
	})
}

// Ping checks Elasticsearch when it is configured
func (s *Service) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx)
}
