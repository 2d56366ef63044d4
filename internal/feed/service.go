package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheTTL   = 30 * time.Second
	versionKey = "feed:version"
)

// Result is one page of the feed
type Result struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
}

// Service runs the feed pipeline: filters are applied in the database,
// plain sorts are ordered there too, and trending/best-of candidates are
// ranked in memory.
type Service struct {
	cache *cache.RedisClient
	now   func() time.Time
}

// NewService creates a feed service. A nil cache disables page caching.
func NewService(redisClient *cache.RedisClient) *Service {
	return &Service{cache: redisClient, now: time.Now}
}

// Run executes the query and returns one page of projects with owner and category loaded
func (s *Service) Run(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	ctx, span := telemetry.TraceFeed(ctx, telemetry.FeedAttrs{
		Sort:      q.EffectiveSort(),
		Category:  q.Category,
		MediaType: string(q.MediaType),
		HasQuery:  q.Search != "",
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	defer span.End()

	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	key := s.cacheKey(ctx, q)
	if key != "" {
		var cached Result
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			logger.WarnWithFields("Feed cache read failed", err)
		} else if hit {
			metrics.Get().FeedGenerationTime.WithLabelValues(q.EffectiveSort(), "true").Observe(time.Since(start).Seconds())
			return &cached, nil
		}
	}

	result, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.SetJSON(ctx, key, result, cacheTTL); err != nil {
			logger.WarnWithFields("Feed cache write failed", err)
		}
	}

	metrics.Get().FeedGenerationTime.WithLabelValues(q.EffectiveSort(), "false").Observe(time.Since(start).Seconds())
	return result, nil
}

func (s *Service) run(ctx context.Context, q Query) (*Result, error) {
	db, err := s.filtered(ctx, q)
	if errors.Is(err, errNoMatches) {
		return &Result{Projects: []models.Project{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count feed: %w", err)
	}

	if q.Ranked() {
		projects, err := s.ranked(db, q, total)
		if err != nil {
			return nil, err
		}
		return &Result{Projects: projects, Total: total}, nil
	}

	projects := []models.Project{}
	page := db.Session(&gorm.Session{})
	for _, clause := range orderClauses(q.Sort) {
		page = page.Order(clause)
	}
	if err := page.Limit(q.Limit).Offset(q.Offset).
		Preload("Owner").Preload("Category").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("load feed page: %w", err)
	}

	return &Result{Projects: projects, Total: total}, nil
}

// ranked ranks the newest RankWindow matches in memory. Matches older than the
// window follow in newest-first order so every match stays reachable.
func (s *Service) ranked(db *gorm.DB, q Query, total int64) ([]models.Project, error) {
	var candidates []models.Project
	if err := db.Session(&gorm.Session{}).
		Order("projects.created_at DESC").Order("projects.id ASC").
		Limit(RankWindow).
		Preload("Owner").Preload("Category").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("load ranking candidates: %w", err)
	}
	Rank(candidates, q, s.now())

	page := paginate(candidates, q.Limit, q.Offset)
	if len(page) == q.Limit || total <= int64(len(candidates)) {
		return page, nil
	}

	tailOffset := q.Offset - len(candidates)
	if tailOffset < 0 {
		tailOffset = 0
	}
	var tail []models.Project
	if err := db.Session(&gorm.Session{}).
		Order("projects.created_at DESC").Order("projects.id ASC").
		Offset(len(candidates) + tailOffset).
		Limit(q.Limit - len(page)).
		Preload("Owner").Preload("Category").
		Find(&tail).Error; err != nil {
		return nil, fmt.Errorf("load feed tail: %w", err)
	}
	return append(append([]models.Project{}, page...), tail...), nil
}

var errNoMatches = errors.New("no matching projects")

// filtered builds the WHERE part of the pipeline, one conditional step per filter
func (s *Service) filtered(ctx context.Context, q Query) (*gorm.DB, error) {
	db := database.DB.WithContext(ctx).Model(&models.Project{})

	if !q.IncludeUnpublished {
		db = db.Where("projects.is_published = ?", true)
	}

	if q.OwnerID != "" {
		db = db.Where("projects.owner_id = ?", q.OwnerID)
	}

	if q.Category != "" {
		var category models.Category
		err := database.DB.WithContext(ctx).Where("slug = ?", q.Category).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoMatches
		}
		if err != nil {
			return nil, fmt.Errorf("load category: %w", err)
		}
		db = db.Where("projects.category_id = ?", category.ID)
	}

	if q.MediaType != "" {
		db = db.Where("projects.media_type = ?", q.MediaType)
	}

	from, to := q.Window(s.now())
	if from != nil {
		db = db.Where("projects.created_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("projects.created_at < ?", *to)
	}

	if q.Search != "" {
		db = TextFilter(ctx, db, q.Search)
	}

	return db, nil
}

// TextFilter adds a case-insensitive substring match over title,
// description, tags and the owner's username.
func TextFilter(ctx context.Context, db *gorm.DB, text string) *gorm.DB {
	pattern := "%" + EscapeLike(strings.ToLower(strings.TrimSpace(text))) + "%"
	owners := database.DB.WithContext(ctx).Model(&models.Profile{}).
		Select("id").
		Where(`LOWER(username) LIKE ? ESCAPE '\'`, pattern)

	return db.Where(
		`(LOWER(projects.title) LIKE ? ESCAPE '\' OR LOWER(projects.description) LIKE ? ESCAPE '\' OR LOWER(projects.tags) LIKE ? ESCAPE '\' OR projects.owner_id IN (?))`,
		pattern, pattern, pattern, owners,
	)
}

// EscapeLike escapes LIKE wildcards so user text matches literally
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Service) cacheKey(ctx context.Context, q Query) string {
	if s.cache == nil {
		return ""
	}
	version, err := s.cache.GetInt(ctx, versionKey)
	if err != nil {
		logger.Log.Warn("Feed cache version unavailable, bypassing cache", zap.Error(err))
		return ""
	}

	// Relative ranges are resolved to minute precision so keys don't churn every request
	from, to := q.Window(s.now().Truncate(time.Minute))
	return cache.HashKey(fmt.Sprintf("feed:v%d", version), struct {
		Query
		From *time.Time
		To   *time.Time
	}{q, from, to})
}

// Invalidate drops every cached feed page by bumping the cache version
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, versionKey); err != nil {
		logger.WarnWithFields("Feed cache invalidation failed", err)
	}
}
