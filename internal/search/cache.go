package search

import (
	"context"
	"strings"
	"time"

	"github.com/creativehub/nexus/internal/cache"
	"github.com/creativehub/nexus/internal/logger"
)

// Suggestions are requested on every keystroke, so they are cached briefly
const suggestCacheTTL = time.Minute

func suggestCacheKey(query string, limit int) string {
	return cache.HashKey("suggest", struct {
		Q     string
		Limit int
	}{strings.ToLower(strings.TrimSpace(query)), limit})
}

func (s *Service) cachedSuggestions(ctx context.Context, query string, limit int) ([]Suggestion, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached []Suggestion
	hit, err := s.cache.GetJSON(ctx, suggestCacheKey(query, limit), &cached)
	if err != nil {
		logger.WarnWithFields("Suggestion cache read failed", err)
		return nil, false
	}
	return cached, hit
}

func (s *Service) storeSuggestions(ctx context.Context, query string, limit int, suggestions []Suggestion) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, suggestCacheKey(query, limit), suggestions, suggestCacheTTL); err != nil {
		logger.WarnWithFields("Suggestion cache write failed", err)
	}
}
