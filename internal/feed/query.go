package feed

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/util"
)

// Sort is the requested feed ordering
type Sort string

const (
	SortNewest        Sort = "newest"
	SortOldest        Sort = "oldest"
	SortMostLiked     Sort = "most_liked"
	SortMostViewed    Sort = "most_viewed"
	SortMostCommented Sort = "most_commented"
	SortTrending      Sort = "trending"
)

// DateRange is a window relative to now
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
)

// Pagination bounds
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query is a fully parsed feed request. The zero value is the default feed:
// every published project, newest first.
type Query struct {
	Category  string // category slug; empty means all
	Search    string
	DateRange DateRange
	From      *time.Time
	To        *time.Time // exclusive
	MediaType models.MediaType
	Sort      Sort
	BestOf    bool
	Limit     int
	Offset    int

	// OwnerID restricts the feed to one profile's portfolio
	OwnerID string
	// IncludeUnpublished shows drafts; only set when the owner views their own portfolio
	IncludeUnpublished bool
}

// ParamError reports an invalid query parameter
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseQuery builds a Query from URL parameters:
// category, q, range, from, to, media, sort, best_of, limit, offset.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Category:  strings.ToLower(strings.TrimSpace(values.Get("category"))),
		Search:    strings.TrimSpace(values.Get("q")),
		DateRange: RangeAll,
		Sort:      SortNewest,
		BestOf:    util.ParseBool(values.Get("best_of")),
	}
	if q.Category == "all" {
		q.Category = ""
	}

	if r := strings.ToLower(values.Get("range")); r != "" {
		switch DateRange(r) {
		case RangeAll, RangeToday, RangeWeek, RangeMonth, RangeYear:
			q.DateRange = DateRange(r)
		default:
			return q, &ParamError{Field: "range", Message: "must be one of today, week, month, year, all"}
		}
	}

	if from := values.Get("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return q, &ParamError{Field: "from", Message: err.Error()}
		}
		q.From = &t
	}
	if to := values.Get("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return q, &ParamError{Field: "to", Message: err.Error()}
		}
		// A bare date includes the whole day
		if !strings.Contains(to, "T") {
			t = t.AddDate(0, 0, 1)
		}
		q.To = &t
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return q, &ParamError{Field: "to", Message: "must be after from"}
	}

	if m := strings.ToLower(values.Get("media")); m != "" && m != "all" {
		if !models.IsValidMediaType(models.MediaType(m)) {
			return q, &ParamError{Field: "media", Message: "must be image, video or all"}
		}
		q.MediaType = models.MediaType(m)
	}

	if s := strings.ToLower(values.Get("sort")); s != "" {
		if !isValidSort(Sort(s)) {
			return q, &ParamError{Field: "sort", Message: "must be one of newest, oldest, most_liked, most_viewed, most_commented, trending"}
		}
		q.Sort = Sort(s)
	}

	q.Limit, q.Offset = util.ParseLimitOffset(values.Get("limit"), values.Get("offset"), DefaultLimit, MaxLimit)
	return q, nil
}

func isValidSort(s Sort) bool {
	switch s {
	case SortNewest, SortOldest, SortMostLiked, SortMostViewed, SortMostCommented, SortTrending:
		return true
	}
	return false
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", s)
}

// Window resolves the date filters into [from, to) bounds. Explicit from/to
// take precedence over the relative range.
func (q Query) Window(now time.Time) (from, to *time.Time) {
	now = now.UTC()
	if q.From != nil || q.To != nil {
		return q.From, q.To
	}

	// Relative ranges count back from UTC midnight of today
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var start time.Time
	switch q.DateRange {
	case RangeToday:
		start = midnight
	case RangeWeek:
		start = midnight.AddDate(0, 0, -7)
	case RangeMonth:
		start = midnight.AddDate(0, 0, -30)
	case RangeYear:
		start = midnight.AddDate(0, 0, -365)
	default:
		return nil, nil
	}
	return &start, nil
}

// Ranked reports whether results are ordered in memory rather than by the database
func (q Query) Ranked() bool {
	return q.BestOf || q.Sort == SortTrending
}

// EffectiveSort is the ordering actually applied; best_of overrides sort
func (q Query) EffectiveSort() string {
	if q.BestOf {
		return "best_of"
	}
	if q.Sort == "" {
		return string(SortNewest)
	}
	return string(q.Sort)
}

// Filters echoes the active filters back to clients
func (q Query) Filters() map[string]interface{} {
	filters := map[string]interface{}{
		"category": orAll(q.Category),
		"media":    orAll(string(q.MediaType)),
		"range":    string(q.DateRange),
		"best_of":  q.BestOf,
	}
	if filters["range"] == "" {
		filters["range"] = string(RangeAll)
	}
	if q.Search != "" {
		filters["q"] = q.Search
	}
	if q.From != nil {
		filters["from"] = q.From.Format(time.RFC3339)
	}
	if q.To != nil {
		filters["to"] = q.To.Format(time.RFC3339)
	}
	return filters
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
