// Package analytics summarizes engagement on a creator's projects.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/models"
)

// Window bounds for the days parameter
const (
	DefaultDays = 30
	MaxDays     = 365
)

// ErrInvalidDays is returned when days is outside 1..MaxDays
var ErrInvalidDays = errors.New("days must be between 1 and 365")

// Totals are lifetime counts across all of a creator's projects
type Totals struct {
	Projects int   `json:"projects"`
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Saves    int64 `json:"saves"`
	Comments int64 `json:"comments"`
}

// WindowTotals are counts of events inside the requested window
type WindowTotals struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
	Saves int64 `json:"saves"`
}

// ProjectStats is one row of the per-project breakdown
type ProjectStats struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	MediaType    models.MediaType `json:"media_type"`
	IsPublished  bool             `json:"is_published"`
	Views        int              `json:"views"`
	Likes        int              `json:"likes"`
	Saves        int              `json:"saves"`
	Comments     int              `json:"comments"`
	Engagement   float64          `json:"engagement_score"`
	CreatedAt    time.Time        `json:"created_at"`
	CategorySlug string           `json:"category,omitempty"`
}

// DailyPoint is one UTC day of the series
type DailyPoint struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
	Likes int    `json:"likes"`
	Saves int    `json:"saves"`
}

// CategoryStats ranks a category by the views its projects drew
type CategoryStats struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Projects int    `json:"projects"`
	Views    int64  `json:"views"`
}

// Report is the response of GET /me/analytics
type Report struct {
	Days          int             `json:"days"`
	From          string          `json:"from"`
	To            string          `json:"to"`
	Totals        Totals          `json:"totals"`
	Window        WindowTotals    `json:"window"`
	Projects      []ProjectStats  `json:"projects"`
	Daily         []DailyPoint    `json:"daily"`
	TopCategories []CategoryStats `json:"top_categories"`
}

// Service builds analytics reports
type Service struct {
	now func() time.Time
}

// NewService creates an analytics service
func NewService() *Service {
	return &Service{now: func() time.Time { return time.Now().UTC() }}
}

// Report summarizes the owner's projects over the last days UTC days, today included
func (s *Service) Report(ctx context.Context, ownerID string, days int) (*Report, error) {
	if days < 1 || days > MaxDays {
		return nil, ErrInvalidDays
	}

	db := database.DB.WithContext(ctx)

	var projects []models.Project
	if err := db.Preload("Category").Where("owner_id = ?", ownerID).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	today := startOfDay(s.now())
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	report := &Report{
		Days:          days,
		From:          from.Format(time.DateOnly),
		To:            today.Format(time.DateOnly),
		Projects:      make([]ProjectStats, 0, len(projects)),
		Daily:         emptySeries(from, days),
		TopCategories: []CategoryStats{},
	}

	for i := range projects {
		p := &projects[i]
		report.Totals.Projects++
		report.Totals.Views += int64(p.ViewCount)
		report.Totals.Likes += int64(p.LikeCount)
		report.Totals.Saves += int64(p.SaveCount)
		report.Totals.Comments += int64(p.CommentCount)

		row := ProjectStats{
			ID:          p.ID,
			Title:       p.Title,
			MediaType:   p.MediaType,
			IsPublished: p.IsPublished,
			Views:       p.ViewCount,
			Likes:       p.LikeCount,
			Saves:       p.SaveCount,
			Comments:    p.CommentCount,
			Engagement:  p.EngagementScore(),
			CreatedAt:   p.CreatedAt,
		}
		if p.Category != nil {
			row.CategorySlug = p.Category.Slug
		}
		report.Projects = append(report.Projects, row)
	}
	sort.SliceStable(report.Projects, func(i, j int) bool {
		a, b := report.Projects[i], report.Projects[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	report.TopCategories = topCategories(projects)

	if len(projects) == 0 {
		return report, nil
	}

	owned := db.Model(&models.Project{}).Select("id").Where("owner_id = ?", ownerID)

	series := []struct {
		model interface{}
		add   func(*DailyPoint)
		total *int64
	}{
		{&models.ProjectView{}, func(p *DailyPoint) { p.Views++ }, &report.Window.Views},
		{&models.Like{}, func(p *DailyPoint) { p.Likes++ }, &report.Window.Likes},
		{&models.Save{}, func(p *DailyPoint) { p.Saves++ }, &report.Window.Saves},
	}
	for _, ser := range series {
		var stamps []time.Time
		if err := db.Model(ser.model).
			Where("project_id IN (?)", owned).
			Where("created_at >= ? AND created_at < ?", from, to).
			Pluck("created_at", &stamps).Error; err != nil {
			return nil, fmt.Errorf("load events: %w", err)
		}
		for _, ts := range stamps {
			idx := int(startOfDay(ts).Sub(from).Hours() / 24)
			if idx < 0 || idx >= len(report.Daily) {
				continue
			}
			ser.add(&report.Daily[idx])
			*ser.total++
		}
	}

	return report, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func emptySeries(from time.Time, days int) []DailyPoint {
	points := make([]DailyPoint, days)
	for i := range points {
		points[i].Date = from.AddDate(0, 0, i).Format(time.DateOnly)
	}
	return points
}

// topCategories groups projects by category, most viewed first. Uncategorized
// projects are left out.
func topCategories(projects []models.Project) []CategoryStats {
	byID := map[string]*CategoryStats{}
	for i := range projects {
		p := &projects[i]
		if p.Category == nil {
			continue
		}
		cs, ok := byID[p.Category.ID]
		if !ok {
			cs = &CategoryStats{Slug: p.Category.Slug, Name: p.Category.Name}
			byID[p.Category.ID] = cs
		}
		cs.Projects++
		cs.Views += int64(p.ViewCount)
	}

	out := make([]CategoryStats, 0, len(byID))
	for _, cs := range byID {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Name < out[j].Name
	})
	return out
}
