package seed

import (
	"context"
	"fmt"

	"github.com/creativehub/nexus/internal/models"
)

// Report summarizes what is in the database and which stored counters have
// drifted from the rows they count
type Report struct {
	Profiles      int64
	Projects      int64
	Published     int64
	Comments      int64
	Likes         int64
	Saves         int64
	Views         int64
	HireRequests  int64
	Notifications int64

	// Drift maps a counter name to the number of rows where it is wrong
	Drift map[string]int64
}

// Consistent reports whether every counter matches
func (r *Report) Consistent() bool {
	for _, n := range r.Drift {
		if n > 0 {
			return false
		}
	}
	return true
}

var driftChecks = []struct {
	name  string
	query string
}{
	{"projects.like_count", `SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL AND like_count <> (SELECT COUNT(*) FROM likes WHERE likes.project_id = projects.id)`},
	{"projects.save_count", `SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL AND save_count <> (SELECT COUNT(*) FROM saves WHERE saves.project_id = projects.id)`},
	{"projects.comment_count", `SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL AND comment_count <> (SELECT COUNT(*) FROM comments WHERE comments.project_id = projects.id AND comments.deleted_at IS NULL)`},
	{"projects.view_count", `SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL AND view_count <> (SELECT COUNT(*) FROM project_views WHERE project_views.project_id = projects.id)`},
	{"profiles.project_count", `SELECT COUNT(*) FROM profiles WHERE project_count <> (SELECT COUNT(*) FROM projects WHERE projects.owner_id = profiles.id AND projects.is_published = true AND projects.deleted_at IS NULL)`},
}

// Verify counts seeded records and checks the denormalized counters that
// RecountCounters maintains
func (s *Seeder) Verify(ctx context.Context) (*Report, error) {
	db := s.db.WithContext(ctx)
	r := &Report{Drift: make(map[string]int64, len(driftChecks))}

	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.Profile{}, &r.Profiles},
		{&models.Project{}, &r.Projects},
		{&models.Comment{}, &r.Comments},
		{&models.Like{}, &r.Likes},
		{&models.Save{}, &r.Saves},
		{&models.ProjectView{}, &r.Views},
		{&models.HireRequest{}, &r.HireRequests},
		{&models.Notification{}, &r.Notifications},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count %T: %w", c.model, err)
		}
	}
	if err := db.Model(&models.Project{}).Where("is_published = ?", true).Count(&r.Published).Error; err != nil {
		return nil, fmt.Errorf("failed to count published projects: %w", err)
	}

	for _, check := range driftChecks {
		var n int64
		if err := db.Raw(check.query).Scan(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", check.name, err)
		}
		r.Drift[check.name] = n
	}
	return r, nil
}
