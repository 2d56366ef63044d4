package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/stream"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password every seeded profile signs in with
const DefaultPassword = "password123"

// Seeder handles database seeding operations
type Seeder struct {
	db       *gorm.DB
	activity stream.ActivityPublisher
	rng      *rand.Rand
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	seed := time.Now().UnixNano()
	// Seed only fails for invalid sources
	_ = gofakeit.Seed(seed)
	return &Seeder{db: db, rng: rand.New(rand.NewSource(seed))}
}

// SetActivityPublisher mirrors seeded projects into the activity feeds
func (s *Seeder) SetActivityPublisher(p stream.ActivityPublisher) {
	s.activity = p
}

// SeedDev fills a development database with a browsable portfolio network
func (s *Seeder) SeedDev(ctx context.Context) error {
	logger.Log.Info("Creating profiles...")
	profiles, err := s.seedProfiles(ctx, 60)
	if err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}

	logger.Log.Info("Creating projects...")
	projects, err := s.seedProjects(ctx, profiles, 300)
	if err != nil {
		return fmt.Errorf("failed to seed projects: %w", err)
	}

	logger.Log.Info("Creating engagement...")
	if err := s.seedEngagement(ctx, profiles, projects, 1500, 600, 800, 6000); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("Creating hire requests...")
	if err := s.seedHireRequests(ctx, profiles, 80); err != nil {
		return fmt.Errorf("failed to seed hire requests: %w", err)
	}

	if err := s.RecountCounters(ctx); err != nil {
		return err
	}
	s.publishActivities(ctx, projects)
	return nil
}

// testProfiles are fixed accounts for end-to-end tests
var testProfiles = []struct {
	username    string
	displayName string
	skills      []string
}{
	{"alice", "Alice Smith", []string{"photography", "lightroom"}},
	{"bob", "Bob Johnson", []string{"illustration", "procreate"}},
	{"charlie", "Charlie Brown", []string{"motion", "after effects"}},
	{"diana", "Diana Prince", []string{"ui", "figma"}},
	{"eve", "Eve Wilson", []string{"3d", "blender"}},
}

// SeedTest creates the fixed test accounts with a few projects each. Running
// it twice leaves the database unchanged.
func (s *Seeder) SeedTest(ctx context.Context) error {
	hash, err := hashPassword()
	if err != nil {
		return err
	}

	categories, err := s.categories(ctx)
	if err != nil {
		return err
	}

	var created []models.Project
	for i, spec := range testProfiles {
		var profile models.Profile
		err := s.db.WithContext(ctx).Where("username = ?", spec.username).First(&profile).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up %s: %w", spec.username, err)
		}

		profile = models.Profile{
			Email:        spec.username + "@example.com",
			Username:     spec.username,
			DisplayName:  spec.displayName,
			PasswordHash: hash,
			AvatarURL:    avatarURL(spec.username),
			Skills:       spec.skills,
			OpenTo:       []string{models.OpenToFreelance},
		}
		if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create test profile %s: %w", spec.username, err)
		}

		for j := 0; j < 2; j++ {
			category := categories[(i+j)%len(categories)]
			project := models.Project{
				OwnerID:     profile.ID,
				CategoryID:  &category.ID,
				Title:       fmt.Sprintf("%s study %d", category.Name, j+1),
				Description: fmt.Sprintf("Seeded %s work by %s", strings.ToLower(category.Name), spec.displayName),
				MediaURL:    mediaURL(spec.username, j, models.MediaTypeImage),
				MediaType:   models.MediaTypeImage,
				Tags:        []string{category.Slug},
				IsPublished: true,
			}
			if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
				return fmt.Errorf("failed to create test project: %w", err)
			}
			created = append(created, project)
		}
	}

	if err := s.RecountCounters(ctx); err != nil {
		return err
	}
	s.publishActivities(ctx, created)
	return nil
}

// Clean removes all seed data (use with caution!). Categories are kept.
func (s *Seeder) Clean(ctx context.Context) error {
	// Delete in reverse order of dependencies
	tables := []string{"notifications", "hire_requests", "project_views", "comments", "saves", "likes", "projects", "profiles"}
	for _, table := range tables {
		if err := s.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// RecountCounters rebuilds every denormalized counter from the rows
func (s *Seeder) RecountCounters(ctx context.Context) error {
	statements := []string{
		`UPDATE projects SET like_count = (SELECT COUNT(*) FROM likes WHERE likes.project_id = projects.id)`,
		`UPDATE projects SET save_count = (SELECT COUNT(*) FROM saves WHERE saves.project_id = projects.id)`,
		`UPDATE projects SET comment_count = (SELECT COUNT(*) FROM comments WHERE comments.project_id = projects.id AND comments.deleted_at IS NULL)`,
		`UPDATE projects SET view_count = (SELECT COUNT(*) FROM project_views WHERE project_views.project_id = projects.id)`,
		`UPDATE profiles SET project_count = (SELECT COUNT(*) FROM projects WHERE projects.owner_id = profiles.id AND projects.is_published = true AND projects.deleted_at IS NULL)`,
	}
	for _, stmt := range statements {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to recount counters: %w", err)
		}
	}
	return nil
}

var skillPool = []string{
	"branding", "typography", "figma", "blender", "cinema 4d", "after effects", "procreate",
	"lightroom", "photoshop", "illustrator", "houdini", "premiere", "webflow", "sketching",
}

// seedProfiles creates profiles with realistic data
func (s *Seeder) seedProfiles(ctx context.Context, count int) ([]models.Profile, error) {
	var existing int64
	s.db.WithContext(ctx).Model(&models.Profile{}).Where("email LIKE ?", "%@example.com").Count(&existing)
	if existing >= int64(count) {
		var profiles []models.Profile
		if err := s.db.WithContext(ctx).Find(&profiles).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing profiles, skipping creation", zap.Int("profiles", len(profiles)))
		return profiles, nil
	}

	hash, err := hashPassword()
	if err != nil {
		return nil, err
	}

	statuses := []models.AvailabilityStatus{
		models.AvailabilityAvailable, models.AvailabilityAvailable, models.AvailabilityBusy, models.AvailabilityUnavailable,
	}
	openTo := []string{models.OpenToFreelance, models.OpenToFullTime, models.OpenToCollaboration}

	profiles := make([]models.Profile, 0, count)
	taken := make(map[string]bool, count)
	for len(profiles) < count {
		username := models.NormalizeUsername(gofakeit.Username())
		if !models.IsValidUsername(username) || taken[username] {
			continue
		}
		var clash int64
		s.db.WithContext(ctx).Model(&models.Profile{}).Where("username = ?", username).Count(&clash)
		if clash > 0 {
			continue
		}
		taken[username] = true

		profile := models.Profile{
			Email:              username + "@example.com",
			Username:           username,
			DisplayName:        gofakeit.Name(),
			Bio:                gofakeit.HipsterSentence(),
			Location:           fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
			AvatarURL:          avatarURL(username),
			PasswordHash:       hash,
			Skills:             s.pick(skillPool, 1+s.rng.Intn(4)),
			AvailabilityStatus: statuses[s.rng.Intn(len(statuses))],
			HourlyRate:         float64(25 + 5*s.rng.Intn(30)),
			OpenTo:             s.pick(openTo, 1+s.rng.Intn(len(openTo))),
		}
		if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("failed to create profile %s: %w", username, err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// seedProjects spreads projects unevenly so a few profiles dominate, the way
// real portfolio sites look
func (s *Seeder) seedProjects(ctx context.Context, owners []models.Profile, count int) ([]models.Project, error) {
	categories, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0, count)
	for i := 0; i < count; i++ {
		owner := owners[s.skewedIndex(len(owners))]
		category := categories[s.rng.Intn(len(categories))]

		mediaType := models.MediaTypeImage
		if category.Slug == "motion" || category.Slug == "video" || s.rng.Float64() < 0.1 {
			mediaType = models.MediaTypeVideo
		}
		createdAt := gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())

		project := models.Project{
			OwnerID:     owner.ID,
			CategoryID:  &category.ID,
			Title:       titleCase(gofakeit.Word() + " " + gofakeit.Word()),
			Description: gofakeit.HipsterSentence(),
			MediaURL:    mediaURL(owner.Username, i, mediaType),
			MediaType:   mediaType,
			Tags:        append([]string{category.Slug}, s.pick(skillPool, s.rng.Intn(3))...),
			IsFeatured:  s.rng.Float64() < 0.05,
			IsPublished: s.rng.Float64() < 0.92,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}
		if mediaType == models.MediaTypeVideo {
			project.ThumbnailURL = strings.TrimSuffix(project.MediaURL, ".mp4") + ".jpg"
		}
		if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
			return nil, fmt.Errorf("failed to create project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// seedEngagement inserts likes, saves, comments and views on published
// projects. Duplicate pairs are skipped by the unique indexes.
func (s *Seeder) seedEngagement(ctx context.Context, profiles []models.Profile, projects []models.Project, likes, saves, comments, views int) error {
	published := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.IsPublished {
			published = append(published, p)
		}
	}
	if len(published) == 0 {
		return nil
	}

	db := s.db.WithContext(ctx)
	for i := 0; i < likes; i++ {
		p, actor := s.pair(profiles, published)
		like := models.Like{ProfileID: actor.ID, ProjectID: p.ID, CreatedAt: s.after(p.CreatedAt)}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
	}
	for i := 0; i < saves; i++ {
		p, actor := s.pair(profiles, published)
		save := models.Save{ProfileID: actor.ID, ProjectID: p.ID, CreatedAt: s.after(p.CreatedAt)}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&save).Error; err != nil {
			return fmt.Errorf("failed to create save: %w", err)
		}
	}
	for i := 0; i < comments; i++ {
		p, actor := s.pair(profiles, published)
		comment := models.Comment{ProjectID: p.ID, AuthorID: actor.ID, Content: gofakeit.HipsterSentence(), CreatedAt: s.after(p.CreatedAt)}
		if err := db.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}

	batch := make([]models.ProjectView, 0, views)
	for i := 0; i < views; i++ {
		p := published[s.skewedIndex(len(published))]
		view := models.ProjectView{ProjectID: p.ID, CreatedAt: s.after(p.CreatedAt)}
		if s.rng.Float64() < 0.6 {
			viewer := profiles[s.rng.Intn(len(profiles))].ID
			view.ViewerID = &viewer
		}
		batch = append(batch, view)
	}
	if err := db.CreateInBatches(batch, 500).Error; err != nil {
		return fmt.Errorf("failed to create views: %w", err)
	}
	return nil
}

// seedHireRequests creates requests in every lifecycle state
func (s *Seeder) seedHireRequests(ctx context.Context, profiles []models.Profile, count int) error {
	if len(profiles) < 2 {
		return nil
	}
	statuses := []models.HireStatus{
		models.HireStatusPending, models.HireStatusPending, models.HireStatusAccepted,
		models.HireStatusDeclined, models.HireStatusCompleted, models.HireStatusCancelled,
	}

	for i := 0; i < count; i++ {
		client := profiles[s.rng.Intn(len(profiles))]
		freelancer := profiles[s.skewedIndex(len(profiles))]
		if client.ID == freelancer.ID {
			continue
		}

		createdAt := gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now())
		hr := models.HireRequest{
			ClientID:     client.ID,
			FreelancerID: freelancer.ID,
			Title:        titleCase(gofakeit.Word()) + " commission",
			Message:      gofakeit.HipsterSentence(),
			Budget:       float64(100 * (1 + s.rng.Intn(50))),
			Status:       statuses[s.rng.Intn(len(statuses))],
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}
		if hr.Status != models.HireStatusPending && hr.Status != models.HireStatusCancelled {
			responded := s.after(createdAt)
			hr.RespondedAt = &responded
			if hr.Status == models.HireStatusCompleted {
				completed := s.after(responded)
				hr.CompletedAt = &completed
			}
		}
		if err := s.db.WithContext(ctx).Create(&hr).Error; err != nil {
			return fmt.Errorf("failed to create hire request: %w", err)
		}
	}
	return nil
}

func (s *Seeder) publishActivities(ctx context.Context, projects []models.Project) {
	if s.activity == nil {
		logger.Log.Info("Stream not configured - skipping activity fan-out")
		return
	}
	for _, p := range projects {
		if !p.IsPublished {
			continue
		}
		err := s.activity.PublishProject(ctx, &stream.Activity{
			Actor:        p.OwnerID,
			ProjectID:    p.ID,
			Title:        p.Title,
			MediaURL:     p.MediaURL,
			MediaType:    string(p.MediaType),
			ThumbnailURL: p.ThumbnailURL,
			Tags:         p.Tags,
		})
		if err != nil {
			logger.Log.Warn("Failed to publish seeded activity", logger.WithProjectID(p.ID), zap.Error(err))
		}
	}
}

func (s *Seeder) categories(ctx context.Context) ([]models.Category, error) {
	if err := database.EnsureCategories(s.db.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("failed to ensure categories: %w", err)
	}
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, errors.New("no categories available")
	}
	return categories, nil
}

// pair picks a project and a profile that does not own it
func (s *Seeder) pair(profiles []models.Profile, projects []models.Project) (models.Project, models.Profile) {
	p := projects[s.skewedIndex(len(projects))]
	for {
		actor := profiles[s.rng.Intn(len(profiles))]
		if actor.ID != p.OwnerID || len(profiles) == 1 {
			return p, actor
		}
	}
}

// skewedIndex favors low indexes so popularity follows a long tail
func (s *Seeder) skewedIndex(n int) int {
	f := s.rng.Float64()
	return int(f * f * float64(n))
}

func (s *Seeder) pick(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}

func (s *Seeder) after(t time.Time) time.Time {
	span := time.Since(t)
	if span <= 0 {
		return t
	}
	return t.Add(time.Duration(s.rng.Int63n(int64(span))))
}

func hashPassword() (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func avatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/shapes/png?seed=%s", username)
}

func mediaURL(username string, n int, mediaType models.MediaType) string {
	ext := "jpg"
	if mediaType == models.MediaTypeVideo {
		ext = "mp4"
	}
	return fmt.Sprintf("https://picsum.photos/seed/%s-%d/1200/900.%s", username, n, ext)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
