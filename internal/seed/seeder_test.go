package seed

import (
	"context"
	"testing"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedTestIsIdempotent(t *testing.T) {
	db := dbtest.Setup(t)
	ctx := context.Background()

	activity := stream.NewMockPublisher()
	s := NewSeeder(db)
	s.SetActivityPublisher(activity)

	require.NoError(t, s.SeedTest(ctx))
	require.NoError(t, s.SeedTest(ctx))

	var profiles, projects int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.Project{}).Count(&projects).Error)
	assert.EqualValues(t, len(testProfiles), profiles)
	assert.EqualValues(t, 2*len(testProfiles), projects)
	assert.Len(t, activity.GetCallsForMethod("PublishProject"), 2*len(testProfiles))

	var alice models.Profile
	require.NoError(t, db.First(&alice, "username = ?", "alice").Error)
	assert.Equal(t, 2, alice.ProjectCount)
	assert.Equal(t, "alice@example.com", alice.Email)
}

func TestRecountCounters(t *testing.T) {
	db := dbtest.Setup(t)
	ctx := context.Background()

	owner := dbtest.CreateProfile(t, "owner")
	fan := dbtest.CreateProfile(t, "fan")
	project := dbtest.CreateProject(t, owner, "Counted", func(p *models.Project) { p.LikeCount = 42 })
	dbtest.CreateProject(t, owner, "Draft", func(p *models.Project) { p.IsPublished = false })

	require.NoError(t, db.Create(&models.Like{ProfileID: fan.ID, ProjectID: project.ID}).Error)
	require.NoError(t, db.Create(&models.Save{ProfileID: fan.ID, ProjectID: project.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{ProjectID: project.ID, AuthorID: fan.ID, Content: "nice"}).Error)
	require.NoError(t, db.Create(&models.ProjectView{ProjectID: project.ID}).Error)
	require.NoError(t, db.Create(&models.ProjectView{ProjectID: project.ID, ViewerID: &fan.ID}).Error)

	require.NoError(t, NewSeeder(db).RecountCounters(ctx))

	var stored models.Project
	require.NoError(t, db.First(&stored, "id = ?", project.ID).Error)
	assert.Equal(t, 1, stored.LikeCount)
	assert.Equal(t, 1, stored.SaveCount)
	assert.Equal(t, 1, stored.CommentCount)
	assert.Equal(t, 2, stored.ViewCount)

	var storedOwner models.Profile
	require.NoError(t, db.First(&storedOwner, "id = ?", owner.ID).Error)
	assert.Equal(t, 1, storedOwner.ProjectCount)
}

func TestClean(t *testing.T) {
	db := dbtest.Setup(t)
	ctx := context.Background()

	s := NewSeeder(db)
	require.NoError(t, s.SeedTest(ctx))
	require.NoError(t, s.Clean(ctx))

	var profiles, categories int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Zero(t, profiles)
	assert.EqualValues(t, len(database.DefaultCategories), categories)
}

func TestVerifyFindsCounterDrift(t *testing.T) {
	db := dbtest.Setup(t)
	ctx := context.Background()

	owner := dbtest.CreateProfile(t, "owner")
	fan := dbtest.CreateProfile(t, "fan")
	project := dbtest.CreateProject(t, owner, "Drifted", func(p *models.Project) { p.LikeCount = 7 })
	require.NoError(t, db.Create(&models.Like{ProfileID: fan.ID, ProjectID: project.ID}).Error)

	s := NewSeeder(db)
	report, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, report.Profiles)
	assert.EqualValues(t, 1, report.Likes)
	assert.EqualValues(t, 1, report.Drift["projects.like_count"])
	assert.False(t, report.Consistent())

	require.NoError(t, s.RecountCounters(ctx))
	report, err = s.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), report.Drift)
}
