package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/stretchr/testify/suite"
)

type EngagementHandlersTestSuite struct {
	handlerSuite
	owner   *models.Profile
	fan     *models.Profile
	project *models.Project
}

func TestEngagementHandlersSuite(t *testing.T) {
	suite.Run(t, new(EngagementHandlersTestSuite))
}

func (s *EngagementHandlersTestSuite) SetupTest() {
	s.handlerSuite.SetupTest()
	s.owner = dbtest.CreateProfile(s.T(), "painter")
	s.fan = dbtest.CreateProfile(s.T(), "fan")
	s.project = dbtest.CreateProject(s.T(), s.owner, "Harbor")
}

type likeResult struct {
	ProjectID string `json:"project_id"`
	IsLiked   bool   `json:"is_liked"`
	LikeCount int    `json:"like_count"`
	Changed   bool   `json:"changed"`
}

func (s *EngagementHandlersTestSuite) like(method, userID string) likeResult {
	w := s.request(method, "/api/v1/projects/"+s.project.ID+"/like", userID, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var res likeResult
	s.decode(w, &res)
	return res
}

func (s *EngagementHandlersTestSuite) TestLikeIsIdempotent() {
	first := s.like(http.MethodPost, s.fan.ID)
	s.True(first.IsLiked)
	s.True(first.Changed)
	s.Equal(1, first.LikeCount)

	second := s.like(http.MethodPost, s.fan.ID)
	s.False(second.Changed)
	s.Equal(1, second.LikeCount)

	s.Equal(1, s.reloadProject(s.project.ID).LikeCount)
	s.Len(s.publisher.Personal(s.owner.ID, realtime.MessageTypeNotification), 1)

	var count int64
	s.Require().NoError(database.DB.Model(&models.Notification{}).Where("recipient_id = ?", s.owner.ID).Count(&count).Error)
	s.EqualValues(1, count)
}

func (s *EngagementHandlersTestSuite) TestUnlike() {
	s.like(http.MethodPost, s.fan.ID)

	res := s.like(http.MethodDelete, s.fan.ID)
	s.False(res.IsLiked)
	s.True(res.Changed)
	s.Zero(res.LikeCount)

	again := s.like(http.MethodDelete, s.fan.ID)
	s.False(again.Changed)
	s.Zero(again.LikeCount)
	s.Zero(s.reloadProject(s.project.ID).LikeCount)
}

func (s *EngagementHandlersTestSuite) TestOwnLikeDoesNotNotify() {
	res := s.like(http.MethodPost, s.owner.ID)
	s.True(res.Changed)
	s.Empty(s.publisher.Personal(s.owner.ID, realtime.MessageTypeNotification))
}

func (s *EngagementHandlersTestSuite) TestLikePushesCounterUpdate() {
	s.like(http.MethodPost, s.fan.ID)

	changes := s.publisher.Changes(realtime.ChannelProjects)
	s.Require().Len(changes, 1)
	s.Equal(realtime.EventUpdate, changes[0].Event)
	row, ok := changes[0].New.(ProjectResponse)
	s.Require().True(ok)
	s.Equal(1, row.LikeCount)

	// a repeated like changes nothing and emits nothing
	s.like(http.MethodPost, s.fan.ID)
	s.Len(s.publisher.Changes(realtime.ChannelProjects), 1)
}

func (s *EngagementHandlersTestSuite) TestLikeFlagsInProjectResponse() {
	s.like(http.MethodPost, s.fan.ID)

	w := s.request(http.MethodGet, "/api/v1/projects/"+s.project.ID, s.fan.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var body projectEnvelope
	s.decode(w, &body)
	s.Require().NotNil(body.Project.IsLiked)
	s.True(*body.Project.IsLiked)
	s.Require().NotNil(body.Project.IsSaved)
	s.False(*body.Project.IsSaved)
}

func (s *EngagementHandlersTestSuite) TestLikeRequiresVisibleProject() {
	draft := dbtest.CreateProject(s.T(), s.owner, "Hidden", func(p *models.Project) { p.IsPublished = false })
	w := s.request(http.MethodPost, "/api/v1/projects/"+draft.ID+"/like", s.fan.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, "/api/v1/projects/"+s.project.ID+"/like", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *EngagementHandlersTestSuite) TestSaveAndSavedList() {
	older := dbtest.CreateProject(s.T(), s.owner, "Older")

	w := s.request(http.MethodPost, "/api/v1/projects/"+older.ID+"/save", s.fan.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var res struct {
		IsSaved   bool `json:"is_saved"`
		SaveCount int  `json:"save_count"`
	}
	s.decode(w, &res)
	s.True(res.IsSaved)
	s.Equal(1, res.SaveCount)

	// make the ordering deterministic regardless of clock resolution
	s.Require().NoError(database.DB.Model(&models.Save{}).Where("project_id = ?", older.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	s.Require().Equal(http.StatusOK, s.request(http.MethodPost, "/api/v1/projects/"+s.project.ID+"/save", s.fan.ID, nil).Code)

	w = s.request(http.MethodGet, "/api/v1/me/saved", s.fan.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Projects []ProjectResponse `json:"projects"`
		Meta     struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	s.decode(w, &list)
	s.Equal(2, list.Meta.Total)
	s.Require().Len(list.Projects, 2)
	s.Equal(s.project.ID, list.Projects[0].ID)
	s.Equal(older.ID, list.Projects[1].ID)
	s.Require().NotNil(list.Projects[0].IsSaved)
	s.True(*list.Projects[0].IsSaved)

	// unpublished work drops out of someone else's saved list
	s.Require().NoError(database.DB.Model(&models.Project{}).Where("id = ?", older.ID).
		UpdateColumn("is_published", false).Error)
	w = s.request(http.MethodGet, "/api/v1/me/saved", s.fan.ID, nil)
	s.decode(w, &list)
	s.Equal(1, list.Meta.Total)

	s.Len(s.publisher.Personal(s.owner.ID, realtime.MessageTypeNotification), 2)
}

func (s *EngagementHandlersTestSuite) TestUnsave() {
	s.request(http.MethodPost, "/api/v1/projects/"+s.project.ID+"/save", s.fan.ID, nil)
	w := s.request(http.MethodDelete, "/api/v1/projects/"+s.project.ID+"/save", s.fan.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Zero(s.reloadProject(s.project.ID).SaveCount)

	w = s.request(http.MethodGet, "/api/v1/me/saved", s.fan.ID, nil)
	var list struct {
		Projects []ProjectResponse `json:"projects"`
	}
	s.decode(w, &list)
	s.Empty(list.Projects)
}
