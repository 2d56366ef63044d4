package handlers

import (
	"net/http"
	"testing"

	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/models"
	"github.com/stretchr/testify/suite"
)

type AnalyticsHandlersTestSuite struct {
	handlerSuite
	owner *models.Profile
}

func TestAnalyticsHandlersSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsHandlersTestSuite))
}

func (s *AnalyticsHandlersTestSuite) SetupTest() {
	s.handlerSuite.SetupTest()
	s.owner = dbtest.CreateProfile(s.T(), "filmmaker")
}

func (s *AnalyticsHandlersTestSuite) TestReportCountsActivity() {
	fan := dbtest.CreateProfile(s.T(), "viewer")
	project := dbtest.CreateProject(s.T(), s.owner, "Short film")

	s.Require().Equal(http.StatusOK, s.request(http.MethodGet, "/api/v1/projects/"+project.ID, fan.ID, nil).Code)
	s.Require().Equal(http.StatusOK, s.request(http.MethodPost, "/api/v1/projects/"+project.ID+"/like", fan.ID, nil).Code)

	w := s.request(http.MethodGet, "/api/v1/me/analytics?days=7", s.owner.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Analytics struct {
			Days   int `json:"days"`
			Totals struct {
				Projects int `json:"projects"`
				Views    int `json:"views"`
				Likes    int `json:"likes"`
			} `json:"totals"`
			Daily    []map[string]interface{} `json:"daily"`
			Projects []map[string]interface{} `json:"projects"`
		} `json:"analytics"`
	}
	s.decode(w, &body)
	s.Equal(7, body.Analytics.Days)
	s.Equal(1, body.Analytics.Totals.Projects)
	s.Equal(1, body.Analytics.Totals.Views)
	s.Equal(1, body.Analytics.Totals.Likes)
	s.Len(body.Analytics.Daily, 7)
	s.Len(body.Analytics.Projects, 1)
}

func (s *AnalyticsHandlersTestSuite) TestInvalidDays() {
	for _, days := range []string{"0", "-3", "366", "abc", "7.5", "%20"} {
		w := s.request(http.MethodGet, "/api/v1/me/analytics?days="+days, s.owner.ID, nil)
		s.Equal(http.StatusBadRequest, w.Code, days)
		s.Contains(w.Body.String(), "days must be between 1 and 365", days)
	}
}

func (s *AnalyticsHandlersTestSuite) TestDaysDefaultsToThirty() {
	w := s.request(http.MethodGet, "/api/v1/me/analytics", s.owner.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Analytics struct {
			Days int `json:"days"`
		} `json:"analytics"`
	}
	s.decode(w, &body)
	s.Equal(30, body.Analytics.Days)
}
