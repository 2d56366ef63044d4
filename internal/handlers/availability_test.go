package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type AvailabilityHandlersTestSuite struct {
	handlerSuite
	profile *models.Profile
}

func TestAvailabilityHandlersSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityHandlersTestSuite))
}

func (s *AvailabilityHandlersTestSuite) SetupTest() {
	s.handlerSuite.SetupTest()
	s.profile = dbtest.CreateProfile(s.T(), "illustrator")
}

type availabilityEnvelope struct {
	Availability models.Availability `json:"availability"`
}

func (s *AvailabilityHandlersTestSuite) TestDefaults() {
	w := s.request(http.MethodGet, "/api/v1/profiles/illustrator/availability", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var body availabilityEnvelope
	s.decode(w, &body)
	s.Equal(models.AvailabilityAvailable, body.Availability.Status)
	s.NotNil(body.Availability.OpenTo)

	s.Equal(http.StatusNotFound, s.request(http.MethodGet, "/api/v1/profiles/nobody/availability", "", nil).Code)
}

func (s *AvailabilityHandlersTestSuite) TestUpdate() {
	w := s.request(http.MethodPut, "/api/v1/me/availability", s.profile.ID, gin.H{
		"status":      "busy",
		"hourly_rate": 85.5,
		"open_to":     []string{"Freelance", "collaboration", "freelance"},
		"note":        "  Back in May  ",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var body availabilityEnvelope
	s.decode(w, &body)
	s.Equal(models.AvailabilityBusy, body.Availability.Status)
	s.Equal(85.5, body.Availability.HourlyRate)
	s.Equal([]string{"freelance", "collaboration"}, body.Availability.OpenTo)
	s.Equal("Back in May", body.Availability.Note)
	s.Require().NotNil(body.Availability.UpdatedAt)
	s.WithinDuration(time.Now(), *body.Availability.UpdatedAt, time.Minute)

	w = s.request(http.MethodGet, "/api/v1/me/availability", s.profile.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &body)
	s.Equal(models.AvailabilityBusy, body.Availability.Status)

	var stored models.Profile
	s.Require().NoError(database.DB.First(&stored, "id = ?", s.profile.ID).Error)
	s.Equal(models.AvailabilityBusy, stored.AvailabilityStatus)
}

func (s *AvailabilityHandlersTestSuite) TestUpdateValidation() {
	cases := map[string]gin.H{
		"status":      {"status": "sleeping"},
		"hourly_rate": {"status": "available", "hourly_rate": -1},
		"open_to":     {"status": "available", "open_to": []string{"internship"}},
	}
	for field, req := range cases {
		w := s.request(http.MethodPut, "/api/v1/me/availability", s.profile.ID, req)
		s.Equal(http.StatusUnprocessableEntity, w.Code, field)

		var body struct {
			Field string `json:"field"`
		}
		s.decode(w, &body)
		s.Equal(field, body.Field)
	}

	s.Equal(http.StatusUnauthorized, s.request(http.MethodPut, "/api/v1/me/availability", "", gin.H{"status": "busy"}).Code)
}
