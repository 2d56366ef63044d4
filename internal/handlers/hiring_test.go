package handlers

import (
	"net/http"
	"testing"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type HiringHandlersTestSuite struct {
	handlerSuite
	client     *models.Profile
	freelancer *models.Profile
	outsider   *models.Profile
}

func TestHiringHandlersSuite(t *testing.T) {
	suite.Run(t, new(HiringHandlersTestSuite))
}

func (s *HiringHandlersTestSuite) SetupTest() {
	s.handlerSuite.SetupTest()
	s.client = dbtest.CreateProfile(s.T(), "studio")
	s.freelancer = dbtest.CreateProfile(s.T(), "animator")
	s.outsider = dbtest.CreateProfile(s.T(), "lurker")
}

type hireEnvelope struct {
	HireRequest HireRequestResponse `json:"hire_request"`
}

func (s *HiringHandlersTestSuite) create() HireRequestResponse {
	w := s.request(http.MethodPost, "/api/v1/hire-requests", s.client.ID, gin.H{
		"freelancer_username": "Animator",
		"title":               "Title sequence",
		"message":             "Ten seconds of kinetic type",
		"budget":              1500,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var body hireEnvelope
	s.decode(w, &body)
	return body.HireRequest
}

func (s *HiringHandlersTestSuite) transition(id, action, userID string) *hireEnvelope {
	w := s.request(http.MethodPost, "/api/v1/hire-requests/"+id+"/"+action, userID, nil)
	if w.Code != http.StatusOK {
		return nil
	}
	var body hireEnvelope
	s.decode(w, &body)
	return &body
}

func (s *HiringHandlersTestSuite) TestCreate() {
	hr := s.create()
	s.Equal(models.HireStatusPending, hr.Status)
	s.Require().NotNil(hr.Client)
	s.Equal("studio", hr.Client.Username)
	s.Require().NotNil(hr.Freelancer)
	s.Equal("animator", hr.Freelancer.Username)
	s.Len(s.publisher.Personal(s.freelancer.ID, realtime.MessageTypeNotification), 1)
}

func (s *HiringHandlersTestSuite) TestCreateErrors() {
	w := s.request(http.MethodPost, "/api/v1/hire-requests", s.client.ID, gin.H{
		"freelancer_username": "studio", "title": "Me", "message": "Hire myself",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.request(http.MethodPost, "/api/v1/hire-requests", s.client.ID, gin.H{
		"freelancer_username": "ghost", "title": "Hi", "message": "Anyone?",
	})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, "/api/v1/hire-requests", s.client.ID, gin.H{
		"freelancer_username": "animator", "title": "", "message": "Missing title",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	s.Require().NoError(database.DB.Model(s.freelancer).Update("availability_status", models.AvailabilityUnavailable).Error)
	w = s.request(http.MethodPost, "/api/v1/hire-requests", s.client.ID, gin.H{
		"freelancer_username": "animator", "title": "Hi", "message": "Free?",
	})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("CONFLICT", s.errorCode(w))
}

func (s *HiringHandlersTestSuite) TestLifecycle() {
	hr := s.create()

	accepted := s.transition(hr.ID, "accept", s.freelancer.ID)
	s.Require().NotNil(accepted)
	s.Equal(models.HireStatusAccepted, accepted.HireRequest.Status)
	s.NotNil(accepted.HireRequest.RespondedAt)
	s.Len(s.publisher.Personal(s.client.ID, realtime.MessageTypeNotification), 1)

	completed := s.transition(hr.ID, "complete", s.client.ID)
	s.Require().NotNil(completed)
	s.Equal(models.HireStatusCompleted, completed.HireRequest.Status)
	s.NotNil(completed.HireRequest.CompletedAt)
}

func (s *HiringHandlersTestSuite) TestTransitionErrors() {
	hr := s.create()

	w := s.request(http.MethodPost, "/api/v1/hire-requests/"+hr.ID+"/accept", s.client.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("FORBIDDEN", s.errorCode(w))

	w = s.request(http.MethodPost, "/api/v1/hire-requests/"+hr.ID+"/complete", s.client.ID, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_TRANSITION", s.errorCode(w))

	w = s.request(http.MethodPost, "/api/v1/hire-requests/"+hr.ID+"/archive", s.client.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, "/api/v1/hire-requests/"+hr.ID+"/accept", s.outsider.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)

	s.Require().NotNil(s.transition(hr.ID, "decline", s.freelancer.ID))
	w = s.request(http.MethodPost, "/api/v1/hire-requests/"+hr.ID+"/accept", s.freelancer.ID, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_TRANSITION", s.errorCode(w))
}

func (s *HiringHandlersTestSuite) TestListAndGet() {
	hr := s.create()

	w := s.request(http.MethodGet, "/api/v1/hire-requests?role=freelancer", s.freelancer.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		HireRequests []HireRequestResponse `json:"hire_requests"`
		Meta         struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	s.decode(w, &list)
	s.Equal(1, list.Meta.Total)
	s.Require().Len(list.HireRequests, 1)
	s.Equal(hr.ID, list.HireRequests[0].ID)

	w = s.request(http.MethodGet, "/api/v1/hire-requests?role=freelancer", s.client.ID, nil)
	s.decode(w, &list)
	s.Zero(list.Meta.Total)

	s.Equal(http.StatusBadRequest, s.request(http.MethodGet, "/api/v1/hire-requests?role=boss", s.client.ID, nil).Code)
	s.Equal(http.StatusBadRequest, s.request(http.MethodGet, "/api/v1/hire-requests?status=lost", s.client.ID, nil).Code)

	s.Equal(http.StatusOK, s.request(http.MethodGet, "/api/v1/hire-requests/"+hr.ID, s.client.ID, nil).Code)
	s.Equal(http.StatusNotFound, s.request(http.MethodGet, "/api/v1/hire-requests/"+hr.ID, s.outsider.ID, nil).Code)
}
