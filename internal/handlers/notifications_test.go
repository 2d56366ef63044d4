package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type NotificationHandlersTestSuite struct {
	handlerSuite
	owner *models.Profile
	fans  []*models.Profile
}

func TestNotificationHandlersSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlersTestSuite))
}

func (s *NotificationHandlersTestSuite) SetupTest() {
	s.handlerSuite.SetupTest()
	s.owner = dbtest.CreateProfile(s.T(), "muralist")
	s.fans = []*models.Profile{
		dbtest.CreateProfile(s.T(), "fan1"),
		dbtest.CreateProfile(s.T(), "fan2"),
		dbtest.CreateProfile(s.T(), "fan3"),
	}
	project := dbtest.CreateProject(s.T(), s.owner, "Wall")
	for _, fan := range s.fans {
		w := s.request(http.MethodPost, "/api/v1/projects/"+project.ID+"/like", fan.ID, nil)
		s.Require().Equal(http.StatusOK, w.Code)
	}
}

type notificationList struct {
	Notifications []struct {
		ID     string                  `json:"id"`
		Type   models.NotificationType `json:"type"`
		IsRead bool                    `json:"is_read"`
		Actor  *models.ProfileSummary  `json:"actor"`
	} `json:"notifications"`
	Meta struct {
		Total       int   `json:"total"`
		UnreadCount int64 `json:"unread_count"`
	} `json:"meta"`
}

func (s *NotificationHandlersTestSuite) list(query string) notificationList {
	w := s.request(http.MethodGet, "/api/v1/notifications"+query, s.owner.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var body notificationList
	s.decode(w, &body)
	return body
}

func (s *NotificationHandlersTestSuite) TestListNewestFirst() {
	body := s.list("")
	s.Equal(3, body.Meta.Total)
	s.EqualValues(3, body.Meta.UnreadCount)
	s.Require().Len(body.Notifications, 3)
	s.Equal(models.NotificationLike, body.Notifications[0].Type)
	s.Require().NotNil(body.Notifications[0].Actor)

	// fans never receive anything
	w := s.request(http.MethodGet, "/api/v1/notifications/unread-count", s.fans[0].ID, nil)
	var count struct {
		UnreadCount int64 `json:"unread_count"`
	}
	s.decode(w, &count)
	s.Zero(count.UnreadCount)
}

func (s *NotificationHandlersTestSuite) TestMarkRead() {
	body := s.list("")
	first := body.Notifications[0].ID

	w := s.request(http.MethodPost, "/api/v1/notifications/read", s.owner.ID, gin.H{"ids": []string{first}})
	s.Require().Equal(http.StatusOK, w.Code)
	var res struct {
		Updated     int64 `json:"updated"`
		UnreadCount int64 `json:"unread_count"`
	}
	s.decode(w, &res)
	s.EqualValues(1, res.Updated)
	s.EqualValues(2, res.UnreadCount)

	s.Len(s.list("?unread=true").Notifications, 2)

	// someone else's ids are ignored
	w = s.request(http.MethodPost, "/api/v1/notifications/read", s.fans[0].ID, gin.H{"ids": []string{body.Notifications[1].ID}})
	s.decode(w, &res)
	s.Zero(res.Updated)

	w = s.request(http.MethodPost, "/api/v1/notifications/read", s.owner.ID, gin.H{"all": true})
	s.decode(w, &res)
	s.EqualValues(2, res.Updated)
	s.Zero(res.UnreadCount)

	w = s.request(http.MethodPost, "/api/v1/notifications/read", s.owner.ID, gin.H{})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *NotificationHandlersTestSuite) TestDelete() {
	id := s.list("").Notifications[0].ID

	s.Equal(http.StatusNotFound, s.request(http.MethodDelete, "/api/v1/notifications/"+id, s.fans[0].ID, nil).Code)
	s.Equal(http.StatusOK, s.request(http.MethodDelete, "/api/v1/notifications/"+id, s.owner.ID, nil).Code)
	s.Equal(http.StatusNotFound, s.request(http.MethodDelete, "/api/v1/notifications/"+id, s.owner.ID, nil).Code)

	count, err := s.handlers.notifications.UnreadCount(context.Background(), s.owner.ID)
	s.Require().NoError(err)
	s.EqualValues(2, count)
}
