package hiring

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/creativehub/nexus/internal/availability"
	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/email"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/notifications"
	"github.com/creativehub/nexus/internal/realtime"
	"github.com/stretchr/testify/suite"
)

type recordingMailer struct {
	sent chan email.HireEmail
}

func (m *recordingMailer) SendHireEmail(_ context.Context, msg email.HireEmail) error {
	m.sent <- msg
	return nil
}

type HiringServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	publisher  *realtime.RecordingPublisher
	mailer     *recordingMailer
	notifier   *notifications.Service
	svc        *Service
	client     *models.Profile
	freelancer *models.Profile
}

func TestHiringServiceSuite(t *testing.T) {
	suite.Run(t, new(HiringServiceTestSuite))
}

func (s *HiringServiceTestSuite) SetupTest() {
	dbtest.Setup(s.T())
	s.ctx = context.Background()
	s.publisher = &realtime.RecordingPublisher{}
	s.mailer = &recordingMailer{sent: make(chan email.HireEmail, 10)}
	s.notifier = notifications.NewService(s.publisher)
	s.svc = NewService(s.notifier, availability.NewService(nil), s.mailer)
	s.client = dbtest.CreateProfile(s.T(), "studio_north")
	s.freelancer = dbtest.CreateProfile(s.T(), "mira")
}

func (s *HiringServiceTestSuite) create() *models.HireRequest {
	hr, err := s.svc.Create(s.ctx, s.client, CreateRequest{
		FreelancerUsername: "mira",
		Title:              "Album cover",
		Message:            "Looking for a moody cover",
		Budget:             800,
	})
	s.Require().NoError(err)
	return hr
}

func (s *HiringServiceTestSuite) awaitEmail() email.HireEmail {
	select {
	case msg := <-s.mailer.sent:
		return msg
	case <-time.After(2 * time.Second):
		s.FailNow("expected an email")
		return email.HireEmail{}
	}
}

func (s *HiringServiceTestSuite) unreadFor(profileID string) int64 {
	count, err := s.notifier.UnreadCount(s.ctx, profileID)
	s.Require().NoError(err)
	return count
}

func (s *HiringServiceTestSuite) TestCreateNotifiesFreelancer() {
	hr := s.create()

	s.Equal(models.HireStatusPending, hr.Status)
	s.Equal(s.client.ID, hr.ClientID)
	s.Equal(s.freelancer.ID, hr.FreelancerID)
	s.Nil(hr.ProjectID)

	s.EqualValues(1, s.unreadFor(s.freelancer.ID))
	s.Zero(s.unreadFor(s.client.ID))

	msg := s.awaitEmail()
	s.Equal("mira@example.com", msg.ToEmail)
	s.Equal("studio_north", msg.FromName)
	s.Equal(hr.ID, msg.RequestID)
}

func (s *HiringServiceTestSuite) TestCreateValidation() {
	cases := []struct {
		req   CreateRequest
		field string
	}{
		{CreateRequest{Title: "x"}, "freelancer_username"},
		{CreateRequest{FreelancerUsername: "mira", Title: "   "}, "title"},
		{CreateRequest{FreelancerUsername: "mira", Title: strings.Repeat("a", MaxTitleLength+1)}, "title"},
		{CreateRequest{FreelancerUsername: "mira", Title: "ok", Budget: -1}, "budget"},
	}
	for _, tc := range cases {
		_, err := s.svc.Create(s.ctx, s.client, tc.req)
		var fe *FieldError
		s.Require().ErrorAs(err, &fe)
		s.Equal(tc.field, fe.Field)
	}
}

func (s *HiringServiceTestSuite) TestCreateRejectsSelfHire() {
	_, err := s.svc.Create(s.ctx, s.client, CreateRequest{FreelancerUsername: "studio_north", Title: "Me"})
	s.ErrorIs(err, ErrSelfHire)
}

func (s *HiringServiceTestSuite) TestCreateRejectsUnknownFreelancer() {
	_, err := s.svc.Create(s.ctx, s.client, CreateRequest{FreelancerUsername: "nobody_here", Title: "Hi"})
	s.ErrorIs(err, ErrFreelancerNotFound)
}

func (s *HiringServiceTestSuite) TestCreateRejectsUnavailableFreelancer() {
	s.Require().NoError(database.DB.Model(&models.Profile{}).
		Where("id = ?", s.freelancer.ID).
		Update("availability_status", models.AvailabilityUnavailable).Error)

	_, err := s.svc.Create(s.ctx, s.client, CreateRequest{FreelancerUsername: "mira", Title: "Hi"})
	s.ErrorIs(err, ErrUnavailable)
}

func (s *HiringServiceTestSuite) TestCreateAllowsBusyFreelancer() {
	s.Require().NoError(database.DB.Model(&models.Profile{}).
		Where("id = ?", s.freelancer.ID).
		Update("availability_status", models.AvailabilityBusy).Error)

	_, err := s.svc.Create(s.ctx, s.client, CreateRequest{FreelancerUsername: "mira", Title: "Hi"})
	s.NoError(err)
}

func (s *HiringServiceTestSuite) TestCreateChecksProjectOwnership() {
	own := dbtest.CreateProject(s.T(), s.freelancer, "Portfolio")
	other := dbtest.CreateProject(s.T(), s.client, "Brief")

	hr, err := s.svc.Create(s.ctx, s.client, CreateRequest{FreelancerUsername: "mira", Title: "Like this", ProjectID: &own.ID})
	s.Require().NoError(err)
	s.Require().NotNil(hr.ProjectID)
	s.Equal(own.ID, *hr.ProjectID)

	_, err = s.svc.Create(s.ctx, s.client, CreateRequest{FreelancerUsername: "mira", Title: "Like this", ProjectID: &other.ID})
	var fe *FieldError
	s.Require().ErrorAs(err, &fe)
	s.Equal("project_id", fe.Field)
}

func (s *HiringServiceTestSuite) TestAcceptThenComplete() {
	hr := s.create()
	s.awaitEmail()

	accepted, err := s.svc.Transition(s.ctx, s.freelancer, hr.ID, ActionAccept)
	s.Require().NoError(err)
	s.Equal(models.HireStatusAccepted, accepted.Status)
	s.NotNil(accepted.RespondedAt)
	s.Equal("studio_north@example.com", s.awaitEmail().ToEmail)
	s.EqualValues(1, s.unreadFor(s.client.ID))

	completed, err := s.svc.Transition(s.ctx, s.client, hr.ID, ActionComplete)
	s.Require().NoError(err)
	s.Equal(models.HireStatusCompleted, completed.Status)
	s.NotNil(completed.CompletedAt)
	s.Equal("mira@example.com", s.awaitEmail().ToEmail)

	stored, err := s.svc.Get(s.ctx, s.freelancer.ID, hr.ID)
	s.Require().NoError(err)
	s.Equal(models.HireStatusCompleted, stored.Status)
}

func (s *HiringServiceTestSuite) TestWrongRoleIsForbidden() {
	hr := s.create()

	_, err := s.svc.Transition(s.ctx, s.client, hr.ID, ActionAccept)
	s.ErrorIs(err, ErrForbidden)

	_, err = s.svc.Transition(s.ctx, s.freelancer, hr.ID, ActionCancel)
	s.ErrorIs(err, ErrForbidden)
}

func (s *HiringServiceTestSuite) TestTerminalRequestRejectsTransitions() {
	hr := s.create()

	_, err := s.svc.Transition(s.ctx, s.freelancer, hr.ID, ActionDecline)
	s.Require().NoError(err)

	_, err = s.svc.Transition(s.ctx, s.freelancer, hr.ID, ActionAccept)
	s.ErrorIs(err, ErrInvalidTransition)

	_, err = s.svc.Transition(s.ctx, s.client, hr.ID, ActionCancel)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *HiringServiceTestSuite) TestOutsidersCannotSeeRequests() {
	hr := s.create()
	outsider := dbtest.CreateProfile(s.T(), "lurker")

	_, err := s.svc.Get(s.ctx, outsider.ID, hr.ID)
	s.ErrorIs(err, ErrNotFound)

	_, err = s.svc.Transition(s.ctx, outsider, hr.ID, ActionCancel)
	s.ErrorIs(err, ErrNotFound)
}

func (s *HiringServiceTestSuite) TestListByRoleAndStatus() {
	first := s.create()
	s.create()
	_, err := s.svc.Transition(s.ctx, s.freelancer, first.ID, ActionAccept)
	s.Require().NoError(err)

	all, total, err := s.svc.List(s.ctx, s.client.ID, ListFilter{Limit: 10})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(all, 2)

	sent, _, err := s.svc.List(s.ctx, s.client.ID, ListFilter{Role: RoleClient, Limit: 10})
	s.Require().NoError(err)
	s.Len(sent, 2)

	received, _, err := s.svc.List(s.ctx, s.client.ID, ListFilter{Role: RoleFreelancer, Limit: 10})
	s.Require().NoError(err)
	s.Empty(received)

	accepted, total, err := s.svc.List(s.ctx, s.freelancer.ID, ListFilter{Status: models.HireStatusAccepted, Limit: 10})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(accepted, 1)
	s.Equal(first.ID, accepted[0].ID)
	s.Require().NotNil(accepted[0].Client)
	s.Equal("studio_north", accepted[0].Client.Username)
}
