package service

import (
	"fmt"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/client"
	"github.com/creativehub/nexus/pkg/credentials"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/creativehub/nexus/pkg/output"
)

// AuthService manages the stored session
type AuthService struct{}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login signs in with a username or email and stores the session
func (s *AuthService) Login(login, password string) error {
	logger.Debug("Logging in", "login", login)

	resp, err := api.Login(login, password)
	if err != nil {
		return err
	}
	if err := s.saveSession(resp); err != nil {
		return err
	}
	output.PrintSuccess("Logged in as @%s", resp.Profile.Username)
	return nil
}

// Register creates an account and signs in
func (s *AuthService) Register(req api.RegisterRequest) error {
	logger.Debug("Registering", "username", req.Username)

	resp, err := api.Register(req)
	if err != nil {
		return err
	}
	if err := s.saveSession(resp); err != nil {
		return err
	}
	output.PrintSuccess("Welcome, @%s! Your account is ready.", resp.Profile.Username)
	return nil
}

// Logout forgets the stored session
func (s *AuthService) Logout() error {
	if err := credentials.Delete(); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	client.ClearAuthToken()
	output.PrintSuccess("Logged out")
	return nil
}

// WhoAmI shows the signed-in profile
func (s *AuthService) WhoAmI() error {
	if err := requireLogin(); err != nil {
		return err
	}
	resp, err := api.GetMe()
	if err != nil {
		return err
	}
	return printProfile(resp)
}

func (s *AuthService) saveSession(resp *api.AuthResponse) error {
	creds := &credentials.Credentials{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		ProfileID: resp.Profile.ID,
		Username:  resp.Profile.Username,
		Email:     resp.Profile.Email,
	}
	if err := credentials.Save(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	client.SetAuthToken(resp.Token)
	return nil
}
