package api

import (
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// Register creates an account
func Register(req RegisterRequest) (*AuthResponse, error) {
	logger.Debug("Registering", "username", req.Username)

	var resp AuthResponse
	if err := call(resty.MethodPost, "/auth/register", req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges an email or username and password for a session token
func Login(login, password string) (*AuthResponse, error) {
	logger.Debug("Logging in", "login", login)

	var resp AuthResponse
	if err := call(resty.MethodPost, "/auth/login", LoginRequest{Login: login, Password: password}, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMe returns the signed-in profile with stats
func GetMe() (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := call(resty.MethodGet, "/me", nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}
