package auth

import "github.com/creativehub/nexus/internal/models"

// AuthServiceInterface defines the contract for authentication operations.
// Handlers and middleware depend on it so tests can swap in a fake.
type AuthServiceInterface interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*models.Profile, error)
}

var _ AuthServiceInterface = (*Service)(nil)
