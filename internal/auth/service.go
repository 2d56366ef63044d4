package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenTTL is how long a session token stays valid
const TokenTTL = 24 * time.Hour

var (
	ErrUserExists         = errors.New("an account with this email already exists")
	ErrUsernameExists     = errors.New("username is already taken")
	ErrInvalidUsername    = errors.New("username must be 3-30 characters of a-z, 0-9, '_' or '.'")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service handles registration, login and session tokens
type Service struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewService creates a new auth service
func NewService(jwtSecret []byte) *Service {
	return &Service{
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required,username"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"max=80"`
}

// LoginRequest accepts either an email or a username in Login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after a successful sign-up or sign-in
type AuthResponse struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expires_at"`
	Profile   models.PrivateProfile `json:"profile"`
}

// Claims are the session token claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Register creates a new profile with an email and password
func (s *Service) Register(req RegisterRequest) (*AuthResponse, error) {
	username := models.NormalizeUsername(req.Username)
	if !models.IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.Profile
	err := database.DB.Unscoped().Where("LOWER(email) = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	err = database.DB.Unscoped().Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	profile := models.Profile{
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hashedPassword),
		Skills:       []string{},
		OpenTo:       []string{},
	}
	if err := database.DB.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.generateAuthResponse(&profile)
}

// Login authenticates with an email or username and a password
func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	login := strings.ToLower(strings.TrimSpace(req.Login))

	query := database.DB.Where("username = ?", models.NormalizeUsername(login))
	if strings.Contains(login, "@") && !strings.HasPrefix(login, "@") {
		query = database.DB.Where("LOWER(email) = ?", login)
	}

	var profile models.Profile
	err := query.First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateAuthResponse(&profile)
}

// GenerateToken signs a session token for a profile
func (s *Service) GenerateToken(profile *models.Profile) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(TokenTTL)

	claims := Claims{
		UserID:   profile.ID,
		Username: profile.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   profile.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func (s *Service) generateAuthResponse(profile *models.Profile) (*AuthResponse, error) {
	token, expiresAt, err := s.GenerateToken(profile)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   profile.Private(),
	}, nil
}

// ParseToken verifies a token's signature and expiry without touching the database
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateToken validates a token and loads the profile it belongs to
func (s *Service) ValidateToken(tokenString string) (*models.Profile, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := database.DB.Where("id = ?", claims.UserID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &profile, nil
}
