package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creativehub/nexus/internal/auth"
	"github.com/creativehub/nexus/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuthService struct {
	profiles map[string]*models.Profile
}

func (f *fakeAuthService) Register(req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Login(req auth.LoginRequest) (*auth.AuthResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) ValidateToken(token string) (*models.Profile, error) {
	if p, ok := f.profiles[token]; ok {
		return p, nil
	}
	return nil, auth.ErrInvalidToken
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/me", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	svc := &fakeAuthService{profiles: map[string]*models.Profile{
		"good-token": {ID: "user-1", Username: "ada"},
	}}
	router := authRouter(RequireAuth(svc))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good-token", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
		{"lowercase scheme", "bearer good-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), "user-1")
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	svc := &fakeAuthService{profiles: map[string]*models.Profile{
		"good-token": {ID: "user-1"},
	}}
	router := authRouter(OptionalAuth(svc))

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":null}`, w.Body.String())

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "bad token degrades to anonymous")

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":"user-1"}`, w.Body.String())
}

func TestRequirePublishableKey(t *testing.T) {
	router := authRouter(RequirePublishableKey("pk_live_123"))

	send := func(header, query string) int {
		target := "/me"
		if query != "" {
			target += "?apikey=" + query
		}
		req := httptest.NewRequest("GET", target, nil)
		if header != "" {
			req.Header.Set(APIKeyHeader, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send("", ""))
	assert.Equal(t, http.StatusUnauthorized, send("pk_live_999", ""))
	assert.Equal(t, http.StatusOK, send("pk_live_123", ""))
	assert.Equal(t, http.StatusOK, send("", "pk_live_123"))
}
