package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"refused", errors.New(`Get "http://localhost:8787/api/v1/feed": dial tcp 127.0.0.1:8787: connect: connection refused`), ErrorTypeConnection},
		{"reset", errors.New("read tcp: Connection Reset by peer"), ErrorTypeConnection},
		{"dns", errors.New("dial tcp: lookup api.nexus.dev: no such host"), ErrorTypeNetwork},
		{"unreachable", errors.New("connect: network is unreachable"), ErrorTypeNetwork},
		{"fetch", errors.New("TypeError: Failed to fetch"), ErrorTypeNetwork},
		{"eof", errors.New(`Post "http://x/api/v1/auth/login": EOF`), ErrorTypeNetwork},
		{"io timeout", errors.New("read tcp 10.0.0.1:443: i/o timeout"), ErrorTypeTimeout},
		{"deadline", fmt.Errorf("request: %w", context.DeadlineExceeded), ErrorTypeTimeout},
		{"other", errors.New("something odd"), ErrorTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got.Type)
			if tt.want != ErrorTypeUnknown {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestClassifyPassesCLIErrorsThrough(t *testing.T) {
	original := DisconnectedError("missing backend URL")
	wrapped := fmt.Errorf("feed: %w", original)

	assert.Same(t, original, Classify(wrapped))
	assert.Nil(t, Classify(nil))
}

func TestIsNetworkError(t *testing.T) {
	assert.True(t, IsNetworkError(errors.New("dial tcp: connection refused")))
	assert.True(t, IsNetworkError(Classify(errors.New("no such host"))))
	assert.False(t, IsNetworkError(errors.New("bad json")))
	assert.False(t, IsNetworkError(FromResponse(http.StatusNotFound, nil)))
	assert.False(t, IsNetworkError(nil))
}

func TestFromResponse(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   ErrorType
	}{
		{http.StatusBadRequest, `{"code":"BAD_REQUEST","message":"must be image, video or all","field":"media"}`, ErrorTypeValidation},
		{http.StatusUnprocessableEntity, `{"code":"VALIDATION_ERROR","message":"is required","field":"title"}`, ErrorTypeValidation},
		{http.StatusUnauthorized, `{"code":"UNAUTHORIZED","message":"invalid token"}`, ErrorTypeAuth},
		{http.StatusForbidden, `{"code":"FORBIDDEN","message":"not your project"}`, ErrorTypeForbidden},
		{http.StatusNotFound, `{"code":"NOT_FOUND","message":"project not found"}`, ErrorTypeNotFound},
		{http.StatusConflict, `{"code":"INVALID_TRANSITION","message":"cannot complete a pending request"}`, ErrorTypeConflict},
		{http.StatusTooManyRequests, `{"code":"RATE_LIMITED"}`, ErrorTypeRateLimit},
		{http.StatusServiceUnavailable, `not json`, ErrorTypeServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.NotEmpty(t, err.Message)
		})
	}

	err := FromResponse(http.StatusUnprocessableEntity, []byte(`{"code":"VALIDATION_ERROR","message":"is required","field":"title"}`))
	assert.Equal(t, "title: is required", err.Message)
	assert.Equal(t, "title", err.Field)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)

	err = FromResponse(http.StatusServiceUnavailable, []byte("not json"))
	assert.Equal(t, "Service Unavailable", err.Message)
	assert.True(t, err.IsRetryable())
}

func TestFormatError(t *testing.T) {
	out := FormatError(DisconnectedError("placeholder key"))
	assert.Contains(t, out, "Error (disconnected): Not connected to a backend: placeholder key")
	assert.Contains(t, out, "Suggestion: Run 'nexus config set-url")

	assert.Equal(t, "Error: something odd\n", FormatError(errors.New("something odd")))
	assert.Empty(t, FormatError(nil))
}
