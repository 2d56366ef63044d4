package client

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/creativehub/nexus/pkg/config"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configure(t *testing.T, backendURL, key string) {
	t.Helper()
	t.Setenv(config.EnvBackendURL, "")
	t.Setenv(config.EnvPublishableKey, "")
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set(config.KeyBackendURL, backendURL)
	config.Set(config.KeyPublishableKey, key)
	Reset()
	t.Cleanup(Reset)
}

func TestReadyFailsFastWhenDisconnected(t *testing.T) {
	configure(t, "", "pk_live_abcdef123456")

	c, err := Ready()
	assert.Nil(t, c)
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeDisconnected, cliErr.Type)
	assert.Contains(t, cliErr.Message, "missing backend URL")
}

func TestRequestsCarryKeyAndToken(t *testing.T) {
	var gotKey, gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(APIKeyHeader)
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	configure(t, srv.URL+"/", "pk_live_abcdef123456")
	SetAuthToken("jwt-token")

	c, err := Ready()
	require.NoError(t, err)
	resp, err := c.R().Get("/api/v1/categories")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	assert.Equal(t, "pk_live_abcdef123456", gotKey)
	assert.Equal(t, "Bearer jwt-token", gotAuth)
	assert.Equal(t, UserAgent, gotAgent)
	assert.True(t, HasAuthToken())
}

func TestClearAuthToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	configure(t, srv.URL, "pk_live_abcdef123456")
	SetAuthToken("jwt-token")
	ClearAuthToken()

	_, err := GetClient().R().Get("/health")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.False(t, HasAuthToken())
}

func TestGetClientSingleton(t *testing.T) {
	configure(t, "http://localhost:8787", "pk_live_abcdef123456")
	assert.Same(t, GetClient(), GetClient())
}
