package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T) string {
	t.Helper()
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvPublishableKey, "")
	path := filepath.Join(t.TempDir(), "nexus", "config.toml")
	require.NoError(t, Init(path))
	return path
}

func TestInitCreatesConfigDir(t *testing.T) {
	path := initTemp(t)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "credentials"), GetCredentialsPath())
	assert.Equal(t, 30, GetInt(KeyTimeout))
	assert.Equal(t, "text", GetString(KeyOutputFormat))
}

func TestSetStringPersists(t *testing.T) {
	path := initTemp(t)

	require.NoError(t, SetString(KeyBackendURL, "https://api.nexus.dev"))
	require.NoError(t, SetString(KeyPublishableKey, "pk_live_abcdef123456"))

	require.NoError(t, Init(path))
	assert.Equal(t, "https://api.nexus.dev", GetString(KeyBackendURL))
	assert.Equal(t, "pk_live_abcdef123456", GetString(KeyPublishableKey))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := initTemp(t)
	require.NoError(t, SetString(KeyBackendURL, "https://file.nexus.dev"))

	t.Setenv(EnvBackendURL, "https://env.nexus.dev")
	require.NoError(t, Init(path))
	assert.Equal(t, "https://env.nexus.dev", GetString(KeyBackendURL))
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"your-project-url", true},
		{"https://example.supabase.co", true},
		{"PLACEHOLDER", true},
		{"changeme", true},
		{"<publishable-key>", true},
		{"https://api.nexus.dev", false},
		{"pk_live_abcdef123456", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlaceholder(tt.value), "value %q", tt.value)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want string
	}{
		{"connected", "https://api.nexus.dev", "pk_live_abcdef123456", "connected"},
		{"missing url", "", "pk_live_abcdef123456", "disconnected (missing backend URL)"},
		{"placeholder url", "https://your-backend.dev", "pk_live_abcdef123456", "disconnected (placeholder backend URL)"},
		{"invalid url", "api.nexus.dev", "pk_live_abcdef123456", "disconnected (invalid backend URL)"},
		{"missing key", "https://api.nexus.dev", "", "disconnected (missing publishable key)"},
		{"placeholder key", "https://api.nexus.dev", "your-publishable-key", "disconnected (placeholder key)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initTemp(t)
			Set(KeyBackendURL, tt.url)
			Set(KeyPublishableKey, tt.key)

			status := CheckStatus()
			assert.Equal(t, tt.want, status.String())
			assert.Equal(t, tt.want == "connected", status.Connected)
		})
	}
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "pk_l************3456", MaskKey("pk_live_abcdef123456"))
	assert.Equal(t, "****", MaskKey("abcd"))
	assert.Equal(t, "", MaskKey(""))
}

func TestPrefixedEnvironmentKeys(t *testing.T) {
	initTemp(t)
	t.Setenv("NEXUS_OUTPUT_FORMAT", "json")
	t.Setenv("NEXUS_BACKEND_TIMEOUT", "5")

	assert.Equal(t, "json", GetString(KeyOutputFormat))
	assert.Equal(t, 5, GetInt(KeyTimeout))
}

func TestConfigDirFromEnvironment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom")
	t.Setenv(EnvConfigDir, dir)
	require.NoError(t, Init(""))

	assert.Equal(t, filepath.Join(dir, "config.toml"), GetConfigFilePath())
	assert.Equal(t, filepath.Join(dir, "availability.json"), GetAvailabilityCachePath())
}
