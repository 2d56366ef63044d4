package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/availability"
	"github.com/creativehub/nexus/pkg/client"
	"github.com/creativehub/nexus/pkg/config"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/output"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "pk_test_0123456789abcdef"

// setup points the client at handler and captures output
func setup(t *testing.T, handler http.HandlerFunc) *bytes.Buffer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvBackendURL, "")
	t.Setenv(config.EnvPublishableKey, "")
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set(config.KeyBackendURL, srv.URL)
	config.Set(config.KeyPublishableKey, testKey)
	client.Reset()
	t.Cleanup(client.Reset)

	color.NoColor = true
	var buf bytes.Buffer
	prev := output.Writer
	output.Writer = &buf
	t.Cleanup(func() { output.Writer = prev })
	return &buf
}

func login(t *testing.T) {
	t.Helper()
	client.SetAuthToken("jwt")
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "s", pluralize(0))
	assert.Equal(t, "", pluralize(1))
	assert.Equal(t, "s", pluralize(2))
}

func TestPageFooter(t *testing.T) {
	assert.Equal(t, "", pageFooter(api.PageMeta{}, 0))
	assert.Equal(t, "Showing 1-20 of 45 (next: --offset 20)", pageFooter(api.PageMeta{Total: 45, Limit: 20, HasMore: true}, 20))
	assert.Equal(t, "Showing 41-45 of 45", pageFooter(api.PageMeta{Total: 45, Limit: 20, Offset: 40}, 5))
}

func TestDescribeFilters(t *testing.T) {
	got := describeFilters(api.FeedMeta{Sort: "most_liked", Filters: map[string]interface{}{"media": "video", "category": "motion"}})
	assert.Equal(t, "sort=most_liked category=motion media=video", got)
}

func TestViewFeed(t *testing.T) {
	out := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "motion", r.URL.Query().Get("category"))
		writeJSON(w, http.StatusOK, `{
			"projects": [{"id":"p1","title":"Loop Study","media_type":"video","like_count":9,"view_count":120,
				"owner":{"username":"kai"},"category":{"slug":"motion"}}],
			"meta": {"total":30,"limit":1,"offset":0,"has_more":true,"sort":"newest","filters":{"category":"motion"}}
		}`)
	})

	require.NoError(t, NewFeedService().ViewFeed(api.FeedParams{Category: "motion", Limit: 1}))
	text := out.String()
	assert.Contains(t, text, "sort=newest category=motion")
	assert.Contains(t, text, "Loop Study")
	assert.Contains(t, text, "@kai")
	assert.Contains(t, text, "Showing 1-1 of 30 (next: --offset 1)")
}

func TestViewFeedJSON(t *testing.T) {
	out := setup(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"projects":[],"meta":{"total":0,"sort":"newest","filters":{}}}`)
	})
	config.Set(config.KeyOutputFormat, "json")

	require.NoError(t, NewFeedService().ViewFeed(api.FeedParams{}))
	var decoded api.ProjectList
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "newest", decoded.Meta.Sort)
}

func TestEngagementRequiresLogin(t *testing.T) {
	called := false
	setup(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	err := NewProjectService().SetLiked("p1", true)
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeAuth, cliErr.Type)
	assert.False(t, called)
}

func TestSetSavedUnchanged(t *testing.T) {
	out := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"project_id":"p1","is_saved":true,"save_count":2,"changed":false}`)
	})
	login(t)

	require.NoError(t, NewProjectService().SetSaved("p1", true))
	assert.Contains(t, out.String(), "Nothing changed")
}

func TestHireRequestValidation(t *testing.T) {
	called := false
	setup(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	login(t)

	err := NewHiringService().Request(api.HireRequestInput{FreelancerUsername: "@ ", Title: "Logo"})
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "freelancer_username", cliErr.Field)

	err = NewHiringService().List("agency", "", 0, 0)
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "role", cliErr.Field)
	assert.False(t, called)
}

func TestHireRequestStripsAt(t *testing.T) {
	out := setup(t, func(w http.ResponseWriter, r *http.Request) {
		var body api.HireRequestInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "kai", body.FreelancerUsername)
		writeJSON(w, http.StatusCreated, `{"hire_request":{"id":"h1","title":"Logo","status":"pending","freelancer":{"username":"kai"}}}`)
	})
	login(t)

	require.NoError(t, NewHiringService().Request(api.HireRequestInput{FreelancerUsername: "@kai", Title: "Logo", Budget: 300}))
	assert.Contains(t, out.String(), "Hire request h1 sent to @kai")
}

func TestAvailabilitySetMergesCachedValue(t *testing.T) {
	var pushed api.Availability
	out := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&pushed))
		writeJSON(w, http.StatusOK, `{"availability":{"status":"busy","hourly_rate":70,"open_to":["freelance"],"note":"","updated_at":"2026-10-17T10:00:00Z"}}`)
	})
	login(t)

	store := availability.NewStore(config.GetAvailabilityCachePath())
	require.NoError(t, store.Save(&availability.Entry{Settings: api.Availability{Status: "available", HourlyRate: 70, OpenTo: []string{"freelance"}}}))

	status := "busy"
	require.NoError(t, NewAvailabilityService().Set(AvailabilityChange{Status: &status}))
	assert.Equal(t, "busy", pushed.Status)
	assert.Equal(t, 70.0, pushed.HourlyRate)
	assert.Equal(t, []string{"freelance"}, pushed.OpenTo)
	assert.Contains(t, out.String(), "saved and synced")
}

func TestAvailabilityShowOffline(t *testing.T) {
	out := setup(t, func(w http.ResponseWriter, r *http.Request) {})

	cachedAt := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store := availability.NewStore(config.GetAvailabilityCachePath())
	require.NoError(t, store.Save(&availability.Entry{Settings: api.Availability{Status: "unavailable"}, CachedAt: cachedAt}))

	// nothing listens on the port of a closed server
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	config.Set(config.KeyBackendURL, closed.URL)
	client.Reset()
	login(t)

	require.NoError(t, NewAvailabilityService().Show())
	text := out.String()
	assert.Contains(t, text, "unavailable")
	assert.Contains(t, text, "offline")
}

func TestDisconnectedCommandsFailFast(t *testing.T) {
	called := false
	setup(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	config.Set(config.KeyBackendURL, "https://your-project.example.com")
	login(t)

	err := NewNotificationService().List(false, 0, 0)
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeDisconnected, cliErr.Type)
	assert.False(t, called)
}
