package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/creativehub/nexus/pkg/client"
	"github.com/creativehub/nexus/pkg/config"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "pk_test_0123456789abcdef"

// backend starts a fake API and points the client at it
func backend(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != testKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"code":"UNAUTHORIZED","message":"invalid publishable key"}`)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvBackendURL, "")
	t.Setenv(config.EnvPublishableKey, "")
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set(config.KeyBackendURL, srv.URL)
	config.Set(config.KeyPublishableKey, testKey)
	client.Reset()
	t.Cleanup(client.Reset)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestFeedParamsQuery(t *testing.T) {
	q := FeedParams{
		Category: "illustration",
		Search:   "neon",
		Range:    "week",
		Media:    "image",
		Sort:     "most_liked",
		BestOf:   true,
		Limit:    10,
	}.Query()

	assert.Equal(t, map[string]string{
		"category": "illustration",
		"q":        "neon",
		"range":    "week",
		"media":    "image",
		"sort":     "most_liked",
		"best_of":  "true",
		"limit":    "10",
	}, q)
	assert.Empty(t, FeedParams{}.Query())
}

func TestGetFeed(t *testing.T) {
	backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/feed", r.URL.Path)
		assert.Equal(t, "illustration", r.URL.Query().Get("category"))
		assert.Equal(t, "true", r.URL.Query().Get("best_of"))
		writeJSON(w, http.StatusOK, `{
			"projects": [{"id":"p1","title":"Neon Portraits","media_type":"image","like_count":12,"tags":["neon"],
				"owner":{"id":"u1","username":"nadia"},"category":{"slug":"illustration","name":"Illustration"}}],
			"meta": {"total":1,"limit":20,"offset":0,"has_more":false,"sort":"best_of",
				"filters":{"category":"illustration","best_of":true}}
		}`)
	})

	feed, err := GetFeed(FeedParams{Category: "illustration", BestOf: true})
	require.NoError(t, err)
	require.Len(t, feed.Projects, 1)
	assert.Equal(t, "Neon Portraits", feed.Projects[0].Title)
	assert.Equal(t, "nadia", feed.Projects[0].Owner.Username)
	assert.Equal(t, "best_of", feed.Meta.Sort)
	assert.Equal(t, int64(1), feed.Meta.Total)
	assert.Equal(t, true, feed.Meta.Filters["best_of"])
}

func TestAPIErrorsBecomeCLIErrors(t *testing.T) {
	backend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"code":"BAD_REQUEST","message":"must be image, video or all","field":"media"}`)
	})

	_, err := GetFeed(FeedParams{Media: "audio"})
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type)
	assert.Equal(t, "media", cliErr.Field)
	assert.Equal(t, http.StatusBadRequest, cliErr.StatusCode)
}

func TestDisconnectedNeverHitsTheNetwork(t *testing.T) {
	called := false
	backend(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	config.Set(config.KeyPublishableKey, "your-publishable-key")

	_, err := GetFeed(FeedParams{})
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeDisconnected, cliErr.Type)
	assert.False(t, called)
}

func TestUnreachableBackendIsANetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	t.Setenv(config.EnvBackendURL, url)
	t.Setenv(config.EnvPublishableKey, testKey)
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	client.Reset()
	t.Cleanup(client.Reset)

	_, err := ListCategories()
	require.Error(t, err)
	assert.True(t, clierrors.IsNetworkError(err))
}

func TestToggleLike(t *testing.T) {
	var methods []string
	backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/projects/p1/like", r.URL.Path)
		methods = append(methods, r.Method)
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusOK, `{"project_id":"p1","is_liked":true,"like_count":4,"changed":true}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"project_id":"p1","is_liked":false,"like_count":3,"changed":true}`)
	})

	res, err := SetLiked("p1", true)
	require.NoError(t, err)
	assert.True(t, *res.Liked)
	assert.Equal(t, 4, *res.LikeCount)

	res, err = SetLiked("p1", false)
	require.NoError(t, err)
	assert.False(t, *res.Liked)
	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
}

func TestLoginSendsCredentials(t *testing.T) {
	backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		var body LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, LoginRequest{Login: "nadia", Password: "password123"}, body)
		writeJSON(w, http.StatusOK, `{"token":"jwt","expires_at":"2026-10-18T12:00:00Z","profile":{"id":"u1","username":"nadia","email":"nadia@example.com"}}`)
	})

	resp, err := Login("nadia", "password123")
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)
	assert.Equal(t, "nadia@example.com", resp.Profile.Email)
}

func TestMarkReadAll(t *testing.T) {
	backend(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"all": true}, body)
		writeJSON(w, http.StatusOK, `{"updated":3,"unread_count":0}`)
	})

	res, err := MarkRead(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Updated)
}

func TestTransitionHireRequest(t *testing.T) {
	backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/hire-requests/h1/complete", r.URL.Path)
		writeJSON(w, http.StatusConflict, `{"code":"INVALID_TRANSITION","message":"cannot complete a pending request"}`)
	})

	_, err := TransitionHireRequest("h1", HireActionComplete)
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeConflict, cliErr.Type)
	assert.Equal(t, "INVALID_TRANSITION", cliErr.Code)
}

func TestUpdateMyAvailability(t *testing.T) {
	backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body Availability
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "busy", body.Status)
		writeJSON(w, http.StatusOK, `{"availability":{"status":"busy","hourly_rate":90,"open_to":["freelance"],"note":"","updated_at":"2026-10-17T09:00:00Z"}}`)
	})

	got, err := UpdateMyAvailability(Availability{Status: "busy", HourlyRate: 90, OpenTo: []string{"freelance"}})
	require.NoError(t, err)
	assert.Equal(t, 90.0, got.HourlyRate)
	require.NotNil(t, got.UpdatedAt)
}
