package availability

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/creativehub/nexus/pkg/api"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	stored    *api.Availability
	getErr    error
	updateErr error
	updates   int
}

func (f *fakeRemote) GetMyAvailability() (*api.Availability, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored, nil
}

func (f *fakeRemote) UpdateMyAvailability(settings api.Availability) (*api.Availability, error) {
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	serverTime := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	settings.UpdatedAt = &serverTime
	f.stored = &settings
	return f.stored, nil
}

var errRefused = errors.New(`Put "http://localhost:8787/api/v1/me/availability": dial tcp: connect: connection refused`)

func newManager(t *testing.T, remote *fakeRemote) (*Manager, *Store) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "availability.json"))
	m := NewManager(store, remote)
	m.now = func() time.Time { return time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC) }
	return m, store
}

func TestValidate(t *testing.T) {
	s := api.Availability{Status: " Busy ", HourlyRate: 80, OpenTo: []string{"Freelance", "freelance", " ", "collaboration"}, Note: "  back in May "}
	require.NoError(t, Validate(&s))
	assert.Equal(t, "busy", s.Status)
	assert.Equal(t, []string{"freelance", "collaboration"}, s.OpenTo)
	assert.Equal(t, "back in May", s.Note)

	tests := []struct {
		settings api.Availability
		field    string
	}{
		{api.Availability{Status: "away"}, "status"},
		{api.Availability{Status: "busy", HourlyRate: -1}, "hourly_rate"},
		{api.Availability{Status: "busy", OpenTo: []string{"internship"}}, "open_to"},
	}
	for _, tt := range tests {
		err := Validate(&tt.settings)
		var cliErr *clierrors.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, tt.field, cliErr.Field)
	}
}

func TestSetSyncsToBackend(t *testing.T) {
	remote := &fakeRemote{}
	m, store := newManager(t, remote)

	res, err := m.Set(api.Availability{Status: "busy", HourlyRate: 95})
	require.NoError(t, err)
	assert.True(t, res.Synced)
	assert.NoError(t, res.SyncErr)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.False(t, cached.PendingSync)
	assert.Equal(t, "busy", cached.Settings.Status)
	assert.Equal(t, 12, cached.Settings.UpdatedAt.Hour())
}

func TestSetKeepsLocalValueWhenSyncFails(t *testing.T) {
	remote := &fakeRemote{updateErr: errRefused}
	m, store := newManager(t, remote)

	res, err := m.Set(api.Availability{Status: "unavailable"})
	require.NoError(t, err)
	assert.False(t, res.Synced)
	assert.ErrorIs(t, res.SyncErr, errRefused)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.True(t, cached.PendingSync)
	assert.Equal(t, "unavailable", cached.Settings.Status)
	assert.Contains(t, cached.LastError, "connection refused")
}

func TestSyncRetriesPendingValue(t *testing.T) {
	remote := &fakeRemote{updateErr: errRefused}
	m, store := newManager(t, remote)
	_, err := m.Set(api.Availability{Status: "busy", OpenTo: []string{"full_time"}})
	require.NoError(t, err)

	remote.updateErr = nil
	res, err := m.Sync()
	require.NoError(t, err)
	assert.True(t, res.Synced)
	assert.Equal(t, 2, remote.updates)
	assert.Equal(t, []string{"full_time"}, remote.stored.OpenTo)

	cached, _ := store.Load()
	assert.False(t, cached.PendingSync)
	assert.Empty(t, cached.LastError)

	res, err = m.Sync()
	require.NoError(t, err)
	assert.True(t, res.Synced)
	assert.Equal(t, 2, remote.updates)
}

func TestShowPrefersBackendAndRefreshesCache(t *testing.T) {
	remote := &fakeRemote{stored: &api.Availability{Status: "available", OpenTo: []string{}}}
	m, store := newManager(t, remote)
	require.NoError(t, store.Save(&Entry{Settings: api.Availability{Status: "busy"}}))

	entry, err := m.Show()
	require.NoError(t, err)
	assert.False(t, entry.Offline)
	assert.Equal(t, "available", entry.Settings.Status)

	cached, _ := store.Load()
	assert.Equal(t, "available", cached.Settings.Status)
}

func TestShowFallsBackToCacheOffline(t *testing.T) {
	remote := &fakeRemote{getErr: clierrors.Classify(errRefused)}
	m, store := newManager(t, remote)
	require.NoError(t, store.Save(&Entry{Settings: api.Availability{Status: "busy"}}))

	entry, err := m.Show()
	require.NoError(t, err)
	assert.True(t, entry.Offline)
	assert.Equal(t, "busy", entry.Settings.Status)
}

func TestShowWithoutCacheReturnsError(t *testing.T) {
	remote := &fakeRemote{getErr: clierrors.Classify(errRefused)}
	m, _ := newManager(t, remote)

	_, err := m.Show()
	assert.Error(t, err)
}

func TestShowPushesPendingValueFirst(t *testing.T) {
	remote := &fakeRemote{updateErr: clierrors.DisconnectedError("missing backend URL")}
	m, _ := newManager(t, remote)
	_, err := m.Set(api.Availability{Status: "busy"})
	require.NoError(t, err)

	entry, err := m.Show()
	require.NoError(t, err)
	assert.True(t, entry.Offline)
	assert.True(t, entry.PendingSync)

	remote.updateErr = nil
	entry, err = m.Show()
	require.NoError(t, err)
	assert.False(t, entry.PendingSync)
	assert.Equal(t, "busy", remote.stored.Status)
}
