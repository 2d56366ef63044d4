package availability

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/creativehub/nexus/pkg/api"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/logger"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Statuses and work arrangements the backend accepts
var (
	Statuses = []string{"available", "busy", "unavailable"}
	OpenTo   = []string{"freelance", "full_time", "collaboration"}
)

// MaxNoteLength matches the backend limit
const MaxNoteLength = 280

// Entry is the locally cached availability
type Entry struct {
	Settings    api.Availability `json:"settings"`
	PendingSync bool             `json:"pending_sync"`
	CachedAt    time.Time        `json:"cached_at"`
	LastError   string           `json:"last_error,omitempty"`

	// Offline is set on values served from the cache because the backend
	// could not be reached
	Offline bool `json:"-"`
}

// Store reads and writes the cache file
type Store struct {
	path string
}

// NewStore uses the cache file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the cached entry, or nil when nothing is cached
func (s *Store) Load() (*Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt availability cache %s: %w", s.path, err)
	}
	return &entry, nil
}

// Save replaces the cache file atomically
func (s *Store) Save(entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Remote is the backend side of availability
type Remote interface {
	GetMyAvailability() (*api.Availability, error)
	UpdateMyAvailability(settings api.Availability) (*api.Availability, error)
}

type apiRemote struct{}

func (apiRemote) GetMyAvailability() (*api.Availability, error) {
	return api.GetMyAvailability()
}

func (apiRemote) UpdateMyAvailability(settings api.Availability) (*api.Availability, error) {
	return api.UpdateMyAvailability(settings)
}

// Manager writes settings locally first and syncs them to the backend best-effort
type Manager struct {
	store  *Store
	remote Remote
	now    func() time.Time
}

// NewManager creates a manager. A nil remote uses the backend API.
func NewManager(store *Store, remote Remote) *Manager {
	if remote == nil {
		remote = apiRemote{}
	}
	return &Manager{store: store, remote: remote, now: time.Now}
}

// Result reports what happened to a write
type Result struct {
	Entry   *Entry
	Synced  bool
	SyncErr error
}

// Validate normalizes settings and checks them against the backend rules
func Validate(settings *api.Availability) error {
	settings.Status = strings.ToLower(strings.TrimSpace(settings.Status))
	if !contains(Statuses, settings.Status) {
		return clierrors.ValidationError("status", "must be available, busy or unavailable")
	}
	if settings.HourlyRate < 0 || math.IsNaN(settings.HourlyRate) || math.IsInf(settings.HourlyRate, 0) {
		return clierrors.ValidationError("hourly_rate", "must be zero or more")
	}
	settings.Note = strings.TrimSpace(settings.Note)
	if utf8.RuneCountInString(settings.Note) > MaxNoteLength {
		return clierrors.ValidationError("note", fmt.Sprintf("must be at most %d characters", MaxNoteLength))
	}
	openTo := make([]string, 0, len(settings.OpenTo))
	for _, v := range settings.OpenTo {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if !contains(OpenTo, v) {
			return clierrors.ValidationError("open_to", fmt.Sprintf("unknown work arrangement %q", v))
		}
		if !contains(openTo, v) {
			openTo = append(openTo, v)
		}
	}
	settings.OpenTo = openTo
	return nil
}

// Set stores settings locally and then pushes them. A failed push keeps the
// local value marked pending_sync and is reported in Result.SyncErr rather
// than as an error.
func (m *Manager) Set(settings api.Availability) (*Result, error) {
	if err := Validate(&settings); err != nil {
		return nil, err
	}
	now := m.now().UTC()
	settings.UpdatedAt = &now

	entry := &Entry{Settings: settings, PendingSync: true, CachedAt: now}
	if err := m.store.Save(entry); err != nil {
		return nil, fmt.Errorf("failed to write availability cache: %w", err)
	}
	return m.push(entry)
}

// Sync retries a pending local value. With nothing pending it is a no-op.
func (m *Manager) Sync() (*Result, error) {
	entry, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if entry == nil || !entry.PendingSync {
		return &Result{Entry: entry, Synced: true}, nil
	}
	return m.push(entry)
}

func (m *Manager) push(entry *Entry) (*Result, error) {
	saved, err := m.remote.UpdateMyAvailability(entry.Settings)
	if err != nil {
		logger.Warn("Availability sync failed; keeping local value", "err", err)
		entry.PendingSync = true
		entry.LastError = err.Error()
		if saveErr := m.store.Save(entry); saveErr != nil {
			return nil, saveErr
		}
		return &Result{Entry: entry, SyncErr: err}, nil
	}

	entry = &Entry{Settings: *saved, CachedAt: m.now().UTC()}
	if err := m.store.Save(entry); err != nil {
		return nil, err
	}
	return &Result{Entry: entry, Synced: true}, nil
}

// Show returns the backend value when reachable and refreshes the cache.
// A pending local value is pushed first. When the backend can't be reached
// the cached value is returned with Offline set.
func (m *Manager) Show() (*Entry, error) {
	local, err := m.store.Load()
	if err != nil {
		logger.Warn("Ignoring unreadable availability cache", "err", err)
		local = nil
	}

	if local != nil && local.PendingSync {
		res, err := m.push(local)
		if err != nil {
			return nil, err
		}
		if !res.Synced {
			res.Entry.Offline = clierrors.IsNetworkError(res.SyncErr) || isDisconnected(res.SyncErr)
		}
		return res.Entry, nil
	}

	remote, err := m.remote.GetMyAvailability()
	if err != nil {
		if local != nil && (clierrors.IsNetworkError(err) || isDisconnected(err)) {
			local.Offline = true
			return local, nil
		}
		return nil, err
	}

	entry := &Entry{Settings: *remote, CachedAt: m.now().UTC()}
	if err := m.store.Save(entry); err != nil {
		logger.Warn("Failed to refresh availability cache", "err", err)
	}
	return entry, nil
}

func isDisconnected(err error) bool {
	var cliErr *clierrors.CLIError
	return errors.As(err, &cliErr) && cliErr.Type == clierrors.ErrorTypeDisconnected
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
