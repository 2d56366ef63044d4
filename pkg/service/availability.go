package service

import (
	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/availability"
	"github.com/creativehub/nexus/pkg/config"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/creativehub/nexus/pkg/output"
)

// AvailabilityChange holds the fields to change; nil fields keep their value
type AvailabilityChange struct {
	Status     *string
	HourlyRate *float64
	OpenTo     *[]string
	Note       *string
}

// AvailabilityService edits availability through the local cache
type AvailabilityService struct {
	store   *availability.Store
	manager *availability.Manager
}

// NewAvailabilityService creates a service backed by the cache in the config dir
func NewAvailabilityService() *AvailabilityService {
	store := availability.NewStore(config.GetAvailabilityCachePath())
	return &AvailabilityService{store: store, manager: availability.NewManager(store, nil)}
}

// Show prints the caller's availability, from the cache when offline
func (s *AvailabilityService) Show() error {
	if err := requireLogin(); err != nil {
		return err
	}
	entry, err := s.manager.Show()
	if err != nil {
		return err
	}
	return printAvailability(entry.Settings, entry)
}

// ShowFor prints another creator's availability
func (s *AvailabilityService) ShowFor(username string) error {
	a, err := api.GetProfileAvailability(username)
	if err != nil {
		return err
	}
	return printAvailability(*a, nil)
}

// Set writes the change locally and syncs it best-effort
func (s *AvailabilityService) Set(change AvailabilityChange) error {
	if err := requireLogin(); err != nil {
		return err
	}

	settings := s.current()
	if change.Status != nil {
		settings.Status = *change.Status
	}
	if change.HourlyRate != nil {
		settings.HourlyRate = *change.HourlyRate
	}
	if change.OpenTo != nil {
		settings.OpenTo = *change.OpenTo
	}
	if change.Note != nil {
		settings.Note = *change.Note
	}

	res, err := s.manager.Set(settings)
	if err != nil {
		return err
	}
	return reportSync(res)
}

// Sync pushes a pending local value
func (s *AvailabilityService) Sync() error {
	if err := requireLogin(); err != nil {
		return err
	}
	res, err := s.manager.Sync()
	if err != nil {
		return err
	}
	if res.Entry == nil {
		output.PrintInfo("Nothing to sync")
		return nil
	}
	return reportSync(res)
}

// current is the base for a partial change: the cached value, else the
// server value, else the defaults
func (s *AvailabilityService) current() api.Availability {
	if entry, err := s.store.Load(); err == nil && entry != nil {
		return entry.Settings
	} else if err != nil {
		logger.Warn("Ignoring unreadable availability cache", "err", err)
	}
	if remote, err := api.GetMyAvailability(); err == nil {
		return *remote
	}
	return api.Availability{Status: "available", OpenTo: []string{}}
}

func reportSync(res *availability.Result) error {
	if output.IsJSON() {
		return output.JSON(res.Entry)
	}
	if res.Synced {
		output.PrintSuccess("Availability saved and synced")
		return nil
	}
	output.PrintWarning("availability saved locally but not synced: %v", res.SyncErr)
	output.PrintInfo("Run 'nexus availability sync' to retry.")
	return nil
}

func printAvailability(a api.Availability, entry *availability.Entry) error {
	var data interface{} = a
	if entry != nil {
		data = entry
	}
	fields := []output.Field{
		{Label: "Status", Value: a.Status},
		{Label: "Rate", Value: formatRate(a.HourlyRate)},
		{Label: "Open to", Value: joinOrDash(a.OpenTo)},
		{Label: "Note", Value: orDash(a.Note)},
		{Label: "Updated", Value: formatTimePtr(a.UpdatedAt)},
	}
	if entry != nil {
		if entry.PendingSync {
			fields = append(fields, output.Field{Label: "Sync", Value: "pending"})
		}
		if entry.Offline {
			fields = append(fields, output.Field{Label: "Source", Value: "local cache (offline, cached " + formatTime(entry.CachedAt) + ")"})
		}
	}
	return output.PrintRecord("Availability", data, fields)
}
