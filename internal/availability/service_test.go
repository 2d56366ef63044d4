package availability

import (
	"context"
	"testing"
	"time"

	"github.com/creativehub/nexus/internal/database/dbtest"
	"github.com/creativehub/nexus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateRequestValidate(t *testing.T) {
	longNote := make([]rune, models.MaxAvailabilityNoteLength+1)
	for i := range longNote {
		longNote[i] = 'é'
	}

	tests := []struct {
		name  string
		req   UpdateRequest
		field string
	}{
		{"valid", UpdateRequest{Status: models.AvailabilityBusy, HourlyRate: 40, OpenTo: []string{"freelance"}}, ""},
		{"unknown status", UpdateRequest{Status: "asleep"}, "status"},
		{"negative rate", UpdateRequest{Status: models.AvailabilityAvailable, HourlyRate: -1}, "hourly_rate"},
		{"unknown open_to", UpdateRequest{Status: models.AvailabilityAvailable, OpenTo: []string{"gig"}}, "open_to"},
		{"note too long", UpdateRequest{Status: models.AvailabilityAvailable, Note: string(longNote)}, "note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestValidateNormalizesOpenTo(t *testing.T) {
	req := UpdateRequest{Status: models.AvailabilityAvailable, OpenTo: []string{" Freelance", "freelance", "COLLABORATION"}, Note: "  hi  "}
	require.NoError(t, req.Validate())
	assert.Equal(t, []string{"freelance", "collaboration"}, req.OpenTo)
	assert.Equal(t, "hi", req.Note)
}

func TestGetAndUpdate(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	profile := dbtest.CreateProfile(t, "ada")

	fixed := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	svc := NewService(nil)
	svc.now = func() time.Time { return fixed }

	got, err := svc.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityAvailable, got.Status)
	assert.Equal(t, []string{}, got.OpenTo)

	// client clock far in the past still wins: last write wins
	stale := fixed.Add(-72 * time.Hour)
	updated, err := svc.Update(ctx, profile.ID, UpdateRequest{
		Status:     models.AvailabilityBusy,
		HourlyRate: 85,
		OpenTo:     []string{"full_time"},
		Note:       "Back in June",
		UpdatedAt:  &stale,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, fixed.Equal(*updated.UpdatedAt))

	got, err = svc.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityBusy, got.Status)
	assert.Equal(t, 85.0, got.HourlyRate)
	assert.Equal(t, []string{"full_time"}, got.OpenTo)
	assert.Equal(t, "Back in June", got.Note)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, fixed.Equal(*got.UpdatedAt))

	// zero rate is a real value, not "unchanged"
	_, err = svc.Update(ctx, profile.ID, UpdateRequest{Status: models.AvailabilityUnavailable})
	require.NoError(t, err)
	got, err = svc.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Zero(t, got.HourlyRate)
	assert.Equal(t, models.AvailabilityUnavailable, got.Status)
}

func TestUnknownProfile(t *testing.T) {
	dbtest.Setup(t)
	svc := NewService(nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), "missing", UpdateRequest{Status: models.AvailabilityBusy})
	assert.ErrorIs(t, err, ErrNotFound)
}
