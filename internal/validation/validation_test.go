package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateServices(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		required []string
		checks   map[string]CheckFunc
		wantErr  string
	}{
		{"nothing required", nil, nil, ""},
		{"all reachable", []string{"redis", "s3"}, map[string]CheckFunc{"redis": ok, "s3": ok}, ""},
		{"not configured", []string{"elasticsearch"}, map[string]CheckFunc{"redis": ok}, "not configured"},
		{"unreachable", []string{"redis"}, map[string]CheckFunc{"redis": down}, "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := NewServiceValidator(tt.required)
			for name, check := range tt.checks {
				sv.Register(name, check)
			}
			err := sv.ValidateServices(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
