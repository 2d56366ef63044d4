package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/creativehub/nexus/internal/logger"
	"go.uber.org/zap"
)

// CheckFunc probes one service; a nil error means it is reachable
type CheckFunc func(ctx context.Context) error

// ServiceValidator checks that services listed in REQUIRED_SERVICES are
// configured and reachable before the server starts accepting traffic.
type ServiceValidator struct {
	requiredServices []string
	checks           map[string]CheckFunc
	timeout          time.Duration
}

// NewServiceValidator creates a validator for the given required services
func NewServiceValidator(required []string) *ServiceValidator {
	return &ServiceValidator{
		requiredServices: required,
		checks:           make(map[string]CheckFunc),
		timeout:          10 * time.Second,
	}
}

// Register adds the probe for a configured service. Services that are
// not configured are never registered, so requiring them fails validation.
func (sv *ServiceValidator) Register(name string, check CheckFunc) {
	sv.checks[name] = check
}

// ValidateServices runs the probe of every required service
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.requiredServices) == 0 {
		logger.Log.Debug("No required services configured for validation")
		return nil
	}

	logger.Log.Info("Validating required services", zap.Strings("services", sv.requiredServices))

	for _, name := range sv.requiredServices {
		check, ok := sv.checks[name]
		if !ok {
			return fmt.Errorf("required service %q is not configured", name)
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, sv.timeout)
		err := check(timeoutCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("required service %q validation failed: %w", name, err)
		}

		logger.Log.Info("Service validated", zap.String("service", name))
	}

	return nil
}
