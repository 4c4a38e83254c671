package ai

import (
	"context"
	"time"

	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/healthcheck"
	"go.uber.org/zap"
)

type healthProber interface {
	HealthCheck(ctx context.Context) error
}

// HealthChecker reports whether the recipe generator backend is reachable.
// Hosted APIs are not probed to avoid spending tokens.
type HealthChecker struct {
	generator outbound.RecipeGenerator
	logger    *zap.Logger
}

// NewHealthChecker creates a new AI health checker
func NewHealthChecker(generator outbound.RecipeGenerator, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		generator: generator,
		logger:    logger.Named("ai-health"),
	}
}

// Check implements healthcheck.Checker
func (h *HealthChecker) Check(ctx context.Context) healthcheck.Check {
	start := time.Now()
	check := healthcheck.Check{
		Name:        "ai",
		Status:      healthcheck.StatusHealthy,
		LastChecked: start,
		Metadata:    map[string]string{"provider": h.generator.Provider()},
	}

	if prober, ok := h.generator.(healthProber); ok {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := prober.HealthCheck(probeCtx); err != nil {
			h.logger.Warn("AI provider health check failed", zap.Error(err))
			// generation failures are reported per request, so readiness stays up
			check.Status = healthcheck.StatusDegraded
			check.Message = err.Error()
		}
	}

	check.Duration = time.Since(start)
	return check
}
