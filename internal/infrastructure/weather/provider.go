// Package weather selects the configured weather provider
package weather

import (
	"fmt"
	"strings"

	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/infrastructure/weather/openweather"
	"github.com/basketful/storefront/internal/infrastructure/weather/static"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/healthcheck"
	"go.uber.org/zap"
)

// NewProvider builds the provider named by cfg.Provider. The returned
// checker is nil for providers without an upstream.
func NewProvider(cfg config.WeatherConfig, logger *zap.Logger) (outbound.WeatherProvider, healthcheck.Checker, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openweather", "openweathermap":
		client, err := openweather.NewClient(openweather.Options{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Breaker(), nil
	case "static", "":
		logger.Warn("Using static weather provider")
		return static.NewProvider(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}
