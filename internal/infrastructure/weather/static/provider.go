// Package static serves fixed weather for development without an API key
package static

import (
	"context"
	"time"

	"github.com/basketful/storefront/internal/domain/weather"
)

// Provider always reports the same conditions
type Provider struct {
	conditions weather.Conditions
}

// NewProvider returns a provider reporting mild clear weather
func NewProvider() *Provider {
	return &Provider{conditions: weather.Conditions{
		Condition:    "Clear",
		Description:  "clear sky",
		TemperatureC: 20,
		Humidity:     50,
		City:         "Local",
	}}
}

// WithConditions overrides the reported conditions
func (p *Provider) WithConditions(c weather.Conditions) *Provider {
	p.conditions = c
	return p
}

// Current ignores coordinates
func (p *Provider) Current(ctx context.Context, coords weather.Coordinates) (*weather.Conditions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := p.conditions
	out.ObservedAt = time.Now().UTC()
	return &out, nil
}
