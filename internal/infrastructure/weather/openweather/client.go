// Package openweather queries an OpenWeatherMap-compatible current weather API
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/basketful/storefront/internal/domain/weather"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/healthcheck"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ErrMissingAPIKey is returned at construction without a key
var ErrMissingAPIKey = errors.New("openweather api key is required")

var _ outbound.WeatherProvider = (*Client)(nil)

// Options configures the client
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client fetches current conditions. Upstream failures trip a circuit
// breaker so a dead provider does not stall every suggestion request.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *healthcheck.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates a new weather client
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	log := logger.Named("openweather")
	breakerCfg := healthcheck.DefaultCircuitBreakerConfig()
	breakerCfg.OnStateChange = func(name string, from, to healthcheck.CircuitBreakerState) {
		log.Warn("Weather circuit changed state",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: healthcheck.NewCircuitBreaker("weather", breakerCfg),
		logger:  log,
	}, nil
}

// Breaker exposes the circuit for health reporting
func (c *Client) Breaker() *healthcheck.CircuitBreaker {
	return c.breaker
}

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Name     string `json:"name"`
	Timezone int    `json:"timezone"`
	Dt       int64  `json:"dt"`
}

// Current returns conditions at coords in metric units
func (c *Client) Current(ctx context.Context, coords weather.Coordinates) (*weather.Conditions, error) {
	var out *weather.Conditions
	err := c.breaker.Execute(func() error {
		var err error
		out, err = c.fetch(ctx, coords)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, coords weather.Coordinates) (*weather.Conditions, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', 4, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api error %d", resp.StatusCode)
	}

	var parsed currentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	cond := &weather.Conditions{
		TemperatureC: parsed.Main.Temp,
		Humidity:     parsed.Main.Humidity,
		City:         parsed.Name,
		TZOffset:     time.Duration(parsed.Timezone) * time.Second,
		ObservedAt:   time.Unix(parsed.Dt, 0).UTC(),
	}
	if len(parsed.Weather) > 0 {
		cond.Condition = parsed.Weather[0].Main
		cond.Description = parsed.Weather[0].Description
	}

	c.logger.Debug("Fetched current weather",
		zap.String("city", cond.City),
		zap.String("condition", cond.Condition),
		zap.Duration("latency", time.Since(start)),
	)

	return cond, nil
}
