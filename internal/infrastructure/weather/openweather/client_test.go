package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/basketful/storefront/internal/domain/weather"
	"github.com/basketful/storefront/pkg/healthcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleResponse = `{
  "weather": [{"main": "Rain", "description": "light rain"}],
  "main": {"temp": 12.5, "humidity": 81},
  "name": "Lisbon",
  "timezone": 3600,
  "dt": 1760000000
}`

func TestClient_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "38.7223", r.URL.Query().Get("lat"))
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseURL: server.URL, APIKey: "key"}, zap.NewNop())
	require.NoError(t, err)

	cond, err := client.Current(context.Background(), weather.Coordinates{Latitude: 38.7223, Longitude: -9.1393})

	require.NoError(t, err)
	assert.Equal(t, "Rain", cond.Condition)
	assert.Equal(t, "light rain", cond.Description)
	assert.InDelta(t, 12.5, cond.TemperatureC, 0.001)
	assert.Equal(t, 81, cond.Humidity)
	assert.Equal(t, "Lisbon", cond.City)
	assert.Equal(t, time.Hour, cond.TZOffset)
	assert.Equal(t, weather.CategoryRainy, weather.Categorize(*cond))
}

func TestClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Options{}, zap.NewNop())

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClient_OpensCircuitOnRepeatedFailures(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseURL: server.URL, APIKey: "key"}, zap.NewNop())
	require.NoError(t, err)

	threshold := healthcheck.DefaultCircuitBreakerConfig().FailureThreshold
	for i := 0; i < threshold; i++ {
		_, err := client.Current(context.Background(), weather.Coordinates{})
		require.Error(t, err)
	}

	_, err = client.Current(context.Background(), weather.Coordinates{})

	assert.ErrorIs(t, err, healthcheck.ErrCircuitOpen)
	assert.Equal(t, threshold, hits)
	assert.Equal(t, healthcheck.StateOpen, client.Breaker().State())
}
