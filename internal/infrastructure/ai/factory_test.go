package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/healthcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRecipeGenerator(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{provider: "", want: ProviderStub},
		{provider: "stub", want: ProviderStub},
		{provider: " OpenAI ", want: ProviderOpenAI},
		{provider: "ollama", want: ProviderOllama},
		{provider: "watson", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			gen, err := NewRecipeGenerator(context.Background(), config.AIConfig{Provider: tt.provider}, zap.NewNop())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, gen.Provider())
		})
	}
}

type probingGenerator struct {
	err error
}

func (p probingGenerator) Provider() string { return "probe" }

func (p probingGenerator) Generate(ctx context.Context, prompt string) (*outbound.GeneratedText, error) {
	return nil, errors.New("not used")
}

func (p probingGenerator) HealthCheck(ctx context.Context) error { return p.err }

func TestHealthChecker(t *testing.T) {
	t.Run("NoProbeIsHealthy", func(t *testing.T) {
		gen, err := NewRecipeGenerator(context.Background(), config.AIConfig{Provider: "stub"}, zap.NewNop())
		require.NoError(t, err)

		check := NewHealthChecker(gen, zap.NewNop()).Check(context.Background())

		assert.Equal(t, healthcheck.StatusHealthy, check.Status)
		assert.Equal(t, map[string]string{"provider": ProviderStub}, check.Metadata)
	})

	t.Run("FailedProbeDegrades", func(t *testing.T) {
		check := NewHealthChecker(probingGenerator{err: errors.New("connection refused")}, zap.NewNop()).
			Check(context.Background())

		assert.Equal(t, healthcheck.StatusDegraded, check.Status)
		assert.Equal(t, "connection refused", check.Message)
	})

	t.Run("OllamaProbe", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()
		gen, err := NewRecipeGenerator(context.Background(), config.AIConfig{Provider: "ollama", OllamaURL: server.URL}, zap.NewNop())
		require.NoError(t, err)

		check := NewHealthChecker(gen, zap.NewNop()).Check(context.Background())

		assert.Equal(t, healthcheck.StatusHealthy, check.Status)
	})
}
