// Package ai selects and builds the configured recipe generator
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/basketful/storefront/internal/infrastructure/ai/gemini"
	"github.com/basketful/storefront/internal/infrastructure/ai/ollama"
	"github.com/basketful/storefront/internal/infrastructure/ai/openai"
	"github.com/basketful/storefront/internal/infrastructure/ai/stub"
	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/ports/outbound"
	"go.uber.org/zap"
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderStub   = "stub"
)

// NewRecipeGenerator builds the generator named by cfg.Provider
func NewRecipeGenerator(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (outbound.RecipeGenerator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case ProviderGemini:
		return gemini.NewClient(ctx, gemini.Options{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger)
	case ProviderOpenAI:
		return openai.NewClient(openai.Options{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case ProviderOllama:
		return ollama.NewClient(ollama.Options{
			BaseURL:     cfg.OllamaURL,
			Model:       cfg.OllamaModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case ProviderStub, "":
		logger.Warn("Using the stub recipe generator")
		return stub.NewGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
