// Package gemini generates recipe text with Google Gemini
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	DefaultModel = "gemini-1.5-flash"

	systemPrompt = "You are an expert home chef. Write practical recipes in Markdown that are easy to follow."
)

// ErrNoContent is returned when Gemini produced no text candidates
var ErrNoContent = errors.New("no content generated")

// Options configures the client
type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client implements outbound.RecipeGenerator on the Gemini API
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewClient creates a new Gemini API client
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	if opts.Temperature > 0 {
		model.SetTemperature(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	return &Client{
		client:    client,
		model:     model,
		modelName: opts.Model,
		logger:    logger.Named("gemini-client"),
	}, nil
}

// Provider names the backend
func (c *Client) Provider() string {
	return "gemini"
}

// Generate sends the prompt to the Gemini model and returns the generated text
func (c *Client) Generate(ctx context.Context, prompt string) (*outbound.GeneratedText, error) {
	start := time.Now()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	content, usage, err := extract(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Gemini generation completed",
		zap.String("model", c.modelName),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return &outbound.GeneratedText{
		Content: content,
		Model:   c.modelName,
		Usage:   usage,
		Latency: time.Since(start),
	}, nil
}

// extract joins the text parts of the first candidate
func extract(resp *genai.GenerateContentResponse) (string, outbound.TokenUsage, error) {
	var usage outbound.TokenUsage
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", usage, ErrNoContent
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return "", usage, ErrNoContent
	}

	if md := resp.UsageMetadata; md != nil {
		usage.PromptTokens = int(md.PromptTokenCount)
		usage.CompletionTokens = int(md.CandidatesTokenCount)
		usage.TotalTokens = int(md.TotalTokenCount)
	}
	return content, usage, nil
}

// Close closes the underlying Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}
