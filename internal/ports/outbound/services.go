package outbound

import (
	"context"
	"time"

	"github.com/basketful/storefront/internal/domain/weather"
	"github.com/google/uuid"
)

// TokenUsage tracks the tokens consumed by a generation request
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GeneratedText is a completion returned by a text generator
type GeneratedText struct {
	Content string
	Model   string
	Usage   TokenUsage
	Latency time.Duration
}

// RecipeGenerator turns a prompt into recipe text
type RecipeGenerator interface {
	Generate(ctx context.Context, prompt string) (*GeneratedText, error)
	Provider() string
}

// WeatherProvider looks up current conditions by coordinates
type WeatherProvider interface {
	Current(ctx context.Context, coords weather.Coordinates) (*weather.Conditions, error)
}

// Notifier sends transactional email
type Notifier interface {
	SendFeedbackAcknowledgement(ctx context.Context, to, name string) error
}

// TokenIssuer signs access tokens bound to a session
type TokenIssuer interface {
	IssueAccessToken(userID uuid.UUID, email, sessionID string) (token string, expiresAt time.Time, err error)
}
