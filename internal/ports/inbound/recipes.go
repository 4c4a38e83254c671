package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecipeGenerationService runs the daily-gated AI recipe generation
type RecipeGenerationService interface {
	Status(ctx context.Context, userID uuid.UUID) (*GenerationStatusDTO, error)
	Generate(ctx context.Context, cmd GenerateRecipeCommand) (*GeneratedRecipeDTO, error)
}

// GenerateRecipeCommand is a generation request
type GenerateRecipeCommand struct {
	UserID      uuid.UUID `validate:"required"`
	Ingredients []string  `validate:"required,min=1,max=20,dive,required,max=80"`
	Preferences string    `validate:"max=500"`
	Cuisine     string    `validate:"max=50"`
	Servings    int       `validate:"min=0,max=20"`
	Dietary     []string  `validate:"max=10,dive,max=40"`
}

// GenerationStatusDTO reports whether a user may generate today
type GenerationStatusDTO struct {
	State       string    `json:"state"`
	Eligible    bool      `json:"eligible"`
	UsageDate   string    `json:"usage_date"`
	NextResetAt time.Time `json:"next_reset_at"`
}

// GeneratedRecipeDTO is a generated Markdown recipe
type GeneratedRecipeDTO struct {
	Markdown    string    `json:"markdown"`
	Model       string    `json:"model"`
	Provider    string    `json:"provider"`
	TotalTokens int       `json:"total_tokens,omitempty"`
	UsageDate   string    `json:"usage_date"`
	NextResetAt time.Time `json:"next_reset_at"`
}

// LocationService caches the user's geolocation
type LocationService interface {
	SetLocation(ctx context.Context, cmd SetLocationCommand) (*LocationDTO, error)
	GetLocation(ctx context.Context, userID uuid.UUID) (*LocationDTO, error)
}

// SetLocationCommand stores coordinates and permission state
type SetLocationCommand struct {
	UserID     uuid.UUID `validate:"required"`
	Latitude   *float64  `validate:"omitempty,min=-90,max=90"`
	Longitude  *float64  `validate:"omitempty,min=-180,max=180"`
	Permission string    `validate:"required,oneof=granted denied prompt"`
}

// LocationDTO is a cached location
type LocationDTO struct {
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	Permission string    `json:"permission"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WeatherSuggestionService maps weather to recipe suggestions
type WeatherSuggestionService interface {
	Suggest(ctx context.Context, query SuggestionQuery) (*SuggestionsDTO, error)
}

// SuggestionQuery locates the user either by explicit coordinates or via
// their cached location.
type SuggestionQuery struct {
	UserID    *uuid.UUID
	Latitude  *float64 `validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `validate:"omitempty,min=-180,max=180"`
}

// WeatherDTO is the observed weather
type WeatherDTO struct {
	Condition    string  `json:"condition"`
	Description  string  `json:"description"`
	TemperatureC float64 `json:"temperature_c"`
	City         string  `json:"city,omitempty"`
	Category     string  `json:"category"`
}

// SuggestionDTO is one suggestion with matching catalog dishes
type SuggestionDTO struct {
	Title  string    `json:"title"`
	Reason string    `json:"reason"`
	Dishes []DishDTO `json:"dishes"`
}

// SuggestionsDTO is the suggestion response
type SuggestionsDTO struct {
	Weather     WeatherDTO      `json:"weather"`
	MealSlot    string          `json:"meal_slot"`
	Suggestions []SuggestionDTO `json:"suggestions"`
}
