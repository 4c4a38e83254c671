package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	catalogapp "github.com/basketful/storefront/internal/application/catalog"
	"github.com/basketful/storefront/internal/domain/weather"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DishesPerSuggestion caps the catalog dishes attached to one suggestion
const DishesPerSuggestion = 3

// ConditionsKey is the cache key for conditions at rounded coordinates
func ConditionsKey(c weather.Coordinates) string {
	return fmt.Sprintf("weather:%s", c.CacheKey())
}

// SuggestionService turns current weather into dish suggestions
type SuggestionService struct {
	provider  outbound.WeatherProvider
	catalog   outbound.CatalogRepository
	locations *LocationService
	cache     outbound.CacheRepository
	cacheTTL  time.Duration
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(
	provider outbound.WeatherProvider,
	catalogRepo outbound.CatalogRepository,
	locations *LocationService,
	cache outbound.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *SuggestionService {
	return &SuggestionService{
		provider:  provider,
		catalog:   catalogRepo,
		locations: locations,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validate:  validator.New(),
		logger:    logger.Named("weather-service"),
		now:       time.Now,
	}
}

// Suggest returns the current weather with matching suggestions
func (s *SuggestionService) Suggest(ctx context.Context, query inbound.SuggestionQuery) (*inbound.SuggestionsDTO, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, errors.FromValidator(err)
	}

	coords, err := s.resolveCoordinates(ctx, query)
	if err != nil {
		return nil, err
	}

	cond, err := s.conditions(ctx, *coords)
	if err != nil {
		return nil, err
	}

	category := weather.Categorize(*cond)
	local := s.now().UTC().Add(cond.TZOffset)

	out := &inbound.SuggestionsDTO{
		Weather: inbound.WeatherDTO{
			Condition:    cond.Condition,
			Description:  cond.Description,
			TemperatureC: cond.TemperatureC,
			City:         cond.City,
			Category:     string(category),
		},
		MealSlot:    string(weather.MealSlotAt(local)),
		Suggestions: make([]inbound.SuggestionDTO, 0, 2),
	}

	for _, sug := range weather.SuggestionsFor(category) {
		dto := inbound.SuggestionDTO{
			Title:  sug.Title,
			Reason: sug.Reason,
			Dishes: []inbound.DishDTO{},
		}
		dishes, err := s.catalog.SearchDishes(ctx, sug.Keywords, DishesPerSuggestion)
		if err != nil {
			s.logger.Warn("Failed to match suggestion dishes",
				zap.String("suggestion", sug.Title),
				zap.Error(err),
			)
		}
		for _, d := range dishes {
			dto.Dishes = append(dto.Dishes, catalogapp.ToDishDTO(d))
		}
		out.Suggestions = append(out.Suggestions, dto)
	}

	return out, nil
}

func (s *SuggestionService) resolveCoordinates(ctx context.Context, query inbound.SuggestionQuery) (*weather.Coordinates, error) {
	if query.Latitude != nil && query.Longitude != nil {
		c := weather.Coordinates{Latitude: *query.Latitude, Longitude: *query.Longitude}
		if err := c.Validate(); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		return &c, nil
	}

	if query.UserID != nil {
		if c, err := s.locations.Coordinates(ctx, *query.UserID); err == nil {
			return c, nil
		}
	}

	return nil, errors.NewBadRequestError("Location is required: pass latitude and longitude or share your location")
}

func (s *SuggestionService) conditions(ctx context.Context, coords weather.Coordinates) (*weather.Conditions, error) {
	key := ConditionsKey(coords)

	if s.cacheTTL > 0 {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var cond weather.Conditions
			if err := json.Unmarshal(data, &cond); err == nil {
				return &cond, nil
			}
		}
	}

	cond, err := s.provider.Current(ctx, coords)
	if err != nil {
		return nil, errors.NewExternalServiceError("weather", err)
	}

	if s.cacheTTL > 0 {
		if data, err := json.Marshal(cond); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache weather", zap.Error(err))
			}
		}
	}

	return cond, nil
}
