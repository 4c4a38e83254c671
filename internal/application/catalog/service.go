// Package catalog provides read access to dishes and ingredients
package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cuisinesCacheKey     = "catalog:cuisines"
	ingredientQueryLimit = 50
)

// CatalogService implements the read-only catalog use cases
type CatalogService struct {
	repo     outbound.CatalogRepository
	cache    outbound.CacheRepository
	cacheTTL time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service. A zero cacheTTL disables
// caching of the cuisine list.
func NewCatalogService(
	repo outbound.CatalogRepository,
	cache outbound.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		validate: validator.New(),
		logger:   logger.Named("catalog-service"),
	}
}

// ListCuisines returns the distinct cuisine tags in alphabetical order
func (s *CatalogService) ListCuisines(ctx context.Context) ([]string, error) {
	if s.cacheTTL > 0 {
		if data, err := s.cache.Get(ctx, cuisinesCacheKey); err == nil {
			var cuisines []string
			if err := json.Unmarshal(data, &cuisines); err == nil {
				return cuisines, nil
			}
		}
	}

	cuisines, err := s.repo.ListCuisines(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list cuisines", err)
	}

	if s.cacheTTL > 0 {
		if data, err := json.Marshal(cuisines); err == nil {
			if err := s.cache.Set(ctx, cuisinesCacheKey, data, s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache cuisines", zap.Error(err))
			}
		}
	}

	return cuisines, nil
}

// ListDishes returns a filtered page of dishes
func (s *CatalogService) ListDishes(ctx context.Context, query inbound.DishQuery) (*inbound.DishList, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, errors.FromValidator(err)
	}

	filter := catalog.Filter{
		Cuisine: query.Cuisine,
		Age:     query.Age,
		Query:   query.Query,
		Offset:  query.Offset,
		Limit:   query.Limit,
	}.Normalize()

	dishes, total, err := s.repo.ListDishes(ctx, filter)
	if err != nil {
		return nil, errors.NewDatabaseError("list dishes", err)
	}

	list := &inbound.DishList{
		Dishes: make([]inbound.DishDTO, 0, len(dishes)),
		Total:  total,
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}
	for _, d := range dishes {
		list.Dishes = append(list.Dishes, ToDishDTO(d))
	}
	return list, nil
}

// GetDish returns a dish with its ingredient lines
func (s *CatalogService) GetDish(ctx context.Context, id uuid.UUID) (*inbound.DishDetailDTO, error) {
	detail, err := s.repo.GetDishDetail(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("load dish", err)
	}
	if detail == nil {
		return nil, errors.NewNotFoundError("dish")
	}

	dto := &inbound.DishDetailDTO{
		DishDTO:     ToDishDTO(detail.Dish),
		RecipeText:  detail.Dish.RecipeText,
		Ingredients: make([]inbound.DishIngredientDTO, 0, len(detail.Lines)),
	}
	for _, line := range detail.Lines {
		dto.Ingredients = append(dto.Ingredients, inbound.DishIngredientDTO{
			IngredientID: line.Ingredient.ID,
			Name:         line.Ingredient.Name,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
			Optional:     line.Optional,
		})
	}
	return dto, nil
}

// ListIngredients returns ingredients whose name contains the query
func (s *CatalogService) ListIngredients(ctx context.Context, query string) ([]inbound.IngredientDTO, error) {
	ingredients, err := s.repo.ListIngredients(ctx, strings.TrimSpace(query), ingredientQueryLimit)
	if err != nil {
		return nil, errors.NewDatabaseError("list ingredients", err)
	}

	out := make([]inbound.IngredientDTO, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, inbound.IngredientDTO{
			ID:           ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Category:     ing.Category,
			Price:        ing.Price,
			DietaryFlags: ing.DietaryFlags,
		})
	}
	return out, nil
}

// ToDishDTO converts a catalog dish to its API form
func ToDishDTO(d catalog.Dish) inbound.DishDTO {
	return inbound.DishDTO{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Cuisine:     d.Cuisine,
		ImageURL:    d.ImageURL,
		MinAge:      d.MinAge,
	}
}
