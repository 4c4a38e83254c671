// Package account groups the per-user account use cases: favorites, profile
// and feedback.
package account

import (
	"context"
	stderrors "errors"

	"github.com/basketful/storefront/internal/domain/favorite"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlreadyFavoriteMessage is returned when a dish is favorited twice
const AlreadyFavoriteMessage = "Dish is already in your favorites"

// FavoriteService implements saved dishes
type FavoriteService struct {
	favorites outbound.FavoriteRepository
	catalog   outbound.CatalogRepository
	logger    *zap.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	favorites outbound.FavoriteRepository,
	catalogRepo outbound.CatalogRepository,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		catalog:   catalogRepo,
		logger:    logger.Named("favorite-service"),
	}
}

// List returns the user's favorites, newest first. Favorites whose dish no
// longer exists are skipped.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]inbound.FavoriteDTO, error) {
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list favorites", err)
	}
	if len(favs) == 0 {
		return []inbound.FavoriteDTO{}, nil
	}

	ids := make([]uuid.UUID, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.DishID)
	}
	dishes, err := s.catalog.FindDishesByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("load favorite dishes", err)
	}

	out := make([]inbound.FavoriteDTO, 0, len(favs))
	for _, f := range favs {
		d, ok := dishes[f.DishID]
		if !ok {
			continue
		}
		out = append(out, inbound.FavoriteDTO{
			DishID:    d.ID,
			Name:      d.Name,
			Cuisine:   d.Cuisine,
			ImageURL:  d.ImageURL,
			CreatedAt: f.CreatedAt,
		})
	}
	return out, nil
}

// Add saves a dish. Saving a dish twice is not an error.
func (s *FavoriteService) Add(ctx context.Context, userID, dishID uuid.UUID) (*inbound.AddFavoriteResult, error) {
	dish, err := s.catalog.FindDishByID(ctx, dishID)
	if err != nil {
		return nil, errors.NewDatabaseError("load dish", err)
	}
	if dish == nil {
		return nil, errors.NewNotFoundError("dish")
	}

	exists, err := s.favorites.Exists(ctx, userID, dishID)
	if err != nil {
		return nil, errors.NewDatabaseError("check favorite", err)
	}
	if exists {
		return &inbound.AddFavoriteResult{Added: false, Message: AlreadyFavoriteMessage}, nil
	}

	if err := s.favorites.Create(ctx, favorite.New(userID, dishID)); err != nil {
		// lost a race with a concurrent add
		if stderrors.Is(err, favorite.ErrAlreadyFavorite) {
			return &inbound.AddFavoriteResult{Added: false, Message: AlreadyFavoriteMessage}, nil
		}
		return nil, errors.NewDatabaseError("add favorite", err)
	}

	s.logger.Info("Favorite added",
		zap.String("user_id", userID.String()),
		zap.String("dish_id", dishID.String()),
	)

	return &inbound.AddFavoriteResult{Added: true, Message: "Added to favorites"}, nil
}

// Remove deletes a favorite
func (s *FavoriteService) Remove(ctx context.Context, userID, dishID uuid.UUID) error {
	if err := s.favorites.Delete(ctx, userID, dishID); err != nil {
		if stderrors.Is(err, favorite.ErrNotFavorite) {
			return errors.NewNotFoundError("favorite")
		}
		return errors.NewDatabaseError("remove favorite", err)
	}
	return nil
}
