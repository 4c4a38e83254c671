package gorm

import (
	"context"

	"github.com/basketful/storefront/internal/domain/favorite"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FavoriteRepository persists favorites in user_favorites
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *gorm.DB) outbound.FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// ListByUser returns favorites newest first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]favorite.Favorite, error) {
	var models []FavoriteModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]favorite.Favorite, 0, len(models))
	for _, m := range models {
		out = append(out, modelToFavorite(m))
	}
	return out, nil
}

// Exists reports whether the pair is stored
func (r *FavoriteRepository) Exists(ctx context.Context, userID, dishID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&FavoriteModel{}).
		Where("user_id = ? AND dish_id = ?", userID, dishID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a favorite; the unique index rejects duplicates
func (r *FavoriteRepository) Create(ctx context.Context, f favorite.Favorite) error {
	model := FavoriteModel{ID: f.ID, UserID: f.UserID, DishID: f.DishID, CreatedAt: f.CreatedAt}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return favorite.ErrAlreadyFavorite
		}
		return err
	}
	return nil
}

// Delete removes a favorite
func (r *FavoriteRepository) Delete(ctx context.Context, userID, dishID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND dish_id = ?", userID, dishID).Delete(&FavoriteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return favorite.ErrNotFavorite
	}
	return nil
}
