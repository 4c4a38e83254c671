package gorm

import (
	"context"

	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeUsageRepository persists daily generation markers
type RecipeUsageRepository struct {
	db *gorm.DB
}

// NewRecipeUsageRepository creates a new usage repository
func NewRecipeUsageRepository(db *gorm.DB) outbound.RecipeUsageRepository {
	return &RecipeUsageRepository{db: db}
}

// ExistsForDay reports whether the user already generated on day
func (r *RecipeUsageRepository) ExistsForDay(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RecipeUsageModel{}).
		Where("user_id = ? AND usage_date = ?", userID, day).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a marker. The (user_id, usage_date) unique index makes a
// concurrent second insert fail with ErrQuotaExhausted.
func (r *RecipeUsageRepository) Create(ctx context.Context, usage recipegen.Usage) error {
	model := usageToModel(usage)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return recipegen.ErrQuotaExhausted
		}
		return err
	}
	return nil
}
