package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository persists profiles
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) outbound.ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUserID loads a user's profile
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return modelToProfile(model), nil
}

// Upsert inserts or fully replaces a profile
func (r *ProfileRepository) Upsert(ctx context.Context, p *profile.Profile) error {
	model := profileToModel(p)
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "address", "phone_number", "city", "postal_code", "birth_date", "updated_at",
		}),
	}).Create(&model).Error
}
