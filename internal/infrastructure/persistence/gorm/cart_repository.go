package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository persists cart rows in the user_carts table
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) outbound.CartRepository {
	return &CartRepository{db: db}
}

// ListByUser returns all rows of a user's cart in insertion order
func (r *CartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]cart.Row, error) {
	var models []CartItemModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	rows := make([]cart.Row, 0, len(models))
	for _, m := range models {
		rows = append(rows, modelToRow(m))
	}
	return rows, nil
}

// FindRow returns one row of the user's cart
func (r *CartRepository) FindRow(ctx context.Context, userID, rowID uuid.UUID) (*cart.Row, error) {
	return r.first(ctx, "id = ? AND user_id = ?", rowID, userID)
}

// FindStandalone returns the user's standalone row for an ingredient
func (r *CartRepository) FindStandalone(ctx context.Context, userID, ingredientID uuid.UUID) (*cart.Row, error) {
	return r.first(ctx, "user_id = ? AND ingredient_id = ? AND dish_id IS NULL", userID, ingredientID)
}

// Create inserts a row
func (r *CartRepository) Create(ctx context.Context, row cart.Row) error {
	model := rowToModel(row)
	return r.db.WithContext(ctx).Create(&model).Error
}

// ReplaceDishRows swaps every row of a dish for the given rows atomically
func (r *CartRepository) ReplaceDishRows(ctx context.Context, userID, dishID uuid.UUID, rows []cart.Row) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND dish_id = ?", userID, dishID).Delete(&CartItemModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		models := make([]CartItemModel, 0, len(rows))
		for _, row := range rows {
			models = append(models, rowToModel(row))
		}
		return tx.Create(&models).Error
	})
}

// UpdateQuantity sets the quantity of one row
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, rowID uuid.UUID, quantity float64) error {
	result := r.db.WithContext(ctx).Model(&CartItemModel{}).
		Where("id = ? AND user_id = ?", rowID, userID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cart.ErrRowNotFound
	}
	return nil
}

// Delete removes one row
func (r *CartRepository) Delete(ctx context.Context, userID, rowID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", rowID, userID).Delete(&CartItemModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cart.ErrRowNotFound
	}
	return nil
}

// UpdatePeopleForDish sets people on every row of a dish and returns how many
// rows changed.
func (r *CartRepository) UpdatePeopleForDish(ctx context.Context, userID, dishID uuid.UUID, people int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&CartItemModel{}).
		Where("user_id = ? AND dish_id = ?", userID, dishID).
		Updates(map[string]interface{}{"people": people, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// DeleteDish removes every row of a dish
func (r *CartRepository) DeleteDish(ctx context.Context, userID, dishID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ? AND dish_id = ?", userID, dishID).Delete(&CartItemModel{})
	return result.RowsAffected, result.Error
}

// ClearForUser empties a cart
func (r *CartRepository) ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItemModel{})
	return result.RowsAffected, result.Error
}

// CountByUser counts a user's rows
func (r *CartRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CartItemModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *CartRepository) first(ctx context.Context, query string, args ...interface{}) (*cart.Row, error) {
	var model CartItemModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	row := modelToRow(model)
	return &row, nil
}
