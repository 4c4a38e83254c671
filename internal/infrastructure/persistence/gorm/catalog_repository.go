package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository reads dishes and ingredients
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) outbound.CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCuisines returns the distinct dish cuisines in alphabetical order
func (r *CatalogRepository) ListCuisines(ctx context.Context) ([]string, error) {
	var cuisines []string
	err := r.db.WithContext(ctx).Model(&DishModel{}).
		Where("cuisine <> ''").
		Distinct("cuisine").
		Order("cuisine").
		Pluck("cuisine", &cuisines).Error
	return cuisines, err
}

// ListDishes returns a page of dishes and the total matching count
func (r *CatalogRepository) ListDishes(ctx context.Context, filter catalog.Filter) ([]catalog.Dish, int64, error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&DishModel{})
	if filter.Cuisine != "" {
		query = query.Where("cuisine = ?", filter.Cuisine)
	}
	if filter.Age != nil {
		query = query.Where("min_age <= ?", *filter.Age)
	}
	if filter.Query != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Query))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []DishModel
	if err := query.Order("name").Offset(filter.Offset).Limit(filter.Limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	dishes := make([]catalog.Dish, 0, len(models))
	for _, m := range models {
		dishes = append(dishes, modelToDish(m))
	}
	return dishes, total, nil
}

// FindDishByID finds a dish by ID
func (r *CatalogRepository) FindDishByID(ctx context.Context, id uuid.UUID) (*catalog.Dish, error) {
	var model DishModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	dish := modelToDish(model)
	return &dish, nil
}

// FindDishesByIDs loads dishes in one query, keyed by ID
func (r *CatalogRepository) FindDishesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Dish, error) {
	out := make(map[uuid.UUID]catalog.Dish, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []DishModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, m := range models {
		out[m.ID] = modelToDish(m)
	}
	return out, nil
}

// GetDishDetail loads a dish with its ingredient lines
func (r *CatalogRepository) GetDishDetail(ctx context.Context, id uuid.UUID) (*catalog.DishDetail, error) {
	var model DishModel
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("optional, ingredient_id")
		}).
		Preload("Ingredients.Ingredient").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	detail := modelToDetail(model)
	return &detail, nil
}

// SearchDishes matches any keyword against dish names and descriptions
func (r *CatalogRepository) SearchDishes(ctx context.Context, keywords []string, limit int) ([]catalog.Dish, error) {
	if limit <= 0 {
		limit = 10
	}

	var clauses []string
	var args []interface{}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		clauses = append(clauses, "LOWER(name) LIKE ? OR LOWER(description) LIKE ?")
		args = append(args, likePattern(kw), likePattern(kw))
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	var models []DishModel
	err := r.db.WithContext(ctx).
		Where(strings.Join(clauses, " OR "), args...).
		Order("name").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	dishes := make([]catalog.Dish, 0, len(models))
	for _, m := range models {
		dishes = append(dishes, modelToDish(m))
	}
	return dishes, nil
}

// ListIngredients returns ingredients whose name contains query
func (r *CatalogRepository) ListIngredients(ctx context.Context, query string, limit int) ([]catalog.Ingredient, error) {
	db := r.db.WithContext(ctx).Model(&IngredientModel{})
	if q := strings.TrimSpace(query); q != "" {
		db = db.Where("LOWER(name) LIKE ?", likePattern(q))
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var models []IngredientModel
	if err := db.Order("name").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]catalog.Ingredient, 0, len(models))
	for _, m := range models {
		out = append(out, modelToIngredient(m))
	}
	return out, nil
}

// FindIngredientByID finds an ingredient by ID
func (r *CatalogRepository) FindIngredientByID(ctx context.Context, id uuid.UUID) (*catalog.Ingredient, error) {
	var model IngredientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ing := modelToIngredient(model)
	return &ing, nil
}

// FindIngredientsByIDs loads ingredients in one query, keyed by ID
func (r *CatalogRepository) FindIngredientsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Ingredient, error) {
	out := make(map[uuid.UUID]catalog.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []IngredientModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, m := range models {
		out[m.ID] = modelToIngredient(m)
	}
	return out, nil
}

func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("%", "", "_", "").Replace(s)
	return "%" + s + "%"
}
