// Package catalog defines the read-only dish and ingredient catalog
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dish is a catalog dish that can be added to a cart as a bundle
type Dish struct {
	ID          uuid.UUID
	Name        string
	Description string
	Cuisine     string
	ImageURL    string
	RecipeText  string
	MinAge      int
	CreatedAt   time.Time
}

// SuitableFor reports whether the dish may be shown to someone of the given age
func (d Dish) SuitableFor(age int) bool {
	return d.MinAge <= age
}

// Ingredient is a purchasable catalog ingredient
type Ingredient struct {
	ID           uuid.UUID
	Name         string
	Unit         string
	Category     string
	Price        float64
	DietaryFlags []string
	CreatedAt    time.Time
}

// DishIngredient joins a dish to one of its ingredients
type DishIngredient struct {
	DishID       uuid.UUID
	IngredientID uuid.UUID
	Quantity     float64
	UnitOverride string
	Optional     bool
}

// EffectiveUnit returns the unit override when present, else the ingredient unit
func (di DishIngredient) EffectiveUnit(ing Ingredient) string {
	if strings.TrimSpace(di.UnitOverride) != "" {
		return di.UnitOverride
	}
	return ing.Unit
}

// IngredientLine is a dish ingredient resolved against the ingredient table
type IngredientLine struct {
	Ingredient Ingredient
	Quantity   float64
	Unit       string
	Optional   bool
}

// DishDetail is a dish together with its ingredient lines
type DishDetail struct {
	Dish  Dish
	Lines []IngredientLine
}

// Filter narrows dish listings
type Filter struct {
	Cuisine string
	Age     *int
	Query   string
	Offset  int
	Limit   int
}

// Normalize clamps paging values
func (f Filter) Normalize() Filter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	f.Cuisine = strings.ToLower(strings.TrimSpace(f.Cuisine))
	f.Query = strings.TrimSpace(f.Query)
	return f
}
