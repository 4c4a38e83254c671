// Package inbound defines the use cases the storefront exposes to driving
// adapters such as the HTTP API, along with their commands and DTOs.
package inbound

import (
	"context"

	"github.com/google/uuid"
)

// CatalogService exposes the read-only catalog
type CatalogService interface {
	ListCuisines(ctx context.Context) ([]string, error)
	ListDishes(ctx context.Context, query DishQuery) (*DishList, error)
	GetDish(ctx context.Context, id uuid.UUID) (*DishDetailDTO, error)
	ListIngredients(ctx context.Context, query string) ([]IngredientDTO, error)
}

// DishQuery filters dish listings
type DishQuery struct {
	Cuisine string `form:"cuisine"`
	Age     *int   `form:"age" validate:"omitempty,min=0,max=120"`
	Query   string `form:"q" validate:"max=100"`
	Offset  int    `form:"offset" validate:"min=0"`
	Limit   int    `form:"limit" validate:"min=0,max=100"`
}

// DishDTO is a dish as returned by the API
type DishDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Cuisine     string    `json:"cuisine"`
	ImageURL    string    `json:"image_url,omitempty"`
	MinAge      int       `json:"min_age"`
}

// DishList is a page of dishes
type DishList struct {
	Dishes []DishDTO `json:"dishes"`
	Total  int64     `json:"total"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

// DishIngredientDTO is one ingredient line of a dish
type DishIngredientDTO struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Optional     bool      `json:"optional"`
}

// DishDetailDTO is a dish with its ingredients and recipe text
type DishDetailDTO struct {
	DishDTO
	RecipeText  string              `json:"recipe_text,omitempty"`
	Ingredients []DishIngredientDTO `json:"ingredients"`
}

// IngredientDTO is a catalog ingredient
type IngredientDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	DietaryFlags []string  `json:"dietary_flags,omitempty"`
}
