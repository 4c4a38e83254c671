package inbound

import (
	"context"

	"github.com/google/uuid"
)

// CartService manages a user's cart
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddDish(ctx context.Context, cmd AddDishCommand) (*CartDTO, error)
	AddIngredient(ctx context.Context, cmd AddIngredientCommand) (*CartDTO, error)
	UpdateItemQuantity(ctx context.Context, cmd UpdateQuantityCommand) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, rowID uuid.UUID) (*CartDTO, error)
	UpdateDishPeople(ctx context.Context, cmd UpdatePeopleCommand) (*CartDTO, error)
	RemoveDish(ctx context.Context, userID, dishID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// AddDishCommand adds every ingredient of a dish as a bundle
type AddDishCommand struct {
	UserID          uuid.UUID `validate:"required"`
	DishID          uuid.UUID `validate:"required"`
	People          int       `validate:"min=1,max=50"`
	IncludeOptional bool
}

// AddIngredientCommand adds a standalone ingredient
type AddIngredientCommand struct {
	UserID       uuid.UUID `validate:"required"`
	IngredientID uuid.UUID `validate:"required"`
	Quantity     float64   `validate:"gt=0,lte=1000"`
}

// UpdateQuantityCommand changes one row's quantity
type UpdateQuantityCommand struct {
	UserID   uuid.UUID `validate:"required"`
	RowID    uuid.UUID `validate:"required"`
	Quantity float64   `validate:"gt=0,lte=1000"`
}

// UpdatePeopleCommand changes the people count of a whole dish bundle
type UpdatePeopleCommand struct {
	UserID uuid.UUID `validate:"required"`
	DishID uuid.UUID `validate:"required"`
	People int       `validate:"min=1,max=50"`
}

// CartLineDTO is one cart row with display data
type CartLineDTO struct {
	ID           uuid.UUID `json:"id"`
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Quantity     float64   `json:"quantity"`
	LineTotal    float64   `json:"line_total"`
}

// DishBundleDTO is a dish with its people count and rows
type DishBundleDTO struct {
	DishID  uuid.UUID     `json:"dish_id"`
	Name    string        `json:"name"`
	Cuisine string        `json:"cuisine"`
	People  int           `json:"people"`
	Items   []CartLineDTO `json:"items"`
	Total   float64       `json:"total"`
}

// CartDTO is the aggregated cart
type CartDTO struct {
	Bundles      []DishBundleDTO `json:"bundles"`
	Standalone   []CartLineDTO   `json:"standalone"`
	ItemCount    int             `json:"item_count"`
	Subtotal     float64         `json:"subtotal"`
	PackagingFee float64         `json:"packaging_fee"`
	Total        float64         `json:"total"`
}
