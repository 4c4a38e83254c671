package cart

import "errors"

var (
	ErrInvalidPeople        = errors.New("people must be between 1 and 50")
	ErrInvalidQuantity      = errors.New("quantity must be greater than 0")
	ErrRowNotFound          = errors.New("cart item not found")
	ErrDishNotInCart        = errors.New("dish is not in the cart")
	ErrDishHasNoIngredients = errors.New("dish has no ingredients to add")
	ErrEmptyCart            = errors.New("cart is empty")
)
