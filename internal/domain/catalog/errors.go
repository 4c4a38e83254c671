package catalog

import "errors"

var (
	ErrDishNotFound       = errors.New("dish not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
)
