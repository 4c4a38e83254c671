package recipegen

import "strings"

// MaxIngredients bounds a single generation request
const MaxIngredients = 20

// Request is the user's input for a generated recipe
type Request struct {
	Ingredients []string
	Preferences string
	Cuisine     string
	Servings    int
	Dietary     []string
}

// Normalize trims inputs and validates the ingredient list
func (r Request) Normalize() (Request, error) {
	if len(r.Ingredients) == 0 {
		return r, ErrNoIngredients
	}
	if len(r.Ingredients) > MaxIngredients {
		return r, ErrTooManyItems
	}

	cleaned := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			return r, ErrEmptyIngredient
		}
		cleaned = append(cleaned, ing)
	}
	r.Ingredients = cleaned
	r.Preferences = strings.TrimSpace(r.Preferences)
	r.Cuisine = strings.TrimSpace(r.Cuisine)
	if r.Servings <= 0 {
		r.Servings = 2
	}
	return r, nil
}
