// Package cart models per-user cart rows and their aggregation into dish
// bundles and standalone ingredient purchases.
package cart

import (
	"time"

	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/google/uuid"
)

const (
	MinPeople = 1
	MaxPeople = 50
)

// Row is a single cart line. A row with a nil DishID is a standalone
// ingredient purchase; otherwise People holds the servings multiplier shared
// by every row of that dish.
type Row struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	IngredientID uuid.UUID
	Quantity     float64
	DishID       *uuid.UUID
	People       *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStandalone reports whether the row is not part of a dish bundle
func (r Row) IsStandalone() bool {
	return r.DishID == nil
}

// PeopleOrOne returns the people multiplier, treating a missing value as one
func (r Row) PeopleOrOne() int {
	if r.People == nil || *r.People < MinPeople {
		return 1
	}
	return *r.People
}

// NewStandaloneRow creates a row for a single ingredient purchase
func NewStandaloneRow(userID, ingredientID uuid.UUID, quantity float64) (Row, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return Row{}, err
	}
	now := time.Now().UTC()
	return Row{
		ID:           uuid.New(),
		UserID:       userID,
		IngredientID: ingredientID,
		Quantity:     quantity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewDishRows expands a dish into one row per ingredient line. Optional lines
// are included only when includeOptional is set.
func NewDishRows(userID uuid.UUID, detail catalog.DishDetail, people int, includeOptional bool) ([]Row, error) {
	if err := ValidatePeople(people); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dishID := detail.Dish.ID
	rows := make([]Row, 0, len(detail.Lines))
	for _, line := range detail.Lines {
		if line.Optional && !includeOptional {
			continue
		}
		p := people
		d := dishID
		rows = append(rows, Row{
			ID:           uuid.New(),
			UserID:       userID,
			IngredientID: line.Ingredient.ID,
			Quantity:     line.Quantity,
			DishID:       &d,
			People:       &p,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if len(rows) == 0 {
		return nil, ErrDishHasNoIngredients
	}
	return rows, nil
}

// ValidatePeople checks a servings multiplier
func ValidatePeople(people int) error {
	if people < MinPeople || people > MaxPeople {
		return ErrInvalidPeople
	}
	return nil
}

// ValidateQuantity checks a row quantity
func ValidateQuantity(quantity float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
