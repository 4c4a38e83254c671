// Package favorite models a user's saved dishes
package favorite

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyFavorite = errors.New("dish is already in favorites")
	ErrNotFavorite     = errors.New("dish is not in favorites")
)

// Favorite is unique per (user, dish)
type Favorite struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DishID    uuid.UUID
	CreatedAt time.Time
}

// New creates a favorite for a user and dish
func New(userID, dishID uuid.UUID) Favorite {
	return Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		DishID:    dishID,
		CreatedAt: time.Now().UTC(),
	}
}
