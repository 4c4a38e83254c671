// Package feedback holds user-submitted storefront feedback
package feedback

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinMessageLength = 5
	MaxMessageLength = 2000
)

var (
	ErrMessageLength = errors.New("feedback message must be between 5 and 2000 characters")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Feedback is a message left by a visitor or signed-in user
type Feedback struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Name      string
	Email     string
	Message   string
	Rating    *int
	CreatedAt time.Time
}

// New validates and creates a feedback entry
func New(userID *uuid.UUID, name, email, message string, rating *int) (*Feedback, error) {
	message = strings.TrimSpace(message)
	if n := len([]rune(message)); n < MinMessageLength || n > MaxMessageLength {
		return nil, ErrMessageLength
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ErrInvalidRating
	}

	return &Feedback{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Message:   message,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}, nil
}
