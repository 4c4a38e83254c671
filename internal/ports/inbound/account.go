package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FavoriteService manages saved dishes
type FavoriteService interface {
	List(ctx context.Context, userID uuid.UUID) ([]FavoriteDTO, error)
	Add(ctx context.Context, userID, dishID uuid.UUID) (*AddFavoriteResult, error)
	Remove(ctx context.Context, userID, dishID uuid.UUID) error
}

// FavoriteDTO is a saved dish
type FavoriteDTO struct {
	DishID    uuid.UUID `json:"dish_id"`
	Name      string    `json:"name"`
	Cuisine   string    `json:"cuisine"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AddFavoriteResult tells the caller whether anything changed
type AddFavoriteResult struct {
	Added   bool   `json:"added"`
	Message string `json:"message"`
}

// ProfileService manages contact and address details
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, cmd UpdateProfileCommand) (*ProfileDTO, error)
}

// UpdateProfileCommand replaces the editable profile fields
type UpdateProfileCommand struct {
	UserID      uuid.UUID `validate:"required"`
	FullName    string    `validate:"max=120"`
	Address     string    `validate:"max=255"`
	PhoneNumber string    `validate:"omitempty,e164"`
	City        string    `validate:"max=100"`
	PostalCode  string    `validate:"max=12"`
	BirthDate   *time.Time
}

// ProfileDTO is a profile as returned by the API
type ProfileDTO struct {
	UserID             uuid.UUID  `json:"user_id"`
	FullName           string     `json:"full_name"`
	Address            string     `json:"address"`
	PhoneNumber        string     `json:"phone_number"`
	City               string     `json:"city"`
	PostalCode         string     `json:"postal_code"`
	BirthDate          *time.Time `json:"birth_date,omitempty"`
	CheckoutReady      bool       `json:"checkout_ready"`
	MissingForCheckout []string   `json:"missing_for_checkout,omitempty"`
}

// FeedbackService accepts visitor feedback
type FeedbackService interface {
	Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*FeedbackDTO, error)
}

// SubmitFeedbackCommand is a feedback submission
type SubmitFeedbackCommand struct {
	UserID  *uuid.UUID
	Name    string `validate:"required,max=120"`
	Email   string `validate:"required,email"`
	Message string `validate:"required,min=5,max=2000"`
	Rating  *int   `validate:"omitempty,min=1,max=5"`
}

// FeedbackDTO acknowledges a submission
type FeedbackDTO struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthService signs users in and out
type AuthService interface {
	SignUp(ctx context.Context, cmd SignUpCommand) (*AuthResult, error)
	SignIn(ctx context.Context, cmd SignInCommand) (*AuthResult, error)
	SignOut(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
}

// SignUpCommand registers an account
type SignUpCommand struct {
	Email     string `validate:"required,email,max=255"`
	Password  string `validate:"required,min=8,max=128"`
	IPAddress string
	UserAgent string
}

// SignInCommand authenticates an account
type SignInCommand struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
	IPAddress string
	UserAgent string
}

// UserDTO is the signed-in user
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuthResult carries the access token for a new session
type AuthResult struct {
	User        UserDTO   `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
