// Package outbound defines the interfaces for outbound ports (driven adapters).
// The application layer depends only on these contracts.
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/domain/favorite"
	"github.com/basketful/storefront/internal/domain/feedback"
	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/domain/user"
	"github.com/google/uuid"
)

// UserRepository persists storefront accounts. Finders return nil, nil when
// no user matches; Create returns user.ErrEmailTaken on a duplicate email.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CatalogRepository reads dishes, ingredients and their joins. Single-item
// finders return nil, nil when nothing matches.
type CatalogRepository interface {
	ListCuisines(ctx context.Context) ([]string, error)
	ListDishes(ctx context.Context, filter catalog.Filter) ([]catalog.Dish, int64, error)
	FindDishByID(ctx context.Context, id uuid.UUID) (*catalog.Dish, error)
	FindDishesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Dish, error)
	GetDishDetail(ctx context.Context, id uuid.UUID) (*catalog.DishDetail, error)
	SearchDishes(ctx context.Context, keywords []string, limit int) ([]catalog.Dish, error)
	ListIngredients(ctx context.Context, query string, limit int) ([]catalog.Ingredient, error)
	FindIngredientByID(ctx context.Context, id uuid.UUID) (*catalog.Ingredient, error)
	FindIngredientsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Ingredient, error)
}

// CartRepository persists per-user cart rows. Row-level writes return
// cart.ErrRowNotFound when the row does not belong to the user.
type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]cart.Row, error)
	FindRow(ctx context.Context, userID, rowID uuid.UUID) (*cart.Row, error)
	FindStandalone(ctx context.Context, userID, ingredientID uuid.UUID) (*cart.Row, error)
	Create(ctx context.Context, row cart.Row) error
	ReplaceDishRows(ctx context.Context, userID, dishID uuid.UUID, rows []cart.Row) error
	UpdateQuantity(ctx context.Context, userID, rowID uuid.UUID, quantity float64) error
	Delete(ctx context.Context, userID, rowID uuid.UUID) error
	UpdatePeopleForDish(ctx context.Context, userID, dishID uuid.UUID, people int) (int64, error)
	DeleteDish(ctx context.Context, userID, dishID uuid.UUID) (int64, error)
	ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// FavoriteRepository persists favorites. Create returns
// favorite.ErrAlreadyFavorite when the (user, dish) pair exists.
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]favorite.Favorite, error)
	Exists(ctx context.Context, userID, dishID uuid.UUID) (bool, error)
	Create(ctx context.Context, f favorite.Favorite) error
	Delete(ctx context.Context, userID, dishID uuid.UUID) error
}

// ProfileRepository persists profiles. FindByUserID returns nil, nil when the
// user has no stored profile.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
	Upsert(ctx context.Context, p *profile.Profile) error
}

// RecipeUsageRepository persists daily generation markers. Create returns
// recipegen.ErrQuotaExhausted when a row for the same (user, day) exists.
type RecipeUsageRepository interface {
	ExistsForDay(ctx context.Context, userID uuid.UUID, day string) (bool, error)
	Create(ctx context.Context, usage recipegen.Usage) error
}

// FeedbackRepository persists feedback
type FeedbackRepository interface {
	Create(ctx context.Context, f *feedback.Feedback) error
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the key/value cache operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// SetIfAbsent stores value only when key does not exist and reports
	// whether it did.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// Session is a signed-in browser session
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps server-side session records
type SessionStore interface {
	Create(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
