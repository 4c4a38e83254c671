// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/domain/favorite"
	"github.com/basketful/storefront/internal/domain/feedback"
	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/domain/shared"
	"github.com/basketful/storefront/internal/domain/user"
	"github.com/basketful/storefront/internal/domain/weather"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository provides a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MockCatalogRepository provides a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListCuisines(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) ListDishes(ctx context.Context, filter catalog.Filter) ([]catalog.Dish, int64, error) {
	args := m.Called(ctx, filter)
	var dishes []catalog.Dish
	if v := args.Get(0); v != nil {
		dishes = v.([]catalog.Dish)
	}
	return dishes, args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) FindDishByID(ctx context.Context, id uuid.UUID) (*catalog.Dish, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*catalog.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) FindDishesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Dish, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.(map[uuid.UUID]catalog.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) GetDishDetail(ctx context.Context, id uuid.UUID) (*catalog.DishDetail, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*catalog.DishDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) SearchDishes(ctx context.Context, keywords []string, limit int) ([]catalog.Dish, error) {
	args := m.Called(ctx, keywords, limit)
	if v := args.Get(0); v != nil {
		return v.([]catalog.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) ListIngredients(ctx context.Context, query string, limit int) ([]catalog.Ingredient, error) {
	args := m.Called(ctx, query, limit)
	if v := args.Get(0); v != nil {
		return v.([]catalog.Ingredient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) FindIngredientByID(ctx context.Context, id uuid.UUID) (*catalog.Ingredient, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*catalog.Ingredient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) FindIngredientsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Ingredient, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.(map[uuid.UUID]catalog.Ingredient), args.Error(1)
	}
	return nil, args.Error(1)
}

// InMemoryCartRepository is a working CartRepository backed by a slice. It is
// used where a test cares about the resulting cart state rather than the calls.
type InMemoryCartRepository struct {
	mu   sync.Mutex
	rows []cart.Row
}

// NewInMemoryCartRepository creates a cart repository seeded with rows
func NewInMemoryCartRepository(rows ...cart.Row) *InMemoryCartRepository {
	return &InMemoryCartRepository{rows: append([]cart.Row(nil), rows...)}
}

func (r *InMemoryCartRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]cart.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []cart.Row
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *InMemoryCartRepository) FindRow(_ context.Context, userID, rowID uuid.UUID) (*cart.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.ID == rowID {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (r *InMemoryCartRepository) FindStandalone(_ context.Context, userID, ingredientID uuid.UUID) (*cart.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.IsStandalone() && row.IngredientID == ingredientID {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (r *InMemoryCartRepository) Create(_ context.Context, row cart.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	return nil
}

func (r *InMemoryCartRepository) ReplaceDishRows(_ context.Context, userID, dishID uuid.UUID, rows []cart.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID == userID && row.DishID != nil && *row.DishID == dishID {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = append(kept, rows...)
	return nil
}

func (r *InMemoryCartRepository) UpdateQuantity(_ context.Context, userID, rowID uuid.UUID, quantity float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].ID == rowID {
			r.rows[i].Quantity = quantity
			return nil
		}
	}
	return cart.ErrRowNotFound
}

func (r *InMemoryCartRepository) Delete(_ context.Context, userID, rowID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].ID == rowID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return cart.ErrRowNotFound
}

func (r *InMemoryCartRepository) UpdatePeopleForDish(_ context.Context, userID, dishID uuid.UUID, people int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].DishID != nil && *r.rows[i].DishID == dishID {
			p := people
			r.rows[i].People = &p
			n++
		}
	}
	return n, nil
}

func (r *InMemoryCartRepository) DeleteDish(_ context.Context, userID, dishID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID == userID && row.DishID != nil && *row.DishID == dishID {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

func (r *InMemoryCartRepository) ClearForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID == userID {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

func (r *InMemoryCartRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	rows, _ := r.ListByUser(ctx, userID)
	return int64(len(rows)), nil
}

// MockFavoriteRepository provides a mock implementation of FavoriteRepository
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]favorite.Favorite, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]favorite.Favorite), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFavoriteRepository) Exists(ctx context.Context, userID, dishID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, dishID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) Create(ctx context.Context, f favorite.Favorite) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, userID, dishID uuid.UUID) error {
	return m.Called(ctx, userID, dishID).Error(0)
}

// MockProfileRepository provides a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

// MockRecipeUsageRepository provides a mock implementation of RecipeUsageRepository
type MockRecipeUsageRepository struct {
	mock.Mock
}

func (m *MockRecipeUsageRepository) ExistsForDay(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	args := m.Called(ctx, userID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeUsageRepository) Create(ctx context.Context, usage recipegen.Usage) error {
	return m.Called(ctx, usage).Error(0)
}

// MockFeedbackRepository provides a mock implementation of FeedbackRepository
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	return m.Called(ctx, f).Error(0)
}

// MockRecipeGenerator provides a mock implementation of RecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

func (m *MockRecipeGenerator) Generate(ctx context.Context, prompt string) (*outbound.GeneratedText, error) {
	args := m.Called(ctx, prompt)
	if v := args.Get(0); v != nil {
		return v.(*outbound.GeneratedText), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeGenerator) Provider() string {
	return "mock"
}

// MockWeatherProvider provides a mock implementation of WeatherProvider
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) Current(ctx context.Context, coords weather.Coordinates) (*weather.Conditions, error) {
	args := m.Called(ctx, coords)
	if v := args.Get(0); v != nil {
		return v.(*weather.Conditions), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier provides a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendFeedbackAcknowledgement(ctx context.Context, to, name string) error {
	return m.Called(ctx, to, name).Error(0)
}

// MockTokenIssuer provides a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueAccessToken(userID uuid.UUID, email, sessionID string) (string, time.Time, error) {
	args := m.Called(userID, email, sessionID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// RecordingDispatcher is an EventDispatcher that keeps every dispatched event
type RecordingDispatcher struct {
	mu     sync.Mutex
	Events []shared.DomainEvent
}

func (d *RecordingDispatcher) Dispatch(_ context.Context, event shared.DomainEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, event)
}

func (d *RecordingDispatcher) Register(string, shared.EventHandler) {}

// Names returns the names of the dispatched events in order
func (d *RecordingDispatcher) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.Events))
	for _, e := range d.Events {
		names = append(names, e.EventName())
	}
	return names
}
