package testutils

import (
	"context"

	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCartService mocks inbound.CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*inbound.CartDTO, error) {
	if v := args.Get(0); v != nil {
		return v.(*inbound.CartDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*inbound.CartDTO, error) {
	return m.cart(m.Called(ctx, userID))
}

func (m *MockCartService) AddDish(ctx context.Context, cmd inbound.AddDishCommand) (*inbound.CartDTO, error) {
	return m.cart(m.Called(ctx, cmd))
}

func (m *MockCartService) AddIngredient(ctx context.Context, cmd inbound.AddIngredientCommand) (*inbound.CartDTO, error) {
	return m.cart(m.Called(ctx, cmd))
}

func (m *MockCartService) UpdateItemQuantity(ctx context.Context, cmd inbound.UpdateQuantityCommand) (*inbound.CartDTO, error) {
	return m.cart(m.Called(ctx, cmd))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, rowID uuid.UUID) (*inbound.CartDTO, error) {
	return m.cart(m.Called(ctx, userID, rowID))
}

func (m *MockCartService) UpdateDishPeople(ctx context.Context, cmd inbound.UpdatePeopleCommand) (*inbound.CartDTO, error) {
	return m.cart(m.Called(ctx, cmd))
}

func (m *MockCartService) RemoveDish(ctx context.Context, userID, dishID uuid.UUID) (*inbound.CartDTO, error) {
	return m.cart(m.Called(ctx, userID, dishID))
}

func (m *MockCartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockCheckoutService mocks inbound.CheckoutService
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Validate(ctx context.Context, userID uuid.UUID) (*inbound.CheckoutDecisionDTO, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*inbound.CheckoutDecisionDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCheckoutService) Checkout(ctx context.Context, userID uuid.UUID) (*inbound.CheckoutResultDTO, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*inbound.CheckoutResultDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockFavoriteService mocks inbound.FavoriteService
type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) List(ctx context.Context, userID uuid.UUID) ([]inbound.FavoriteDTO, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]inbound.FavoriteDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFavoriteService) Add(ctx context.Context, userID, dishID uuid.UUID) (*inbound.AddFavoriteResult, error) {
	args := m.Called(ctx, userID, dishID)
	if v := args.Get(0); v != nil {
		return v.(*inbound.AddFavoriteResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFavoriteService) Remove(ctx context.Context, userID, dishID uuid.UUID) error {
	return m.Called(ctx, userID, dishID).Error(0)
}

// MockRecipeGenerationService mocks inbound.RecipeGenerationService
type MockRecipeGenerationService struct {
	mock.Mock
}

func (m *MockRecipeGenerationService) Status(ctx context.Context, userID uuid.UUID) (*inbound.GenerationStatusDTO, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*inbound.GenerationStatusDTO), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeGenerationService) Generate(ctx context.Context, cmd inbound.GenerateRecipeCommand) (*inbound.GeneratedRecipeDTO, error) {
	args := m.Called(ctx, cmd)
	if v := args.Get(0); v != nil {
		return v.(*inbound.GeneratedRecipeDTO), args.Error(1)
	}
	return nil, args.Error(1)
}
