// Package cart provides the application layer for per-user carts. It turns
// flat cart rows into dish bundles and standalone lines and keeps a cached
// snapshot of the aggregated cart.
package cart

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/catalog"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures pricing and the snapshot cache
type Options struct {
	Pricing     cart.Pricing
	SnapshotTTL time.Duration
}

// CartService implements the cart use cases
type CartService struct {
	carts    outbound.CartRepository
	catalog  outbound.CatalogRepository
	cache    outbound.CacheRepository
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(
	carts outbound.CartRepository,
	catalogRepo outbound.CatalogRepository,
	cache outbound.CacheRepository,
	opts Options,
	logger *zap.Logger,
) *CartService {
	if opts.Pricing == (cart.Pricing{}) {
		opts.Pricing = cart.DefaultPricing
	}
	return &CartService{
		carts:    carts,
		catalog:  catalogRepo,
		cache:    cache,
		opts:     opts,
		validate: validator.New(),
		logger:   logger.Named("cart-service"),
	}
}

// SnapshotKey is the cache key of a user's aggregated cart
func SnapshotKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:snapshot:%s", userID)
}

// GetCart returns the aggregated cart, served from the snapshot cache when
// one is present.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*inbound.CartDTO, error) {
	if cached := s.cachedSnapshot(ctx, userID); cached != nil {
		return cached, nil
	}
	return s.refresh(ctx, userID)
}

// AddDish adds every ingredient of a dish as one bundle. Adding a dish that
// is already in the cart replaces its rows.
func (s *CartService) AddDish(ctx context.Context, cmd inbound.AddDishCommand) (*inbound.CartDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	s.logger.Info("Adding dish to cart",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("dish_id", cmd.DishID.String()),
		zap.Int("people", cmd.People),
	)

	detail, err := s.catalog.GetDishDetail(ctx, cmd.DishID)
	if err != nil {
		return nil, errors.NewDatabaseError("load dish", err)
	}
	if detail == nil {
		return nil, errors.NewNotFoundError("dish")
	}

	rows, err := cart.NewDishRows(cmd.UserID, *detail, cmd.People, cmd.IncludeOptional)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.carts.ReplaceDishRows(ctx, cmd.UserID, cmd.DishID, rows); err != nil {
		return nil, errors.NewDatabaseError("add dish to cart", err)
	}

	return s.afterMutation(ctx, cmd.UserID)
}

// AddIngredient adds a standalone ingredient, merging with an existing
// standalone row of the same ingredient.
func (s *CartService) AddIngredient(ctx context.Context, cmd inbound.AddIngredientCommand) (*inbound.CartDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	ing, err := s.catalog.FindIngredientByID(ctx, cmd.IngredientID)
	if err != nil {
		return nil, errors.NewDatabaseError("load ingredient", err)
	}
	if ing == nil {
		return nil, errors.NewNotFoundError("ingredient")
	}

	existing, err := s.carts.FindStandalone(ctx, cmd.UserID, cmd.IngredientID)
	if err != nil {
		return nil, errors.NewDatabaseError("find cart item", err)
	}

	if existing != nil {
		if err := s.carts.UpdateQuantity(ctx, cmd.UserID, existing.ID, existing.Quantity+cmd.Quantity); err != nil {
			return nil, errors.NewDatabaseError("update cart item", err)
		}
	} else {
		row, err := cart.NewStandaloneRow(cmd.UserID, cmd.IngredientID, cmd.Quantity)
		if err != nil {
			return nil, mapDomainError(err)
		}
		if err := s.carts.Create(ctx, row); err != nil {
			return nil, errors.NewDatabaseError("add cart item", err)
		}
	}

	return s.afterMutation(ctx, cmd.UserID)
}

// UpdateItemQuantity sets the quantity of one row
func (s *CartService) UpdateItemQuantity(ctx context.Context, cmd inbound.UpdateQuantityCommand) (*inbound.CartDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	if err := s.carts.UpdateQuantity(ctx, cmd.UserID, cmd.RowID, cmd.Quantity); err != nil {
		return nil, mapRepoError("update cart item", err)
	}

	return s.afterMutation(ctx, cmd.UserID)
}

// RemoveItem deletes one row
func (s *CartService) RemoveItem(ctx context.Context, userID, rowID uuid.UUID) (*inbound.CartDTO, error) {
	if err := s.carts.Delete(ctx, userID, rowID); err != nil {
		return nil, mapRepoError("remove cart item", err)
	}
	return s.afterMutation(ctx, userID)
}

// UpdateDishPeople applies a new people count to every row of a dish
func (s *CartService) UpdateDishPeople(ctx context.Context, cmd inbound.UpdatePeopleCommand) (*inbound.CartDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	n, err := s.carts.UpdatePeopleForDish(ctx, cmd.UserID, cmd.DishID, cmd.People)
	if err != nil {
		return nil, errors.NewDatabaseError("update dish people", err)
	}
	if n == 0 {
		return nil, mapDomainError(cart.ErrDishNotInCart)
	}

	s.logger.Debug("Updated dish people",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("dish_id", cmd.DishID.String()),
		zap.Int("people", cmd.People),
		zap.Int64("rows", n),
	)

	return s.afterMutation(ctx, cmd.UserID)
}

// RemoveDish deletes every row of a dish bundle
func (s *CartService) RemoveDish(ctx context.Context, userID, dishID uuid.UUID) (*inbound.CartDTO, error) {
	n, err := s.carts.DeleteDish(ctx, userID, dishID)
	if err != nil {
		return nil, errors.NewDatabaseError("remove dish from cart", err)
	}
	if n == 0 {
		return nil, mapDomainError(cart.ErrDishNotInCart)
	}
	return s.afterMutation(ctx, userID)
}

// ClearCart deletes all rows of the user's cart
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	n, err := s.carts.ClearForUser(ctx, userID)
	if err != nil {
		return errors.NewDatabaseError("clear cart", err)
	}
	s.Invalidate(ctx, userID)

	s.logger.Info("Cart cleared",
		zap.String("user_id", userID.String()),
		zap.Int64("rows", n),
	)
	return nil
}

// Invalidate drops the cached snapshot of a user's cart
func (s *CartService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Delete(ctx, SnapshotKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate cart snapshot",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func (s *CartService) afterMutation(ctx context.Context, userID uuid.UUID) (*inbound.CartDTO, error) {
	s.Invalidate(ctx, userID)
	return s.refresh(ctx, userID)
}

// refresh recomputes the aggregated cart and stores a new snapshot
func (s *CartService) refresh(ctx context.Context, userID uuid.UUID) (*inbound.CartDTO, error) {
	rows, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list cart", err)
	}

	dto := s.build(ctx, userID, rows)
	s.storeSnapshot(ctx, userID, dto)
	return dto, nil
}

func (s *CartService) build(ctx context.Context, userID uuid.UUID, rows []cart.Row) *inbound.CartDTO {
	dishIDs := make([]uuid.UUID, 0)
	ingredientIDs := make([]uuid.UUID, 0, len(rows))
	seenDish := make(map[uuid.UUID]struct{})
	for _, r := range rows {
		ingredientIDs = append(ingredientIDs, r.IngredientID)
		if r.DishID != nil {
			if _, ok := seenDish[*r.DishID]; !ok {
				seenDish[*r.DishID] = struct{}{}
				dishIDs = append(dishIDs, *r.DishID)
			}
		}
	}

	dishes := map[uuid.UUID]catalog.Dish{}
	var dishErr error
	if len(dishIDs) > 0 {
		dishes, dishErr = s.catalog.FindDishesByIDs(ctx, dishIDs)
	}

	agg := cart.Aggregate(rows, func(id uuid.UUID) (catalog.Dish, error) {
		if dishErr != nil {
			return catalog.Dish{}, dishErr
		}
		d, ok := dishes[id]
		if !ok {
			return catalog.Dish{}, catalog.ErrDishNotFound
		}
		return d, nil
	})

	for _, dropped := range agg.Dropped {
		s.logger.Warn("Dropping cart dish group after failed dish lookup",
			zap.String("user_id", userID.String()),
			zap.String("dish_id", dropped.DishID.String()),
			zap.Int("rows", dropped.Rows),
			zap.Error(dropped.Err),
		)
	}

	ingredients := map[uuid.UUID]catalog.Ingredient{}
	if len(ingredientIDs) > 0 {
		found, err := s.catalog.FindIngredientsByIDs(ctx, ingredientIDs)
		if err != nil {
			s.logger.Warn("Failed to load cart ingredient names",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		} else {
			ingredients = found
		}
	}

	return toCartDTO(agg, s.opts.Pricing, ingredients)
}

func (s *CartService) cachedSnapshot(ctx context.Context, userID uuid.UUID) *inbound.CartDTO {
	data, err := s.cache.Get(ctx, SnapshotKey(userID))
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Debug("Cart snapshot read failed", zap.Error(err))
		}
		return nil
	}

	var dto inbound.CartDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		s.logger.Warn("Discarding unreadable cart snapshot", zap.Error(err))
		return nil
	}
	return &dto
}

func (s *CartService) storeSnapshot(ctx context.Context, userID uuid.UUID, dto *inbound.CartDTO) {
	if s.opts.SnapshotTTL <= 0 {
		return
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, SnapshotKey(userID), data, s.opts.SnapshotTTL); err != nil {
		s.logger.Warn("Failed to store cart snapshot",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func toCartDTO(agg cart.Aggregation, pricing cart.Pricing, ingredients map[uuid.UUID]catalog.Ingredient) *inbound.CartDTO {
	totals := pricing.Totals(agg)
	dto := &inbound.CartDTO{
		Bundles:      make([]inbound.DishBundleDTO, 0, len(agg.Bundles)),
		Standalone:   make([]inbound.CartLineDTO, 0, len(agg.Standalone)),
		ItemCount:    totals.ItemCount,
		Subtotal:     totals.Subtotal,
		PackagingFee: totals.PackagingFee,
		Total:        totals.Total,
	}

	for _, b := range agg.Bundles {
		bundle := inbound.DishBundleDTO{
			DishID:  b.Dish.ID,
			Name:    b.Dish.Name,
			Cuisine: b.Dish.Cuisine,
			People:  b.People,
			Items:   make([]inbound.CartLineDTO, 0, len(b.Rows)),
			Total:   pricing.BundleTotal(b),
		}
		for _, r := range b.Rows {
			line := toLine(r, pricing, ingredients)
			line.LineTotal = pricing.RowTotal(r) * float64(b.People)
			bundle.Items = append(bundle.Items, line)
		}
		dto.Bundles = append(dto.Bundles, bundle)
	}

	for _, r := range agg.Standalone {
		dto.Standalone = append(dto.Standalone, toLine(r, pricing, ingredients))
	}

	return dto
}

func toLine(r cart.Row, pricing cart.Pricing, ingredients map[uuid.UUID]catalog.Ingredient) inbound.CartLineDTO {
	ing := ingredients[r.IngredientID]
	return inbound.CartLineDTO{
		ID:           r.ID,
		IngredientID: r.IngredientID,
		Name:         ing.Name,
		Unit:         ing.Unit,
		Quantity:     r.Quantity,
		LineTotal:    pricing.RowTotal(r),
	}
}

func mapRepoError(operation string, err error) error {
	if stderrors.Is(err, cart.ErrRowNotFound) {
		return mapDomainError(err)
	}
	return errors.NewDatabaseError(operation, err)
}

func mapDomainError(err error) error {
	switch {
	case stderrors.Is(err, cart.ErrRowNotFound):
		return errors.NewNotFoundError("cart item")
	case stderrors.Is(err, cart.ErrDishNotInCart):
		return errors.NewNotFoundError("dish in cart")
	case stderrors.Is(err, cart.ErrInvalidPeople), stderrors.Is(err, cart.ErrInvalidQuantity):
		return errors.NewValidationError(err.Error())
	case stderrors.Is(err, cart.ErrDishHasNoIngredients):
		return errors.NewBadRequestError(err.Error())
	default:
		return errors.Wrap(err, "cart operation failed")
	}
}
