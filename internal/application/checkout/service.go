// Package checkout provides the profile-gated checkout use case
package checkout

import (
	"context"
	"time"

	"github.com/basketful/storefront/internal/domain/checkout"
	"github.com/basketful/storefront/internal/domain/shared"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService implements the checkout gate
type CheckoutService struct {
	profiles   outbound.ProfileRepository
	rows       outbound.CartRepository
	carts      inbound.CartService
	dispatcher shared.EventDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	profiles outbound.ProfileRepository,
	rows outbound.CartRepository,
	carts inbound.CartService,
	dispatcher shared.EventDispatcher,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		profiles:   profiles,
		rows:       rows,
		carts:      carts,
		dispatcher: dispatcher,
		logger:     logger.Named("checkout-service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Validate evaluates the user's profile against the checkout requirements.
// A blocked decision is a normal result here, not an error.
func (s *CheckoutService) Validate(ctx context.Context, userID uuid.UUID) (*inbound.CheckoutDecisionDTO, error) {
	decision, err := s.evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toDecisionDTO(decision)
	return &dto, nil
}

// Checkout clears the cart when the profile is complete
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID) (*inbound.CheckoutResultDTO, error) {
	decision, err := s.evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if decision.Blocked() {
		s.logger.Info("Checkout blocked by incomplete profile",
			zap.String("user_id", userID.String()),
			zap.Strings("missing", decision.MissingNames()),
		)
		return nil, errors.NewCheckoutBlockedError(decision.MissingNames(), decision.RedirectTo)
	}

	// Stored rows decide emptiness; rows of an unresolvable dish still get cleared.
	stored, err := s.rows.CountByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("count cart rows", err)
	}
	if stored == 0 {
		return nil, errors.NewBadRequestError("Your cart is empty")
	}

	current, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cleared, err := checkout.Complete(decision)
	if err != nil {
		return nil, errors.Wrap(err, "checkout could not be completed")
	}

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, checkout.CompletedEvent{
		UserID:      userID,
		ItemCount:   current.ItemCount,
		Total:       current.Total,
		CompletedAt: s.now(),
	})

	s.logger.Info("Checkout completed",
		zap.String("user_id", userID.String()),
		zap.Int("items", current.ItemCount),
		zap.Float64("total", current.Total),
	)

	return &inbound.CheckoutResultDTO{
		CheckoutDecisionDTO: toDecisionDTO(cleared),
		Message:             "Order placed successfully",
		ItemCount:           current.ItemCount,
		Total:               current.Total,
	}, nil
}

func (s *CheckoutService) evaluate(ctx context.Context, userID uuid.UUID) (checkout.Decision, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return checkout.Decision{}, errors.NewDatabaseError("load profile", err)
	}
	return checkout.Evaluate(p), nil
}

func toDecisionDTO(d checkout.Decision) inbound.CheckoutDecisionDTO {
	dto := inbound.CheckoutDecisionDTO{
		State:      string(d.State),
		RedirectTo: d.RedirectTo,
	}
	if d.Blocked() {
		dto.MissingFields = d.MissingNames()
	}
	return dto
}
