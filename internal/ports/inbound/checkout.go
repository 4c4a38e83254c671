package inbound

import (
	"context"

	"github.com/google/uuid"
)

// CheckoutService runs the profile-gated checkout
type CheckoutService interface {
	Validate(ctx context.Context, userID uuid.UUID) (*CheckoutDecisionDTO, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResultDTO, error)
}

// CheckoutDecisionDTO is the gate outcome
type CheckoutDecisionDTO struct {
	State         string   `json:"state"`
	MissingFields []string `json:"missing_fields,omitempty"`
	RedirectTo    string   `json:"redirect_to,omitempty"`
}

// CheckoutResultDTO is returned by a checkout attempt
type CheckoutResultDTO struct {
	CheckoutDecisionDTO
	Message   string  `json:"message,omitempty"`
	ItemCount int     `json:"item_count,omitempty"`
	Total     float64 `json:"total,omitempty"`
}
