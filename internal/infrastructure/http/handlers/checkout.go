package handlers

import (
	"net/http"

	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/gin-gonic/gin"
)

// CheckoutHandlers runs the profile-gated checkout
type CheckoutHandlers struct {
	checkout inbound.CheckoutService
}

// NewCheckoutHandlers creates checkout handlers
func NewCheckoutHandlers(checkout inbound.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout}
}

// Validate handles POST /checkout/validate. A blocked decision is a 200.
func (h *CheckoutHandlers) Validate(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	decision, err := h.checkout.Validate(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, decision)
}

// Checkout handles POST /checkout. A blocked profile yields 409 CHECKOUT_BLOCKED.
func (h *CheckoutHandlers) Checkout(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, result, result.Message)
}
