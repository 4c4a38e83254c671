package handlers

import (
	"net/http"

	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandlers manages the signed-in user's cart
type CartHandlers struct {
	cart inbound.CartService
}

// NewCartHandlers creates cart handlers
func NewCartHandlers(cart inbound.CartService) *CartHandlers {
	return &CartHandlers{cart: cart}
}

// AddDishRequest adds a dish bundle
type AddDishRequest struct {
	DishID          uuid.UUID `json:"dish_id"`
	People          int       `json:"people"`
	IncludeOptional bool      `json:"include_optional"`
}

// AddIngredientRequest adds a standalone ingredient
type AddIngredientRequest struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Quantity     float64   `json:"quantity"`
}

// QuantityRequest changes one row's quantity
type QuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

// PeopleRequest changes a bundle's people count
type PeopleRequest struct {
	People int `json:"people"`
}

// Get handles GET /cart
func (h *CartHandlers) Get(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	dto, err := h.cart.GetCart(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto)
}

// Clear handles DELETE /cart
func (h *CartHandlers) Clear(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.cart.ClearCart(c.Request.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// AddDish handles POST /cart/dishes. People defaults to 1.
func (h *CartHandlers) AddDish(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req AddDishRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.People == 0 {
		req.People = 1
	}

	dto, err := h.cart.AddDish(c.Request.Context(), inbound.AddDishCommand{
		UserID:          uid,
		DishID:          req.DishID,
		People:          req.People,
		IncludeOptional: req.IncludeOptional,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, dto)
}

// UpdateDishPeople handles PATCH /cart/dishes/:dishId
func (h *CartHandlers) UpdateDishPeople(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	dishID, ok := uuidParam(c, "dishId")
	if !ok {
		return
	}
	var req PeopleRequest
	if !bindJSON(c, &req) {
		return
	}

	dto, err := h.cart.UpdateDishPeople(c.Request.Context(), inbound.UpdatePeopleCommand{
		UserID: uid,
		DishID: dishID,
		People: req.People,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto)
}

// RemoveDish handles DELETE /cart/dishes/:dishId
func (h *CartHandlers) RemoveDish(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	dishID, ok := uuidParam(c, "dishId")
	if !ok {
		return
	}

	dto, err := h.cart.RemoveDish(c.Request.Context(), uid, dishID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto)
}

// AddIngredient handles POST /cart/items
func (h *CartHandlers) AddIngredient(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req AddIngredientRequest
	if !bindJSON(c, &req) {
		return
	}

	dto, err := h.cart.AddIngredient(c.Request.Context(), inbound.AddIngredientCommand{
		UserID:       uid,
		IngredientID: req.IngredientID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, dto)
}

// UpdateItem handles PATCH /cart/items/:id
func (h *CartHandlers) UpdateItem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	rowID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req QuantityRequest
	if !bindJSON(c, &req) {
		return
	}

	dto, err := h.cart.UpdateItemQuantity(c.Request.Context(), inbound.UpdateQuantityCommand{
		UserID:   uid,
		RowID:    rowID,
		Quantity: req.Quantity,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandlers) RemoveItem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	rowID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	dto, err := h.cart.RemoveItem(c.Request.Context(), uid, rowID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto)
}
