package handlers

import (
	"net/http"

	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/gin-gonic/gin"
)

// CatalogHandlers serves the read-only catalog
type CatalogHandlers struct {
	catalog inbound.CatalogService
}

// NewCatalogHandlers creates catalog handlers
func NewCatalogHandlers(catalog inbound.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// ListCuisines handles GET /cuisines
func (h *CatalogHandlers) ListCuisines(c *gin.Context) {
	cuisines, err := h.catalog.ListCuisines(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, cuisines)
}

// ListDishes handles GET /dishes?cuisine=&age=&q=&offset=&limit=
func (h *CatalogHandlers) ListDishes(c *gin.Context) {
	var query inbound.DishQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, errors.NewBadRequestError("Invalid query parameters").WithCause(err))
		return
	}

	list, err := h.catalog.ListDishes(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

// GetDish handles GET /dishes/:id
func (h *CatalogHandlers) GetDish(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	dish, err := h.catalog.GetDish(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dish)
}

// ListIngredients handles GET /ingredients?q=
func (h *CatalogHandlers) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, ingredients)
}
