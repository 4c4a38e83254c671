package handlers

import (
	"net/http"

	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/gin-gonic/gin"
)

// RecipeHandlers serves the daily recipe generation
type RecipeHandlers struct {
	recipes inbound.RecipeGenerationService
}

// NewRecipeHandlers creates recipe handlers
func NewRecipeHandlers(recipes inbound.RecipeGenerationService) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes}
}

// GenerateRequest lists on-hand ingredients and preferences
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
	Preferences string   `json:"preferences"`
	Cuisine     string   `json:"cuisine"`
	Servings    int      `json:"servings"`
	Dietary     []string `json:"dietary"`
}

// Status handles GET /recipes/generation
func (h *RecipeHandlers) Status(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	status, err := h.recipes.Status(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, status)
}

// Generate handles POST /recipes/generation
func (h *RecipeHandlers) Generate(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req GenerateRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Generate(c.Request.Context(), inbound.GenerateRecipeCommand{
		UserID:      uid,
		Ingredients: req.Ingredients,
		Preferences: req.Preferences,
		Cuisine:     req.Cuisine,
		Servings:    req.Servings,
		Dietary:     req.Dietary,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, recipe)
}
