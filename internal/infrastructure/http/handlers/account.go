package handlers

import (
	"net/http"
	"time"

	"github.com/basketful/storefront/internal/infrastructure/security"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandlers serves favorites, profile and feedback
type AccountHandlers struct {
	favorites inbound.FavoriteService
	profiles  inbound.ProfileService
	feedback  inbound.FeedbackService
}

// NewAccountHandlers creates account handlers
func NewAccountHandlers(
	favorites inbound.FavoriteService,
	profiles inbound.ProfileService,
	feedback inbound.FeedbackService,
) *AccountHandlers {
	return &AccountHandlers{
		favorites: favorites,
		profiles:  profiles,
		feedback:  feedback,
	}
}

// FavoriteRequest names a dish to save
type FavoriteRequest struct {
	DishID uuid.UUID `json:"dish_id"`
}

// ProfileRequest is the editable profile. BirthDate is YYYY-MM-DD.
type ProfileRequest struct {
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	BirthDate   string `json:"birth_date"`
}

// FeedbackRequest is a feedback submission
type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Rating  *int   `json:"rating"`
}

// ListFavorites handles GET /favorites
func (h *AccountHandlers) ListFavorites(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	favorites, err := h.favorites.List(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, favorites)
}

// AddFavorite handles POST /favorites. Re-adding returns 200 with added=false.
func (h *AccountHandlers) AddFavorite(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req FavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.favorites.Add(c.Request.Context(), uid, req.DishID)
	if err != nil {
		fail(c, err)
		return
	}

	status := http.StatusCreated
	if !result.Added {
		status = http.StatusOK
	}
	respondMessage(c, status, result, result.Message)
}

// RemoveFavorite handles DELETE /favorites/:dishId
func (h *AccountHandlers) RemoveFavorite(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	dishID, ok := uuidParam(c, "dishId")
	if !ok {
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), uid, dishID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// GetProfile handles GET /profile
func (h *AccountHandlers) GetProfile(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	p, err := h.profiles.Get(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

// UpdateProfile handles PUT /profile
func (h *AccountHandlers) UpdateProfile(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := inbound.UpdateProfileCommand{
		UserID:      uid,
		FullName:    req.FullName,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		PostalCode:  req.PostalCode,
	}
	if req.BirthDate != "" {
		d, err := time.Parse(time.DateOnly, req.BirthDate)
		if err != nil {
			fail(c, errors.NewBadRequestError("birth_date must be YYYY-MM-DD"))
			return
		}
		cmd.BirthDate = &d
	}

	p, err := h.profiles.Update(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, p)
}

// SubmitFeedback handles POST /feedback; signed-in users are linked
func (h *AccountHandlers) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := inbound.SubmitFeedbackCommand{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Rating:  req.Rating,
	}
	if uid, ok := security.CurrentUserID(c); ok {
		cmd.UserID = &uid
	}

	dto, err := h.feedback.Submit(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, dto, "Thanks for your feedback")
}
