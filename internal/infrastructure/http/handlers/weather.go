package handlers

import (
	"net/http"
	"strconv"

	"github.com/basketful/storefront/internal/infrastructure/security"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/gin-gonic/gin"
)

// WeatherHandlers serves location and weather suggestions
type WeatherHandlers struct {
	locations   inbound.LocationService
	suggestions inbound.WeatherSuggestionService
}

// NewWeatherHandlers creates weather handlers
func NewWeatherHandlers(locations inbound.LocationService, suggestions inbound.WeatherSuggestionService) *WeatherHandlers {
	return &WeatherHandlers{locations: locations, suggestions: suggestions}
}

// LocationRequest stores the browser geolocation state
type LocationRequest struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Permission string   `json:"permission"`
}

// GetLocation handles GET /location
func (h *WeatherHandlers) GetLocation(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	loc, err := h.locations.GetLocation(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, loc)
}

// SetLocation handles PUT /location
func (h *WeatherHandlers) SetLocation(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req LocationRequest
	if !bindJSON(c, &req) {
		return
	}

	loc, err := h.locations.SetLocation(c.Request.Context(), inbound.SetLocationCommand{
		UserID:     uid,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Permission: req.Permission,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, loc)
}

// Suggestions handles GET /weather/suggestions?lat=&lon=. Without
// coordinates the signed-in user's cached location is used.
func (h *WeatherHandlers) Suggestions(c *gin.Context) {
	var query inbound.SuggestionQuery

	lat, err := optionalFloat(c.Query("lat"))
	if err != nil {
		fail(c, errors.NewBadRequestError("lat must be a number"))
		return
	}
	lon, err := optionalFloat(c.Query("lon"))
	if err != nil {
		fail(c, errors.NewBadRequestError("lon must be a number"))
		return
	}
	query.Latitude, query.Longitude = lat, lon

	if uid, ok := security.CurrentUserID(c); ok {
		query.UserID = &uid
	}

	out, err := h.suggestions.Suggest(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
