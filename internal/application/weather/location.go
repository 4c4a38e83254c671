// Package weather provides the location cache and weather-based dish
// suggestions.
package weather

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/basketful/storefront/internal/domain/weather"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocationKey is the cache key of a user's location
func LocationKey(userID uuid.UUID) string {
	return fmt.Sprintf("location:%s", userID)
}

// LocationService stores the user's last known location in the cache
type LocationService struct {
	cache    outbound.CacheRepository
	ttl      time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLocationService creates a new location service
func NewLocationService(cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *LocationService {
	return &LocationService{
		cache:    cache,
		ttl:      ttl,
		validate: validator.New(),
		logger:   logger.Named("location-service"),
	}
}

// SetLocation records coordinates and permission. A denied permission clears
// any stored coordinates.
func (s *LocationService) SetLocation(ctx context.Context, cmd inbound.SetLocationCommand) (*inbound.LocationDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	perm, err := weather.ParsePermission(cmd.Permission)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	loc := weather.Location{Permission: perm, UpdatedAt: time.Now().UTC()}
	if perm == weather.PermissionGranted {
		if cmd.Latitude == nil || cmd.Longitude == nil {
			return nil, errors.NewValidationError("latitude and longitude are required when permission is granted")
		}
		coords := weather.Coordinates{Latitude: *cmd.Latitude, Longitude: *cmd.Longitude}
		if err := coords.Validate(); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		loc.Coordinates = &coords
	}

	data, err := json.Marshal(loc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode location")
	}
	if err := s.cache.Set(ctx, LocationKey(cmd.UserID), data, s.ttl); err != nil {
		return nil, errors.NewAppError(errors.CodeServiceUnavailable, "Location could not be saved", "").WithCause(err)
	}

	s.logger.Debug("Location stored",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("permission", string(perm)),
	)

	return toLocationDTO(loc), nil
}

// GetLocation returns the cached location
func (s *LocationService) GetLocation(ctx context.Context, userID uuid.UUID) (*inbound.LocationDTO, error) {
	loc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toLocationDTO(*loc), nil
}

// Coordinates returns the user's cached coordinates, or ErrLocationUnknown
// when none are stored or permission was not granted.
func (s *LocationService) Coordinates(ctx context.Context, userID uuid.UUID) (*weather.Coordinates, error) {
	loc, err := s.load(ctx, userID)
	if err != nil {
		return nil, weather.ErrLocationUnknown
	}
	if loc.Permission != weather.PermissionGranted || loc.Coordinates == nil {
		return nil, weather.ErrLocationUnknown
	}
	return loc.Coordinates, nil
}

func (s *LocationService) load(ctx context.Context, userID uuid.UUID) (*weather.Location, error) {
	data, err := s.cache.Get(ctx, LocationKey(userID))
	if err != nil {
		if stderrors.Is(err, outbound.ErrCacheMiss) {
			return nil, errors.NewNotFoundError("location")
		}
		s.logger.Warn("Failed to read location", zap.Error(err))
		return nil, errors.NewNotFoundError("location")
	}

	var loc weather.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, errors.NewNotFoundError("location")
	}
	return &loc, nil
}

func toLocationDTO(loc weather.Location) *inbound.LocationDTO {
	dto := &inbound.LocationDTO{
		Permission: string(loc.Permission),
		UpdatedAt:  loc.UpdatedAt,
	}
	if loc.Coordinates != nil {
		lat, lon := loc.Coordinates.Latitude, loc.Coordinates.Longitude
		dto.Latitude = &lat
		dto.Longitude = &lon
	}
	return dto
}
