// Package weather maps current weather to recipe suggestions
package weather

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidPermission  = errors.New("permission must be granted, denied or prompt")
	ErrLocationUnknown    = errors.New("no location available")
)

// Coordinates is a latitude/longitude pair in degrees
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Validate checks coordinate ranges
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// CacheKey rounds to two decimals (about 1 km) so nearby lookups share an entry
func (c Coordinates) CacheKey() string {
	return fmt.Sprintf("%.2f:%.2f", round(c.Latitude), round(c.Longitude))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Permission is the user's geolocation permission state
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

// ParsePermission validates a permission value
func ParsePermission(s string) (Permission, error) {
	switch p := Permission(strings.ToLower(strings.TrimSpace(s))); p {
	case PermissionGranted, PermissionDenied, PermissionPrompt:
		return p, nil
	default:
		return "", ErrInvalidPermission
	}
}

// Location is a cached user location together with the permission state
type Location struct {
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Permission  Permission   `json:"permission"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Conditions is the current weather at a location
type Conditions struct {
	Condition    string
	Description  string
	TemperatureC float64
	Humidity     int
	City         string
	TZOffset     time.Duration
	ObservedAt   time.Time
}

// Category groups weather into the buckets used for suggestions
type Category string

const (
	CategoryRainy     Category = "rainy"
	CategoryCold      Category = "cold"
	CategoryHot       Category = "hot"
	CategoryTemperate Category = "temperate"
)

const (
	ColdThresholdC = 10.0
	HotThresholdC  = 28.0
)

// Categorize buckets conditions. Precipitation wins over temperature except
// for snow, which counts as cold.
func Categorize(c Conditions) Category {
	cond := strings.ToLower(c.Condition)
	switch {
	case cond == "snow":
		return CategoryCold
	case cond == "rain" || cond == "drizzle" || cond == "thunderstorm":
		return CategoryRainy
	case c.TemperatureC <= ColdThresholdC:
		return CategoryCold
	case c.TemperatureC >= HotThresholdC:
		return CategoryHot
	default:
		return CategoryTemperate
	}
}
