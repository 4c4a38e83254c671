package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		in   Conditions
		want Category
	}{
		{"rain beats heat", Conditions{Condition: "Rain", TemperatureC: 31}, CategoryRainy},
		{"thunderstorm", Conditions{Condition: "Thunderstorm", TemperatureC: 18}, CategoryRainy},
		{"snow is cold", Conditions{Condition: "Snow", TemperatureC: 1}, CategoryCold},
		{"cold threshold inclusive", Conditions{Condition: "Clear", TemperatureC: ColdThresholdC}, CategoryCold},
		{"hot threshold inclusive", Conditions{Condition: "Clear", TemperatureC: HotThresholdC}, CategoryHot},
		{"mild clouds", Conditions{Condition: "Clouds", TemperatureC: 19}, CategoryTemperate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.in))
		})
	}
}

func TestSuggestionsForReturnsCopy(t *testing.T) {
	first := SuggestionsFor(CategoryRainy)
	require.NotEmpty(t, first)

	first[0].Title = "changed"

	assert.NotEqual(t, "changed", SuggestionsFor(CategoryRainy)[0].Title)
}

func TestMealSlotAt(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 1, 1, h, 0, 0, 0, time.UTC) }

	assert.Equal(t, MealBreakfast, MealSlotAt(at(5)))
	assert.Equal(t, MealLunch, MealSlotAt(at(11)))
	assert.Equal(t, MealSnack, MealSlotAt(at(17)))
	assert.Equal(t, MealDinner, MealSlotAt(at(21)))
	assert.Equal(t, MealLateNight, MealSlotAt(at(22)))
	assert.Equal(t, MealLateNight, MealSlotAt(at(3)))
}

func TestCoordinates(t *testing.T) {
	assert.NoError(t, Coordinates{Latitude: 52.52, Longitude: 13.405}.Validate())
	assert.ErrorIs(t, Coordinates{Latitude: 91}.Validate(), ErrInvalidCoordinates)
	assert.ErrorIs(t, Coordinates{Longitude: -181}.Validate(), ErrInvalidCoordinates)

}

func TestCoordinatesCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Coordinates
		sameKey  bool
		expected string
	}{
		{
			name:     "SameBucket",
			a:        Coordinates{Latitude: 52.5201, Longitude: 13.4031},
			b:        Coordinates{Latitude: 52.5198, Longitude: 13.4049},
			sameKey:  true,
			expected: "52.52:13.40",
		},
		{
			name:     "AcrossRoundingBoundary",
			a:        Coordinates{Latitude: 52.52, Longitude: 13.4049},
			b:        Coordinates{Latitude: 52.52, Longitude: 13.4051},
			expected: "52.52:13.40",
		},
		{
			name:     "Southern",
			a:        Coordinates{Latitude: -33.8688, Longitude: 151.2093},
			b:        Coordinates{Latitude: -33.8612, Longitude: 151.2093},
			expected: "-33.87:151.21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.CacheKey())
			if tt.sameKey {
				assert.Equal(t, tt.a.CacheKey(), tt.b.CacheKey())
			} else {
				assert.NotEqual(t, tt.a.CacheKey(), tt.b.CacheKey())
			}
		})
	}
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission(" Granted ")
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, p)

	_, err = ParsePermission("maybe")
	assert.ErrorIs(t, err, ErrInvalidPermission)
}
