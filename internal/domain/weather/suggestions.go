package weather

import "time"

// Suggestion is a recipe idea for the current weather
type Suggestion struct {
	Title    string
	Reason   string
	Keywords []string
}

var suggestions = map[Category][]Suggestion{
	CategoryRainy: {
		{Title: "Comfort curry", Reason: "A rainy day calls for something rich and warm", Keywords: []string{"curry", "dal", "masala"}},
		{Title: "Baked pasta", Reason: "Oven-baked and cozy while it pours outside", Keywords: []string{"pasta", "lasagna", "gratin"}},
	},
	CategoryCold: {
		{Title: "Hearty soup", Reason: "Warm up from the inside when it is cold", Keywords: []string{"soup", "broth", "ramen"}},
		{Title: "Slow-cooked stew", Reason: "Low and slow for chilly evenings", Keywords: []string{"stew", "chili", "goulash"}},
	},
	CategoryHot: {
		{Title: "Fresh salad", Reason: "Light and crisp for a hot day", Keywords: []string{"salad", "slaw", "ceviche"}},
		{Title: "Chilled bowl", Reason: "No stove needed in the heat", Keywords: []string{"gazpacho", "poke", "smoothie"}},
	},
	CategoryTemperate: {
		{Title: "Seasonal classic", Reason: "Mild weather suits a crowd favourite", Keywords: []string{"tacos", "risotto", "biryani"}},
		{Title: "Grill night", Reason: "Good weather for cooking outdoors", Keywords: []string{"grill", "kebab", "burger"}},
	},
}

// SuggestionsFor returns the fixed suggestion set for a weather category
func SuggestionsFor(c Category) []Suggestion {
	out := make([]Suggestion, len(suggestions[c]))
	copy(out, suggestions[c])
	return out
}

// MealSlot names the meal that fits a time of day
type MealSlot string

const (
	MealBreakfast MealSlot = "breakfast"
	MealLunch     MealSlot = "lunch"
	MealSnack     MealSlot = "snack"
	MealDinner    MealSlot = "dinner"
	MealLateNight MealSlot = "late_night"
)

// MealSlotAt maps a local hour to a meal slot
func MealSlotAt(local time.Time) MealSlot {
	switch h := local.Hour(); {
	case h >= 5 && h < 11:
		return MealBreakfast
	case h >= 11 && h < 15:
		return MealLunch
	case h >= 15 && h < 18:
		return MealSnack
	case h >= 18 && h < 22:
		return MealDinner
	default:
		return MealLateNight
	}
}
