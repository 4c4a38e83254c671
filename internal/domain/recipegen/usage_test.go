package recipegen

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2026-03-01 23:30 UTC is already 2026-03-02 in Tokyo
	instant := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	t.Run("DayFollowsLocation", func(t *testing.T) {
		assert.Equal(t, "2026-03-01", NewCalendar(nil).Day(instant))
		assert.Equal(t, "2026-03-02", NewCalendar(tokyo).Day(instant))
	})

	t.Run("NextResetIsLocalMidnight", func(t *testing.T) {
		reset := NewCalendar(tokyo).NextReset(instant)

		assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, tokyo), reset)
		assert.True(t, reset.After(instant))
	})

	t.Run("NewUsageStampsDay", func(t *testing.T) {
		userID := uuid.New()

		u := NewCalendar(nil).NewUsage(userID, "gemini-1.5-flash", instant)

		assert.Equal(t, userID, u.UserID)
		assert.Equal(t, "2026-03-01", u.UsageDate)
		assert.Equal(t, "gemini-1.5-flash", u.Model)
		assert.NotEqual(t, uuid.Nil, u.ID)
	})
}

func TestStateFor(t *testing.T) {
	assert.Equal(t, StateEligible, StateFor(false))
	assert.Equal(t, StateExhausted, StateFor(true))
}

func TestRequestNormalize(t *testing.T) {
	t.Run("TrimsAndDefaultsServings", func(t *testing.T) {
		r, err := Request{Ingredients: []string{" rice ", "egg"}, Cuisine: " thai "}.Normalize()

		require.NoError(t, err)
		assert.Equal(t, []string{"rice", "egg"}, r.Ingredients)
		assert.Equal(t, "thai", r.Cuisine)
		assert.Equal(t, 2, r.Servings)
	})

	t.Run("Rejects", func(t *testing.T) {
		tooMany := strings.Split(strings.Repeat("x,", MaxIngredients+1), ",")[:MaxIngredients+1]

		_, err := Request{}.Normalize()
		assert.ErrorIs(t, err, ErrNoIngredients)

		_, err = Request{Ingredients: tooMany}.Normalize()
		assert.ErrorIs(t, err, ErrTooManyItems)

		_, err = Request{Ingredients: []string{"rice", "  "}}.Normalize()
		assert.ErrorIs(t, err, ErrEmptyIngredient)
	})
}
