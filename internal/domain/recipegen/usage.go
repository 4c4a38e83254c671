// Package recipegen implements the once-per-day AI recipe generation quota
package recipegen

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DailyLimit is the number of generations a user gets per calendar day
const DailyLimit = 1

const dateLayout = "2006-01-02"

var (
	ErrQuotaExhausted  = errors.New("recipe generation already used today")
	ErrNoIngredients   = errors.New("at least one ingredient is required")
	ErrTooManyItems    = errors.New("too many ingredients")
	ErrEmptyIngredient = errors.New("ingredient names must not be empty")
)

// Usage marks that a user generated a recipe on a given day
type Usage struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	UsageDate string
	Model     string
	CreatedAt time.Time
}

// Calendar computes quota days in a fixed location against a trusted clock
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a calendar for the given location; nil means UTC
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Day returns the quota day key for an instant
func (c Calendar) Day(now time.Time) string {
	return now.In(c.loc).Format(dateLayout)
}

// NextReset returns the next midnight after now in the calendar's location
func (c Calendar) NextReset(now time.Time) time.Time {
	local := now.In(c.loc)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
}

// Location returns the calendar's location
func (c Calendar) Location() *time.Location {
	return c.loc
}

// NewUsage records a generation for the day containing now
func (c Calendar) NewUsage(userID uuid.UUID, model string, now time.Time) Usage {
	return Usage{
		ID:        uuid.New(),
		UserID:    userID,
		UsageDate: c.Day(now),
		Model:     model,
		CreatedAt: now.UTC(),
	}
}

// State is a generation gate state
type State string

const (
	StateEligible  State = "eligible"
	StateExhausted State = "exhausted"
)

// StateFor maps the presence of today's usage row to a gate state
func StateFor(usedToday bool) State {
	if usedToday {
		return StateExhausted
	}
	return StateEligible
}

// GeneratedEvent is raised after a recipe generation was recorded
type GeneratedEvent struct {
	UserID      uuid.UUID
	Model       string
	UsageDate   string
	GeneratedAt time.Time
}

func (e GeneratedEvent) EventName() string {
	return "recipe.generated"
}

func (e GeneratedEvent) OccurredAt() time.Time {
	return e.GeneratedAt
}
