// Package checkout implements the profile-completeness gate in front of
// order submission.
package checkout

import (
	"time"

	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/google/uuid"
)

// State is a checkout gate state
type State string

const (
	StateCart    State = "cart"
	StateBlocked State = "blocked"
	StateProceed State = "proceed"
	StateCleared State = "cleared"
)

// ProfileRedirect is where a blocked checkout sends the user
const ProfileRedirect = "/profile?return=checkout"

// Decision is the outcome of validating a profile for checkout
type Decision struct {
	State      State
	Missing    []profile.Field
	RedirectTo string
}

// Blocked reports whether the decision prevents checkout
func (d Decision) Blocked() bool {
	return d.State == StateBlocked
}

// MissingNames returns the missing fields as strings
func (d Decision) MissingNames() []string {
	names := make([]string, 0, len(d.Missing))
	for _, f := range d.Missing {
		names = append(names, string(f))
	}
	return names
}

// Evaluate moves a cart to Blocked or Proceed depending on the profile
func Evaluate(p *profile.Profile) Decision {
	missing := p.MissingCheckoutFields()
	if len(missing) > 0 {
		return Decision{State: StateBlocked, Missing: missing, RedirectTo: ProfileRedirect}
	}
	return Decision{State: StateProceed}
}

// Complete transitions a Proceed decision to Cleared
func Complete(d Decision) (Decision, error) {
	if d.State != StateProceed {
		return d, ErrNotProceedable
	}
	return Decision{State: StateCleared}, nil
}

// CompletedEvent is raised after a cart was cleared by checkout
type CompletedEvent struct {
	UserID      uuid.UUID
	ItemCount   int
	Total       float64
	CompletedAt time.Time
}

func (e CompletedEvent) EventName() string {
	return "checkout.completed"
}

func (e CompletedEvent) OccurredAt() time.Time {
	return e.CompletedAt
}
