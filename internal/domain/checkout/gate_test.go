package checkout_test

import (
	"testing"

	"github.com/basketful/storefront/internal/domain/checkout"
	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name        string
		profile     *profile.Profile
		wantState   checkout.State
		wantMissing []string
	}{
		{
			name:        "no profile",
			profile:     nil,
			wantState:   checkout.StateBlocked,
			wantMissing: []string{"address", "phone_number"},
		},
		{
			name:        "blank address",
			profile:     &profile.Profile{UserID: userID, Address: "   ", PhoneNumber: "555-0100"},
			wantState:   checkout.StateBlocked,
			wantMissing: []string{"address"},
		},
		{
			name:        "missing phone",
			profile:     &profile.Profile{UserID: userID, Address: "1 Main St"},
			wantState:   checkout.StateBlocked,
			wantMissing: []string{"phone_number"},
		},
		{
			name:      "complete",
			profile:   testutils.CompleteProfile(userID),
			wantState: checkout.StateProceed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := checkout.Evaluate(tt.profile)

			assert.Equal(t, tt.wantState, d.State)
			if tt.wantState == checkout.StateBlocked {
				assert.True(t, d.Blocked())
				assert.Equal(t, tt.wantMissing, d.MissingNames())
				assert.Equal(t, checkout.ProfileRedirect, d.RedirectTo)
			} else {
				assert.Empty(t, d.Missing)
				assert.Empty(t, d.RedirectTo)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	t.Run("ProceedClears", func(t *testing.T) {
		d, err := checkout.Complete(checkout.Decision{State: checkout.StateProceed})

		require.NoError(t, err)
		assert.Equal(t, checkout.StateCleared, d.State)
	})

	t.Run("BlockedCannotComplete", func(t *testing.T) {
		blocked := checkout.Evaluate(nil)

		d, err := checkout.Complete(blocked)

		assert.ErrorIs(t, err, checkout.ErrNotProceedable)
		assert.Equal(t, checkout.StateBlocked, d.State)
	})
}
