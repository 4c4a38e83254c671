package account

import (
	"context"
	"testing"
	"time"

	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/basketful/storefront/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestProfileService_GetReturnsEmptyProfile(t *testing.T) {
	// Arrange
	userID := uuid.New()
	repo := new(testutils.MockProfileRepository)
	repo.On("FindByUserID", mock.Anything, userID).Return(nil, nil).Once()
	svc := NewProfileService(repo, zaptest.NewLogger(t))

	// Act
	dto, err := svc.Get(context.Background(), userID)

	// Assert
	require.NoError(t, err)
	assert.False(t, dto.CheckoutReady)
	assert.ElementsMatch(t, []string{"address", "phone_number"}, dto.MissingForCheckout)
}

func TestProfileService_Update(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		cmd       inbound.UpdateProfileCommand
		wantReady bool
		wantCode  errors.ErrorCode
	}{
		{
			name: "complete profile",
			cmd: inbound.UpdateProfileCommand{
				UserID:      userID,
				Address:     " 12 Elm Street ",
				PhoneNumber: "+14155550100",
			},
			wantReady: true,
		},
		{
			name:     "malformed phone",
			cmd:      inbound.UpdateProfileCommand{UserID: userID, PhoneNumber: "call me"},
			wantCode: errors.CodeValidationFailed,
		},
		{
			name: "birth date in the future",
			cmd: inbound.UpdateProfileCommand{
				UserID:    userID,
				BirthDate: ptr(time.Now().Add(48 * time.Hour)),
			},
			wantCode: errors.CodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(testutils.MockProfileRepository)
			repo.On("Upsert", mock.Anything, mock.AnythingOfType("*profile.Profile")).Return(nil).Maybe()
			svc := NewProfileService(repo, zaptest.NewLogger(t))

			dto, err := svc.Update(context.Background(), tt.cmd)

			if tt.wantCode != "" {
				assert.True(t, errors.Is(err, tt.wantCode))
				repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReady, dto.CheckoutReady)
			assert.Equal(t, "12 Elm Street", dto.Address)
		})
	}
}

func TestToProfileDTO(t *testing.T) {
	p := &profile.Profile{UserID: uuid.New(), PhoneNumber: "+14155550100"}

	dto := ToProfileDTO(p)

	assert.Equal(t, []string{"address"}, dto.MissingForCheckout)
}

func ptr[T any](v T) *T {
	return &v
}
