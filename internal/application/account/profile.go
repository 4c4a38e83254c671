package account

import (
	"context"
	"strings"
	"time"

	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileService implements profile reads and updates
type ProfileService struct {
	profiles outbound.ProfileRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profiles outbound.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		validate: validator.New(),
		logger:   logger.Named("profile-service"),
	}
}

// Get returns the stored profile, or an empty one
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*inbound.ProfileDTO, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("load profile", err)
	}
	if p == nil {
		p = profile.Empty(userID)
	}
	return ToProfileDTO(p), nil
}

// Update replaces the editable profile fields
func (s *ProfileService) Update(ctx context.Context, cmd inbound.UpdateProfileCommand) (*inbound.ProfileDTO, error) {
	cmd.PhoneNumber = strings.TrimSpace(cmd.PhoneNumber)
	cmd.PostalCode = strings.TrimSpace(cmd.PostalCode)

	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}
	if cmd.BirthDate != nil && cmd.BirthDate.After(time.Now()) {
		return nil, errors.NewValidationError("birth_date must be in the past")
	}

	p := &profile.Profile{
		UserID:      cmd.UserID,
		FullName:    strings.TrimSpace(cmd.FullName),
		Address:     strings.TrimSpace(cmd.Address),
		PhoneNumber: cmd.PhoneNumber,
		City:        strings.TrimSpace(cmd.City),
		PostalCode:  cmd.PostalCode,
		BirthDate:   cmd.BirthDate,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, errors.NewDatabaseError("update profile", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", cmd.UserID.String()))

	return ToProfileDTO(p), nil
}

// ToProfileDTO converts a profile to its API form
func ToProfileDTO(p *profile.Profile) *inbound.ProfileDTO {
	missing := p.MissingCheckoutFields()
	names := make([]string, 0, len(missing))
	for _, f := range missing {
		names = append(names, string(f))
	}

	return &inbound.ProfileDTO{
		UserID:             p.UserID,
		FullName:           p.FullName,
		Address:            p.Address,
		PhoneNumber:        p.PhoneNumber,
		City:               p.City,
		PostalCode:         p.PostalCode,
		BirthDate:          p.BirthDate,
		CheckoutReady:      len(missing) == 0,
		MissingForCheckout: names,
	}
}
