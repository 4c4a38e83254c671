// Package user provides the application layer for accounts and sessions
package user

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/basketful/storefront/internal/domain/profile"
	"github.com/basketful/storefront/internal/domain/user"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures password hashing and session lifetime
type Options struct {
	BCryptCost int
	SessionTTL time.Duration
}

// AuthService implements sign-up, sign-in and sign-out
type AuthService struct {
	users    outbound.UserRepository
	profiles outbound.ProfileRepository
	sessions outbound.SessionStore
	tokens   outbound.TokenIssuer
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users outbound.UserRepository,
	profiles outbound.ProfileRepository,
	sessions outbound.SessionStore,
	tokens outbound.TokenIssuer,
	opts Options,
	logger *zap.Logger,
) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		profiles: profiles,
		sessions: sessions,
		tokens:   tokens,
		opts:     opts,
		validate: validator.New(),
		logger:   logger.Named("auth-service"),
	}
}

// SignUp creates an account with an empty profile and starts a session
func (s *AuthService) SignUp(ctx context.Context, cmd inbound.SignUpCommand) (*inbound.AuthResult, error) {
	cmd.Email = user.NormalizeEmail(cmd.Email)
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	s.logger.Info("Registering new user", zap.String("email", cmd.Email))

	existing, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("look up user", err)
	}
	if existing != nil {
		return nil, errors.NewEmailAlreadyExistsError(cmd.Email)
	}

	newUser, err := user.NewUser(cmd.Email, cmd.Password, s.opts.BCryptCost)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if stderrors.Is(err, user.ErrEmailTaken) {
			return nil, errors.NewEmailAlreadyExistsError(cmd.Email)
		}
		return nil, errors.NewDatabaseError("create user", err)
	}

	if err := s.profiles.Upsert(ctx, profile.Empty(newUser.ID())); err != nil {
		return nil, errors.NewDatabaseError("create profile", err)
	}

	result, err := s.startSession(ctx, newUser, cmd.IPAddress, cmd.UserAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully",
		zap.String("user_id", newUser.ID().String()),
	)
	return result, nil
}

// SignIn verifies credentials and starts a session
func (s *AuthService) SignIn(ctx context.Context, cmd inbound.SignInCommand) (*inbound.AuthResult, error) {
	cmd.Email = user.NormalizeEmail(cmd.Email)
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	u, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("look up user", err)
	}
	if u == nil {
		return nil, errors.NewInvalidCredentialsError()
	}

	if err := u.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", u.ID().String()))
		return nil, errors.NewInvalidCredentialsError()
	}

	u.RecordLogin(time.Now().UTC())
	if err := s.users.UpdateLastLogin(ctx, u.ID(), *u.LastLoginAt()); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	result, err := s.startSession(ctx, u, cmd.IPAddress, cmd.UserAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User signed in", zap.String("user_id", u.ID().String()))
	return result, nil
}

// SignOut revokes a session. Signing out of an unknown session succeeds.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !stderrors.Is(err, outbound.ErrSessionNotFound) {
		return errors.Wrap(err, "failed to end session")
	}
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*inbound.UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("load user", err)
	}
	if u == nil {
		return nil, errors.NewNotFoundError("user")
	}
	dto := toUserDTO(u)
	return &dto, nil
}

func (s *AuthService) startSession(ctx context.Context, u *user.User, ip, userAgent string) (*inbound.AuthResult, error) {
	now := time.Now().UTC()
	session := outbound.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID(),
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}

	if err := s.sessions.Create(ctx, session, s.opts.SessionTTL); err != nil {
		return nil, errors.Wrap(err, "failed to start session")
	}

	token, expiresAt, err := s.tokens.IssueAccessToken(u.ID(), u.Email(), session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	return &inbound.AuthResult{
		User:        toUserDTO(u),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func toUserDTO(u *user.User) inbound.UserDTO {
	return inbound.UserDTO{
		ID:          u.ID(),
		Email:       u.Email(),
		CreatedAt:   u.CreatedAt(),
		LastLoginAt: u.LastLoginAt(),
	}
}
