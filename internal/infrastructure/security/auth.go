// Package security provides token issuing and request authentication
package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/ports/outbound"
	apperrors "github.com/basketful/storefront/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextSessionID = "session_id"
)

const audience = "storefront-api"

var (
	ErrMissingToken = errors.New("authorization header required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims represents JWT claims structure
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 access tokens
type TokenManager struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewTokenManager creates a token manager from auth configuration
func NewTokenManager(cfg config.AuthConfig, logger *zap.Logger) *TokenManager {
	expiration := cfg.JWTExpiration
	if expiration <= 0 {
		expiration = time.Hour
	}
	issuer := cfg.JWTIssuer
	if issuer == "" {
		issuer = "basketful"
	}
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     issuer,
		expiration: expiration,
		logger:     logger.Named("tokens"),
		now:        time.Now,
	}
}

var _ outbound.TokenIssuer = (*TokenManager)(nil)

// IssueAccessToken creates a signed access token bound to a session
func (m *TokenManager) IssueAccessToken(userID uuid.UUID, email, sessionID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.expiration)
	claims := &Claims{
		UserID:    userID.String(),
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates and parses a JWT token
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid token and live session
func (m *TokenManager) RequireAuth(sessions outbound.SessionStore) gin.HandlerFunc {
	return m.authenticate(sessions, true)
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func (m *TokenManager) OptionalAuth(sessions outbound.SessionStore) gin.HandlerFunc {
	return m.authenticate(sessions, false)
}

func (m *TokenManager) authenticate(sessions outbound.SessionStore, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			if required {
				abortUnauthorized(c, "Authorization header required")
				return
			}
			c.Next()
			return
		}

		claims, err := m.ValidateToken(raw)
		if err != nil {
			m.logger.Info("Token validation failed",
				zap.Error(err),
				zap.String("ip", c.ClientIP()),
			)
			if required {
				abortUnauthorized(c, "Invalid or expired token")
				return
			}
			c.Next()
			return
		}

		session, err := sessions.Get(c.Request.Context(), claims.SessionID)
		if err != nil || session.UserID.String() != claims.UserID {
			m.logger.Info("Session validation failed",
				zap.String("session_id", claims.SessionID),
				zap.String("user_id", claims.UserID),
			)
			if required {
				abortUnauthorized(c, "Session expired, please sign in again")
				return
			}
			c.Next()
			return
		}

		c.Set(ContextUserID, session.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextSessionID, claims.SessionID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user, if any
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CurrentSessionID returns the session bound to the request token
func CurrentSessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

func abortUnauthorized(c *gin.Context, message string) {
	appErr := apperrors.NewUnauthorizedError(message)
	c.AbortWithStatusJSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, c.GetString("request_id")))
}
