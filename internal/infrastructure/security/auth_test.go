package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/infrastructure/persistence/memory"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// TokenManagerTestSuite covers token issuing and the auth middleware
type TokenManagerTestSuite struct {
	suite.Suite
	manager  *TokenManager
	sessions *memory.SessionStore
	userID   uuid.UUID
}

func (suite *TokenManagerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.manager = NewTokenManager(config.AuthConfig{
		JWTSecret:     "test-secret-key-for-testing-only-32-bytes",
		JWTIssuer:     "basketful-test",
		JWTExpiration: time.Hour,
	}, zap.NewNop())
	suite.sessions = memory.NewSessionStore()
	suite.userID = uuid.New()
}

func (suite *TokenManagerTestSuite) startSession() (string, string) {
	sessionID := uuid.NewString()
	err := suite.sessions.Create(context.Background(), outbound.Session{
		ID:        sessionID,
		UserID:    suite.userID,
		CreatedAt: time.Now(),
	}, time.Hour)
	suite.Require().NoError(err)

	token, _, err := suite.manager.IssueAccessToken(suite.userID, "cook@example.com", sessionID)
	suite.Require().NoError(err)
	return token, sessionID
}

func (suite *TokenManagerTestSuite) router(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", handler, func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func (suite *TokenManagerTestSuite) TestIssueAndValidate() {
	suite.Run("ValidToken_ShouldRoundTripClaims", func() {
		// Arrange
		sessionID := uuid.NewString()

		// Act
		token, expiresAt, err := suite.manager.IssueAccessToken(suite.userID, "cook@example.com", sessionID)
		require.NoError(suite.T(), err)
		claims, err := suite.manager.ValidateToken(token)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), suite.userID.String(), claims.UserID)
		assert.Equal(suite.T(), sessionID, claims.SessionID)
		assert.WithinDuration(suite.T(), time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	})

	suite.Run("ExpiredToken_ShouldFail", func() {
		// Arrange
		token, _, err := suite.manager.IssueAccessToken(suite.userID, "cook@example.com", "s")
		require.NoError(suite.T(), err)
		suite.manager.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { suite.manager.now = time.Now }()

		// Act
		_, err = suite.manager.ValidateToken(token)

		// Assert
		assert.ErrorIs(suite.T(), err, ErrInvalidToken)
	})

	suite.Run("ForeignSecret_ShouldFail", func() {
		// Arrange
		other := NewTokenManager(config.AuthConfig{JWTSecret: "another-secret", JWTIssuer: "basketful-test"}, zap.NewNop())
		token, _, err := other.IssueAccessToken(suite.userID, "cook@example.com", "s")
		require.NoError(suite.T(), err)

		// Act
		_, err = suite.manager.ValidateToken(token)

		// Assert
		assert.ErrorIs(suite.T(), err, ErrInvalidToken)
	})

	suite.Run("NoneAlgorithm_ShouldFail", func() {
		// Arrange
		claims := &Claims{UserID: suite.userID.String(), SessionID: "s"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(suite.T(), err)

		// Act
		_, err = suite.manager.ValidateToken(token)

		// Assert
		assert.Error(suite.T(), err)
	})
}

func (suite *TokenManagerTestSuite) TestRequireAuth() {
	suite.Run("LiveSession_ShouldPassUserThrough", func() {
		// Arrange
		token, _ := suite.startSession()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		// Act
		suite.router(suite.manager.RequireAuth(suite.sessions)).ServeHTTP(w, req)

		// Assert
		assert.Equal(suite.T(), http.StatusOK, w.Code)
		assert.Equal(suite.T(), suite.userID.String(), w.Body.String())
	})

	suite.Run("MissingHeader_ShouldReturn401", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		w := httptest.NewRecorder()

		suite.router(suite.manager.RequireAuth(suite.sessions)).ServeHTTP(w, req)

		assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
		assert.Contains(suite.T(), w.Body.String(), "UNAUTHORIZED")
	})

	suite.Run("SignedOutSession_ShouldReturn401", func() {
		// Arrange
		token, sessionID := suite.startSession()
		require.NoError(suite.T(), suite.sessions.Delete(context.Background(), sessionID))
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		// Act
		suite.router(suite.manager.RequireAuth(suite.sessions)).ServeHTTP(w, req)

		// Assert
		assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	})
}

func (suite *TokenManagerTestSuite) TestOptionalAuth() {
	suite.Run("NoToken_ShouldContinueAnonymously", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		w := httptest.NewRecorder()

		suite.router(suite.manager.OptionalAuth(suite.sessions)).ServeHTTP(w, req)

		assert.Equal(suite.T(), http.StatusOK, w.Code)
		assert.Equal(suite.T(), "anonymous", w.Body.String())
	})

	suite.Run("GarbageToken_ShouldContinueAnonymously", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()

		suite.router(suite.manager.OptionalAuth(suite.sessions)).ServeHTTP(w, req)

		assert.Equal(suite.T(), "anonymous", w.Body.String())
	})
}

func TestTokenManagerTestSuite(t *testing.T) {
	suite.Run(t, new(TokenManagerTestSuite))
}

func TestRateLimitService_BlocksAfterBurst(t *testing.T) {
	// Arrange
	svc := NewRateLimitService(config.RateLimitConfig{Enable: true, RequestsPerMin: 1, BurstSize: 2}, zap.NewNop())
	defer svc.Close()

	// Act
	first := svc.Allow(RateLimitPerIP, "10.0.0.1")
	second := svc.Allow(RateLimitPerIP, "10.0.0.1")
	third := svc.Allow(RateLimitPerIP, "10.0.0.1")
	other := svc.Allow(RateLimitPerIP, "10.0.0.2")

	// Assert
	assert.True(t, first)
	assert.True(t, second)
	assert.False(t, third)
	assert.True(t, other)
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewRateLimitService(config.RateLimitConfig{Enable: true, RequestsPerMin: 1, BurstSize: 1}, zap.NewNop())
	defer svc.Close()

	r := gin.New()
	r.GET("/x", svc.RateLimitMiddleware(RateLimitPerIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
