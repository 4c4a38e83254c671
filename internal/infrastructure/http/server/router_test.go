package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/basketful/storefront/internal/application/account"
	cartApp "github.com/basketful/storefront/internal/application/cart"
	catalogApp "github.com/basketful/storefront/internal/application/catalog"
	checkoutApp "github.com/basketful/storefront/internal/application/checkout"
	"github.com/basketful/storefront/internal/application/recipe"
	"github.com/basketful/storefront/internal/application/user"
	weatherApp "github.com/basketful/storefront/internal/application/weather"
	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/infrastructure/ai/stub"
	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/infrastructure/http/handlers"
	"github.com/basketful/storefront/internal/infrastructure/http/middleware"
	"github.com/basketful/storefront/internal/infrastructure/monitoring"
	persistence "github.com/basketful/storefront/internal/infrastructure/persistence/gorm"
	"github.com/basketful/storefront/internal/infrastructure/persistence/memory"
	"github.com/basketful/storefront/internal/infrastructure/persistence/sqlite"
	"github.com/basketful/storefront/internal/infrastructure/security"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/basketful/storefront/pkg/healthcheck"
	"github.com/basketful/storefront/test/testutils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

// StorefrontFlowTestSuite drives the assembled router against a seeded
// in-memory database.
type StorefrontFlowTestSuite struct {
	suite.Suite
	router *gin.Engine
	http   *testutils.HTTPAssertions
	token  string
}

func (s *StorefrontFlowTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	db := testutils.NewSeededSQLiteDB(s.T())
	cache := memory.NewCacheRepository()
	s.T().Cleanup(func() { _ = cache.Close() })
	sessions := memory.NewSessionStore()
	dispatcher := monitoring.NewEventDispatcher(logger)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "storefront", Environment: "test"},
		Auth:      config.AuthConfig{JWTSecret: "test-secret-test-secret-test-secret", JWTIssuer: "test", JWTExpiration: time.Hour},
		RateLimit: config.RateLimitConfig{Enable: false},
	}

	users := persistence.NewUserRepository(db)
	catalogRepo := persistence.NewCatalogRepository(db)
	profiles := persistence.NewProfileRepository(db)

	tokens := security.NewTokenManager(cfg.Auth, logger)
	limiter := security.NewRateLimitService(cfg.RateLimit, logger)
	s.T().Cleanup(limiter.Close)

	cartRows := persistence.NewCartRepository(db)
	carts := cartApp.NewCartService(cartRows, catalogRepo, cache, cartApp.Options{
		Pricing:     cart.DefaultPricing,
		SnapshotTTL: time.Minute,
	}, logger)
	locations := weatherApp.NewLocationService(cache, time.Hour, logger)

	h := Handlers{
		Auth: handlers.NewAuthHandlers(user.NewAuthService(users, profiles, sessions, tokens, user.Options{
			BCryptCost: bcrypt.MinCost,
			SessionTTL: time.Hour,
		}, logger), logger),
		Catalog:  handlers.NewCatalogHandlers(catalogApp.NewCatalogService(catalogRepo, cache, time.Minute, logger)),
		Cart:     handlers.NewCartHandlers(carts),
		Checkout: handlers.NewCheckoutHandlers(checkoutApp.NewCheckoutService(profiles, cartRows, carts, dispatcher, logger)),
		Account: handlers.NewAccountHandlers(
			account.NewFavoriteService(persistence.NewFavoriteRepository(db), catalogRepo, logger),
			account.NewProfileService(profiles, logger),
			account.NewFeedbackService(persistence.NewFeedbackRepository(db), new(testutils.MockNotifier), logger),
		),
		Recipes: handlers.NewRecipeHandlers(recipe.NewGenerationService(
			persistence.NewRecipeUsageRepository(db), stub.NewGenerator(), cache, dispatcher,
			recipe.Options{Calendar: recipegen.NewCalendar(time.UTC)}, logger,
		)),
		Weather: handlers.NewWeatherHandlers(locations, weatherApp.NewSuggestionService(
			new(testutils.MockWeatherProvider), catalogRepo, locations, cache, time.Minute, logger,
		)),
	}

	s.router = NewRouter(RouterDeps{
		Config:      cfg,
		Logger:      logger,
		Middleware:  middleware.New(cfg, logger),
		Tokens:      tokens,
		Sessions:    sessions,
		RateLimiter: limiter,
		Health:      healthcheck.New("test", logger),
	}, h)
	s.http = testutils.NewHTTPAssertions(s.T())

	var auth inbound.AuthResult
	s.http.Success(s.do(http.MethodPost, "/api/v1/auth/signup", handlers.CredentialsRequest{
		Email:    "shopper@example.com",
		Password: "long-enough-password",
	}), http.StatusCreated, &auth)
	s.token = auth.AccessToken
}

func (s *StorefrontFlowTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *StorefrontFlowTestSuite) TestCheckoutFlow() {
	curry := sqlite.SeedID("dish", "Thai Green Curry").String()

	// a fresh profile is empty, so the cart cannot be checked out yet
	var added inbound.CartDTO
	s.http.Success(s.do(http.MethodPost, "/api/v1/cart/dishes", map[string]interface{}{
		"dish_id": curry,
		"people":  2,
	}), http.StatusCreated, &added)
	require.Len(s.T(), added.Bundles, 1)
	assert.InDelta(s.T(), added.Subtotal+cart.DefaultPricing.PackagingFee, added.Total, 0.001)

	var scaled inbound.CartDTO
	s.http.Success(s.do(http.MethodPatch, "/api/v1/cart/dishes/"+curry, handlers.PeopleRequest{People: 4}),
		http.StatusOK, &scaled)
	assert.InDelta(s.T(), added.Subtotal*2, scaled.Subtotal, 0.001)

	details := s.http.Error(s.do(http.MethodPost, "/api/v1/checkout", nil), http.StatusConflict, errors.CodeCheckoutBlocked)
	assert.ElementsMatch(s.T(), []interface{}{"address", "phone_number"}, details.Metadata["missing_fields"])

	s.http.Success(s.do(http.MethodPut, "/api/v1/profile", handlers.ProfileRequest{
		Address:     "1 Market Street",
		PhoneNumber: "+14155550100",
	}), http.StatusOK, nil)

	var result inbound.CheckoutResultDTO
	s.http.Success(s.do(http.MethodPost, "/api/v1/checkout", nil), http.StatusOK, &result)
	assert.Equal(s.T(), "cleared", result.State)

	var after inbound.CartDTO
	s.http.Success(s.do(http.MethodGet, "/api/v1/cart", nil), http.StatusOK, &after)
	assert.Zero(s.T(), after.ItemCount)
	assert.Zero(s.T(), after.Total)
}

func (s *StorefrontFlowTestSuite) TestDailyRecipeGeneration() {
	body := handlers.GenerateRequest{Ingredients: []string{"rice", "tofu"}}

	var generated inbound.GeneratedRecipeDTO
	s.http.Success(s.do(http.MethodPost, "/api/v1/recipes/generation", body), http.StatusCreated, &generated)
	assert.NotEmpty(s.T(), generated.Markdown)

	s.http.Error(s.do(http.MethodPost, "/api/v1/recipes/generation", body), http.StatusTooManyRequests, errors.CodeQuotaExceeded)

	var status inbound.GenerationStatusDTO
	s.http.Success(s.do(http.MethodGet, "/api/v1/recipes/generation", nil), http.StatusOK, &status)
	assert.False(s.T(), status.Eligible)
}

func (s *StorefrontFlowTestSuite) TestFavoritesAreIdempotent() {
	burger := handlers.FavoriteRequest{DishID: sqlite.SeedID("dish", "Smash Burger")}

	s.http.Success(s.do(http.MethodPost, "/api/v1/favorites", burger), http.StatusCreated, nil)
	s.http.Success(s.do(http.MethodPost, "/api/v1/favorites", burger), http.StatusOK, nil)

	var favorites []inbound.FavoriteDTO
	s.http.Success(s.do(http.MethodGet, "/api/v1/favorites", nil), http.StatusOK, &favorites)
	assert.Len(s.T(), favorites, 1)
}

func (s *StorefrontFlowTestSuite) TestPublicCatalogAndAuthBoundary() {
	s.token = ""

	rec := s.do(http.MethodGet, "/api/v1/cuisines", nil)
	var cuisines []string
	s.http.Success(rec, http.StatusOK, &cuisines)
	s.http.SecurityHeaders(rec)
	assert.Contains(s.T(), cuisines, "thai")

	s.http.Error(s.do(http.MethodGet, "/api/v1/cart", nil), http.StatusUnauthorized, errors.CodeUnauthorized)

	live := s.do(http.MethodGet, "/health/live", nil)
	assert.Equal(s.T(), http.StatusOK, live.Code)
}

func (s *StorefrontFlowTestSuite) TestSignOutRevokesToken() {
	rec := s.do(http.MethodPost, "/api/v1/auth/signout", nil)
	assert.Equal(s.T(), http.StatusNoContent, rec.Code)

	s.http.Error(s.do(http.MethodGet, "/api/v1/auth/me", nil), http.StatusUnauthorized, errors.CodeUnauthorized)
}

func TestStorefrontFlowTestSuite(t *testing.T) {
	suite.Run(t, new(StorefrontFlowTestSuite))
}
