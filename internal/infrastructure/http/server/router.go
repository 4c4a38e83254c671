package server

import (
	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/infrastructure/http/handlers"
	"github.com/basketful/storefront/internal/infrastructure/http/middleware"
	"github.com/basketful/storefront/internal/infrastructure/monitoring"
	"github.com/basketful/storefront/internal/infrastructure/security"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/healthcheck"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the API handlers mounted by the router
type Handlers struct {
	Auth     *handlers.AuthHandlers
	Catalog  *handlers.CatalogHandlers
	Cart     *handlers.CartHandlers
	Checkout *handlers.CheckoutHandlers
	Account  *handlers.AccountHandlers
	Recipes  *handlers.RecipeHandlers
	Weather  *handlers.WeatherHandlers
}

// RouterDeps are the cross-cutting components the router wires in.
// Metrics may be nil.
type RouterDeps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Middleware  *middleware.Middleware
	Tokens      *security.TokenManager
	Sessions    outbound.SessionStore
	RateLimiter *security.RateLimitService
	Metrics     *monitoring.MetricsCollector
	Health      *healthcheck.HealthCheck
}

// NewRouter builds the public gin engine
func NewRouter(deps RouterDeps, h Handlers) *gin.Engine {
	if !deps.Config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		deps.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	mw := deps.Middleware
	r.Use(
		mw.RequestID(),
		mw.Recovery(),
		mw.Tracing(),
		mw.Logger(),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinMiddleware())
	}
	r.Use(
		mw.Security(),
		mw.CORS(),
		mw.Compression(),
		mw.Timeout(deps.Config.Server.RequestTimeout),
		mw.ErrorHandler(),
	)

	health := r.Group("/health")
	health.GET("", gin.WrapF(deps.Health.ReadinessHandler()))
	health.GET("/live", gin.WrapF(deps.Health.LivenessHandler()))
	health.GET("/ready", gin.WrapF(deps.Health.ReadinessHandler()))

	optional := deps.Tokens.OptionalAuth(deps.Sessions)
	required := deps.Tokens.RequireAuth(deps.Sessions)
	perIP := deps.RateLimiter.RateLimitMiddleware(security.RateLimitPerIP)
	perUser := deps.RateLimiter.RateLimitMiddleware(security.RateLimitPerUser)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		authLimit := deps.RateLimiter.RateLimitMiddleware(security.RateLimitAuth)
		auth.POST("/signup", authLimit, h.Auth.SignUp)
		auth.POST("/signin", authLimit, h.Auth.SignIn)
		auth.POST("/signout", required, h.Auth.SignOut)
		auth.GET("/me", required, h.Auth.Me)
	}

	public := v1.Group("", perIP, optional)
	{
		public.GET("/cuisines", h.Catalog.ListCuisines)
		public.GET("/dishes", h.Catalog.ListDishes)
		public.GET("/dishes/:id", h.Catalog.GetDish)
		public.GET("/ingredients", h.Catalog.ListIngredients)
		public.POST("/feedback", h.Account.SubmitFeedback)
		public.GET("/weather/suggestions", h.Weather.Suggestions)
	}

	private := v1.Group("", required, perUser)
	{
		private.GET("/cart", h.Cart.Get)
		private.DELETE("/cart", h.Cart.Clear)
		private.POST("/cart/dishes", h.Cart.AddDish)
		private.PATCH("/cart/dishes/:dishId", h.Cart.UpdateDishPeople)
		private.DELETE("/cart/dishes/:dishId", h.Cart.RemoveDish)
		private.POST("/cart/items", h.Cart.AddIngredient)
		private.PATCH("/cart/items/:id", h.Cart.UpdateItem)
		private.DELETE("/cart/items/:id", h.Cart.RemoveItem)

		private.GET("/favorites", h.Account.ListFavorites)
		private.POST("/favorites", h.Account.AddFavorite)
		private.DELETE("/favorites/:dishId", h.Account.RemoveFavorite)

		private.GET("/profile", h.Account.GetProfile)
		private.PUT("/profile", h.Account.UpdateProfile)

		private.POST("/checkout/validate", h.Checkout.Validate)
		private.POST("/checkout", h.Checkout.Checkout)

		private.GET("/recipes/generation", h.Recipes.Status)
		private.POST("/recipes/generation", h.Recipes.Generate)

		private.GET("/location", h.Weather.GetLocation)
		private.PUT("/location", h.Weather.SetLocation)
	}

	return r
}
