// Package container wires the storefront together with Uber FX
package container

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/basketful/storefront/internal/application/account"
	cartApp "github.com/basketful/storefront/internal/application/cart"
	catalogApp "github.com/basketful/storefront/internal/application/catalog"
	checkoutApp "github.com/basketful/storefront/internal/application/checkout"
	recipeApp "github.com/basketful/storefront/internal/application/recipe"
	"github.com/basketful/storefront/internal/application/user"
	weatherApp "github.com/basketful/storefront/internal/application/weather"
	"github.com/basketful/storefront/internal/domain/cart"
	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/domain/shared"
	"github.com/basketful/storefront/internal/infrastructure/ai"
	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/infrastructure/http/handlers"
	"github.com/basketful/storefront/internal/infrastructure/http/middleware"
	"github.com/basketful/storefront/internal/infrastructure/http/server"
	"github.com/basketful/storefront/internal/infrastructure/monitoring"
	"github.com/basketful/storefront/internal/infrastructure/notification"
	gormRepo "github.com/basketful/storefront/internal/infrastructure/persistence/gorm"
	"github.com/basketful/storefront/internal/infrastructure/persistence/memory"
	"github.com/basketful/storefront/internal/infrastructure/persistence/migrations"
	"github.com/basketful/storefront/internal/infrastructure/persistence/postgres"
	redisStore "github.com/basketful/storefront/internal/infrastructure/persistence/redis"
	"github.com/basketful/storefront/internal/infrastructure/persistence/sqlite"
	"github.com/basketful/storefront/internal/infrastructure/security"
	"github.com/basketful/storefront/internal/infrastructure/weather"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/healthcheck"
	"github.com/basketful/storefront/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPathEnv names the variable holding an explicit config file path
const ConfigPathEnv = "STOREFRONT_CONFIG_FILE"

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	IntegrationModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigPathEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(NewLogger)

// LoggerResult exposes the logger and its runtime level
type LoggerResult struct {
	fx.Out

	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// NewLogger builds the zap logger from the app config
func NewLogger(cfg *config.Config) (LoggerResult, error) {
	log, level, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
	})
	if err != nil {
		return LoggerResult{}, err
	}
	return LoggerResult{Logger: log, Level: level}, nil
}

// MonitoringModule provides metrics, tracing and the domain event bus
var MonitoringModule = fx.Options(
	fx.Provide(
		monitoring.NewMetricsCollector,
		fx.Annotate(
			monitoring.NewEventDispatcher,
			fx.As(new(shared.EventDispatcher)),
		),
		NewTelemetry,
	),
	fx.Invoke(func(metrics *monitoring.MetricsCollector, dispatcher shared.EventDispatcher) {
		metrics.Subscribe(dispatcher)
	}),
)

// NewTelemetry configures OpenTelemetry and flushes it on stop
func NewTelemetry(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*monitoring.OpenTelemetryProvider, error) {
	provider, err := monitoring.NewOpenTelemetryProvider(context.Background(), monitoring.OpenTelemetryConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		TracingEnabled: cfg.Monitoring.EnableTracing,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		OTLPInsecure:   cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Registerer:     metrics.Registry(),
	}, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: provider.Shutdown,
	})
	return provider, nil
}

// DatabaseModule provides the GORM connection for the configured driver
var DatabaseModule = fx.Provide(NewDatabase)

// NewDatabase opens SQLite or Postgres, applies the schema and seeds the
// catalog when enabled.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			err := migrations.Apply(ctx, cfg.MigrationURL(), migrations.Options{
				LockTimeout: cfg.Database.MigrationLock,
			}, log)
			cancel()
			if err != nil {
				return nil, err
			}
		}

		cm, err := postgres.NewConnectionManager(cfg, metrics, log)
		if err != nil {
			return nil, err
		}
		db = cm.GetDB()
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return cm.Close()
			},
		})

	default:
		gormLogger := postgres.NewGORMLogger(log, cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold)
		sqliteDB, err := sqlite.SetupDatabase(cfg.Database.Path, gormLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		db = sqliteDB
		monitor := postgres.NewQueryMonitor(cfg.Database.SlowQueryThreshold, metrics, log)
		if err := monitor.Install(db); err != nil {
			return nil, fmt.Errorf("failed to install query monitor: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})
	}

	if cfg.Database.Seed {
		if err := sqlite.SeedDatabase(db); err != nil {
			log.Warn("Failed to seed catalog", zap.Error(err))
		}
	}

	log.Info("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("seeded", cfg.Database.Seed),
	)

	return db, nil
}

// CacheModule provides the key-value cache and the session store
var CacheModule = fx.Provide(NewCacheBackend)

// CacheBackend is the shared cache and session store. Redis is nil when the
// in-memory fallback is in use.
type CacheBackend struct {
	fx.Out

	Cache    outbound.CacheRepository
	Sessions outbound.SessionStore
	Redis    redis.UniversalClient
}

// NewCacheBackend connects to Redis when enabled and falls back to memory
// when it is disabled or unreachable.
func NewCacheBackend(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) CacheBackend {
	if cfg.Redis.Enabled {
		client, err := redisStore.NewClient(cfg.Redis, log)
		if err == nil {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return client.Close()
				},
			})
			return CacheBackend{
				Cache:    redisStore.NewCacheRepository(client, "storefront:cache:", log),
				Sessions: redisStore.NewSessionStore(client, "storefront:"),
				Redis:    client,
			}
		}
		log.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
	}

	cache := memory.NewCacheRepository()
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})
	log.Info("Using in-memory cache and sessions")

	return CacheBackend{
		Cache:    cache,
		Sessions: memory.NewSessionStore(),
	}
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewCatalogRepository,
	gormRepo.NewCartRepository,
	gormRepo.NewFavoriteRepository,
	gormRepo.NewProfileRepository,
	gormRepo.NewFeedbackRepository,
	gormRepo.NewRecipeUsageRepository,
)

// IntegrationModule provides external service adapters
var IntegrationModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.RecipeGenerator, error) {
		gen, err := ai.NewRecipeGenerator(context.Background(), cfg.AI, log)
		if err != nil {
			return nil, err
		}
		if closer, ok := gen.(interface{ Close() error }); ok {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error { return closer.Close() },
			})
		}
		return gen, nil
	},
	NewWeatherProvider,
	notification.NewNotifier,
	func(cfg *config.Config, log *zap.Logger) *security.TokenManager {
		return security.NewTokenManager(cfg.Auth, log)
	},
	func(tokens *security.TokenManager) outbound.TokenIssuer {
		return tokens
	},
)

// WeatherResult carries the provider and its optional circuit breaker
type WeatherResult struct {
	fx.Out

	Provider outbound.WeatherProvider
	Breaker  healthcheck.Checker `name:"weather_breaker"`
}

// NewWeatherProvider selects the configured weather backend
func NewWeatherProvider(cfg *config.Config, log *zap.Logger) (WeatherResult, error) {
	provider, breaker, err := weather.NewProvider(cfg.Weather, log)
	if err != nil {
		return WeatherResult{}, err
	}
	return WeatherResult{Provider: provider, Breaker: breaker}, nil
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		func(repo outbound.CatalogRepository, cache outbound.CacheRepository, cfg *config.Config, log *zap.Logger) *catalogApp.CatalogService {
			return catalogApp.NewCatalogService(repo, cache, cfg.Catalog.CacheTTL, log)
		},
		fx.As(new(inbound.CatalogService)),
	),
	fx.Annotate(
		func(carts outbound.CartRepository, repo outbound.CatalogRepository, cache outbound.CacheRepository, cfg *config.Config, log *zap.Logger) *cartApp.CartService {
			return cartApp.NewCartService(carts, repo, cache, cartApp.Options{
				Pricing: cart.Pricing{
					UnitPrice:    cfg.Cart.UnitPrice,
					PackagingFee: cfg.Cart.PackagingFee,
				},
				SnapshotTTL: cfg.Cart.SnapshotTTL,
			}, log)
		},
		fx.As(new(inbound.CartService)),
	),
	fx.Annotate(
		checkoutApp.NewCheckoutService,
		fx.As(new(inbound.CheckoutService)),
	),
	fx.Annotate(
		account.NewFavoriteService,
		fx.As(new(inbound.FavoriteService)),
	),
	fx.Annotate(
		account.NewProfileService,
		fx.As(new(inbound.ProfileService)),
	),
	fx.Annotate(
		account.NewFeedbackService,
		fx.As(new(inbound.FeedbackService)),
	),
	fx.Annotate(
		func(users outbound.UserRepository, profiles outbound.ProfileRepository, sessions outbound.SessionStore, tokens outbound.TokenIssuer, cfg *config.Config, log *zap.Logger) *user.AuthService {
			return user.NewAuthService(users, profiles, sessions, tokens, user.Options{
				BCryptCost: cfg.Auth.BCryptCost,
				SessionTTL: cfg.Auth.SessionTTL,
			}, log)
		},
		fx.As(new(inbound.AuthService)),
	),
	fx.Annotate(
		func(
			usage outbound.RecipeUsageRepository,
			generator outbound.RecipeGenerator,
			cache outbound.CacheRepository,
			dispatcher shared.EventDispatcher,
			cfg *config.Config,
			log *zap.Logger,
		) *recipeApp.GenerationService {
			return recipeApp.NewGenerationService(usage, generator, cache, dispatcher, recipeApp.Options{
				Calendar:    recipegen.NewCalendar(cfg.QuotaLocation()),
				InFlightTTL: cfg.Recipes.InFlightTTL,
			}, log)
		},
		fx.As(new(inbound.RecipeGenerationService)),
	),
	func(cache outbound.CacheRepository, cfg *config.Config, log *zap.Logger) *weatherApp.LocationService {
		return weatherApp.NewLocationService(cache, cfg.Location.CacheTTL, log)
	},
	func(locations *weatherApp.LocationService) inbound.LocationService {
		return locations
	},
	fx.Annotate(
		func(
			provider outbound.WeatherProvider,
			repo outbound.CatalogRepository,
			locations *weatherApp.LocationService,
			cache outbound.CacheRepository,
			cfg *config.Config,
			log *zap.Logger,
		) *weatherApp.SuggestionService {
			return weatherApp.NewSuggestionService(provider, repo, locations, cache, cfg.Weather.CacheTTL, log)
		},
		fx.As(new(inbound.WeatherSuggestionService)),
	),
)

// HTTPModule provides the API router, servers and health checks
var HTTPModule = fx.Provide(
	NewHealthCheck,
	middleware.New,
	func(cfg *config.Config, log *zap.Logger) *security.RateLimitService {
		return security.NewRateLimitService(cfg.RateLimit, log)
	},
	func(
		auth inbound.AuthService,
		catalog inbound.CatalogService,
		carts inbound.CartService,
		checkout inbound.CheckoutService,
		favorites inbound.FavoriteService,
		profiles inbound.ProfileService,
		feedback inbound.FeedbackService,
		recipes inbound.RecipeGenerationService,
		locations inbound.LocationService,
		suggestions inbound.WeatherSuggestionService,
		log *zap.Logger,
	) server.Handlers {
		return server.Handlers{
			Auth:     handlers.NewAuthHandlers(auth, log),
			Catalog:  handlers.NewCatalogHandlers(catalog),
			Cart:     handlers.NewCartHandlers(carts),
			Checkout: handlers.NewCheckoutHandlers(checkout),
			Account:  handlers.NewAccountHandlers(favorites, profiles, feedback),
			Recipes:  handlers.NewRecipeHandlers(recipes),
			Weather:  handlers.NewWeatherHandlers(locations, suggestions),
		}
	},
	NewRouter,
	server.NewServer,
)

// HealthParams collects the components probed by readiness
type HealthParams struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Redis     redis.UniversalClient `optional:"true"`
	Generator outbound.RecipeGenerator
	Breaker   healthcheck.Checker `name:"weather_breaker" optional:"true"`
}

// NewHealthCheck registers every dependency probe
func NewHealthCheck(p HealthParams) *healthcheck.HealthCheck {
	health := healthcheck.New(p.Config.App.Version, p.Logger)
	health.Register("database", healthcheck.NewDatabaseChecker(p.DB))
	health.Register("catalog", healthcheck.NewRowsChecker(p.DB, "dishes"))
	if p.Redis != nil {
		health.Register("redis", healthcheck.NewRedisChecker(p.Redis))
	}
	health.Register("ai", ai.NewHealthChecker(p.Generator, p.Logger))
	if p.Breaker != nil {
		health.Register("weather", p.Breaker)
	}
	return health
}

// RouterParams collects the router dependencies
type RouterParams struct {
	fx.In

	Config      *config.Config
	Logger      *zap.Logger
	Middleware  *middleware.Middleware
	Tokens      *security.TokenManager
	Sessions    outbound.SessionStore
	RateLimiter *security.RateLimitService
	Metrics     *monitoring.MetricsCollector
	Health      *healthcheck.HealthCheck
	Handlers    server.Handlers
}

// NewRouter builds the gin engine, dropping request metrics when disabled
func NewRouter(p RouterParams) *gin.Engine {
	deps := server.RouterDeps{
		Config:      p.Config,
		Logger:      p.Logger,
		Middleware:  p.Middleware,
		Tokens:      p.Tokens,
		Sessions:    p.Sessions,
		RateLimiter: p.RateLimiter,
		Health:      p.Health,
	}
	if p.Config.Monitoring.EnableMetrics {
		deps.Metrics = p.Metrics
	}
	return server.NewRouter(deps, p.Handlers)
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
	WatchConfig,
)

// LifecycleParams collects what the lifecycle hooks start and stop
type LifecycleParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Shutdowner  fx.Shutdowner
	Config      *config.Config
	Logger      *zap.Logger
	Server      *server.Server
	Metrics     *monitoring.MetricsCollector
	Health      *healthcheck.HealthCheck
	RateLimiter *security.RateLimitService
}

// RegisterLifecycleHooks starts the API and ops servers and stops them in
// reverse order.
func RegisterLifecycleHooks(p LifecycleParams) {
	cfg, log := p.Config, p.Logger

	var ops *server.OpsServer
	if cfg.Monitoring.EnableMetrics && cfg.Monitoring.MetricsPort > 0 {
		ops = server.NewOpsServer(cfg.Monitoring.MetricsPort, server.NewOpsRouter(p.Metrics, p.Health, log), log)
	}

	serve := func(name string, start func() error) {
		go func() {
			if err := start(); err != nil {
				log.Error("Server stopped unexpectedly", zap.String("server", name), zap.Error(err))
				_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			}
		}()
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting storefront",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			serve("api", p.Server.Start)
			if ops != nil {
				serve("ops", ops.Start)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down storefront")

			if err := p.Server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			if ops != nil {
				if err := ops.Shutdown(ctx); err != nil {
					log.Error("Failed to shutdown ops server", zap.Error(err))
				}
			}
			p.RateLimiter.Close()

			_ = log.Sync()
			return nil
		},
	})
}

// WatchConfig applies log level changes from the config file without a
// restart. Other settings are read once at startup.
func WatchConfig(level zap.AtomicLevel, log *zap.Logger) error {
	return config.Watch(os.Getenv(ConfigPathEnv), func(updated *config.Config) {
		next := logger.ParseLevel(updated.App.LogLevel)
		if next == level.Level() {
			return
		}
		level.SetLevel(next)
		log.Info("Log level changed", zap.String("level", next.String()))
	}, func(err error) {
		log.Warn("Ignoring invalid config reload", zap.Error(err))
	})
}
