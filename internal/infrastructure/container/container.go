// Package container wires the application together with Uber FX
package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	aiapp "github.com/alchemorsel/cookbook/internal/application/ai"
	"github.com/alchemorsel/cookbook/internal/application/draft"
	"github.com/alchemorsel/cookbook/internal/application/grocery"
	"github.com/alchemorsel/cookbook/internal/application/imagery"
	recipeapp "github.com/alchemorsel/cookbook/internal/application/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/cookbook/internal/infrastructure/cache"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	mongostore "github.com/alchemorsel/cookbook/internal/infrastructure/persistence/mongo"
	redisstore "github.com/alchemorsel/cookbook/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/cookbook/internal/infrastructure/photos/unsplash"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
	"github.com/alchemorsel/cookbook/pkg/logger"
)

const (
	driverMongo  = "mongo"
	driverRedis  = "redis"
	cachePrefix  = "cookbook:"
	startTimeout = 15 * time.Second
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	TelemetryModule,

	DatabaseModule,
	CacheModule,
	RepositoryModule,
	AdapterModule,

	ServiceModule,
	HTTPModule,

	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging. The level follows the config file while
// the process runs.
var LoggerModule = fx.Options(
	fx.Provide(
		func(cfg *config.Config) (*logger.Logger, error) {
			return logger.New(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
			})
		},
		func(l *logger.Logger) *zap.Logger {
			return l.Logger
		},
	),
	fx.Invoke(func(cfg *config.Config, l *logger.Logger) {
		cfg.OnLogLevelChange(func(level string) {
			l.SetLevel(level)
			l.Info("Log level changed", zap.String("level", level))
		})
	}),
)

// TelemetryModule provides metrics and tracing
var TelemetryModule = fx.Provide(
	monitoring.NewMetrics,
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
)

// DatabaseModule provides the document store. It is nil when the
// in-memory driver is selected.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*mongostore.Database, error) {
		if cfg.Database.Driver != driverMongo {
			log.Warn("Using in-memory recipe storage", zap.String("driver", cfg.Database.Driver))
			return nil, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()

		db, err := mongostore.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	},
)

// CacheModule provides the redis client and the cache repository. Outside
// production an unreachable redis falls back to the in-process cache.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*cache.RedisClient, error) {
		if cfg.Cache.Driver != driverRedis {
			return nil, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()

		client, err := cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			if cfg.IsProduction() {
				return nil, fmt.Errorf("failed to connect to redis: %w", err)
			}
			log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
			return nil, nil
		}
		return client, nil
	},
	func(client *cache.RedisClient, log *zap.Logger) outbound.CacheRepository {
		if client == nil {
			return memory.NewCacheRepository()
		}
		return redisstore.NewCacheRepository(client, cachePrefix, log)
	},
)

// RepositoryModule provides the persistence ports
var RepositoryModule = fx.Provide(
	func(db *mongostore.Database) (outbound.RecipeRepository, outbound.GroceryRepository) {
		if db == nil {
			return memory.NewRecipeRepository(), memory.NewGroceryRepository()
		}
		return mongostore.NewRecipeRepository(db), mongostore.NewGroceryRepository(db)
	},
	func(cfg *config.Config, client *cache.RedisClient, log *zap.Logger) outbound.DraftRepository {
		if client == nil {
			return memory.NewDraftRepository()
		}
		return redisstore.NewDraftRepository(client, cfg.Drafts.TTL, log)
	},
)

// AdapterModule provides the third-party API clients
var AdapterModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.CompletionClient {
		return openai.NewClient(cfg.AI, log)
	},
	func(cfg *config.Config, log *zap.Logger) outbound.PhotoSearcher {
		return unsplash.NewClient(cfg.Unsplash, log)
	},
)

// ServiceModule provides the application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config, repo outbound.RecipeRepository, c outbound.CacheRepository, log *zap.Logger) inbound.RecipeService {
		return recipeapp.NewRecipeService(repo, c, cfg.Cache.RecipeTTL, log)
	},
	func(cfg *config.Config, photos outbound.PhotoSearcher, c outbound.CacheRepository, log *zap.Logger) *imagery.Service {
		return imagery.NewService(photos, c, imagery.Config{
			AppName:           cfg.Unsplash.AppName,
			RequestsPerSecond: cfg.Unsplash.RequestsPerSecond,
			MinJitter:         cfg.Unsplash.MinJitter,
			MaxJitter:         cfg.Unsplash.MaxJitter,
			CacheTTL:          cfg.Cache.PhotoTTL,
		}, log)
	},
	func(s *imagery.Service) inbound.ImageService {
		return s
	},
	func(
		cfg *config.Config,
		recipes outbound.RecipeRepository,
		completion outbound.CompletionClient,
		images inbound.ImageService,
		metrics *monitoring.Metrics,
		log *zap.Logger,
	) *aiapp.Service {
		return aiapp.NewService(recipes, completion, images, metrics, aiapp.Config{
			MaxTokens:             cfg.AI.MaxTokens,
			RegenerationMaxTokens: cfg.AI.RegenerationMaxTokens,
			Temperature:           cfg.AI.Temperature,
		}, log)
	},
	func(s *aiapp.Service) inbound.AIService {
		return s
	},
	func(repo outbound.GroceryRepository, converter *aiapp.Service, metrics *monitoring.Metrics, log *zap.Logger) inbound.GroceryService {
		return grocery.NewService(repo, converter, log).WithRecorder(metrics)
	},
	func(drafts outbound.DraftRepository, recipes inbound.RecipeService, log *zap.Logger) inbound.DraftService {
		return draft.NewService(drafts, recipes, log)
	},
	security.NewValidationService,
	newHealthCheck,
)

func newHealthCheck(cfg *config.Config, db *mongostore.Database, client *cache.RedisClient, log *zap.Logger) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	health.SetCacheTTL(cfg.Monitoring.HealthCacheTTL)
	if db != nil {
		health.Register("database", healthcheck.NewPingChecker(db.Ping, true))
	}
	if client != nil {
		health.Register("cache", healthcheck.NewPingChecker(client.Ping, false))
	}
	return health
}

// HTTPModule provides the handlers and the API server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		recipes inbound.RecipeService,
		ai inbound.AIService,
		groceries inbound.GroceryService,
		images inbound.ImageService,
		drafts inbound.DraftService,
		validator *security.ValidationService,
		log *zap.Logger,
	) apiserver.Handlers {
		return apiserver.Handlers{
			Recipes: handlers.NewRecipeHandlers(recipes, validator, cfg.Server.PublicURL, log),
			AI:      handlers.NewAIHandlers(ai, validator, log),
			Grocery: handlers.NewGroceryHandlers(groceries, validator, log),
			Photos:  handlers.NewPhotoHandlers(images, validator, log),
			Drafts:  handlers.NewDraftHandlers(drafts, validator, log),
		}
	},
	func(cfg *config.Config, metrics *monitoring.Metrics, log *zap.Logger) *middleware.ClientRateLimiter {
		return middleware.NewClientRateLimiter(
			cfg.RateLimit.AIRequestsPerMin,
			cfg.RateLimit.AIBurst,
			cfg.RateLimit.CleanupInterval,
			metrics,
			log,
		)
	},
	apiserver.NewServer,
)

// LifecycleModule registers start and stop hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// LifecycleParams are the components with start or stop work
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *logger.Logger
	Server    *apiserver.Server
	Limiter   *middleware.ClientRateLimiter
	Images    *imagery.Service
	Database  *mongostore.Database
	Redis     *cache.RedisClient
	Tracing   *monitoring.TracingProvider
}

// RegisterLifecycleHooks starts the server and background work, and
// releases everything in reverse order on shutdown.
func RegisterLifecycleHooks(p LifecycleParams) {
	stopCleanup := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Database != nil {
				if err := p.Database.EnsureIndexes(ctx); err != nil {
					return fmt.Errorf("failed to create indexes: %w", err)
				}
			}

			go p.Limiter.Run(stopCleanup)

			if err := p.Server.Start(); err != nil {
				return fmt.Errorf("failed to start API server: %w", err)
			}
			p.Logger.Info("Application started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Stopping application")

			if err := p.Server.Shutdown(ctx); err != nil {
				p.Logger.Error("Server shutdown failed", zap.Error(err))
			}
			close(stopCleanup)

			// Lets pending download pings finish.
			p.Images.Wait()

			if p.Database != nil {
				if err := p.Database.Disconnect(ctx); err != nil {
					p.Logger.Error("Database disconnect failed", zap.Error(err))
				}
			}
			if p.Redis != nil {
				if err := p.Redis.Close(); err != nil {
					p.Logger.Error("Redis close failed", zap.Error(err))
				}
			}
			if err := p.Tracing.Shutdown(ctx); err != nil {
				p.Logger.Error("Tracing shutdown failed", zap.Error(err))
			}

			_ = p.Logger.Sync()
			return nil
		},
	})
}
