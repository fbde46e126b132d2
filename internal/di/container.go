package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifeops/internal/account"
	"lifeops/internal/activity"
	"lifeops/internal/auth"
	authconfig "lifeops/internal/auth/config"
	authrepo "lifeops/internal/auth/domain/repository"
	"lifeops/internal/health"
	"lifeops/internal/shared/cache"
	"lifeops/internal/shared/config"
	"lifeops/internal/shared/database"
	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/httpx"
	"lifeops/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const (
	bodyLimit          = 10 * 1024 * 1024
	limiterPrefix      = "lifeops:limiter:"
	shutdownEventsWait = 5 * time.Second
)

// Options overrides parts of the container, mostly for tests
type Options struct {
	// DB replaces the PostgreSQL connection; the container does not close it
	DB     *gorm.DB
	Logger logger.Logger
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
	// Providers replaces the configured social providers
	Providers []authrepo.SocialProvider
}

// Container owns every long-lived dependency of the API process
type Container struct {
	Config *config.Config
	Logger logger.Logger

	// Connections
	DB    *gorm.DB
	Redis *redis.Client
	Mongo *mongo.Client

	EventBus *eventbus.EventBus

	// Modules
	AuthModule     *auth.AuthModule
	AccountModule  *account.AccountModule
	ActivityModule *activity.ActivityModule
	Health         *health.Handler

	ownsDB bool
}

// NewContainer connects to the configured stores and builds every module
func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	c := &Container{Config: cfg, Logger: opts.Logger}
	if c.Logger == nil {
		log, err := logger.New(logger.Options{
			Level:       cfg.LogLevel,
			Format:      cfg.LogFormat,
			Backend:     cfg.LogBackend,
			Environment: cfg.Environment,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		c.Logger = log
	}

	if err := c.connect(ctx, opts.DB); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.initModules(ctx, opts); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) connect(ctx context.Context, db *gorm.DB) error {
	log := c.Logger.WithComponent("container")

	if db != nil {
		c.DB = db
	} else {
		pg, err := database.NewPostgres(ctx, database.PostgresConfig{
			URL:             c.Config.DatabaseURL,
			MaxOpenConns:    c.Config.DBMaxOpenConns,
			MaxIdleConns:    c.Config.DBMaxIdleConns,
			ConnMaxLifetime: c.Config.DBConnMaxLifetime,
			LogQueries:      c.Config.IsDevelopment() && c.Config.LogLevel == "debug",
		}, c.Logger)
		if err != nil {
			return err
		}
		c.DB, c.ownsDB = pg, true
	}

	if c.Config.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, c.Config.RedisURL)
		if err != nil {
			return err
		}
		c.Redis = client
		log.Info("Redis connection established; rate limits are shared")
	}

	if c.Config.MongoURI != "" {
		client, err := database.NewMongoClient(ctx, c.Config.MongoURI)
		if err != nil {
			return err
		}
		c.Mongo = client
		log.Infof("MongoDB connection established (database %s)", c.Config.MongoDatabase)
	}
	return nil
}

func (c *Container) initModules(ctx context.Context, opts Options) error {
	if err := auth.Migrate(c.DB); err != nil {
		return fmt.Errorf("failed to migrate auth tables: %w", err)
	}
	if err := activity.Migrate(c.DB); err != nil {
		return fmt.Errorf("failed to migrate activity table: %w", err)
	}

	c.EventBus = eventbus.NewEventBusWithConfig(c.Logger, eventbus.BusConfig{
		AsyncProcessing: true,
		MaxRetries:      2,
		RetryDelay:      100 * time.Millisecond,
	})

	var limiterStorage fiber.Storage
	if c.Redis != nil {
		limiterStorage = cache.NewRedisStorage(c.Redis, limiterPrefix)
	}

	authModule, err := auth.NewAuthModule(c.DB, authconfig.FromShared(c.Config), auth.Options{
		Events:         c.EventBus,
		Logger:         c.Logger,
		LimiterStorage: limiterStorage,
		BcryptCost:     opts.BcryptCost,
		Providers:      opts.Providers,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = authModule

	activityOpts := activity.Options{DB: c.DB, Logger: c.Logger}
	if c.Mongo != nil {
		activityOpts.Mongo = c.Mongo.Database(c.Config.MongoDatabase)
	}
	activityModule, err := activity.NewActivityModule(ctx, activityOpts)
	if err != nil {
		return fmt.Errorf("failed to create activity module: %w", err)
	}
	activityModule.Subscribe(c.EventBus)
	c.ActivityModule = activityModule

	c.AccountModule = account.NewAccountModule(authModule.GetRepository(), c.EventBus, c.Logger)

	checkers := []health.Checker{health.Database(c.DB)}
	if c.Redis != nil {
		checkers = append(checkers, health.Redis(c.Redis))
	}
	if c.Mongo != nil {
		checkers = append(checkers, health.Mongo(c.Mongo))
	}
	c.Health = health.NewHandler(c.Logger, checkers...)

	c.Logger.WithComponent("container").Infof("Modules initialized (activity store: %s)", activityModule.Backend())
	return nil
}

// BuildApp assembles the Fiber application with the full middleware chain
func (c *Container) BuildApp() *fiber.App {
	cfg := fiber.Config{
		AppName:      "LifeOps API",
		Immutable:    true,
		BodyLimit:    bodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: httpx.NewErrorHandler(c.Logger, c.Config.IsDevelopment()),
	}
	httpx.TrustProxies(&cfg, c.Config.TrustedProxies)
	app := fiber.New(cfg)

	app.Use(httpx.Recover(c.Config.IsDevelopment()))
	app.Use(httpx.RequestID())
	app.Use(httpx.RequestContext())
	app.Use(httpx.SecurityHeaders(c.Config.IsProduction()))
	app.Use(httpx.CORS(c.Config.TrustedOrigins()))
	app.Use(httpx.EndPreflight())

	c.Health.RegisterRoutes(app)

	api := app.Group("/api")
	c.AuthModule.RegisterRoutes(api.Group("/auth"))

	me := api.Group("/users/me", c.AuthModule.GetMiddleware().RequireAuth())
	c.AccountModule.RegisterRoutes(me)
	c.ActivityModule.RegisterRoutes(me)

	app.Use(httpx.NotFound())
	return app
}

// Close releases every resource in reverse order of creation
func (c *Container) Close() error {
	var errs []error

	if c.ActivityModule != nil {
		c.ActivityModule.Close()
	}
	if c.EventBus != nil {
		done := make(chan struct{})
		go func() {
			c.EventBus.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(shutdownEventsWait):
			errs = append(errs, errors.New("timed out waiting for event delivery"))
		}
	}
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect mongodb: %w", err))
		}
		cancel()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if c.ownsDB {
		if err := database.Close(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if syncer, ok := c.Logger.(interface{ Sync() error }); ok {
		_ = syncer.Sync()
	}

	return errors.Join(errs...)
}
