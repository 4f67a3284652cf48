package container

import (
	"context"
	"fmt"
	"time"

	"book-catalog/internal/config"
	infraCache "book-catalog/internal/infrastructure/cache"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/pkg/cache"

	bookHandler "book-catalog/internal/domains/book/handler"
	bookRepo "book-catalog/internal/domains/book/repository"
	bookService "book-catalog/internal/domains/book/service"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application.
// Exactly one of Mongo, Postgres and Gorm is set, depending on STORE_DRIVER.
type Container struct {
	// INFRASTRUCTURE
	Config   *config.Config
	Mongo    *database.MongoDB
	Postgres *database.PostgresDB
	Gorm     *gorm.DB
	Redis    *infraCache.RedisClient
	Cache    cache.Cache // nil when REDIS_ENABLED=false

	// BOOK DOMAIN
	BookRepo    bookRepo.Repository
	BookService bookService.ServiceInterface
	BookHandler *bookHandler.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph in order:
// config, infrastructure, repositories, services, handlers.
func NewContainer(ctx context.Context) (*Container, error) {
	log.Info().Msg("Initializing DI container")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	c := &Container{Config: cfg}
	log.Info().Str("env", cfg.App.Environment).Str("store", cfg.Store.Driver).Msg("Config loaded")

	if err := c.initStore(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	if cfg.Redis.Enabled {
		c.initCache(ctx)
	}

	c.initDomain()

	log.Info().Msg("DI container initialized")
	return c, nil
}

// NewWithRepository wires service and handler on top of an existing store.
// Used by tests and embedded setups that own the store themselves.
func NewWithRepository(cfg *config.Config, repo bookRepo.Repository) *Container {
	c := &Container{Config: cfg, BookRepo: repo}
	c.initDomain()
	return c
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStore(ctx context.Context) error {
	cfg := c.Config

	switch cfg.Store.Driver {
	case config.DriverMongo:
		m := database.NewMongoDB(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		if err := m.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		c.Mongo = m

		coll := m.Collection(cfg.Mongo.Collection)
		if err := bookRepo.EnsureIndexes(ctx, coll); err != nil {
			return err
		}
		c.BookRepo = bookRepo.NewMongoRepository(coll)

	case config.DriverPostgres:
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db := database.NewPostgresDB(dbConfig)
		if err := db.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.Postgres = db

		if err := bookRepo.EnsureSchema(ctx, db.Pool); err != nil {
			return err
		}
		c.BookRepo = bookRepo.NewPostgresRepository(db.Pool)

	case config.DriverSQLite:
		db, err := database.OpenGorm(cfg.Gorm.Dialect, cfg.Gorm.DSN)
		if err != nil {
			return err
		}
		c.Gorm = db

		if err := bookRepo.AutoMigrate(db); err != nil {
			return err
		}
		c.BookRepo = bookRepo.NewGormRepository(db)

	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	log.Info().Str("driver", cfg.Store.Driver).Msg("Book store ready")
	return nil
}

// initCache wraps the store with the Redis read-through cache.
// Redis being down is not fatal, the store is used directly.
func (c *Container) initCache(ctx context.Context) {
	cfg := c.Config.Redis

	client := infraCache.NewRedisClient(cfg.Host, cfg.Password, cfg.DB)
	if err := client.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		_ = client.Close()
		return
	}

	c.Redis = client
	c.Cache = infraCache.NewRedisCache(client.Client)
	c.BookRepo = bookRepo.NewCachedRepository(c.BookRepo, c.Cache, cfg.TTL)
}

func (c *Container) initDomain() {
	c.BookService = bookService.NewService(c.BookRepo)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
}

// Cleanup releases every connection the container opened.
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Mongo.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to disconnect MongoDB")
		}
		cancel()
	}

	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}

	if c.Gorm != nil {
		if err := database.CloseGorm(c.Gorm); err != nil {
			log.Warn().Err(err).Msg("Failed to close GORM database")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
}
