package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"bookshelf-api/internal/config"
	infraCache "bookshelf-api/internal/infrastructure/cache"
	"bookshelf-api/internal/infrastructure/database"
	"bookshelf-api/internal/infrastructure/database/migrations"
	"bookshelf-api/internal/shared/urlgen"
	"bookshelf-api/pkg/cache"
	pkgdb "bookshelf-api/pkg/database"
	"bookshelf-api/pkg/logger"

	authorHandler "bookshelf-api/internal/domains/author/handler"
	authorRepo "bookshelf-api/internal/domains/author/repository"
	authorService "bookshelf-api/internal/domains/author/service"
	bookHandler "bookshelf-api/internal/domains/book/handler"
	bookRepo "bookshelf-api/internal/domains/book/repository"
	bookService "bookshelf-api/internal/domains/book/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa tất cả dependencies của application.
// Thứ tự khởi tạo: Config -> Logger -> DB -> Migrations -> Cache -> URLs
// -> Repositories -> Services -> Handlers
type Container struct {
	// Infrastructure
	Config    *config.Config
	DB        *database.PostgresDB
	Cache     cache.Cache
	TxManager pkgdb.TransactionManager
	URLs      *urlgen.Generator

	// Repositories
	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface

	// Services
	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface

	// Handlers
	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.BookHandler
}

// Route templates, registered on URLs and mounted by the router.
const (
	AuthorDetailPath = "/api/authors/:id"
	BookDetailPath   = "/api/books/:id"
)

// NewContainer builds the full dependency graph from the environment.
func NewContainer(ctx context.Context) (*Container, error) {
	// ========================================
	// STEP 1: CONFIGURATION + LOGGER
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log.Info().Str("env", cfg.App.Environment).Msg("[CONTAINER] config loaded")

	// ========================================
	// STEP 2: DATABASE
	// ========================================
	db, err := OpenDatabase(ctx)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, DB: db}

	if cfg.App.AutoMigrate {
		if err := migrations.Up(ctx, db.Pool); err != nil {
			c.Cleanup()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// ========================================
	// STEP 3: CACHE
	// ========================================
	c.Cache = newCache(ctx, cfg.Redis)

	// ========================================
	// STEP 4: DOMAINS
	// ========================================
	urls, err := urlgen.New(cfg.App.BaseURL)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init url generator: %w", err)
	}

	c.Wire(
		urls,
		authorRepo.NewPostgresRepository(db.Pool, c.Cache),
		bookRepo.NewPostgresRepository(db.Pool, c.Cache),
		pkgdb.NewTransactionManager(db.Pool),
	)

	log.Info().Msg("[CONTAINER] ready")
	return c, nil
}

// OpenDatabase connects the pool described by the DB_* variables.
func OpenDatabase(ctx context.Context) (*database.PostgresDB, error) {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Wire builds services and handlers on top of the given repositories.
// Tests call it with in-memory repositories.
func (c *Container) Wire(
	urls *urlgen.Generator,
	authors authorRepo.RepositoryInterface,
	books bookRepo.RepositoryInterface,
	txManager pkgdb.TransactionManager,
) {
	urls.Register(authorHandler.RouteDetail, AuthorDetailPath)
	urls.Register(bookHandler.RouteDetail, BookDetailPath)

	c.URLs = urls
	c.TxManager = txManager
	c.AuthorRepo = authors
	c.BookRepo = books

	c.AuthorService = authorService.NewAuthorService(authors, books, txManager)
	c.BookService = bookService.NewBookService(books, authors, txManager)

	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService, urls)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService, urls)
}

// newCache falls back to the no-op cache when Redis is disabled or unreachable.
func newCache(ctx context.Context, cfg config.RedisConfig) cache.Cache {
	if !cfg.Enabled {
		log.Info().Msg("[CONTAINER] redis disabled, caching off")
		return cache.NewNoop()
	}

	rc := infraCache.NewRedisCache(cfg.Host, cfg.Password, cfg.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rc.Connect(pingCtx); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] redis unavailable, caching off")
		_ = rc.Close()
		return cache.NewNoop()
	}
	return rc
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] failed to close redis")
		}
	}

	log.Info().Msg("[CONTAINER] cleanup completed")
}
