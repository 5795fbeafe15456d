package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"portfolio-cms/internal/config"
	infraCache "portfolio-cms/internal/infrastructure/cache"
	"portfolio-cms/internal/infrastructure/database"
	"portfolio-cms/internal/infrastructure/storage"
	"portfolio-cms/pkg/cache"
	"portfolio-cms/pkg/jwt"

	adminHandler "portfolio-cms/internal/domains/admin/handler"
	adminRepo "portfolio-cms/internal/domains/admin/repository"
	adminService "portfolio-cms/internal/domains/admin/service"
	contentHandler "portfolio-cms/internal/domains/content/handler"
	contentRepo "portfolio-cms/internal/domains/content/repository"
	contentService "portfolio-cms/internal/domains/content/service"
)

// Container is the root of the dependency graph. One instance per process;
// everything it holds is a singleton.
type Container struct {
	Config         *config.Config
	DB             *database.PostgresDB
	Cache          cache.Cache
	AssetStore     *storage.AssetStore
	ImageProcessor *storage.ImageProcessor
	AsynqClient    *asynq.Client
	JWTManager     *jwt.Manager

	ContentRepo contentRepo.ContentRepository
	AdminRepo   adminRepo.AdminRepository

	ContentService contentService.ContentService
	ExportService  contentService.ExportService
	AuthService    adminService.AuthService

	ContentHandler *contentHandler.ContentHandler
	AuthHandler    *adminHandler.AuthHandler
}

// NewContainer builds the full graph. Order matters: config, then
// infrastructure, then repositories, services and handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// The cache is an accelerator, not a dependency.
			log.Printf("[Container] Redis unavailable, running without cache: %v", err)
		}
	}
	c.Cache = redisCache

	store, err := storage.NewAssetStore(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init asset store: %w", err)
	}
	c.AssetStore = store
	c.ImageProcessor = storage.NewImageProcessor(cfg.Upload.MaxFileBytes)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	c.ContentRepo = contentRepo.NewPostgresRepository(db.Pool)
	c.AdminRepo = adminRepo.NewPostgresRepository(db.Pool)

	c.ContentService = contentService.NewContentService(
		c.ContentRepo, c.AssetStore, c.ImageProcessor, c.Cache, c.AsynqClient, cfg.Upload,
	)
	c.ExportService = contentService.NewExportService(c.ContentRepo)
	c.AuthService = adminService.NewAuthService(c.AdminRepo, c.JWTManager)

	c.ContentHandler = contentHandler.NewContentHandler(c.ContentService, c.ExportService)
	c.AuthHandler = adminHandler.NewAuthHandler(c.AuthService)

	return c, nil
}

// Cleanup closes every connection the container owns. Call on shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("[Container] asynq client close: %v", err)
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("[Container] redis close: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
