package app

import (
	"context"
	"fmt"

	"github.com/dermatocheck/dermatocheck-api/internal/config"
	"github.com/dermatocheck/dermatocheck-api/internal/export"
	"github.com/dermatocheck/dermatocheck-api/internal/extract"
	"github.com/dermatocheck/dermatocheck-api/internal/i18n"
	"github.com/dermatocheck/dermatocheck-api/internal/server"
	"github.com/dermatocheck/dermatocheck-api/internal/service/ai"
	"github.com/dermatocheck/dermatocheck-api/internal/service/cache"
	"github.com/dermatocheck/dermatocheck-api/internal/service/database"
	"github.com/dermatocheck/dermatocheck-api/internal/service/finder"
	"github.com/dermatocheck/dermatocheck-api/internal/service/history"
	"github.com/dermatocheck/dermatocheck-api/internal/service/places"
	"github.com/dermatocheck/dermatocheck-api/internal/service/review"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Container bundles the assembled services and the HTTP router.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Router *gin.Engine

	closers []func()
}

// Close releases infrastructure resources in reverse build order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and wires the HTTP layer.
// Heavy initialization (DB, cache, AI clients) happens here so handlers
// stay free of setup concerns.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	translator, err := i18n.NewTranslator(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	// Cache and database
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	// Persistence
	historyRepo := history.NewRepository(postgresSvc.GetDB(), logger)
	reviewRepo := review.NewPostgresRepository(postgresSvc.GetDB())
	reviewSvc := review.NewService(reviewRepo, cacheSvc, logger)

	// AI stack
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:   cfg.Gemini.APIKey,
		OpenAIAPIKey:   cfg.OpenAI.APIKey,
		GeminiModel:    cfg.Gemini.Model,
		OpenAIModel:    cfg.OpenAI.Model,
		EnableFallback: cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	analysisSvc := ai.NewAnalysisService(modelManager, historyRepo, logger)

	// Dermatologist finder
	placesClient := places.NewClient(cfg.Places.APIKey, cfg.Places.BaseURL, cacheSvc, logger)
	extractor := extract.NewExtractor(logger)

	var directory finder.DirectorySource
	if cfg.Finder.EnableDirectory && cfg.Finder.DirectoryURL != "" {
		directory = finder.NewDirectoryScraper(cfg.Finder.DirectoryURL, logger)
		logger.Info("Directory fallback enabled", zap.String("url", cfg.Finder.DirectoryURL))
	}
	finderSvc := finder.NewService(analysisSvc, placesClient, extractor, directory, cfg.Finder.SearchTimeout, logger)

	exporter := export.NewExporter(translator, logger)

	handlers := server.NewHandlers(
		translator,
		analysisSvc,
		historyRepo,
		finderSvc,
		reviewSvc,
		exporter,
		postgresSvc,
		cacheSvc,
		logger,
	)
	router := server.NewRouter(cfg, handlers, translator, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Router:  router,
		closers: closers,
	}, nil
}
