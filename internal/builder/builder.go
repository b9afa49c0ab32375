package builder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ywlim06-debug/dolddari-coach/internal/api"
	sessionapi "github.com/ywlim06-debug/dolddari-coach/internal/api/session"
	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/integration/llm"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/validator"
	"github.com/ywlim06-debug/dolddari-coach/internal/repository"
	"github.com/ywlim06-debug/dolddari-coach/internal/usecase/interview"
	"github.com/ywlim06-debug/dolddari-coach/internal/usecase/session"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("storage", cfg.StorageDriver),
		zap.String("cache", cfg.CacheCfg.Driver),
	)

	app := &App{logger: logger}

	// Storage and cache
	sessionRepo, err := setupSessionStorage(ctx, cfg, app)
	if err != nil {
		app.closeResources()
		return nil, err
	}

	sessionCache, err := setupSessionCache(ctx, cfg.CacheCfg, app)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("setup cache: %w", err)
	}
	if sessionCache != nil {
		sessionRepo = repository.NewCachedSessionRepository(sessionRepo, sessionCache)
	}
	logger.Info("Repositories initialized")

	// Text generation connector (with mock support)
	var generator interview.Generator
	if cfg.EnableMocks {
		logger.Info("Using mock connector for text generation")
		generator = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using LLM connector for text generation",
			zap.String("url", cfg.LLMConnectorCfg.Url),
			zap.Strings("models", cfg.LLMConnectorCfg.Models),
		)
		generator = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	// Engine and use cases
	engine := interview.NewEngine(cfg.EngineCfg, generator)
	sessionValidator := validator.NewSessionValidator(cfg.EngineCfg)
	sessionUC := session.NewUsecase(sessionRepo, engine, sessionValidator, cfg.EngineCfg, logger)
	logger.Info("Use cases initialized")

	// HTTP
	sessionHandler := sessionapi.NewHandler(sessionUC)
	router := api.SetupRouter(sessionHandler, logger, cfg)
	logger.Info("HTTP router configured")

	app.server = &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return app, nil
}
