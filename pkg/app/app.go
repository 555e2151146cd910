// Package app wires configuration into the running service: the LLM
// provider, the stage cache, the browser, the strategy archive and the
// orchestrator.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"

	config "ai-proposal-api/configs"
	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/handlers"
	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/pipeline"
	"ai-proposal-api/pkg/router"
	"ai-proposal-api/pkg/services"
)

// ErrNoProvider is returned by every completion call when no LLM provider
// is configured. Proposals then fall back to their defaults.
var ErrNoProvider = errors.New("no LLM provider configured")

const (
	qdrantAttempts = 5
	qdrantInterval = 2 * time.Second
)

// providerFactory builds the configured LLM provider. Tests replace it.
var providerFactory = newProvider

// App holds the wired components.
type App struct {
	Config       *config.Config
	Pipeline     pipeline.Config
	Logger       *zap.Logger
	LLM          llm.CompletionService
	Cache        *cache.Cache
	Browser      *services.BrowserService
	Index        *services.StrategyIndexService
	Monitoring   *services.MonitoringService
	Maintenance  *handlers.Maintenance
	Orchestrator *pipeline.Orchestrator

	qdrant *grpc.ClientConn
}

// NewLogger builds the production logger, at debug level when verbose.
func NewLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// New wires every component from cfg. The strategy archive is optional: it
// is left nil when Qdrant or an embedding model is unavailable.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pcfg, err := cfg.LoadPipelineConfig()
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:      cfg,
		Pipeline:    pcfg,
		Logger:      logger,
		Monitoring:  services.NewMonitoringService(logger),
		Maintenance: &handlers.Maintenance{},
		Browser:     services.NewBrowserService(cfg.BrowserBin, cfg.BrowserHeadless, logger),
	}

	svc, embedder, err := providerFactory(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	// prompt passthrough calls get the same budget as pipeline stages
	a.LLM = llm.WithTimeout(svc, pcfg.CallTimeout)

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	a.Cache = cache.New(store, logger, pcfg.UseCache)

	opts := []pipeline.Option{pipeline.WithOutcomeRecorder(a.Monitoring)}
	if cfg.QdrantURL != "" && embedder != nil {
		if err := a.openIndex(ctx, embedder); err != nil {
			logger.Warn("strategy archive disabled", zap.Error(err))
		} else {
			opts = append(opts, pipeline.WithIndexer(a.Index))
		}
	}

	a.Orchestrator = pipeline.New(svc, services.NewScraperService(a.Browser, logger), a.Cache, pcfg, logger, opts...)
	logger.Info("application wired",
		zap.String("provider", cfg.LLMProvider),
		zap.String("cacheBackend", cfg.CacheBackend),
		zap.Bool("useCache", pcfg.UseCache),
		zap.Bool("strategyArchive", a.Index != nil),
	)
	return a, nil
}

func newProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.CompletionService, llm.Embedder, error) {
	switch cfg.LLMProvider {
	case config.ProviderAzure:
		if cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIAPIKey == "" {
			break
		}
		s := services.NewAzureOpenAIService(
			cfg.AzureOpenAIEndpoint,
			cfg.AzureOpenAIAPIKey,
			cfg.AzureOpenAIAPIVersion,
			cfg.AzureOpenAIChatDeploymentName,
			cfg.AzureOpenAIEmbeddingDeployment,
			cfg.AzureOpenAIProxyURL,
			logger,
		)
		return s, s, nil
	case config.ProviderGemini:
		if cfg.GoogleAIAPIKey == "" {
			break
		}
		s, err := services.NewGeminiService(ctx, cfg.GoogleAIAPIKey, cfg.GeminiModel, cfg.GeminiEmbeddingModel, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}

	logger.Warn("LLM provider has no credentials, every proposal will use fallbacks", zap.String("provider", cfg.LLMProvider))
	return llm.Func(func(context.Context, string, llm.Params) (string, error) {
		return "", ErrNoProvider
	}), nil, nil
}

func newStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendFile, "":
		return cache.NewFileStore(cfg.CacheDir), nil
	case config.CacheBackendSQLite:
		store, err := cache.NewSQLiteStore(cfg.CacheSQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

func (a *App) openIndex(ctx context.Context, embedder llm.Embedder) error {
	conn, err := services.DialQdrant(a.Config.QdrantURL, a.Config.QdrantAPIKey)
	if err != nil {
		return err
	}
	index := services.NewStrategyIndexService(conn, embedder, "", a.Logger)
	if err := index.EnsureCollection(ctx, qdrantAttempts, qdrantInterval); err != nil {
		conn.Close()
		return err
	}
	a.qdrant = conn
	a.Index = index
	return nil
}

// Handler builds the HTTP engine.
func (a *App) Handler() *gin.Engine {
	deps := router.Dependencies{
		Orchestrator:  a.Orchestrator,
		LLM:           a.LLM,
		Monitoring:    a.Monitoring,
		Maintenance:   a.Maintenance,
		PDF:           services.NewPDFService(a.Browser, a.Logger),
		APIKey:        a.Config.APIKey,
		AdminUsername: a.Config.AdminUsername,
		AdminPassword: a.Config.AdminPassword,
		Logger:        a.Logger,
	}
	if a.Index != nil {
		deps.Index = a.Index
	}
	return router.New(deps)
}

// Close waits for background tasks and releases the browser, the archive
// connection and the cache.
func (a *App) Close() error {
	a.Orchestrator.Wait()
	var errs []error
	if err := a.Browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if a.qdrant != nil {
		if err := a.qdrant.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close qdrant: %w", err))
		}
	}
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	return errors.Join(errs...)
}
