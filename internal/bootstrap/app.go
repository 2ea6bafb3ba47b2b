package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/analyses"
	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/llm"
	"docanalysis-backend/internal/llm/provider"
	"docanalysis-backend/internal/overview"
	"docanalysis-backend/internal/services/health"
	"docanalysis-backend/internal/shared/cache"
	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/server"
	"docanalysis-backend/internal/shared/server/middleware"
	"docanalysis-backend/internal/shared/storage/db"
	"docanalysis-backend/internal/shared/storage/object"
	localstore "docanalysis-backend/internal/shared/storage/object/local"
	s3store "docanalysis-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Cache            cache.TextCache
	LLM              provider.Selection
	DocumentsRepo    documents.DocumentsRepo
	AnalysesRepo     analyses.Repo
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	Orchestrator     *analyses.Orchestrator
	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
	OverviewHandler  *overview.Handler
}

// Replaced in tests.
var (
	connectDB     = db.Connect
	runMigrations = db.RunMigrations
)

// Option adjusts Build.
type Option func(*buildOptions)

type buildOptions struct {
	completer llm.Completer
}

// WithCompleter replaces the provider client, keeping the configured model
// order. Used by tests and the CLI.
func WithCompleter(c llm.Completer) Option {
	return func(o *buildOptions) {
		o.completer = c
	}
}

// Build prepares dependencies and the router. A missing model API key is an
// error unless a completer is supplied.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	selection, err := buildLLM(ctx, cfg, bo)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, LLM: selection}
	built := false
	defer func() {
		if !built {
			_ = app.Close()
		}
	}()

	if app.DB, err = buildDB(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Store, err = BuildStore(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Cache, err = buildCache(ctx, cfg); err != nil {
		return nil, err
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimitPerSecond > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, time.Now)
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DocumentHandler: app.DocumentsHandler,
		AnalysisHandler: app.AnalysisHandler,
		OverviewHandler: app.OverviewHandler,
		RunLimiter:      limiter,
		Health:          buildHealth(app),
	})

	built = true
	return app, nil
}

func buildHealth(app *App) *health.Service {
	svc := health.NewService()
	if app.DB != nil {
		svc.Register("database", app.DB.PingContext)
	}
	if rc, ok := app.Cache.(*cache.Redis); ok {
		svc.Register("cache", rc.Ping)
	}
	return svc
}

func buildLLM(ctx context.Context, cfg config.Config, bo buildOptions) (provider.Selection, error) {
	if bo.completer != nil {
		name := llm.NormalizeProvider(cfg.LLMProvider)
		primary := strings.TrimSpace(cfg.LLMModel)
		if primary == "" {
			primary = llm.DefaultModel(name)
		}
		return provider.Selection{
			Provider:  name,
			Completer: bo.completer,
			Primary:   primary,
			Fallbacks: llm.FallbackModels(name),
		}, nil
	}
	selection, err := provider.New(ctx, provider.Settings{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		return provider.Selection{}, fmt.Errorf("llm: %w", err)
	}
	return selection, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.DefaultServerOptions().Merge(PoolOptions(cfg.DBPool))
	sqlDB, err := connectDB(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		if err = runMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// PoolOptions converts configured pool overrides.
func PoolOptions(p config.DBPool) db.Options {
	return db.Options{
		MaxOpenConns:     p.MaxOpenConns,
		MaxIdleConns:     p.MaxIdleConns,
		ConnMaxLifetime:  p.ConnMaxLifetime,
		ConnMaxIdleTime:  p.ConnMaxIdleTime,
		StatementTimeout: p.StatementTimeout,
	}
}

// BuildStore returns the configured object store.
func BuildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCache(ctx context.Context, cfg config.Config) (cache.TextCache, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return cache.Noop{}, nil
	}
	rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.ExtractCacheTTL)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: redis unavailable; extraction cache disabled: %v", err)
			return cache.Noop{}, nil
		}
		return nil, err
	}
	return rc, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Store: app.Store,
		Repo:  docRepo,
		Cache: app.Cache,
	}

	orchestrator, err := analyses.NewOrchestrator(analyses.OrchestratorConfig{
		Completer: app.LLM.Completer,
		Primary:   app.LLM.Primary,
		Fallbacks: app.LLM.Fallbacks,
		Store:     app.Store,
		Cache:     app.Cache,
	})
	if err != nil {
		return err
	}

	analysisSvc := &analyses.Service{
		Repo:     analysisRepo,
		Docs:     docSvc,
		Comparer: orchestrator,
	}

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.Orchestrator = orchestrator
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.OverviewHandler = overview.NewHandler(docSvc, analysisSvc)

	if app.DocumentsHandler == nil || app.AnalysisHandler == nil || app.OverviewHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

// Close releases external connections. Safe on a partially built App.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
		a.DB = nil
	}
	if rc, ok := a.Cache.(*cache.Redis); ok {
		errs = append(errs, rc.Close())
	}
	return errors.Join(errs...)
}
