package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/config"
	"github.com/sapiens-platform/sapiens/handlers"
	"github.com/sapiens-platform/sapiens/internal/observability"
	"github.com/sapiens-platform/sapiens/middleware"
	"github.com/sapiens-platform/sapiens/repositories"
	"github.com/sapiens-platform/sapiens/repositories/jsonl"
	"github.com/sapiens-platform/sapiens/repositories/postgres"
	"github.com/sapiens-platform/sapiens/services/analysis"
	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/services/pipeline"
	"github.com/sapiens-platform/sapiens/services/query"
	"github.com/sapiens-platform/sapiens/services/validation"
	"github.com/sapiens-platform/sapiens/web"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	DB      *postgres.DB // nil when no audit database is configured

	// Audit trail
	Sinks   []repositories.AuditSink
	Auditor *audit.Auditor

	// Domain services
	Validator   *validation.Validator
	QueryEngine *query.Engine
	Store       *analysis.Store
	Pipeline    *pipeline.Pipeline
	Runner      *analysis.Runner

	// HTTP surface
	AuthMiddleware  *middleware.AuthMiddleware
	Renderer        *web.Renderer
	PagesHandler    *handlers.PagesHandler
	AnalysisHandler *handlers.AnalysisHandler
	UploadHandler   *handlers.UploadHandler
	QueryHandler    *handlers.QueryHandler
	AuditHandler    *handlers.AuditHandler
	HealthHandler   *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	if err := deps.initAuditTrail(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize audit trail: %w", err)
	}

	if err := deps.initServices(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := deps.initHTTP(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize http surface: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initAuditTrail opens the JSONL trail and, when configured, the PostgreSQL
// sink, then builds the session auditor on top of them.
func (d *Dependencies) initAuditTrail(ctx context.Context, cfg *config.Config) error {
	trailPath := filepath.Join(cfg.Audit.LogDir, cfg.Audit.TrailFile)
	trail, err := jsonl.NewSink(trailPath, d.Logger)
	if err != nil {
		return fmt.Errorf("opening audit trail %s: %w", trailPath, err)
	}
	d.Sinks = append(d.Sinks, trail)

	if cfg.AuditDatabase != nil {
		db, err := postgres.NewDB(*cfg.AuditDatabase, d.Logger)
		if err != nil {
			return fmt.Errorf("connecting audit database: %w", err)
		}
		if err := db.InitSchema(ctx); err != nil {
			return fmt.Errorf("initializing audit schema: %w", err)
		}
		d.DB = db
		d.Sinks = append(d.Sinks, postgres.NewAuditSink(db, d.Logger))
		d.Logger.Info("audit database sink enabled")
	}

	d.Auditor = audit.NewAuditor(cfg.Audit, d.Sinks, d.Logger)
	d.Logger.Info("audit trail initialized",
		zap.String("trail", trailPath),
		zap.String("sessao_id", d.Auditor.SessionID().String()))
	return nil
}

// initServices builds the validation, query, pipeline and analysis services.
func (d *Dependencies) initServices(ctx context.Context, cfg *config.Config) error {
	d.Validator = validation.NewValidator(cfg.Security, d.Logger)
	d.QueryEngine = query.NewEngine(d.Logger)
	d.Store = analysis.NewStore()

	client, err := pipeline.NewGeminiClient(ctx, cfg.Pipeline.APIKey, cfg.Pipeline.Model)
	if err != nil {
		return err
	}
	d.Pipeline = pipeline.New(client, d.QueryEngine, d.Logger)
	d.Runner = analysis.NewRunner(d.Store, d.Pipeline, d.Auditor, d.Metrics, d.Logger, cfg.Pipeline.Timeout)

	d.Logger.Info("analysis services initialized",
		zap.String("model", cfg.Pipeline.Model))
	return nil
}

// initHTTP builds the template renderer, the auth middleware and the handlers.
func (d *Dependencies) initHTTP(cfg *config.Config) error {
	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	d.Renderer = renderer

	if cfg.Server.SecretKey == "" {
		d.Logger.Warn("SECRET_KEY not set, audit admin endpoints disabled")
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(cfg.Server.SecretKey, d.Logger)

	maxBytes := cfg.MaxUploadBytes()
	uploadDir := cfg.Server.UploadDir

	d.PagesHandler = handlers.NewPagesHandler(renderer, d.Auditor, d.Logger)
	d.AnalysisHandler = handlers.NewAnalysisHandler(uploadDir, maxBytes, d.Validator,
		d.Store, d.Runner, d.Auditor, d.Metrics, renderer, d.Logger)
	d.UploadHandler = handlers.NewUploadHandler(uploadDir, maxBytes, d.Validator,
		d.Auditor, d.Metrics, d.Logger)
	d.QueryHandler = handlers.NewQueryHandler(uploadDir, d.QueryEngine, d.Auditor,
		d.Metrics, d.Logger)
	d.AuditHandler = handlers.NewAuditHandler(d.Auditor, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)

	return nil
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Auditor != nil {
		if err := d.Auditor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close audit trail: %w", err))
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
