package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"debriefpulse/internal/acquire"
	"debriefpulse/internal/config"
	"debriefpulse/internal/errors"
	"debriefpulse/internal/exporter"
	"debriefpulse/internal/infrastructure"
	customMiddleware "debriefpulse/internal/middleware"
	"debriefpulse/internal/services"
	handlers "debriefpulse/internal/transport/http"
)

const (
	Version = "v1.0.0"
	AppName = "DebriefPulse"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	DebriefService *services.DebriefService
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the source and the service layer.
func (a *Application) initializeServices() error {
	source, err := a.buildSource()
	if err != nil {
		return err
	}

	a.DebriefService = services.NewDebriefService(source, a.Logger)
	return nil
}

// buildSource selects the acquisition backend from configuration.
func (a *Application) buildSource() (acquire.Source, error) {
	switch a.Config.Source.Kind {
	case "sheets":
		return acquire.NewSheetsSource(
			a.Config.Source.SpreadsheetID,
			a.Config.Source.SheetRange,
			a.Config.Source.CredentialsFile,
			a.Logger,
		), nil
	case "excel":
		return acquire.NewExcelSource(a.Config.Source.ExcelPath, "", a.Logger), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %s", a.Config.Source.Kind)
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware ordering: RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
		a.DebriefService.SetMetrics(otelMiddleware.Metrics())
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	workbook := exporter.NewWorkbookWriter(a.Logger)

	debriefHandler := handlers.NewDebriefHandler(a.DebriefService, workbook, a.Logger, errorHandler)
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/", debriefHandler.Routes())
	})

	r.Get("/healthz", handlers.NewHealthHandler(a.DebriefService, Version).ServeHTTP)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Prometheus scrape endpoint, outside the middleware chain
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// getCORSConfig assembles the CORS policy from configuration.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server and performs the initial dataset load.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("source", a.DebriefService.SourceDescription()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Initial load is best effort: the API serves 503 problem documents
	// until a refresh succeeds.
	loadCtx, loadCancel := context.WithTimeout(ctx, a.Config.Server.RefreshTimeout)
	defer loadCancel()
	if err := a.DebriefService.Refresh(loadCtx); err != nil {
		a.Logger.WarnContext(ctx, "Initial dataset load failed, serving degraded",
			slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop performs a graceful shutdown.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		// ListenAndServe failed; fall through to cleanup
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*a.Config.Server.ShutdownTimeout+time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
