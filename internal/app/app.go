package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"advisingdash/internal/config"
	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/infrastructure"
	customMiddleware "advisingdash/internal/middleware"
	"advisingdash/internal/services"
	handlers "advisingdash/internal/transport/http"
	ws "advisingdash/internal/websocket"
)

// BuildTime is set at link time.
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	WebFS         fs.FS

	errorHandler *apierrors.ErrorHandler
	pages        *handlers.Pages
}

// NewApplication wires every component. webFS must contain templates/ and
// static/.
func NewApplication(cfg *config.Config, logger *slog.Logger, webFS fs.FS) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Observability, config.AppVersion, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		WebFS:         webFS,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Observability.Environment == "development"),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	pages, err := handlers.NewPages(webFS, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	app.pages = pages

	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	svc, err := NewServices(a.Config, a.Metrics, a.OTelProviders.Tracer, a.Logger)
	if err != nil {
		return err
	}
	a.Services = svc

	hub := ws.NewHub(a.Logger, a.Metrics)
	hub.Start()
	svc.Store.Subscribe(hub.ObserveDataset)
	a.WebSocketHub = hub

	a.HealthService = services.NewHealthService(config.AppVersion, BuildTime, svc.Store, hub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))

	// The event stream must not be wrapped by the compressing or
	// timing-out middleware below.
	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.Security.AllowedOrigins, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	static, err := fs.Sub(a.WebFS, "static")
	if err != nil {
		return fmt.Errorf("failed to open static assets: %w", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.corsConfig()))
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(middleware.Compress(5))

		r.With(middleware.SetHeader("Cache-Control", "public, max-age=3600")).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

		pageHandler := handlers.NewPageHandler(a.pages, a.Services.Store, a.errorHandler, a.Logger)
		advisingHandler := handlers.NewAdvisingHandler(a.Services.Advising, a.pages, a.errorHandler, a.Config.Upload.MaxBytes, a.Logger)
		workshopHandler := handlers.NewWorkshopHandler(a.Services.Workshop, a.pages, a.errorHandler, a.Config.Upload.MaxBytes, a.Logger)
		datasetHandler := handlers.NewDatasetHandler(a.Services.Store, a.errorHandler, a.Logger)
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

		r.Get("/", pageHandler.Home)
		r.Get("/guide", pageHandler.Guide)
		r.Mount("/advising", advisingHandler.Routes())
		r.Mount("/workshop", workshopHandler.Routes())

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)

			r.Mount("/advising", advisingHandler.APIRoutes())
			r.Mount("/workshop", workshopHandler.APIRoutes())
			r.Mount("/datasets", datasetHandler.Routes())
		})

		r.NotFound(pageHandler.NotFound)
		r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)
	})

	a.Router = r
	return nil
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			"X-Requested-With",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		a.Services.Store.Run(janitorCtx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Server.Serve(ln)
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", "http://"+ln.Addr().String()),
		slog.Int64("max_upload_bytes", a.Config.Upload.MaxBytes),
		slog.Int("max_datasets", a.Config.Upload.MaxDatasets),
		slog.Duration("dataset_ttl", a.Config.Upload.DatasetTTL))

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	stopJanitor()
	<-janitorDone

	if err := a.Stop(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Stop shuts the server down and releases background resources.
func (a *Application) Stop(ctx context.Context) error {
	start := time.Now()
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("took", time.Since(start)))
	return errors.Join(errs...)
}
