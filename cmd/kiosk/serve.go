package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stanstork/visitor-kiosk-api/internal/config"
	"github.com/stanstork/visitor-kiosk-api/internal/handlers"
	"github.com/stanstork/visitor-kiosk-api/internal/metrics"
	"github.com/stanstork/visitor-kiosk-api/internal/middleware"
	"github.com/stanstork/visitor-kiosk-api/internal/migration"
	"github.com/stanstork/visitor-kiosk-api/internal/notification"
	"github.com/stanstork/visitor-kiosk-api/internal/repository"
	"github.com/stanstork/visitor-kiosk-api/internal/routes"
	"github.com/stanstork/visitor-kiosk-api/internal/service"
)

var errNoDatabase = errors.New("migrations need storage=postgres and a database_url")

type application struct {
	config   *config.Config
	db       *sql.DB // nil with in-memory storage
	store    repository.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	engine   *service.VisitEngine
	logger   zerolog.Logger
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.close()
			return app.startServer(app.initRouter())
		},
	}
}

func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func newApplication(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &application{
		config:   cfg,
		registry: registry,
		metrics:  metrics.New(registry),
		logger:   logger,
	}

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn().Msg("Using in-memory storage; data is lost on restart")
		app.store = repository.NewMemoryStore()
	default:
		db, err := openDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := migration.Up(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
		app.db = db
		app.store = repository.NewPostgresStore(db)
	}
	return app, nil
}

func (app *application) close() {
	if app.db != nil {
		app.db.Close()
	}
}

func (app *application) notifications() (notification.Service, error) {
	notifiers := []notification.Notifier{notification.NewLogNotifier(app.logger)}
	if app.config.Email.Enabled {
		mailer, err := notification.NewEmailNotifier(app.config.Email, app.logger)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, mailer)
	}
	return notification.NewService(app.logger, notifiers...), nil
}

// initRouter sets up all HTTP handlers and returns the wrapped router.
func (app *application) initRouter() http.Handler {
	location, err := app.config.Location()
	if err != nil {
		app.logger.Fatal().Err(err).Msg("Invalid reporting timezone")
	}
	notifier, err := app.notifications()
	if err != nil {
		app.logger.Fatal().Err(err).Msg("Failed to configure notifications")
	}

	opts := []service.Option{service.WithRecorder(app.metrics)}
	hosts := service.NewHostRegistry(app.store, app.logger, opts...)
	ledger := service.NewVisitorLedger(app.store, opts...)
	app.engine = service.NewVisitEngine(app.store, ledger, notifier, app.logger, opts...)
	verifier := service.NewVerifier(app.store)
	reports := service.NewReportService(app.store, location, opts...)

	router := routes.NewRouter(routes.Handlers{
		Health:  handlers.NewHealthHandler(app.store, app.logger),
		Hosts:   handlers.NewHostHandler(hosts, app.logger),
		Visits:  handlers.NewVisitHandler(app.engine, verifier, app.logger),
		Reports: handlers.NewReportHandler(reports, app.logger),
		Metrics: promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}),
	}, middleware.MetricsMiddleware(app.metrics))

	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	return h.CORS(
		h.AllowedOrigins(app.config.CORS.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type"}),
	)(loggedRouter)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler) error {
	logger := app.logger
	server := &http.Server{
		Addr:              ":" + app.config.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case serveErr = <-serverErrCh:
		logger.Error().Err(serveErr).Msg("Server error occurred")
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	// No more check-ins can start; let pending arrival emails finish.
	if app.engine != nil {
		if err := app.engine.Drain(ctx); err != nil {
			logger.Warn().Err(err).Msg("Pending arrival notifications abandoned")
		} else {
			logger.Info().Msg("Pending arrival notifications delivered.")
		}
	}
	return serveErr
}
