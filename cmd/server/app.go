package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain/srs"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/memory"
	"github.com/phrazzld/scry-words/internal/platform/metrics"
	"github.com/phrazzld/scry-words/internal/platform/migrate"
	"github.com/phrazzld/scry-words/internal/platform/postgres"
	"github.com/phrazzld/scry-words/internal/platform/sqlite"
	"github.com/phrazzld/scry-words/internal/platform/webhook"
	"github.com/phrazzld/scry-words/internal/service"
	"github.com/phrazzld/scry-words/internal/service/review"
	"github.com/phrazzld/scry-words/internal/service/sweep"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// driverMemory keeps cards in process memory; nothing survives a restart.
const driverMemory = "memory"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory driver
	db *sql.DB

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	cardStore    store.CardStore
	srsService   srs.Service
	cardService  service.CardService
	reviewEngine review.Engine

	eventEmitter *events.InMemoryEventEmitter
	sweeper      *sweep.Sweeper
}

// openDatabase connects to the SQL database selected by cfg.Driver.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	switch cfg.Driver {
	case migrate.DriverPostgres:
		logger.Info("connecting to postgres", slog.String("url", postgres.MaskURL(cfg.URL)))
		return postgres.Open(ctx, cfg.URL, postgres.PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxOpenConns,
			ConnMaxLifetime: 30 * time.Minute,
		})
	case migrate.DriverSQLite:
		logger.Info("opening sqlite database", slog.String("path", cfg.URL))
		return sqlite.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("driver %q does not use a database", cfg.Driver)
	}
}

// newApplication creates a new application instance with all dependencies initialized.
// SQL databases are migrated to the latest schema before use.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	if err := app.setupStore(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	app.srsService = srs.NewDefaultService()

	var err error
	app.cardService, err = service.NewCardService(app.cardStore, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.reviewEngine = review.NewEngine(
		app.cardStore,
		app.srsService,
		cfg.Session.ShuffleSeed,
		app.metrics,
		logger,
	)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))
	if cfg.Notifier.WebhookURL != "" {
		app.eventEmitter.RegisterHandler(webhook.NewHandler(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, logger))
		logger.Info("reminder webhook enabled")
	}

	app.sweeper = sweep.NewSweeper(
		app.cardStore,
		events.NewReminderNotifier(app.eventEmitter),
		sweep.Config{
			Interval:      cfg.Sweep.Interval,
			PerOwnerLimit: cfg.Sweep.PerOwnerLimit,
		},
		app.metrics,
		logger,
	)

	logger.Info("application initialized", slog.String("database_driver", cfg.Database.Driver))
	return app, nil
}

func (app *application) setupStore(ctx context.Context) error {
	driver := app.config.Database.Driver
	if driver == driverMemory {
		app.logger.Warn("using the in-memory card store; cards are lost on restart")
		app.cardStore = memory.NewCardStore()
		return nil
	}

	db, err := openDatabase(ctx, app.config.Database, app.logger)
	if err != nil {
		return err
	}
	app.db = db

	migrator, err := migrate.New(db, driver, app.logger)
	if err != nil {
		return err
	}
	if err := migrator.Up(ctx); err != nil {
		return err
	}

	switch driver {
	case migrate.DriverPostgres:
		app.cardStore = postgres.NewCardStore(db, app.logger)
	default:
		app.cardStore = sqlite.NewCardStore(db, app.logger)
	}
	return nil
}

// Run starts the reminder sweeper and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if app.config.Sweep.Enabled {
		app.sweeper.Start(ctx)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
// It is safe on a partially initialized application.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}

	app.logger.Info("application shutdown completed")
}
