// Package cli assembles the shared runtime used by the finboard commands:
// configuration, logging, storage, the optional remote store and broker, and
// the services on top of them.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finboard/internal/amqp"
	"finboard/internal/cache"
	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/remote"
	"finboard/internal/remote/firestore"
	"finboard/internal/services"
	"finboard/internal/storage"
)

// App holds the long-lived dependencies of a command.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Storage  *storage.SQLiteRepository
	Remote   remote.Store
	AMQP     *amqp.Client
	Services *services.Services

	closers []func() error
}

// Options toggles the optional integrations a command needs.
type Options struct {
	Remote bool
	AMQP   bool
}

// LoadConfig reads the env files (".env" when none are given), the
// environment and validates the result.
func LoadConfig(envFiles ...string) (*config.Config, error) {
	if err := config.LoadEnvFile(envFiles...); err != nil {
		return nil, err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger and installs it as the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Format:    cfg.LogFormat,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// NewApp opens storage and, when requested and configured, the remote
// store and the broker. Close releases everything in reverse order.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", cfg.SQLiteDBPath, err)
	}
	app.Storage = repo
	app.closers = append(app.closers, repo.Close)

	summaries, err := cache.NewRistretto[core.MonthSummary](int64(cfg.CacheMaxItems), cfg.CacheTTL)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, func() error { summaries.Close(); return nil })

	if opts.Remote && cfg.RemoteEnabled() {
		fs, err := firestore.New(ctx, firestore.Config{
			ProjectID:       cfg.FirestoreProjectID,
			CredentialsJSON: []byte(cfg.FirestoreCredentialsJSON),
			CredentialsFile: cfg.FirestoreCredentialsFile,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Remote = fs
		app.closers = append(app.closers, fs.Close)
	}

	deps := services.Deps{Storage: repo, Cache: summaries}
	if app.Remote != nil {
		deps.Remote = app.Remote
	}
	if opts.AMQP && cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// outbox polling still delivers changes
			logger.WarnContext(ctx, "AMQP unavailable, continuing without notifications",
				log.FieldComponent, log.ComponentAMQP,
				log.FieldError, err)
		} else {
			app.AMQP = client
			deps.Publisher = client
			app.closers = append(app.closers, client.Close)
		}
	}

	app.Services = services.New(deps)
	return app, nil
}

// SyncProcessor builds the outbox processor from configuration. It needs a
// remote store.
func (a *App) SyncProcessor() (*services.SyncProcessor, error) {
	if a.Remote == nil {
		return nil, errors.New("remote sync requires FIRESTORE_PROJECT_ID")
	}
	cfg := services.DefaultSyncProcessorConfig()
	cfg.PollInterval = a.Config.SyncInterval
	cfg.BatchSize = a.Config.SyncBatchSize
	cfg.Concurrency = a.Config.SyncConcurrency
	cfg.MaxRetries = a.Config.SyncMaxRetries
	return services.NewSyncProcessor(a.Storage, a.Remote, cfg), nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
