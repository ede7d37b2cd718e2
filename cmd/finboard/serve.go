package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"finboard/internal/cli"
	httpapi "finboard/internal/http"
	"finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(rt *rootEnv) *cobra.Command {
	var (
		withSync      bool
		withRecurring bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON API. By default the process also runs the outbox sync
worker (when Firestore is configured) and the recurring expense scheduler.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := cli.NewApp(ctx, rt.cfg, rt.logger, cli.Options{Remote: true, AMQP: true})
			if err != nil {
				return err
			}
			defer app.Close()

			srv, err := httpapi.NewServer(httpapi.Config{
				Addr:              rt.cfg.Addr(),
				JWTSecret:         rt.cfg.JWTSecret,
				RequestsPerMinute: rt.cfg.RateLimitPerMinute,
				TrustedProxies:    rt.cfg.TrustedProxies,
				Logger:            rt.logger.WithComponent(log.ComponentHTTP),
				Ready:             app.Storage.Ping,
			}, app.Services)
			if err != nil {
				return err
			}
			if rt.cfg.JWTSecret == "" {
				rt.logger.WarnContext(ctx, "JWT_SECRET not set, every request acts as the local user",
					log.FieldUserID, httpapi.LocalUser)
			}

			// everything that can fail is built before the listener starts
			var jobs []job
			if withSync {
				if app.Remote == nil {
					rt.logger.InfoContext(ctx, "Remote sync disabled - no FIRESTORE_PROJECT_ID provided")
				} else {
					w, err := newSyncWorker(app, false)
					if err != nil {
						return err
					}
					jobs = append(jobs, w.Run)
				}
			}
			if withRecurring {
				proc := services.NewRecurringProcessor(app.Services.Recurring)
				jobs = append(jobs, func(ctx context.Context) error {
					return proc.Run(ctx, rt.cfg.RecurringInterval)
				})
			}

			rt.logger.InfoContext(ctx, "HTTP server listening", "addr", srv.Addr)
			return runServer(ctx, rt.logger, srv, jobs...)
		},
	}
	cmd.Flags().BoolVar(&withSync, "sync", true, "run the outbox sync worker in-process")
	cmd.Flags().BoolVar(&withRecurring, "recurring", true, "run the recurring expense scheduler in-process")
	return cmd
}

// job is a background loop that runs next to the HTTP server until its
// context is done.
type job func(ctx context.Context) error

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// runServer serves srv and runs jobs until ctx is done or any of them fails,
// then shuts the server down.
func runServer(ctx context.Context, logger *log.Logger, srv httpServer, jobs ...job) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	for _, j := range jobs {
		g.Go(func() error { return j(gctx) })
	}
	return g.Wait()
}

func newSyncWorker(app *cli.App, retryFailed bool) (*worker.SyncWorker, error) {
	proc, err := app.SyncProcessor()
	if err != nil {
		return nil, err
	}
	var consumer worker.Consumer
	if app.AMQP != nil {
		consumer = app.AMQP
	}
	return worker.NewSyncWorker(proc, consumer, worker.WithRetryOnStartup(retryFailed)), nil
}
