// Package worker runs the background outbox sync: the polling processor plus
// an optional AMQP consumer that wakes it early.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard/internal/amqp"
	"finboard/internal/storage"
)

// Processor pushes queued changes to the remote store.
type Processor interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error
	Stats(ctx context.Context) (*storage.GetSyncQueueStatsRow, error)
	RetryFailed(ctx context.Context) error
}

// Consumer delivers sync notifications from the broker.
type Consumer interface {
	ConsumeSync(ctx context.Context, handler func(context.Context, *amqp.SyncMessage) error) error
}

// SyncWorker handles synchronization of queued changes to the remote store.
type SyncWorker struct {
	processor       Processor
	consumer        Consumer
	statsInterval   time.Duration
	shutdownTimeout time.Duration
	retryOnStartup  bool
}

// Option configures a SyncWorker.
type Option func(*SyncWorker)

// WithStatsInterval sets how often queue statistics are logged.
func WithStatsInterval(d time.Duration) Option {
	return func(w *SyncWorker) { w.statsInterval = d }
}

// WithShutdownTimeout bounds how long Run waits for the processor to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(w *SyncWorker) { w.shutdownTimeout = d }
}

// WithRetryOnStartup requeues failed items before the processor starts.
func WithRetryOnStartup(retry bool) Option {
	return func(w *SyncWorker) { w.retryOnStartup = retry }
}

// NewSyncWorker builds a worker. consumer may be nil, in which case the
// processor relies on polling alone.
func NewSyncWorker(processor Processor, consumer Consumer, opts ...Option) *SyncWorker {
	w := &SyncWorker{
		processor:       processor,
		consumer:        consumer,
		statsInterval:   5 * time.Minute,
		shutdownTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the processor and the consumer and blocks until ctx is done or
// the consumer fails for good. The processor is always stopped before Run
// returns.
func (w *SyncWorker) Run(ctx context.Context) error {
	if w.retryOnStartup {
		if err := w.processor.RetryFailed(ctx); err != nil {
			slog.WarnContext(ctx, "Failed to requeue failed syncs on startup", "error", err)
		}
	}

	if err := w.processor.Start(ctx); err != nil {
		return fmt.Errorf("start sync processor: %w", err)
	}
	defer w.stop()

	g, gctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			err := w.consumer.ConsumeSync(gctx, w.processor.HandleMessage)
			if gctx.Err() != nil {
				return nil
			}
			if err != nil {
				return fmt.Errorf("consume sync messages: %w", err)
			}
			return nil
		})
	} else {
		slog.InfoContext(ctx, "No AMQP consumer configured, relying on polling")
	}

	g.Go(func() error {
		w.logStats(gctx)
		return nil
	})

	return g.Wait()
}

func (w *SyncWorker) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()
	if err := w.processor.Stop(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to stop sync processor", "error", err)
	}
}

func (w *SyncWorker) logStats(ctx context.Context) {
	if w.statsInterval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(w.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := w.processor.Stats(ctx)
			if err != nil {
				slog.WarnContext(ctx, "Failed to read sync queue stats", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Sync queue stats",
				"pending", stats.Pending,
				"processing", stats.Processing,
				"completed", stats.Completed,
				"failed", stats.Failed)
		}
	}
}
