package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/remote"
	"finboard/internal/storage"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending items (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of items to process per poll cycle (default: 20)
	BatchSize int

	// Concurrency is how many documents are pushed in parallel (default: 4)
	Concurrency int

	// MaxRetries is the maximum retry attempts before marking as failed (default: 5)
	MaxRetries int

	// CleanupInterval is how often to clean up completed items (default: 1h)
	CleanupInterval time.Duration

	// CleanupAge is how old completed items must be before cleanup (default: 24h)
	CleanupAge time.Duration
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:    10 * time.Second,
		BatchSize:       20,
		Concurrency:     4,
		MaxRetries:      5,
		CleanupInterval: 1 * time.Hour,
		CleanupAge:      24 * time.Hour,
	}
}

// SyncProcessor drains the local outbox into the remote document store.
type SyncProcessor struct {
	storage *storage.SQLiteRepository
	remote  remote.Store
	config  SyncProcessorConfig

	wake chan struct{}

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor
func NewSyncProcessor(storage *storage.SQLiteRepository, store remote.Store, config SyncProcessorConfig) *SyncProcessor {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &SyncProcessor{
		storage: storage,
		remote:  store,
		config:  config,
		wake:    make(chan struct{}, 1),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	// Reset any stale processing items from previous crashes
	if err := p.storage.ResetStaleProcessing(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to reset stale processing items", "error", err)
	}

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"concurrency", p.config.Concurrency)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Notify wakes the loop before the next poll tick. It never blocks.
func (p *SyncProcessor) Notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// HandleMessage is an amqp consumer handler that triggers an early poll.
func (p *SyncProcessor) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.DebugContext(ctx, "Sync notification received",
		log.NewFields().WithUserID(msg.UserID).WithEntity(msg.Entity, msg.EntityID).ToSlice()...)
	p.Notify()
	return nil
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	// Process immediately on startup
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.ProcessBatch(ctx)
		case <-p.wake:
			p.ProcessBatch(ctx)
		case <-cleanupTicker.C:
			p.cleanupCompleted(ctx)
		}
	}
}

// ProcessBatch pushes one batch of pending outbox items and returns how many
// succeeded. Items touching the same document are applied in queue order;
// different documents go out in parallel.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	items, err := p.storage.DequeueSyncBatch(ctx, int64(p.config.BatchSize))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to dequeue sync batch", "error", err)
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing sync batch", "count", len(items))

	var keys []string
	groups := make(map[string][]storage.SyncQueue)
	for _, item := range items {
		k := item.UserID + "/" + item.Entity + "/" + item.EntityID
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], item)
	}

	var (
		mu sync.Mutex
		ok int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)
	for _, k := range keys {
		group := groups[k]
		g.Go(func() error {
			for _, item := range group {
				if gctx.Err() != nil {
					return nil
				}
				if p.processItem(gctx, item) {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return ok
}

func (p *SyncProcessor) processItem(ctx context.Context, item storage.SyncQueue) bool {
	if err := p.storage.MarkSyncProcessing(ctx, item.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark item as processing",
			"id", item.ID, "error", err)
		return false
	}

	var processErr error
	switch item.Operation {
	case storage.OpUpsert:
		processErr = p.pushUpsert(ctx, item)
	case storage.OpDelete:
		processErr = p.pushDelete(ctx, item)
	default:
		processErr = fmt.Errorf("unknown operation: %s", item.Operation)
	}

	if processErr != nil {
		p.handleFailure(ctx, item, processErr)
		return false
	}
	p.handleSuccess(ctx, item)
	return true
}

// pushUpsert sends the current local value. A row deleted since it was
// queued is skipped; its delete item follows.
func (p *SyncProcessor) pushUpsert(ctx context.Context, item storage.SyncQueue) error {
	v, err := p.storage.LoadEntity(ctx, item.UserID, item.Entity, item.EntityID)
	if errors.Is(err, core.ErrNotFound) {
		slog.DebugContext(ctx, "Entity gone before sync, skipping",
			log.FieldEntity, item.Entity, log.FieldEntityID, item.EntityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s %s: %w", item.Entity, item.EntityID, err)
	}
	doc, err := remote.Encode(v)
	if err != nil {
		return err
	}
	if err := p.remote.Put(ctx, item.UserID, item.Entity, item.EntityID, doc); err != nil {
		return fmt.Errorf("put %s/%s: %w", item.Entity, item.EntityID, err)
	}
	slog.InfoContext(ctx, "Synced document to remote store", itemFields(item).ToSlice()...)
	return nil
}

func (p *SyncProcessor) pushDelete(ctx context.Context, item storage.SyncQueue) error {
	if err := p.remote.Delete(ctx, item.UserID, item.Entity, item.EntityID); err != nil {
		return fmt.Errorf("delete %s/%s: %w", item.Entity, item.EntityID, err)
	}
	slog.InfoContext(ctx, "Deleted document from remote store", itemFields(item).ToSlice()...)
	return nil
}

func (p *SyncProcessor) handleSuccess(ctx context.Context, item storage.SyncQueue) {
	if err := p.storage.MarkSyncComplete(ctx, item.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync complete",
			"id", item.ID, "error", err)
	}
}

// handleFailure handles a failed sync attempt with retry logic
func (p *SyncProcessor) handleFailure(ctx context.Context, item storage.SyncQueue, processErr error) {
	slog.WarnContext(ctx, "Sync processing failed",
		append(itemFields(item).WithError(processErr).ToSlice(),
			"id", item.ID,
			"attempt", item.Attempts+1)...)

	if item.Attempts+1 >= int64(p.config.MaxRetries) {
		if err := p.storage.MarkSyncFailed(ctx, item.ID, processErr.Error()); err != nil {
			slog.ErrorContext(ctx, "Failed to mark sync as failed",
				"id", item.ID, "error", err)
		}
		slog.ErrorContext(ctx, "Sync item failed permanently after max retries",
			append(itemFields(item).ToSlice(),
				"id", item.ID,
				"attempts", item.Attempts+1)...)
		return
	}
	if err := p.storage.IncrementSyncAttempt(ctx, item.ID, processErr.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to increment sync attempt",
			"id", item.ID, "error", err)
	}
}

func itemFields(item storage.SyncQueue) log.LogFields {
	return log.NewFields().
		WithComponent(log.ComponentSync).
		WithUserID(item.UserID).
		WithEntity(item.Entity, item.EntityID).
		WithOperation(item.Operation)
}

func (p *SyncProcessor) cleanupCompleted(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupAge)
	if err := p.storage.CleanupCompletedSyncs(ctx, cutoff); err != nil {
		slog.ErrorContext(ctx, "Failed to cleanup completed syncs", "error", err)
	}
}

// Stats returns current queue statistics
func (p *SyncProcessor) Stats(ctx context.Context) (*storage.GetSyncQueueStatsRow, error) {
	return p.storage.GetSyncQueueStats(ctx)
}

// RetryFailed resets all failed items for retry
func (p *SyncProcessor) RetryFailed(ctx context.Context) error {
	return p.storage.RetryFailedSyncs(ctx)
}
