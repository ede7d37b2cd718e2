package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/core"
	"finboard/internal/dayoff"
)

// LoadEntity returns the current local value of an outbox item's entity.
func (r *SQLiteRepository) LoadEntity(ctx context.Context, userID, entity, id string) (any, error) {
	switch entity {
	case EntityTransactions:
		return r.GetTransaction(ctx, userID, id)
	case EntityGoals:
		return r.GetGoal(ctx, userID)
	case EntityCategories:
		return r.GetCategory(ctx, userID, id)
	case EntityCards:
		return r.GetCard(ctx, userID, id)
	case EntityRecurring:
		return r.GetRecurring(ctx, userID, id)
	case EntityDayOffRules:
		return r.GetDayOffRule(ctx, userID, id)
	}
	return nil, fmt.Errorf("unknown entity %q", entity)
}

// Import writes a value pulled from the remote store without enqueueing it
// for sync again.
func (r *SQLiteRepository) Import(ctx context.Context, v any) error {
	q := r.queries
	var err error
	switch x := v.(type) {
	case core.Transaction:
		err = q.UpsertTransaction(ctx, fromTransaction(x))
	case core.Goal:
		err = q.UpsertGoal(ctx, fromGoal(x))
	case core.Category:
		err = q.UpsertCategory(ctx, fromCategory(x))
	case core.Card:
		err = q.UpsertCard(ctx, fromCard(x))
	case core.RecurringExpense:
		err = q.UpsertRecurringExpense(ctx, fromRecurring(x))
	case dayoff.Record:
		err = q.UpsertDayoffRule(ctx, fromDayoffRecord(x))
	default:
		return fmt.Errorf("import: unsupported type %T", v)
	}
	return mapErr(err, fmt.Sprintf("import %T", v))
}

// Sync queue

// HasUnsyncedChange reports whether the outbox still holds a local change to
// the entity that has not reached the remote store. Failed items count: they
// can be retried and still represent local intent.
func (r *SQLiteRepository) HasUnsyncedChange(ctx context.Context, userID, entity, entityID string) (bool, error) {
	n, err := r.queries.CountUnsyncedChanges(ctx, userID, entity, entityID)
	if err != nil {
		return false, fmt.Errorf("count unsynced changes: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DequeueSyncBatch(ctx context.Context, limit int64) ([]SyncQueue, error) {
	items, err := r.queries.DequeueSyncBatch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("dequeue sync batch: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) MarkSyncProcessing(ctx context.Context, id int64) error {
	if err := r.queries.MarkSyncProcessing(ctx, formatTime(r.now()), id); err != nil {
		return fmt.Errorf("mark sync processing: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncComplete(ctx context.Context, id int64) error {
	if err := r.queries.MarkSyncComplete(ctx, formatTime(r.now()), id); err != nil {
		return fmt.Errorf("mark sync complete: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) IncrementSyncAttempt(ctx context.Context, id int64, lastError string) error {
	err := r.queries.IncrementSyncAttempt(ctx, SyncErrorParams{
		LastError: lastError,
		UpdatedAt: formatTime(r.now()),
		ID:        id,
	})
	if err != nil {
		return fmt.Errorf("increment sync attempt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncFailed(ctx context.Context, id int64, lastError string) error {
	err := r.queries.MarkSyncFailed(ctx, SyncErrorParams{
		LastError: lastError,
		UpdatedAt: formatTime(r.now()),
		ID:        id,
	})
	if err != nil {
		return fmt.Errorf("mark sync failed: %w", err)
	}
	return nil
}

// ResetStaleProcessing puts items left in processing by a crashed worker back
// into the pending state.
func (r *SQLiteRepository) ResetStaleProcessing(ctx context.Context) error {
	n, err := r.queries.ResetStaleProcessing(ctx, formatTime(r.now()))
	if err != nil {
		return fmt.Errorf("reset stale processing: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Reset stale sync items", "count", n)
	}
	return nil
}

func (r *SQLiteRepository) CleanupCompletedSyncs(ctx context.Context, before time.Time) error {
	n, err := r.queries.CleanupCompletedSyncs(ctx, formatTime(before))
	if err != nil {
		return fmt.Errorf("cleanup completed syncs: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Cleaned up completed sync items", "count", n)
	}
	return nil
}

func (r *SQLiteRepository) RetryFailedSyncs(ctx context.Context) error {
	if _, err := r.queries.RetryFailedSyncs(ctx, formatTime(r.now())); err != nil {
		return fmt.Errorf("retry failed syncs: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSyncQueueStats(ctx context.Context) (*GetSyncQueueStatsRow, error) {
	stats, err := r.queries.GetSyncQueueStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sync queue stats: %w", err)
	}
	return &stats, nil
}
