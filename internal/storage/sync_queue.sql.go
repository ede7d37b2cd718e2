package storage

import (
	"context"
)

const enqueueSync = `-- name: EnqueueSync :exec
INSERT INTO sync_queue (user_id, entity, entity_id, operation, status, created_at, updated_at)
VALUES (?, ?, ?, ?, 'pending', ?, ?)
`

type EnqueueSyncParams struct {
	UserID    string
	Entity    string
	EntityID  string
	Operation string
	CreatedAt string
}

func (q *Queries) EnqueueSync(ctx context.Context, arg EnqueueSyncParams) error {
	_, err := q.db.ExecContext(ctx, enqueueSync,
		arg.UserID,
		arg.Entity,
		arg.EntityID,
		arg.Operation,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return err
}

const dequeueSyncBatch = `-- name: DequeueSyncBatch :many
SELECT id, user_id, entity, entity_id, operation, status, attempts, last_error, created_at, updated_at, processed_at
FROM sync_queue
WHERE status = 'pending'
ORDER BY id
LIMIT ?
`

func (q *Queries) DequeueSyncBatch(ctx context.Context, limit int64) ([]SyncQueue, error) {
	rows, err := q.db.QueryContext(ctx, dequeueSyncBatch, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SyncQueue
	for rows.Next() {
		var i SyncQueue
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Entity,
			&i.EntityID,
			&i.Operation,
			&i.Status,
			&i.Attempts,
			&i.LastError,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProcessedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markSyncProcessing = `-- name: MarkSyncProcessing :exec
UPDATE sync_queue SET status = 'processing', updated_at = ? WHERE id = ?
`

func (q *Queries) MarkSyncProcessing(ctx context.Context, updatedAt string, id int64) error {
	_, err := q.db.ExecContext(ctx, markSyncProcessing, updatedAt, id)
	return err
}

const markSyncComplete = `-- name: MarkSyncComplete :exec
UPDATE sync_queue SET status = 'completed', last_error = '', updated_at = ?1, processed_at = ?1 WHERE id = ?2
`

func (q *Queries) MarkSyncComplete(ctx context.Context, processedAt string, id int64) error {
	_, err := q.db.ExecContext(ctx, markSyncComplete, processedAt, id)
	return err
}

const incrementSyncAttempt = `-- name: IncrementSyncAttempt :exec
UPDATE sync_queue
SET status = 'pending', attempts = attempts + 1, last_error = ?, updated_at = ?
WHERE id = ?
`

type SyncErrorParams struct {
	LastError string
	UpdatedAt string
	ID        int64
}

func (q *Queries) IncrementSyncAttempt(ctx context.Context, arg SyncErrorParams) error {
	_, err := q.db.ExecContext(ctx, incrementSyncAttempt, arg.LastError, arg.UpdatedAt, arg.ID)
	return err
}

const markSyncFailed = `-- name: MarkSyncFailed :exec
UPDATE sync_queue
SET status = 'failed', attempts = attempts + 1, last_error = ?, updated_at = ?
WHERE id = ?
`

func (q *Queries) MarkSyncFailed(ctx context.Context, arg SyncErrorParams) error {
	_, err := q.db.ExecContext(ctx, markSyncFailed, arg.LastError, arg.UpdatedAt, arg.ID)
	return err
}

const resetStaleProcessing = `-- name: ResetStaleProcessing :execrows
UPDATE sync_queue SET status = 'pending', updated_at = ? WHERE status = 'processing'
`

func (q *Queries) ResetStaleProcessing(ctx context.Context, updatedAt string) (int64, error) {
	result, err := q.db.ExecContext(ctx, resetStaleProcessing, updatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const cleanupCompletedSyncs = `-- name: CleanupCompletedSyncs :execrows
DELETE FROM sync_queue WHERE status = 'completed' AND processed_at < ?
`

func (q *Queries) CleanupCompletedSyncs(ctx context.Context, before string) (int64, error) {
	result, err := q.db.ExecContext(ctx, cleanupCompletedSyncs, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const retryFailedSyncs = `-- name: RetryFailedSyncs :execrows
UPDATE sync_queue SET status = 'pending', attempts = 0, updated_at = ? WHERE status = 'failed'
`

func (q *Queries) RetryFailedSyncs(ctx context.Context, updatedAt string) (int64, error) {
	result, err := q.db.ExecContext(ctx, retryFailedSyncs, updatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getSyncQueueStats = `-- name: GetSyncQueueStats :one
SELECT
    CAST(COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS INTEGER) AS pending,
    CAST(COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS INTEGER) AS processing,
    CAST(COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS INTEGER) AS completed,
    CAST(COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS INTEGER) AS failed
FROM sync_queue
`

type GetSyncQueueStatsRow struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

func (q *Queries) GetSyncQueueStats(ctx context.Context) (GetSyncQueueStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getSyncQueueStats)
	var i GetSyncQueueStatsRow
	err := row.Scan(
		&i.Pending,
		&i.Processing,
		&i.Completed,
		&i.Failed,
	)
	return i, err
}

const countUnsyncedChanges = `-- name: CountUnsyncedChanges :one
SELECT COUNT(*) FROM sync_queue
WHERE user_id = ? AND entity = ? AND entity_id = ? AND status IN ('pending', 'processing', 'failed')
`

func (q *Queries) CountUnsyncedChanges(ctx context.Context, userID, entity, entityID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUnsyncedChanges, userID, entity, entityID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
