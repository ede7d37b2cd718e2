package storage

import (
	"context"
)

const getGoal = `-- name: GetGoal :one
SELECT id, user_id, name, target_cents, saved_cents, created_at, updated_at
FROM goals
WHERE user_id = ?
`

func (q *Queries) GetGoal(ctx context.Context, userID string) (Goal, error) {
	row := q.db.QueryRowContext(ctx, getGoal, userID)
	var i Goal
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.TargetCents,
		&i.SavedCents,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertGoal = `-- name: UpsertGoal :exec
INSERT INTO goals (id, user_id, name, target_cents, saved_cents, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    name = excluded.name,
    target_cents = excluded.target_cents,
    saved_cents = excluded.saved_cents,
    updated_at = excluded.updated_at
`

func (q *Queries) UpsertGoal(ctx context.Context, arg Goal) error {
	_, err := q.db.ExecContext(ctx, upsertGoal,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.TargetCents,
		arg.SavedCents,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}
