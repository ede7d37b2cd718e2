package storage

import (
	"context"
)

const dayoffColumns = `id, user_id, kind, description, day_of_week, interval_days, start_date, date, created_at, updated_at`

func scanDayoffRule(row interface{ Scan(...interface{}) error }) (DayoffRule, error) {
	var i DayoffRule
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Kind,
		&i.Description,
		&i.DayOfWeek,
		&i.IntervalDays,
		&i.StartDate,
		&i.Date,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertDayoffRule = `-- name: UpsertDayoffRule :exec
INSERT INTO dayoff_rules (` + dayoffColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    kind = excluded.kind,
    description = excluded.description,
    day_of_week = excluded.day_of_week,
    interval_days = excluded.interval_days,
    start_date = excluded.start_date,
    date = excluded.date,
    updated_at = excluded.updated_at
WHERE dayoff_rules.user_id = excluded.user_id
`

func (q *Queries) UpsertDayoffRule(ctx context.Context, arg DayoffRule) error {
	_, err := q.db.ExecContext(ctx, upsertDayoffRule,
		arg.ID,
		arg.UserID,
		arg.Kind,
		arg.Description,
		arg.DayOfWeek,
		arg.IntervalDays,
		arg.StartDate,
		arg.Date,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getDayoffRule = `-- name: GetDayoffRule :one
SELECT ` + dayoffColumns + ` FROM dayoff_rules
WHERE user_id = ? AND id = ?
`

func (q *Queries) GetDayoffRule(ctx context.Context, userID, id string) (DayoffRule, error) {
	return scanDayoffRule(q.db.QueryRowContext(ctx, getDayoffRule, userID, id))
}

const listDayoffRules = `-- name: ListDayoffRules :many
SELECT ` + dayoffColumns + ` FROM dayoff_rules
WHERE user_id = ?
ORDER BY created_at, id
`

func (q *Queries) ListDayoffRules(ctx context.Context, userID string) ([]DayoffRule, error) {
	rows, err := q.db.QueryContext(ctx, listDayoffRules, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DayoffRule
	for rows.Next() {
		i, err := scanDayoffRule(rows)
		if err != nil {
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

const deleteDayoffRule = `-- name: DeleteDayoffRule :execrows
DELETE FROM dayoff_rules WHERE user_id = ? AND id = ?
`

func (q *Queries) DeleteDayoffRule(ctx context.Context, userID, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDayoffRule, userID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
