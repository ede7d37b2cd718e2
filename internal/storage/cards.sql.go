package storage

import (
	"context"
)

const cardColumns = `id, user_id, name, last_digits, brand, limit_cents, due_day, closing_day, is_active, color, created_at, updated_at`

func scanCard(row interface{ Scan(...interface{}) error }) (Card, error) {
	var i Card
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.LastDigits,
		&i.Brand,
		&i.LimitCents,
		&i.DueDay,
		&i.ClosingDay,
		&i.IsActive,
		&i.Color,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertCard = `-- name: UpsertCard :exec
INSERT INTO cards (` + cardColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    last_digits = excluded.last_digits,
    brand = excluded.brand,
    limit_cents = excluded.limit_cents,
    due_day = excluded.due_day,
    closing_day = excluded.closing_day,
    is_active = excluded.is_active,
    color = excluded.color,
    updated_at = excluded.updated_at
WHERE cards.user_id = excluded.user_id
`

func (q *Queries) UpsertCard(ctx context.Context, arg Card) error {
	_, err := q.db.ExecContext(ctx, upsertCard,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.LastDigits,
		arg.Brand,
		arg.LimitCents,
		arg.DueDay,
		arg.ClosingDay,
		arg.IsActive,
		arg.Color,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getCard = `-- name: GetCard :one
SELECT ` + cardColumns + ` FROM cards
WHERE user_id = ? AND id = ?
`

func (q *Queries) GetCard(ctx context.Context, userID, id string) (Card, error) {
	return scanCard(q.db.QueryRowContext(ctx, getCard, userID, id))
}

const listCards = `-- name: ListCards :many
SELECT ` + cardColumns + ` FROM cards
WHERE user_id = ?
ORDER BY is_active DESC, name COLLATE NOCASE
`

func (q *Queries) ListCards(ctx context.Context, userID string) ([]Card, error) {
	rows, err := q.db.QueryContext(ctx, listCards, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Card
	for rows.Next() {
		i, err := scanCard(rows)
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

const deleteCard = `-- name: DeleteCard :execrows
DELETE FROM cards WHERE user_id = ? AND id = ?
`

func (q *Queries) DeleteCard(ctx context.Context, userID, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCard, userID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
