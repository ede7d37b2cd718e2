package storage

import (
	"context"
)

const categoryColumns = `id, user_id, name, type, color, is_default, sort_order, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (Category, error) {
	var i Category
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Type,
		&i.Color,
		&i.IsDefault,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertCategory = `-- name: UpsertCategory :exec
INSERT INTO categories (` + categoryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    color = excluded.color,
    sort_order = excluded.sort_order,
    updated_at = excluded.updated_at
WHERE categories.user_id = excluded.user_id
`

func (q *Queries) UpsertCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, upsertCategory,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Type,
		arg.Color,
		arg.IsDefault,
		arg.SortOrder,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const insertCategoryIfAbsent = `-- name: InsertCategoryIfAbsent :execrows
INSERT OR IGNORE INTO categories (` + categoryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertCategoryIfAbsent(ctx context.Context, arg Category) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertCategoryIfAbsent,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Type,
		arg.Color,
		arg.IsDefault,
		arg.SortOrder,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getCategory = `-- name: GetCategory :one
SELECT ` + categoryColumns + ` FROM categories
WHERE user_id = ? AND id = ?
`

func (q *Queries) GetCategory(ctx context.Context, userID, id string) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, userID, id))
}

const listCategories = `-- name: ListCategories :many
SELECT ` + categoryColumns + ` FROM categories
WHERE user_id = ?1 AND (?2 = '' OR type = ?2)
ORDER BY type, sort_order, name COLLATE NOCASE
`

func (q *Queries) ListCategories(ctx context.Context, userID, categoryType string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID, categoryType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		i, err := scanCategory(rows)
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

const countCategories = `-- name: CountCategories :one
SELECT COUNT(*) FROM categories WHERE user_id = ?
`

func (q *Queries) CountCategories(ctx context.Context, userID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCategories, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const maxCategoryOrder = `-- name: MaxCategoryOrder :one
SELECT CAST(COALESCE(MAX(sort_order), -1) AS INTEGER) FROM categories WHERE user_id = ? AND type = ?
`

func (q *Queries) MaxCategoryOrder(ctx context.Context, userID, categoryType string) (int64, error) {
	row := q.db.QueryRowContext(ctx, maxCategoryOrder, userID, categoryType)
	var n int64
	err := row.Scan(&n)
	return n, err
}

const setCategoryOrder = `-- name: SetCategoryOrder :execrows
UPDATE categories SET sort_order = ?, updated_at = ?
WHERE user_id = ? AND id = ?
`

type SetCategoryOrderParams struct {
	SortOrder int64
	UpdatedAt string
	UserID    string
	ID        string
}

func (q *Queries) SetCategoryOrder(ctx context.Context, arg SetCategoryOrderParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setCategoryOrder, arg.SortOrder, arg.UpdatedAt, arg.UserID, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE user_id = ? AND id = ? AND is_default = 0
`

func (q *Queries) DeleteCategory(ctx context.Context, userID, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, userID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
