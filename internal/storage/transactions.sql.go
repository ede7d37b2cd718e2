package storage

import (
	"context"
)

const transactionColumns = `id, user_id, type, amount_cents, category, description, date, payment_method, card_id, recurring_id, created_at, updated_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Type,
		&i.AmountCents,
		&i.Category,
		&i.Description,
		&i.Date,
		&i.PaymentMethod,
		&i.CardID,
		&i.RecurringID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertTransaction = `-- name: UpsertTransaction :exec
INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    type = excluded.type,
    amount_cents = excluded.amount_cents,
    category = excluded.category,
    description = excluded.description,
    date = excluded.date,
    payment_method = excluded.payment_method,
    card_id = excluded.card_id,
    recurring_id = excluded.recurring_id,
    updated_at = excluded.updated_at
WHERE transactions.user_id = excluded.user_id
`

func (q *Queries) UpsertTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction,
		arg.ID,
		arg.UserID,
		arg.Type,
		arg.AmountCents,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.PaymentMethod,
		arg.CardID,
		arg.RecurringID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = ? AND id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, userID, id string) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, userID, id))
}

const listTransactionsBetween = `-- name: ListTransactionsBetween :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date DESC, created_at DESC
`

type ListTransactionsBetweenParams struct {
	UserID string
	From   string
	To     string
}

func (q *Queries) ListTransactionsBetween(ctx context.Context, arg ListTransactionsBetweenParams) ([]Transaction, error) {
	return q.queryTransactions(ctx, listTransactionsBetween, arg.UserID, arg.From, arg.To)
}

const listCardTransactions = `-- name: ListCardTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = ? AND card_id = ? AND type = 'expense' AND date >= ? AND date <= ?
ORDER BY date ASC, created_at ASC
`

type ListCardTransactionsParams struct {
	UserID string
	CardID string
	From   string
	To     string
}

func (q *Queries) ListCardTransactions(ctx context.Context, arg ListCardTransactionsParams) ([]Transaction, error) {
	return q.queryTransactions(ctx, listCardTransactions, arg.UserID, arg.CardID, arg.From, arg.To)
}

func (q *Queries) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
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

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE user_id = ? AND id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, userID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumTransactionsByType = `-- name: SumTransactionsByType :many
SELECT type, CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER) AS total
FROM transactions
WHERE user_id = ?
GROUP BY type
`

type SumTransactionsByTypeRow struct {
	Type  string
	Total int64
}

func (q *Queries) SumTransactionsByType(ctx context.Context, userID string) ([]SumTransactionsByTypeRow, error) {
	rows, err := q.db.QueryContext(ctx, sumTransactionsByType, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumTransactionsByTypeRow
	for rows.Next() {
		var i SumTransactionsByTypeRow
		if err := rows.Scan(&i.Type, &i.Total); err != nil {
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
