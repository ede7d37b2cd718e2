package storage

import (
	"context"
)

const recurringColumns = `id, user_id, name, amount_cents, category, due_day, due_month, payment_method, card_id, recurrence_type, installments, installments_paid, priority, auto_pay, status, last_paid_period, created_at, updated_at`

func scanRecurring(row interface{ Scan(...interface{}) error }) (RecurringExpense, error) {
	var i RecurringExpense
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.AmountCents,
		&i.Category,
		&i.DueDay,
		&i.DueMonth,
		&i.PaymentMethod,
		&i.CardID,
		&i.RecurrenceType,
		&i.Installments,
		&i.InstallmentsPaid,
		&i.Priority,
		&i.AutoPay,
		&i.Status,
		&i.LastPaidPeriod,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertRecurringExpense = `-- name: UpsertRecurringExpense :exec
INSERT INTO recurring_expenses (` + recurringColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    amount_cents = excluded.amount_cents,
    category = excluded.category,
    due_day = excluded.due_day,
    due_month = excluded.due_month,
    payment_method = excluded.payment_method,
    card_id = excluded.card_id,
    recurrence_type = excluded.recurrence_type,
    installments = excluded.installments,
    installments_paid = excluded.installments_paid,
    priority = excluded.priority,
    auto_pay = excluded.auto_pay,
    status = excluded.status,
    last_paid_period = excluded.last_paid_period,
    updated_at = excluded.updated_at
WHERE recurring_expenses.user_id = excluded.user_id
`

func (q *Queries) UpsertRecurringExpense(ctx context.Context, arg RecurringExpense) error {
	_, err := q.db.ExecContext(ctx, upsertRecurringExpense,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.AmountCents,
		arg.Category,
		arg.DueDay,
		arg.DueMonth,
		arg.PaymentMethod,
		arg.CardID,
		arg.RecurrenceType,
		arg.Installments,
		arg.InstallmentsPaid,
		arg.Priority,
		arg.AutoPay,
		arg.Status,
		arg.LastPaidPeriod,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getRecurringExpense = `-- name: GetRecurringExpense :one
SELECT ` + recurringColumns + ` FROM recurring_expenses
WHERE user_id = ? AND id = ?
`

func (q *Queries) GetRecurringExpense(ctx context.Context, userID, id string) (RecurringExpense, error) {
	return scanRecurring(q.db.QueryRowContext(ctx, getRecurringExpense, userID, id))
}

const listRecurringExpenses = `-- name: ListRecurringExpenses :many
SELECT ` + recurringColumns + ` FROM recurring_expenses
WHERE user_id = ?1 AND (?2 = '' OR status = ?2)
ORDER BY due_day, name COLLATE NOCASE
`

func (q *Queries) ListRecurringExpenses(ctx context.Context, userID, status string) ([]RecurringExpense, error) {
	rows, err := q.db.QueryContext(ctx, listRecurringExpenses, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringExpense
	for rows.Next() {
		i, err := scanRecurring(rows)
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

const listRecurringUsers = `-- name: ListRecurringUsers :many
SELECT DISTINCT user_id FROM recurring_expenses
WHERE status = 'active'
ORDER BY user_id
`

func (q *Queries) ListRecurringUsers(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listRecurringUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		items = append(items, userID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteRecurringExpense = `-- name: DeleteRecurringExpense :execrows
DELETE FROM recurring_expenses WHERE user_id = ? AND id = ?
`

func (q *Queries) DeleteRecurringExpense(ctx context.Context, userID, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRecurringExpense, userID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertRecurringRun = `-- name: InsertRecurringRun :execrows
INSERT OR IGNORE INTO recurring_runs (recurring_id, period, transaction_id, created_at)
VALUES (?, ?, ?, ?)
`

func (q *Queries) InsertRecurringRun(ctx context.Context, arg RecurringRun) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertRecurringRun,
		arg.RecurringID,
		arg.Period,
		arg.TransactionID,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countRecurringRuns = `-- name: CountRecurringRuns :one
SELECT COUNT(*) FROM recurring_runs WHERE recurring_id = ?
`

func (q *Queries) CountRecurringRuns(ctx context.Context, recurringID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRecurringRuns, recurringID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
