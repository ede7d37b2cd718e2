package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/dayoff"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Entity names double as remote collection names.
const (
	EntityTransactions = "transactions"
	EntityGoals        = "goals"
	EntityCategories   = "categories"
	EntityCards        = "cards"
	EntityRecurring    = "recurring_expenses"
	EntityDayOffRules  = "dayoff_rules"
)

// Entities lists every synchronized entity.
var Entities = []string{
	EntityTransactions,
	EntityGoals,
	EntityCategories,
	EntityCards,
	EntityRecurring,
	EntityDayOffRules,
}

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// Change describes a committed local write. It is what gets published to
// wake the sync worker.
type Change struct {
	UserID   string
	Entity   string
	EntityID string
	Op       string
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// inTx runs fn inside a transaction and commits when fn succeeds.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.WarnContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) enqueue(ctx context.Context, q *Queries, c Change) error {
	err := q.EnqueueSync(ctx, EnqueueSyncParams{
		UserID:    c.UserID,
		Entity:    c.Entity,
		EntityID:  c.EntityID,
		Operation: c.Op,
		CreatedAt: formatTime(r.now()),
	})
	if err != nil {
		return fmt.Errorf("enqueue %s %s/%s: %w", c.Op, c.Entity, c.EntityID, err)
	}
	return nil
}

// mapErr translates driver errors into core sentinels.
func mapErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", what, core.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFoundIfNone(n int64, what string) error {
	if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}

// Transactions

func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpsertTransaction(ctx, fromTransaction(t)); err != nil {
			return mapErr(err, "save transaction")
		}
		return r.enqueue(ctx, q, Change{t.UserID, EntityTransactions, t.ID, OpUpsert})
	})
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, mapErr(err, "get transaction "+id)
	}
	return row.toCore()
}

// ListTransactions returns transactions dated within [from, to], newest first.
// A zero bound is open.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	lo, hi := dateBounds(from, to)
	rows, err := r.queries.ListTransactionsBetween(ctx, ListTransactionsBetweenParams{
		UserID: userID,
		From:   lo,
		To:     hi,
	})
	if err != nil {
		return nil, mapErr(err, "list transactions")
	}
	return transactionsToCore(rows)
}

// ListCardTransactions returns the card's expenses dated within [from, to].
func (r *SQLiteRepository) ListCardTransactions(ctx context.Context, userID, cardID string, from, to core.Date) ([]core.Transaction, error) {
	lo, hi := dateBounds(from, to)
	rows, err := r.queries.ListCardTransactions(ctx, ListCardTransactionsParams{
		UserID: userID,
		CardID: cardID,
		From:   lo,
		To:     hi,
	})
	if err != nil {
		return nil, mapErr(err, "list card transactions")
	}
	return transactionsToCore(rows)
}

func dateBounds(from, to core.Date) (string, string) {
	lo, hi := "0000-01-01", "9999-12-31"
	if !from.IsZero() {
		lo = formatDate(from)
	}
	if !to.IsZero() {
		hi = formatDate(to)
	}
	return lo, hi
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		n, err := q.DeleteTransaction(ctx, userID, id)
		if err != nil {
			return mapErr(err, "delete transaction")
		}
		if err := notFoundIfNone(n, "delete transaction "+id); err != nil {
			return err
		}
		return r.enqueue(ctx, q, Change{userID, EntityTransactions, id, OpDelete})
	})
}

// Totals returns all-time income and expense sums for the user.
func (r *SQLiteRepository) Totals(ctx context.Context, userID string) (income, expense core.Money, err error) {
	return totals(ctx, r.queries, userID)
}

func totals(ctx context.Context, q *Queries, userID string) (income, expense core.Money, err error) {
	rows, err := q.SumTransactionsByType(ctx, userID)
	if err != nil {
		return core.Money{}, core.Money{}, mapErr(err, "sum transactions")
	}
	for _, row := range rows {
		switch core.TransactionType(row.Type) {
		case core.Income:
			income.Cents = row.Total
		case core.Expense:
			expense.Cents = row.Total
		}
	}
	return income, expense, nil
}

// Goal

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID string) (core.Goal, error) {
	row, err := r.queries.GetGoal(ctx, userID)
	if err != nil {
		return core.Goal{}, mapErr(err, "get goal")
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpsertGoal(ctx, fromGoal(g)); err != nil {
			return mapErr(err, "save goal")
		}
		return r.enqueue(ctx, q, Change{g.UserID, EntityGoals, g.ID, OpUpsert})
	})
}

// SaveGoalMovement stores the updated goal and the vault transaction that
// mirrors the movement atomically. When required is positive the available
// balance, read in the same transaction, must cover it or
// core.ErrInsufficientBalance is returned and nothing is written.
func (r *SQLiteRepository) SaveGoalMovement(ctx context.Context, g core.Goal, t core.Transaction, required core.Money) error {
	return r.inTx(ctx, func(q *Queries) error {
		if required.Cents > 0 {
			income, expense, err := totals(ctx, q, g.UserID)
			if err != nil {
				return err
			}
			if balance := income.Sub(expense); required.Cents > balance.Cents {
				return fmt.Errorf("need %s with balance %s: %w", required, balance, core.ErrInsufficientBalance)
			}
		}
		if err := q.UpsertGoal(ctx, fromGoal(g)); err != nil {
			return mapErr(err, "save goal")
		}
		if err := q.UpsertTransaction(ctx, fromTransaction(t)); err != nil {
			return mapErr(err, "save vault transaction")
		}
		if err := r.enqueue(ctx, q, Change{g.UserID, EntityGoals, g.ID, OpUpsert}); err != nil {
			return err
		}
		return r.enqueue(ctx, q, Change{t.UserID, EntityTransactions, t.ID, OpUpsert})
	})
}

// Categories

// SeedCategories inserts cats, skipping any that already exist. It returns
// the number of rows inserted.
func (r *SQLiteRepository) SeedCategories(ctx context.Context, cats []core.Category) (int, error) {
	inserted := 0
	err := r.inTx(ctx, func(q *Queries) error {
		for _, c := range cats {
			n, err := q.InsertCategoryIfAbsent(ctx, fromCategory(c))
			if err != nil {
				return mapErr(err, "seed category "+c.Name)
			}
			if n == 0 {
				continue
			}
			inserted++
			if err := r.enqueue(ctx, q, Change{c.UserID, EntityCategories, c.ID, OpUpsert}); err != nil {
				return err
			}
		}
		return nil
	})
	return inserted, err
}

func (r *SQLiteRepository) CountCategories(ctx context.Context, userID string) (int, error) {
	n, err := r.queries.CountCategories(ctx, userID)
	if err != nil {
		return 0, mapErr(err, "count categories")
	}
	return int(n), nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, mapErr(err, "get category "+id)
	}
	return row.toCore(), nil
}

// ListCategories returns categories ordered by type then position. An empty
// type returns both.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string, typ core.TransactionType) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, userID, string(typ))
	if err != nil {
		return nil, mapErr(err, "list categories")
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCore())
	}
	return out, nil
}

// NextCategoryOrder returns the position after the last category of typ.
func (r *SQLiteRepository) NextCategoryOrder(ctx context.Context, userID string, typ core.TransactionType) (int, error) {
	n, err := r.queries.MaxCategoryOrder(ctx, userID, string(typ))
	if err != nil {
		return 0, mapErr(err, "max category order")
	}
	return int(n) + 1, nil
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpsertCategory(ctx, fromCategory(c)); err != nil {
			return mapErr(err, "save category "+c.Name)
		}
		return r.enqueue(ctx, q, Change{c.UserID, EntityCategories, c.ID, OpUpsert})
	})
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		n, err := q.DeleteCategory(ctx, userID, id)
		if err != nil {
			return mapErr(err, "delete category")
		}
		if err := notFoundIfNone(n, "delete category "+id); err != nil {
			return err
		}
		return r.enqueue(ctx, q, Change{userID, EntityCategories, id, OpDelete})
	})
}

// ReorderCategories assigns positions 0..n-1 following ids.
func (r *SQLiteRepository) ReorderCategories(ctx context.Context, userID string, ids []string) error {
	now := formatTime(r.now())
	return r.inTx(ctx, func(q *Queries) error {
		for i, id := range ids {
			n, err := q.SetCategoryOrder(ctx, SetCategoryOrderParams{
				SortOrder: int64(i),
				UpdatedAt: now,
				UserID:    userID,
				ID:        id,
			})
			if err != nil {
				return mapErr(err, "reorder category")
			}
			if err := notFoundIfNone(n, "reorder category "+id); err != nil {
				return err
			}
			if err := r.enqueue(ctx, q, Change{userID, EntityCategories, id, OpUpsert}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Cards

func (r *SQLiteRepository) SaveCard(ctx context.Context, c core.Card) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpsertCard(ctx, fromCard(c)); err != nil {
			return mapErr(err, "save card")
		}
		return r.enqueue(ctx, q, Change{c.UserID, EntityCards, c.ID, OpUpsert})
	})
}

func (r *SQLiteRepository) GetCard(ctx context.Context, userID, id string) (core.Card, error) {
	row, err := r.queries.GetCard(ctx, userID, id)
	if err != nil {
		return core.Card{}, mapErr(err, "get card "+id)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context, userID string) ([]core.Card, error) {
	rows, err := r.queries.ListCards(ctx, userID)
	if err != nil {
		return nil, mapErr(err, "list cards")
	}
	out := make([]core.Card, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCore())
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		n, err := q.DeleteCard(ctx, userID, id)
		if err != nil {
			return mapErr(err, "delete card")
		}
		if err := notFoundIfNone(n, "delete card "+id); err != nil {
			return err
		}
		return r.enqueue(ctx, q, Change{userID, EntityCards, id, OpDelete})
	})
}

// Recurring expenses

func (r *SQLiteRepository) SaveRecurring(ctx context.Context, re core.RecurringExpense) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpsertRecurringExpense(ctx, fromRecurring(re)); err != nil {
			return mapErr(err, "save recurring expense")
		}
		return r.enqueue(ctx, q, Change{re.UserID, EntityRecurring, re.ID, OpUpsert})
	})
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, userID, id string) (core.RecurringExpense, error) {
	row, err := r.queries.GetRecurringExpense(ctx, userID, id)
	if err != nil {
		return core.RecurringExpense{}, mapErr(err, "get recurring expense "+id)
	}
	return row.toCore(), nil
}

// ListRecurring returns the user's recurring expenses, optionally filtered by status.
func (r *SQLiteRepository) ListRecurring(ctx context.Context, userID string, status core.RecurringStatus) ([]core.RecurringExpense, error) {
	rows, err := r.queries.ListRecurringExpenses(ctx, userID, string(status))
	if err != nil {
		return nil, mapErr(err, "list recurring expenses")
	}
	out := make([]core.RecurringExpense, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCore())
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		n, err := q.DeleteRecurringExpense(ctx, userID, id)
		if err != nil {
			return mapErr(err, "delete recurring expense")
		}
		if err := notFoundIfNone(n, "delete recurring expense "+id); err != nil {
			return err
		}
		return r.enqueue(ctx, q, Change{userID, EntityRecurring, id, OpDelete})
	})
}

// RecurringUsers lists users owning at least one active recurring expense.
func (r *SQLiteRepository) RecurringUsers(ctx context.Context) ([]string, error) {
	users, err := r.queries.ListRecurringUsers(ctx)
	if err != nil {
		return nil, mapErr(err, "list recurring users")
	}
	return users, nil
}

// MaterializeRecurring records a payment of re for period together with the
// transaction t and the updated re. It returns false without writing anything
// when the period was already materialized.
func (r *SQLiteRepository) MaterializeRecurring(ctx context.Context, re core.RecurringExpense, t core.Transaction, period string) (bool, error) {
	created := false
	err := r.inTx(ctx, func(q *Queries) error {
		n, err := q.InsertRecurringRun(ctx, RecurringRun{
			RecurringID:   re.ID,
			Period:        period,
			TransactionID: t.ID,
			CreatedAt:     formatTime(r.now()),
		})
		if err != nil {
			return mapErr(err, "record recurring run")
		}
		if n == 0 {
			return nil
		}
		if err := q.UpsertTransaction(ctx, fromTransaction(t)); err != nil {
			return mapErr(err, "save recurring transaction")
		}
		if err := q.UpsertRecurringExpense(ctx, fromRecurring(re)); err != nil {
			return mapErr(err, "update recurring expense")
		}
		if err := r.enqueue(ctx, q, Change{t.UserID, EntityTransactions, t.ID, OpUpsert}); err != nil {
			return err
		}
		if err := r.enqueue(ctx, q, Change{re.UserID, EntityRecurring, re.ID, OpUpsert}); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// RecurringRunCount returns how many periods of the recurring expense were materialized.
func (r *SQLiteRepository) RecurringRunCount(ctx context.Context, recurringID string) (int, error) {
	n, err := r.queries.CountRecurringRuns(ctx, recurringID)
	if err != nil {
		return 0, mapErr(err, "count recurring runs")
	}
	return int(n), nil
}

// Day-off rules

func (r *SQLiteRepository) SaveDayOffRule(ctx context.Context, rec dayoff.Record) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.UpsertDayoffRule(ctx, fromDayoffRecord(rec)); err != nil {
			return mapErr(err, "save day-off rule")
		}
		return r.enqueue(ctx, q, Change{rec.UserID, EntityDayOffRules, rec.ID, OpUpsert})
	})
}

func (r *SQLiteRepository) GetDayOffRule(ctx context.Context, userID, id string) (dayoff.Record, error) {
	row, err := r.queries.GetDayoffRule(ctx, userID, id)
	if err != nil {
		return dayoff.Record{}, mapErr(err, "get day-off rule "+id)
	}
	return row.toRecord()
}

// ListDayOffRules returns rules in creation order.
func (r *SQLiteRepository) ListDayOffRules(ctx context.Context, userID string) ([]dayoff.Record, error) {
	rows, err := r.queries.ListDayoffRules(ctx, userID)
	if err != nil {
		return nil, mapErr(err, "list day-off rules")
	}
	out := make([]dayoff.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteDayOffRule(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		n, err := q.DeleteDayoffRule(ctx, userID, id)
		if err != nil {
			return mapErr(err, "delete day-off rule")
		}
		if err := notFoundIfNone(n, "delete day-off rule "+id); err != nil {
			return err
		}
		return r.enqueue(ctx, q, Change{userID, EntityDayOffRules, id, OpDelete})
	})
}
