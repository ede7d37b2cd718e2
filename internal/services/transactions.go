package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"
)

// TransactionService records income and expense entries.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	summaries *SummaryService
	notifier  notifier
	now       func() time.Time
}

func NewTransactionService(storage *storage.SQLiteRepository, summaries *SummaryService, n notifier, now func() time.Time) *TransactionService {
	return &TransactionService{storage: storage, summaries: summaries, notifier: n, now: now}
}

// Add stores a new transaction. The amount is stored as its absolute value;
// direction is carried by the type.
func (s *TransactionService) Add(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	now := s.now()
	t.ID = core.NewID()
	t.UserID = userID
	t.Amount = t.Amount.Abs()
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.storage.SaveTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.summaries.Invalidate(userID)
	s.notifier.notify(ctx, upserted(userID, storage.EntityTransactions, t.ID))

	slog.InfoContext(ctx, "Transaction saved",
		"user_id", userID,
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

// List returns transactions dated within [from, to]; zero bounds are open.
func (s *TransactionService) List(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from.Time) {
		return nil, &core.ValidationError{Field: "to", Err: fmt.Errorf("end date %s is before start date %s", to, from)}
	}
	return s.storage.ListTransactions(ctx, userID, from, to)
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.summaries.Invalidate(userID)
	s.notifier.notify(ctx, deleted(userID, storage.EntityTransactions, id))
	return nil
}
