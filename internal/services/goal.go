package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"
)

// GoalService manages the per-user savings vault. Every movement is mirrored
// by a transaction in the Vault category so balances stay consistent.
type GoalService struct {
	storage   *storage.SQLiteRepository
	summaries *SummaryService
	notifier  notifier
	now       func() time.Time

	// serializes read-modify-write of the goal row; the balance itself is
	// checked inside the storage transaction
	mu sync.Mutex
}

func NewGoalService(storage *storage.SQLiteRepository, summaries *SummaryService, n notifier, now func() time.Time) *GoalService {
	return &GoalService{storage: storage, summaries: summaries, notifier: n, now: now}
}

func (s *GoalService) Get(ctx context.Context, userID string) (core.Goal, error) {
	return s.storage.GetGoal(ctx, userID)
}

// Set creates the goal or renames and retargets the existing one. The
// target may not drop below what is already saved.
func (s *GoalService) Set(ctx context.Context, userID, name string, target core.Money) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	g, err := s.storage.GetGoal(ctx, userID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		g = core.Goal{ID: core.NewID(), UserID: userID, CreatedAt: now}
	case err != nil:
		return core.Goal{}, err
	}
	g.Name = strings.TrimSpace(name)
	g.Target = target
	g.UpdatedAt = now
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if g.Target.Cents < g.Saved.Cents {
		return core.Goal{}, &core.ValidationError{Field: "target", Err: fmt.Errorf("target below saved amount %s", g.Saved)}
	}

	if err := s.storage.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityGoals, g.ID))
	return g, nil
}

// Deposit moves up to amount from the available balance into the vault.
// The credited amount is capped so that Saved never exceeds Target.
func (s *GoalService) Deposit(ctx context.Context, userID string, amount core.Money) (core.Goal, core.Transaction, error) {
	if amount.Cents <= 0 {
		return core.Goal{}, core.Transaction{}, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.summaries.Balance(ctx, userID)
	if err != nil {
		return core.Goal{}, core.Transaction{}, err
	}
	if amount.Cents > balance.Total.Cents {
		return core.Goal{}, core.Transaction{}, fmt.Errorf("deposit %s with balance %s: %w", amount, balance.Total, core.ErrInsufficientBalance)
	}

	g, err := s.storage.GetGoal(ctx, userID)
	if err != nil {
		return core.Goal{}, core.Transaction{}, err
	}
	credit := core.MinMoney(amount, g.Target.Sub(g.Saved))
	if credit.Cents <= 0 {
		return core.Goal{}, core.Transaction{}, core.ErrGoalReached
	}

	g.Saved = g.Saved.Add(credit)
	t := s.vaultTransaction(userID, core.Expense, credit, "Deposit to "+g.Name)
	g.UpdatedAt = t.CreatedAt
	if err := s.storage.SaveGoalMovement(ctx, g, t, amount); err != nil {
		return core.Goal{}, core.Transaction{}, fmt.Errorf("deposit: %w", err)
	}
	s.summaries.Invalidate(userID)
	s.notifier.notify(ctx,
		upserted(userID, storage.EntityGoals, g.ID),
		upserted(userID, storage.EntityTransactions, t.ID))

	slog.InfoContext(ctx, "Vault deposit",
		"user_id", userID,
		"requested_cents", amount.Cents,
		"credited_cents", credit.Cents,
		"saved_cents", g.Saved.Cents)
	return g, t, nil
}

// Withdraw moves amount out of the vault back into the available balance.
func (s *GoalService) Withdraw(ctx context.Context, userID string, amount core.Money) (core.Goal, core.Transaction, error) {
	if amount.Cents <= 0 {
		return core.Goal{}, core.Transaction{}, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.storage.GetGoal(ctx, userID)
	if err != nil {
		return core.Goal{}, core.Transaction{}, err
	}
	if amount.Cents > g.Saved.Cents {
		return core.Goal{}, core.Transaction{}, fmt.Errorf("withdraw %s with %s saved: %w", amount, g.Saved, core.ErrInsufficientSavings)
	}

	g.Saved = g.Saved.Sub(amount)
	t := s.vaultTransaction(userID, core.Income, amount, "Withdrawal from "+g.Name)
	g.UpdatedAt = t.CreatedAt
	if err := s.storage.SaveGoalMovement(ctx, g, t, core.Money{}); err != nil {
		return core.Goal{}, core.Transaction{}, fmt.Errorf("withdraw: %w", err)
	}
	s.summaries.Invalidate(userID)
	s.notifier.notify(ctx,
		upserted(userID, storage.EntityGoals, g.ID),
		upserted(userID, storage.EntityTransactions, t.ID))
	return g, t, nil
}

func (s *GoalService) vaultTransaction(userID string, typ core.TransactionType, amount core.Money, description string) core.Transaction {
	now := s.now()
	return core.Transaction{
		ID:          core.NewID(),
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Category:    core.VaultCategory,
		Description: description,
		Date:        core.DateOf(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
