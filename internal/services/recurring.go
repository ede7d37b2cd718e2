package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// RecurringService manages recurring expense templates and turns them into
// transactions once per period.
type RecurringService struct {
	storage   *storage.SQLiteRepository
	summaries *SummaryService
	notifier  notifier
	now       func() time.Time
}

func NewRecurringService(storage *storage.SQLiteRepository, summaries *SummaryService, n notifier, now func() time.Time) *RecurringService {
	return &RecurringService{storage: storage, summaries: summaries, notifier: n, now: now}
}

// DueItem is a recurring expense awaiting payment in the current period.
type DueItem struct {
	core.RecurringExpense
	Period  string    `json:"period"`
	DueDate core.Date `json:"due_date"`
}

func (s *RecurringService) Create(ctx context.Context, userID string, re core.RecurringExpense) (core.RecurringExpense, error) {
	now := s.now()
	re.ID = core.NewID()
	re.UserID = userID
	re.Name = strings.TrimSpace(re.Name)
	re.Amount = re.Amount.Abs()
	re.InstallmentsPaid = 0
	re.LastPaidPeriod = ""
	re.Status = core.StatusActive
	if re.Priority == "" {
		re.Priority = core.PriorityMedium
	}
	re.CreatedAt = now
	re.UpdatedAt = now
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	if err := s.storage.SaveRecurring(ctx, re); err != nil {
		return core.RecurringExpense{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityRecurring, re.ID))
	return re, nil
}

func (s *RecurringService) Get(ctx context.Context, userID, id string) (core.RecurringExpense, error) {
	return s.storage.GetRecurring(ctx, userID, id)
}

// List returns recurring expenses, optionally filtered by status.
func (s *RecurringService) List(ctx context.Context, userID string, status core.RecurringStatus) ([]core.RecurringExpense, error) {
	return s.storage.ListRecurring(ctx, userID, status)
}

// Update replaces the editable fields. Payment progress and status are kept.
func (s *RecurringService) Update(ctx context.Context, userID, id string, in core.RecurringExpense) (core.RecurringExpense, error) {
	re, err := s.storage.GetRecurring(ctx, userID, id)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	re.Name = strings.TrimSpace(in.Name)
	re.Amount = in.Amount.Abs()
	re.Category = in.Category
	re.DueDay = in.DueDay
	re.DueMonth = in.DueMonth
	re.PaymentMethod = in.PaymentMethod
	re.CardID = in.CardID
	re.RecurrenceType = in.RecurrenceType
	re.Installments = in.Installments
	re.AutoPay = in.AutoPay
	if in.Priority != "" {
		re.Priority = in.Priority
	}
	if re.RecurrenceType == core.Installment && re.InstallmentsPaid >= re.Installments {
		re.Status = core.StatusCompleted
	}
	re.UpdatedAt = s.now()
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	if err := s.storage.SaveRecurring(ctx, re); err != nil {
		return core.RecurringExpense{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityRecurring, re.ID))
	return re, nil
}

func (s *RecurringService) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteRecurring(ctx, userID, id); err != nil {
		return err
	}
	s.notifier.notify(ctx, deleted(userID, storage.EntityRecurring, id))
	return nil
}

func (s *RecurringService) Pause(ctx context.Context, userID, id string) (core.RecurringExpense, error) {
	return s.transition(ctx, userID, id, core.StatusActive, core.StatusPaused)
}

func (s *RecurringService) Resume(ctx context.Context, userID, id string) (core.RecurringExpense, error) {
	return s.transition(ctx, userID, id, core.StatusPaused, core.StatusActive)
}

func (s *RecurringService) transition(ctx context.Context, userID, id string, from, to core.RecurringStatus) (core.RecurringExpense, error) {
	re, err := s.storage.GetRecurring(ctx, userID, id)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	if re.Status == to {
		return re, nil
	}
	if re.Status != from {
		return core.RecurringExpense{}, &core.ValidationError{
			Field: "status",
			Err:   fmt.Errorf("%w: %s to %s", ErrInvalidTransition, re.Status, to),
		}
	}
	re.Status = to
	re.UpdatedAt = s.now()
	if err := s.storage.SaveRecurring(ctx, re); err != nil {
		return core.RecurringExpense{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityRecurring, re.ID))
	return re, nil
}

// Due lists active expenses due and unpaid in the current period, most
// urgent first.
func (s *RecurringService) Due(ctx context.Context, userID string, now time.Time) ([]DueItem, error) {
	items, err := s.storage.ListRecurring(ctx, userID, core.StatusActive)
	if err != nil {
		return nil, err
	}
	due := []DueItem{}
	for _, re := range items {
		checker, err := GetDuenessChecker(re.RecurrenceType)
		if err != nil {
			slog.WarnContext(ctx, "Skipping recurring expense", "id", re.ID, "error", err)
			continue
		}
		if !checker.IsDue(re, now) {
			continue
		}
		due = append(due, DueItem{
			RecurringExpense: re,
			Period:           checker.Period(now),
			DueDate:          checker.DueDate(re, now),
		})
	}
	sort.SliceStable(due, func(i, j int) bool {
		if pi, pj := priorityRank(due[i].Priority), priorityRank(due[j].Priority); pi != pj {
			return pi > pj
		}
		return due[i].DueDate.Before(due[j].DueDate.Time)
	})
	return due, nil
}

func priorityRank(p core.Priority) int {
	switch p {
	case core.PriorityHigh:
		return 2
	case core.PriorityMedium:
		return 1
	}
	return 0
}

// Pay materializes the current period of an active expense on demand, even
// before its due day. Paying twice in a period fails with ErrAlreadyPaid.
func (s *RecurringService) Pay(ctx context.Context, userID, id string, now time.Time) (core.Transaction, error) {
	re, err := s.storage.GetRecurring(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if re.Status != core.StatusActive {
		return core.Transaction{}, &core.ValidationError{
			Field: "status",
			Err:   fmt.Errorf("%w: cannot pay a %s expense", ErrInvalidTransition, re.Status),
		}
	}
	checker, err := GetDuenessChecker(re.RecurrenceType)
	if err != nil {
		return core.Transaction{}, err
	}
	period := checker.Period(now)
	if re.LastPaidPeriod >= period {
		return core.Transaction{}, core.ErrAlreadyPaid
	}

	t, created, err := s.materialize(ctx, re, period, core.DateOf(now))
	if err != nil {
		return core.Transaction{}, err
	}
	if !created {
		return core.Transaction{}, core.ErrAlreadyPaid
	}
	return t, nil
}

// ProcessDue materializes every active auto-pay expense of the user that is
// due at now. Running it again in the same period creates nothing.
func (s *RecurringService) ProcessDue(ctx context.Context, userID string, now time.Time) (int, error) {
	items, err := s.storage.ListRecurring(ctx, userID, core.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("list active recurring expenses: %w", err)
	}

	processed := 0
	for _, re := range items {
		if !re.AutoPay {
			continue
		}
		checker, err := GetDuenessChecker(re.RecurrenceType)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check if expense is due", "id", re.ID, "error", err)
			continue
		}
		if !checker.IsDue(re, now) {
			continue
		}

		_, created, err := s.materialize(ctx, re, checker.Period(now), checker.DueDate(re, now))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring expense",
				"recurring_id", re.ID,
				"name", re.Name,
				"error", err)
			continue
		}
		if created {
			processed++
		}
	}
	return processed, nil
}

// ProcessAll runs ProcessDue for every user owning active recurring expenses.
func (s *RecurringService) ProcessAll(ctx context.Context, now time.Time) (int, error) {
	users, err := s.storage.RecurringUsers(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.ProcessDue(ctx, userID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to process recurring expenses", "user_id", userID, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}

func (s *RecurringService) materialize(ctx context.Context, re core.RecurringExpense, period string, date core.Date) (core.Transaction, bool, error) {
	now := s.now()
	description := re.Name
	if re.RecurrenceType == core.Installment {
		description = fmt.Sprintf("%s (%d/%d)", re.Name, re.InstallmentsPaid+1, re.Installments)
	}
	t := core.Transaction{
		ID:            core.NewID(),
		UserID:        re.UserID,
		Type:          core.Expense,
		Amount:        re.Amount,
		Category:      re.Category,
		Description:   description,
		Date:          date,
		PaymentMethod: re.PaymentMethod,
		CardID:        re.CardID,
		RecurringID:   re.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	re.LastPaidPeriod = period
	if re.RecurrenceType == core.Installment {
		re.InstallmentsPaid++
		if re.InstallmentsPaid >= re.Installments {
			re.Status = core.StatusCompleted
		}
	}
	re.UpdatedAt = now

	created, err := s.storage.MaterializeRecurring(ctx, re, t, period)
	if err != nil {
		return core.Transaction{}, false, err
	}
	if !created {
		slog.DebugContext(ctx, "Recurring period already materialized", "recurring_id", re.ID, "period", period)
		return core.Transaction{}, false, nil
	}
	s.summaries.Invalidate(re.UserID)
	s.notifier.notify(ctx,
		upserted(re.UserID, storage.EntityTransactions, t.ID),
		upserted(re.UserID, storage.EntityRecurring, re.ID))

	slog.InfoContext(ctx, "Created transaction from recurring expense",
		"recurring_id", re.ID,
		"period", period,
		"amount_cents", re.Amount.Cents,
		"recurrence", re.RecurrenceType)
	return t, true, nil
}
