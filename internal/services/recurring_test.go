package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
)

func monthlyExpense(name string, dueDay int, autoPay bool) core.RecurringExpense {
	return core.RecurringExpense{
		Name:           name,
		Amount:         core.Money{Cents: 12000},
		Category:       "Bills",
		DueDay:         dueDay,
		PaymentMethod:  core.PayBankSlip,
		RecurrenceType: core.Monthly,
		AutoPay:        autoPay,
	}
}

func TestRecurringService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	re, err := env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Internet", 10, true))
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, re.Status)
	assert.Equal(t, core.PriorityMedium, re.Priority)

	bad := monthlyExpense("Card bill", 10, true)
	bad.PaymentMethod = core.PayCreditCard
	_, err = env.svc.Recurring.Create(ctx, testUser, bad)
	assert.True(t, core.IsValidation(err))
}

func TestRecurringService_ProcessDueIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	re, err := env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Internet", 10, true))
	require.NoError(t, err)

	n, err := env.svc.Recurring.ProcessDue(ctx, testUser, env.now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.svc.Recurring.ProcessDue(ctx, testUser, env.now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	txs, err := env.svc.Transactions.List(ctx, testUser, core.Date{}, core.Date{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, re.ID, txs[0].RecurringID)
	assert.Equal(t, "2026-03-10", txs[0].Date.String())

	runs, err := env.repo.RecurringRunCount(ctx, re.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	got, err := env.svc.Recurring.Get(ctx, testUser, re.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03", got.LastPaidPeriod)
}

func TestRecurringService_StaleCopyCannotDoublePay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	re, err := env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Rent", 1, true))
	require.NoError(t, err)

	_, created, err := env.svc.Recurring.materialize(ctx, re, "2026-03", core.NewDate(2026, 3, 1))
	require.NoError(t, err)
	require.True(t, created)

	// re still has an empty LastPaidPeriod
	_, created, err = env.svc.Recurring.materialize(ctx, re, "2026-03", core.NewDate(2026, 3, 1))
	require.NoError(t, err)
	assert.False(t, created)

	txs, err := env.svc.Transactions.List(ctx, testUser, core.Date{}, core.Date{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestRecurringService_ProcessDueSkipsManualAndNotDue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Manual", 10, false))
	require.NoError(t, err)
	_, err = env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Later", 20, true))
	require.NoError(t, err)

	n, err := env.svc.Recurring.ProcessDue(ctx, testUser, env.now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	due, err := env.svc.Recurring.Due(ctx, testUser, env.now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Manual", due[0].Name)
	assert.Equal(t, "2026-03", due[0].Period)
}

func TestRecurringService_Installments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := monthlyExpense("Phone", 5, true)
	in.RecurrenceType = core.Installment
	in.Installments = 2
	re, err := env.svc.Recurring.Create(ctx, testUser, in)
	require.NoError(t, err)

	march := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	may := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)

	for _, now := range []time.Time{march, april, may} {
		_, err := env.svc.Recurring.ProcessDue(ctx, testUser, now)
		require.NoError(t, err)
	}

	txs, err := env.svc.Transactions.List(ctx, testUser, core.Date{}, core.Date{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	// newest first
	assert.Equal(t, "Phone (2/2)", txs[0].Description)
	assert.Equal(t, "Phone (1/2)", txs[1].Description)

	got, err := env.svc.Recurring.Get(ctx, testUser, re.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.InstallmentsPaid)
	assert.Equal(t, core.StatusCompleted, got.Status)
}

func TestRecurringService_Pay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	re, err := env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Gym", 28, false))
	require.NoError(t, err)

	tx, err := env.svc.Recurring.Pay(ctx, testUser, re.ID, env.now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", tx.Date.String())

	_, err = env.svc.Recurring.Pay(ctx, testUser, re.ID, env.now)
	assert.ErrorIs(t, err, core.ErrAlreadyPaid)

	due, err := env.svc.Recurring.Due(ctx, testUser, time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestRecurringService_PauseResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	re, err := env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Streaming", 1, true))
	require.NoError(t, err)

	paused, err := env.svc.Recurring.Pause(ctx, testUser, re.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPaused, paused.Status)

	n, err := env.svc.Recurring.ProcessDue(ctx, testUser, env.now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = env.svc.Recurring.Pay(ctx, testUser, re.ID, env.now)
	assert.True(t, core.IsValidation(err))

	resumed, err := env.svc.Recurring.Resume(ctx, testUser, re.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, resumed.Status)

	// resuming an active expense is a no-op
	_, err = env.svc.Recurring.Resume(ctx, testUser, re.ID)
	assert.NoError(t, err)
}

func TestRecurringService_CompletedCannotResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := monthlyExpense("Sofa", 1, true)
	in.RecurrenceType = core.Installment
	in.Installments = 1
	re, err := env.svc.Recurring.Create(ctx, testUser, in)
	require.NoError(t, err)
	_, err = env.svc.Recurring.ProcessDue(ctx, testUser, env.now)
	require.NoError(t, err)

	_, err = env.svc.Recurring.Pause(ctx, testUser, re.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.svc.Recurring.Resume(ctx, testUser, re.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRecurringService_DueOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	low := monthlyExpense("Low", 1, false)
	low.Priority = core.PriorityLow
	high := monthlyExpense("High", 12, false)
	high.Priority = core.PriorityHigh
	early := monthlyExpense("Early", 2, false)
	early.Priority = core.PriorityHigh
	for _, re := range []core.RecurringExpense{low, high, early} {
		_, err := env.svc.Recurring.Create(ctx, testUser, re)
		require.NoError(t, err)
	}

	due, err := env.svc.Recurring.Due(ctx, testUser, env.now)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "Early", due[0].Name)
	assert.Equal(t, "High", due[1].Name)
	assert.Equal(t, "Low", due[2].Name)
}

func TestRecurringService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	re, err := env.svc.Recurring.Create(ctx, testUser, monthlyExpense("Water", 10, true))
	require.NoError(t, err)

	in := re
	in.Name = "Water bill"
	in.Amount = core.Money{Cents: 5000}
	updated, err := env.svc.Recurring.Update(ctx, testUser, re.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Water bill", updated.Name)
	assert.Equal(t, int64(5000), updated.Amount.Cents)

	active, err := env.svc.Recurring.List(ctx, testUser, core.StatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, env.svc.Recurring.Delete(ctx, testUser, re.ID))
	_, err = env.svc.Recurring.Get(ctx, testUser, re.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRecurringProcessor_ProcessAllUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Recurring.Create(ctx, "alice", monthlyExpense("Rent", 1, true))
	require.NoError(t, err)
	_, err = env.svc.Recurring.Create(ctx, "bob", monthlyExpense("Rent", 1, true))
	require.NoError(t, err)

	p := NewRecurringProcessor(env.svc.Recurring)
	n, err := p.ProcessDueExpenses(ctx, env.now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = p.ProcessDueExpenses(ctx, env.now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecurringProcessor_RunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	p := NewRecurringProcessor(env.svc.Recurring)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
