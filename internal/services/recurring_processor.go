package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RecurringProcessor runs recurring expense processing for all users,
// once or on a schedule.
type RecurringProcessor struct {
	recurring *RecurringService
	now       func() time.Time
}

func NewRecurringProcessor(recurring *RecurringService) *RecurringProcessor {
	return &RecurringProcessor{recurring: recurring, now: time.Now}
}

// ProcessDueExpenses processes all recurring expenses that are due at now.
func (p *RecurringProcessor) ProcessDueExpenses(ctx context.Context, now time.Time) (int, error) {
	if p.recurring == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	slog.InfoContext(ctx, "Processing recurring expenses", "processing_date", now.Format("2006-01-02"))

	n, err := p.recurring.ProcessAll(ctx, now)
	if err != nil {
		return n, fmt.Errorf("process recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Recurring expense processing complete", "processed", n)
	return n, nil
}

// Run processes immediately and then every interval until ctx is done.
func (p *RecurringProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessDueExpenses(ctx, p.now()); err != nil {
			slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
