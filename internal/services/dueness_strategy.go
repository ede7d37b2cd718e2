// This file implements the Strategy Pattern for recurring expense dueness checking.
// Each recurrence type (monthly, yearly, installment) has its own strategy
// that encapsulates the logic for determining if an expense is due.

package services

import (
	"fmt"
	"time"

	"finboard/internal/core"
)

// DuenessChecker is the strategy interface for checking if a recurring expense is due.
type DuenessChecker interface {
	// Period returns the key of the billing period containing now.
	Period(now time.Time) string
	// DueDate returns the date the expense falls due in the period containing now.
	DueDate(re core.RecurringExpense, now time.Time) core.Date
	// IsDue returns true if the expense has reached its due date in the
	// current period and that period has not been paid yet.
	IsDue(re core.RecurringExpense, now time.Time) bool
}

// MonthlyChecker implements DuenessChecker for monthly recurring expenses.
type MonthlyChecker struct{}

func (MonthlyChecker) Period(now time.Time) string {
	return now.Format("2006-01")
}

func (MonthlyChecker) DueDate(re core.RecurringExpense, now time.Time) core.Date {
	y, m := now.Year(), int(now.Month())
	return core.NewDate(y, m, core.ClampDay(y, m, re.DueDay))
}

// IsDue returns true once the (clamped) due day is reached in a month not
// yet paid. Missed days are caught up later in the same month.
func (c MonthlyChecker) IsDue(re core.RecurringExpense, now time.Time) bool {
	if re.LastPaidPeriod >= c.Period(now) {
		return false
	}
	return now.Day() >= c.DueDate(re, now).Day()
}

// YearlyChecker implements DuenessChecker for yearly recurring expenses.
type YearlyChecker struct{}

func (YearlyChecker) Period(now time.Time) string {
	return now.Format("2006")
}

func (YearlyChecker) DueDate(re core.RecurringExpense, now time.Time) core.Date {
	y := now.Year()
	return core.NewDate(y, re.DueMonth, core.ClampDay(y, re.DueMonth, re.DueDay))
}

// IsDue returns true if we're in an unpaid year and have reached the target month and day.
func (c YearlyChecker) IsDue(re core.RecurringExpense, now time.Time) bool {
	if re.LastPaidPeriod >= c.Period(now) {
		return false
	}
	month := int(now.Month())
	if month < re.DueMonth {
		return false
	}
	if month == re.DueMonth {
		return now.Day() >= c.DueDate(re, now).Day()
	}
	// past the target month
	return true
}

// InstallmentChecker is monthly until every installment is paid.
type InstallmentChecker struct {
	MonthlyChecker
}

func (c InstallmentChecker) IsDue(re core.RecurringExpense, now time.Time) bool {
	if re.Installments > 0 && re.InstallmentsPaid >= re.Installments {
		return false
	}
	return c.MonthlyChecker.IsDue(re, now)
}

// duenessStrategies maps recurrence types to their corresponding checkers.
var duenessStrategies = map[core.RecurrenceType]DuenessChecker{
	core.Monthly:     MonthlyChecker{},
	core.Yearly:      YearlyChecker{},
	core.Installment: InstallmentChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for a recurrence type.
// Returns an error if the recurrence type is not supported.
func GetDuenessChecker(recurrence core.RecurrenceType) (DuenessChecker, error) {
	checker, ok := duenessStrategies[recurrence]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence type: %s", recurrence)
	}
	return checker, nil
}
