// Package dayoff decides whether a calendar date is a non-working day.
//
// Two independent engines live here. The user-configurable one evaluates
// Fixed, Regular and Extra rules in order, first match wins. The baseline
// one encodes the legacy global schedule (a Sunday every 21 days, Wednesdays
// flagged) and is reported alongside, never merged.
package dayoff

import (
	"errors"
	"fmt"
	"time"

	"finboard/internal/core"
)

// Kind names a rule variant.
type Kind string

const (
	KindFixed   Kind = "fixed"
	KindRegular Kind = "regular"
	KindExtra   Kind = "extra"
)

// Rule is a sealed sum type: FixedRule, RegularRule or ExtraRule.
type Rule interface {
	Kind() Kind
	Base() RuleBase
	Matches(d core.Date) bool
	isRule()
}

// RuleBase holds the fields shared by every variant.
type RuleBase struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FixedRule matches a weekday every week.
type FixedRule struct {
	RuleBase
	DayOfWeek time.Weekday
}

// RegularRule matches every IntervalDays days counted from StartDate.
type RegularRule struct {
	RuleBase
	IntervalDays int
	StartDate    core.Date
}

// ExtraRule matches a single explicit date.
type ExtraRule struct {
	RuleBase
	Date core.Date
}

func (FixedRule) Kind() Kind   { return KindFixed }
func (RegularRule) Kind() Kind { return KindRegular }
func (ExtraRule) Kind() Kind   { return KindExtra }

func (r FixedRule) Base() RuleBase   { return r.RuleBase }
func (r RegularRule) Base() RuleBase { return r.RuleBase }
func (r ExtraRule) Base() RuleBase   { return r.RuleBase }

func (FixedRule) isRule()   {}
func (RegularRule) isRule() {}
func (ExtraRule) isRule()   {}

func (r FixedRule) Matches(d core.Date) bool {
	return d.Weekday() == r.DayOfWeek
}

func (r RegularRule) Matches(d core.Date) bool {
	if r.IntervalDays <= 0 {
		return false
	}
	elapsed := d.DaysSince(r.StartDate)
	return elapsed >= 0 && elapsed%r.IntervalDays == 0
}

func (r ExtraRule) Matches(d core.Date) bool {
	return d.SameDay(r.Date)
}

var ErrInvalidRule = errors.New("invalid day-off rule")

// Validate checks the variant-specific fields of r.
func Validate(r Rule) error {
	switch v := r.(type) {
	case FixedRule:
		if v.DayOfWeek < time.Sunday || v.DayOfWeek > time.Saturday {
			return fmt.Errorf("%w: day of week must be 0..6", ErrInvalidRule)
		}
	case RegularRule:
		if v.IntervalDays < 1 {
			return fmt.Errorf("%w: interval must be at least 1 day", ErrInvalidRule)
		}
		if v.StartDate.IsZero() {
			return fmt.Errorf("%w: start date is required", ErrInvalidRule)
		}
	case ExtraRule:
		if v.Date.IsZero() {
			return fmt.Errorf("%w: date is required", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unknown variant %T", ErrInvalidRule, r)
	}
	return nil
}
