package dayoff

import (
	"fmt"
	"time"

	"finboard/internal/core"
)

// Record is the flat representation of a Rule used on the wire and in storage.
type Record struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Kind         Kind      `json:"type"`
	Description  string    `json:"description"`
	DayOfWeek    *int      `json:"day_of_week,omitempty"`
	IntervalDays int       `json:"interval_days,omitempty"`
	StartDate    core.Date `json:"start_date,omitempty"`
	Date         core.Date `json:"date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToRecord flattens r.
func ToRecord(r Rule) Record {
	b := r.Base()
	rec := Record{
		ID:          b.ID,
		UserID:      b.UserID,
		Kind:        r.Kind(),
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	switch v := r.(type) {
	case FixedRule:
		dow := int(v.DayOfWeek)
		rec.DayOfWeek = &dow
	case RegularRule:
		rec.IntervalDays = v.IntervalDays
		rec.StartDate = v.StartDate
	case ExtraRule:
		rec.Date = v.Date
	}
	return rec
}

// Rule rebuilds the typed variant from the record.
func (rec Record) Rule() (Rule, error) {
	base := RuleBase{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	var r Rule
	switch rec.Kind {
	case KindFixed:
		if rec.DayOfWeek == nil {
			return nil, fmt.Errorf("%w: fixed rule needs day_of_week", ErrInvalidRule)
		}
		r = FixedRule{RuleBase: base, DayOfWeek: time.Weekday(*rec.DayOfWeek)}
	case KindRegular:
		r = RegularRule{RuleBase: base, IntervalDays: rec.IntervalDays, StartDate: rec.StartDate}
	case KindExtra:
		r = ExtraRule{RuleBase: base, Date: rec.Date}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRule, rec.Kind)
	}
	if err := Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}
