package dayoff

import (
	"time"

	"finboard/internal/core"
)

// Baseline is the legacy global schedule: Sundays are days off every
// CadenceDays from Anchor, and Wednesdays are flagged.
type Baseline struct {
	Anchor      core.Date
	CadenceDays int
}

// DefaultBaseline is the schedule shipped with the application.
var DefaultBaseline = Baseline{
	Anchor:      core.NewDate(2025, 12, 7),
	CadenceDays: 21,
}

// FlagWednesday marks the mid-week day highlighted by the baseline schedule.
const FlagWednesday = "wednesday"

// BaselineResult is the baseline engine's view of a date.
type BaselineResult struct {
	IsDayOff bool   `json:"is_day_off"`
	Flag     string `json:"flag,omitempty"`
}

// Evaluate applies the baseline schedule to d.
func (b Baseline) Evaluate(d core.Date) BaselineResult {
	var res BaselineResult
	switch d.Weekday() {
	case time.Sunday:
		if b.CadenceDays > 0 {
			elapsed := d.DaysSince(b.Anchor)
			res.IsDayOff = elapsed >= 0 && elapsed%b.CadenceDays == 0
		}
	case time.Wednesday:
		res.Flag = FlagWednesday
	}
	return res
}
