package dayoff

import "finboard/internal/core"

// Day is one cell of a month calendar.
type Day struct {
	Date     core.Date      `json:"date"`
	Weekday  string         `json:"weekday"`
	Rules    Result         `json:"rules"`
	Baseline BaselineResult `json:"baseline"`
}

// Month evaluates every day of the given month against rules and the
// default baseline schedule.
func Month(year, month int, rules []Rule) []Day {
	return DefaultBaseline.Month(year, month, rules)
}

// Month evaluates every day of the given month against rules and b.
func (b Baseline) Month(year, month int, rules []Rule) []Day {
	ordered := Order(rules)
	n := core.DaysIn(year, month)
	days := make([]Day, 0, n)
	for i := 1; i <= n; i++ {
		d := core.NewDate(year, month, i)
		days = append(days, Day{
			Date:     d,
			Weekday:  d.Weekday().String(),
			Rules:    Evaluate(d, ordered),
			Baseline: b.Evaluate(d),
		})
	}
	return days
}

// CountDaysOff returns how many days in days are off under the user rules.
func CountDaysOff(days []Day) int {
	n := 0
	for _, d := range days {
		if d.Rules.IsDayOff {
			n++
		}
	}
	return n
}
