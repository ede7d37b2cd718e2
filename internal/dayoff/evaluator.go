package dayoff

import "finboard/internal/core"

// Result describes the outcome of evaluating a date.
type Result struct {
	IsDayOff    bool   `json:"is_day_off"`
	Type        Kind   `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	RuleID      string `json:"rule_id,omitempty"`
}

// Evaluate returns the first rule in rules that matches d. An empty rule set
// never yields a day off.
func Evaluate(d core.Date, rules []Rule) Result {
	for _, r := range rules {
		if r == nil || !r.Matches(d) {
			continue
		}
		b := r.Base()
		return Result{
			IsDayOff:    true,
			Type:        r.Kind(),
			Description: b.Description,
			RuleID:      b.ID,
		}
	}
	return Result{}
}

// Order sorts rules into evaluation order: fixed, then regular, then extra.
// Rules of the same kind keep their relative order. Nil rules are dropped.
func Order(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, k := range []Kind{KindFixed, KindRegular, KindExtra} {
		for _, r := range rules {
			if r != nil && r.Kind() == k {
				out = append(out, r)
			}
		}
	}
	return out
}
