package dayoff

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
)

func d(y, m, day int) core.Date { return core.NewDate(y, m, day) }

func TestEvaluate_FixedRule(t *testing.T) {
	rules := []Rule{FixedRule{RuleBase: RuleBase{ID: "r1", Description: "gym"}, DayOfWeek: time.Wednesday}}

	// 2025-12-10 is a Wednesday
	res := Evaluate(d(2025, 12, 10), rules)
	assert.True(t, res.IsDayOff)
	assert.Equal(t, KindFixed, res.Type)
	assert.Equal(t, "gym", res.Description)
	assert.Equal(t, "r1", res.RuleID)

	assert.False(t, Evaluate(d(2025, 12, 11), rules).IsDayOff)
}

func TestEvaluate_RegularRule(t *testing.T) {
	rules := []Rule{RegularRule{IntervalDays: 21, StartDate: d(2025, 12, 7)}}

	tests := []struct {
		name string
		date core.Date
		want bool
	}{
		{"start date", d(2025, 12, 7), true},
		{"one interval later", d(2025, 12, 28), true},
		{"mid interval", d(2025, 12, 20), false},
		{"before start", d(2025, 11, 16), false},
		{"five intervals later", d(2026, 4, 12), true},
		{"week before", d(2026, 4, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.date, rules).IsDayOff)
		})
	}
}

func TestRegularRule_Property(t *testing.T) {
	start := d(2025, 12, 7)
	for _, interval := range []int{1, 2, 7, 13, 21} {
		r := RegularRule{IntervalDays: interval, StartDate: start}
		for off := -30; off < 200; off++ {
			date := start.AddDays(off)
			want := off >= 0 && off%interval == 0
			require.Equal(t, want, r.Matches(date), "interval=%d offset=%d", interval, off)
		}
	}
}

func TestEvaluate_ExtraRule(t *testing.T) {
	rules := []Rule{ExtraRule{RuleBase: RuleBase{ID: "x"}, Date: d(2026, 1, 2)}}
	assert.True(t, Evaluate(d(2026, 1, 2), rules).IsDayOff)
	assert.False(t, Evaluate(d(2025, 1, 2), rules).IsDayOff)
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		FixedRule{RuleBase: RuleBase{ID: "fixed"}, DayOfWeek: time.Friday},
		ExtraRule{RuleBase: RuleBase{ID: "extra"}, Date: d(2026, 1, 2)},
	}
	// 2026-01-02 is a Friday, both rules match
	res := Evaluate(d(2026, 1, 2), rules)
	assert.Equal(t, "fixed", res.RuleID)
}

func TestEvaluate_NoRules(t *testing.T) {
	assert.Equal(t, Result{}, Evaluate(d(2026, 1, 2), nil))
}

func TestOrder(t *testing.T) {
	rules := []Rule{
		ExtraRule{RuleBase: RuleBase{ID: "e"}},
		RegularRule{RuleBase: RuleBase{ID: "r"}},
		FixedRule{RuleBase: RuleBase{ID: "f1"}},
		FixedRule{RuleBase: RuleBase{ID: "f2"}},
	}
	var ids []string
	for _, r := range Order(rules) {
		ids = append(ids, r.Base().ID)
	}
	assert.Equal(t, []string{"f1", "f2", "r", "e"}, ids)
}

func TestOrder_SkipsNilRules(t *testing.T) {
	rules := []Rule{nil, ExtraRule{RuleBase: RuleBase{ID: "e"}, Date: d(2026, 1, 2)}, nil}
	var ordered []Rule
	require.NotPanics(t, func() { ordered = Order(rules) })
	require.Len(t, ordered, 1)
	assert.Equal(t, "e", ordered[0].Base().ID)
	assert.Equal(t, "e", Evaluate(d(2026, 1, 2), ordered).RuleID)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(FixedRule{DayOfWeek: time.Saturday}))
	assert.ErrorIs(t, Validate(FixedRule{DayOfWeek: 7}), ErrInvalidRule)
	assert.ErrorIs(t, Validate(RegularRule{IntervalDays: 0, StartDate: d(2025, 1, 1)}), ErrInvalidRule)
	assert.ErrorIs(t, Validate(RegularRule{IntervalDays: 3}), ErrInvalidRule)
	assert.ErrorIs(t, Validate(ExtraRule{}), ErrInvalidRule)
}

func TestRecord_RoundTrip(t *testing.T) {
	rules := []Rule{
		FixedRule{RuleBase: RuleBase{ID: "a", UserID: "u"}, DayOfWeek: time.Sunday},
		RegularRule{RuleBase: RuleBase{ID: "b", UserID: "u"}, IntervalDays: 21, StartDate: d(2025, 12, 7)},
		ExtraRule{RuleBase: RuleBase{ID: "c", UserID: "u"}, Date: d(2026, 4, 25)},
	}
	for _, r := range rules {
		back, err := ToRecord(r).Rule()
		require.NoError(t, err)
		assert.Equal(t, r, back)
	}
}

func TestRecord_FromJSON(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"type":"fixed","day_of_week":0,"description":"sunday"}`), &rec))
	r, err := rec.Rule()
	require.NoError(t, err)
	fixed, ok := r.(FixedRule)
	require.True(t, ok)
	assert.Equal(t, time.Sunday, fixed.DayOfWeek)

	_, err = Record{Kind: KindFixed}.Rule()
	assert.ErrorIs(t, err, ErrInvalidRule)
	_, err = Record{Kind: "weekly"}.Rule()
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestBaseline(t *testing.T) {
	b := DefaultBaseline
	assert.True(t, b.Evaluate(d(2025, 12, 7)).IsDayOff)
	assert.True(t, b.Evaluate(d(2025, 12, 28)).IsDayOff)
	assert.False(t, b.Evaluate(d(2025, 12, 14)).IsDayOff)
	assert.False(t, b.Evaluate(d(2025, 11, 16)).IsDayOff, "before the anchor")

	wed := b.Evaluate(d(2025, 12, 10))
	assert.False(t, wed.IsDayOff)
	assert.Equal(t, FlagWednesday, wed.Flag)
}

func TestMonth(t *testing.T) {
	rules := []Rule{ExtraRule{RuleBase: RuleBase{ID: "xmas"}, Date: d(2025, 12, 25)}}
	days := Month(2025, 12, rules)
	require.Len(t, days, 31)

	assert.Equal(t, "2025-12-01", days[0].Date.String())
	assert.True(t, days[24].Rules.IsDayOff)
	assert.Equal(t, 1, CountDaysOff(days))

	// baseline stays independent of user rules
	assert.True(t, days[6].Baseline.IsDayOff)
	assert.False(t, days[6].Rules.IsDayOff)
	assert.True(t, days[27].Baseline.IsDayOff)

	assert.Len(t, Month(2024, 2, nil), 29)
}
