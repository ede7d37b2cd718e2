package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Type   TransactionType `json:"type"`
	Amount Money           `json:"amount"`
}

// Summary holds income and expense totals; Total is Income minus Expense.
type Summary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Total   Money `json:"total"`
}

// MonthSummary is a compact summary for a specific year+month.
type MonthSummary struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
	Summary
	ByCategory []CategoryAmount `json:"by_category"`
}

// AnnualSummary aggregates twelve month summaries.
type AnnualSummary struct {
	Year   int            `json:"year"`
	Months []MonthSummary `json:"months"`
	Summary
}

// Summarize adds up income and expense amounts. The result does not depend
// on the order of txs.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income.Cents += t.Amount.Abs().Cents
		case Expense:
			s.Expense.Cents += t.Amount.Abs().Cents
		}
	}
	s.Total = s.Income.Sub(s.Expense)
	return s
}

// ByCategory groups amounts per (type, category), largest first.
func ByCategory(txs []Transaction) []CategoryAmount {
	type key struct {
		t TransactionType
		n string
	}
	sums := map[key]int64{}
	for _, t := range txs {
		sums[key{t.Type, t.Category}] += t.Amount.Abs().Cents
	}
	out := make([]CategoryAmount, 0, len(sums))
	for k, v := range sums {
		out = append(out, CategoryAmount{Name: k.n, Type: k.t, Amount: Money{Cents: v}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SummarizeMonth builds the summary of txs for year and month. Transactions
// outside that month are ignored.
func SummarizeMonth(year, month int, txs []Transaction) MonthSummary {
	in := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.Year() == year && t.Date.Month() == month {
			in = append(in, t)
		}
	}
	return MonthSummary{
		Year:       year,
		Month:      month,
		Summary:    Summarize(in),
		ByCategory: ByCategory(in),
	}
}

// SummarizeYear builds the annual summary of txs for year.
func SummarizeYear(year int, txs []Transaction) AnnualSummary {
	a := AnnualSummary{Year: year, Months: make([]MonthSummary, 12)}
	for m := 1; m <= 12; m++ {
		ms := SummarizeMonth(year, m, txs)
		a.Months[m-1] = ms
		a.Income = a.Income.Add(ms.Income)
		a.Expense = a.Expense.Add(ms.Expense)
	}
	a.Total = a.Income.Sub(a.Expense)
	return a
}
