package google

import (
	"fmt"
	"strconv"
	"strings"

	"finboard/internal/core"
)

var monthHeaders = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

const (
	rowIncome  = "Income"
	rowExpense = "Expense"
	rowTotal   = "Total"
)

// buildDashboard lays out an annual summary as a values matrix: one row per
// (type, category) with a column per month, followed by the income, expense
// and net rows.
func buildDashboard(a core.AnnualSummary) [][]any {
	header := []any{"Type", "Category"}
	for _, m := range monthHeaders {
		header = append(header, m)
	}
	header = append(header, "Year")

	type key struct {
		t core.TransactionType
		n string
	}
	var order []key
	cells := map[key][]int64{}
	for _, ms := range a.Months {
		if ms.Month < 1 || ms.Month > 12 {
			continue
		}
		for _, ca := range ms.ByCategory {
			k := key{ca.Type, ca.Name}
			if _, ok := cells[k]; !ok {
				cells[k] = make([]int64, 12)
				order = append(order, k)
			}
			cells[k][ms.Month-1] += ca.Amount.Cents
		}
	}

	rows := [][]any{header}
	for _, k := range order {
		rows = append(rows, moneyRow(string(k.t), k.n, cells[k]))
	}
	income := make([]int64, 12)
	expense := make([]int64, 12)
	total := make([]int64, 12)
	for _, ms := range a.Months {
		if ms.Month < 1 || ms.Month > 12 {
			continue
		}
		income[ms.Month-1] = ms.Income.Cents
		expense[ms.Month-1] = ms.Expense.Cents
		total[ms.Month-1] = ms.Total.Cents
	}
	rows = append(rows,
		moneyRow("", rowIncome, income),
		moneyRow("", rowExpense, expense),
		moneyRow("", rowTotal, total),
	)
	return rows
}

func moneyRow(typ, name string, cents []int64) []any {
	row := []any{typ, name}
	var sum int64
	for _, c := range cents {
		row = append(row, core.Money{Cents: c}.Float())
		sum += c
	}
	return append(row, core.Money{Cents: sum}.Float())
}

// buildLedger lists transactions oldest first.
func buildLedger(txs []core.Transaction) [][]any {
	rows := [][]any{{"Date", "Type", "Category", "Description", "Amount", "Payment"}}
	for i := len(txs) - 1; i >= 0; i-- {
		t := txs[i]
		rows = append(rows, []any{t.Date.String(), string(t.Type), t.Category, t.Description, t.Amount.Float(), string(t.PaymentMethod)})
	}
	return rows
}

// parseDashboard converts a values matrix written by buildDashboard back
// into an annual summary.
func parseDashboard(values [][]any, year int) (core.AnnualSummary, error) {
	a := core.AnnualSummary{Year: year, Months: make([]core.MonthSummary, 12)}
	for m := range a.Months {
		a.Months[m] = core.MonthSummary{Year: year, Month: m + 1}
	}
	if len(values) == 0 {
		return a, nil
	}
	headers := toStrings(values[0])
	colType := indexOf(headers, "Type")
	colName := indexOf(headers, "Category")
	cols := make([]int, 12)
	var missing []string
	for i, h := range monthHeaders {
		cols[i] = indexOf(headers, h)
		if cols[i] == -1 {
			missing = append(missing, h)
		}
	}
	if colType == -1 {
		missing = append(missing, "Type")
	}
	if colName == -1 {
		missing = append(missing, "Category")
	}
	if len(missing) > 0 {
		return core.AnnualSummary{}, fmt.Errorf("unexpected dashboard header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	for _, raw := range values[1:] {
		row := toStrings(raw)
		typ := core.TransactionType(safeGet(row, colType))
		name := safeGet(row, colName)
		if name == "" {
			continue
		}
		for m, col := range cols {
			cents, ok := parseAmountToCents(safeGet(row, col))
			if !ok {
				continue
			}
			ms := &a.Months[m]
			switch {
			case typ == "" && name == rowIncome:
				ms.Income = core.Money{Cents: cents}
			case typ == "" && name == rowExpense:
				ms.Expense = core.Money{Cents: cents}
			case typ == "" && name == rowTotal:
				ms.Total = core.Money{Cents: cents}
			case typ.Valid() && cents != 0:
				ms.ByCategory = append(ms.ByCategory, core.CategoryAmount{Name: name, Type: typ, Amount: core.Money{Cents: cents}})
			}
		}
	}
	for _, ms := range a.Months {
		a.Income = a.Income.Add(ms.Income)
		a.Expense = a.Expense.Add(ms.Expense)
	}
	a.Total = a.Income.Sub(a.Expense)
	return a, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseAmountToCents accepts the number formats Sheets hands back, with a
// dot or comma separator and an optional minus sign.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		return -int64(-f*100.0 + 0.5), true
	}
	return int64(f*100.0 + 0.5), true
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
