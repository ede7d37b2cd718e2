package storage

import (
	"database/sql"
	"fmt"
	"time"

	"finboard/internal/core"
	"finboard/internal/dayoff"
)

// timestampLayout has fixed-width fractional seconds so stored timestamps
// sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDate(d core.Date) string {
	return d.String()
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return d, nil
}

func fromTransaction(t core.Transaction) Transaction {
	return Transaction{
		ID:            t.ID,
		UserID:        t.UserID,
		Type:          string(t.Type),
		AmountCents:   t.Amount.Cents,
		Category:      t.Category,
		Description:   t.Description,
		Date:          formatDate(t.Date),
		PaymentMethod: string(t.PaymentMethod),
		CardID:        t.CardID,
		RecurringID:   t.RecurringID,
		CreatedAt:     formatTime(t.CreatedAt),
		UpdatedAt:     formatTime(t.UpdatedAt),
	}
}

func (t Transaction) toCore() (core.Transaction, error) {
	date, err := parseDate(t.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:            t.ID,
		UserID:        t.UserID,
		Type:          core.TransactionType(t.Type),
		Amount:        core.Money{Cents: t.AmountCents},
		Category:      t.Category,
		Description:   t.Description,
		Date:          date,
		PaymentMethod: core.PaymentMethod(t.PaymentMethod),
		CardID:        t.CardID,
		RecurringID:   t.RecurringID,
		CreatedAt:     parseTime(t.CreatedAt),
		UpdatedAt:     parseTime(t.UpdatedAt),
	}, nil
}

func transactionsToCore(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func fromGoal(g core.Goal) Goal {
	return Goal{
		ID:          g.ID,
		UserID:      g.UserID,
		Name:        g.Name,
		TargetCents: g.Target.Cents,
		SavedCents:  g.Saved.Cents,
		CreatedAt:   formatTime(g.CreatedAt),
		UpdatedAt:   formatTime(g.UpdatedAt),
	}
}

func (g Goal) toCore() core.Goal {
	return core.Goal{
		ID:        g.ID,
		UserID:    g.UserID,
		Name:      g.Name,
		Target:    core.Money{Cents: g.TargetCents},
		Saved:     core.Money{Cents: g.SavedCents},
		CreatedAt: parseTime(g.CreatedAt),
		UpdatedAt: parseTime(g.UpdatedAt),
	}
}

func fromCategory(c core.Category) Category {
	return Category{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		IsDefault: c.IsDefault,
		SortOrder: int64(c.Order),
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func (c Category) toCore() core.Category {
	return core.Category{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Type:      core.TransactionType(c.Type),
		Color:     c.Color,
		IsDefault: c.IsDefault,
		Order:     int(c.SortOrder),
		CreatedAt: parseTime(c.CreatedAt),
		UpdatedAt: parseTime(c.UpdatedAt),
	}
}

func fromCard(c core.Card) Card {
	row := Card{
		ID:         c.ID,
		UserID:     c.UserID,
		Name:       c.Name,
		LastDigits: c.LastDigits,
		Brand:      c.Brand,
		DueDay:     int64(c.DueDay),
		ClosingDay: int64(c.ClosingDay),
		IsActive:   c.IsActive,
		Color:      c.Color,
		CreatedAt:  formatTime(c.CreatedAt),
		UpdatedAt:  formatTime(c.UpdatedAt),
	}
	if c.Limit != nil {
		row.LimitCents = sql.NullInt64{Int64: c.Limit.Cents, Valid: true}
	}
	return row
}

func (c Card) toCore() core.Card {
	card := core.Card{
		ID:         c.ID,
		UserID:     c.UserID,
		Name:       c.Name,
		LastDigits: c.LastDigits,
		Brand:      c.Brand,
		DueDay:     int(c.DueDay),
		ClosingDay: int(c.ClosingDay),
		IsActive:   c.IsActive,
		Color:      c.Color,
		CreatedAt:  parseTime(c.CreatedAt),
		UpdatedAt:  parseTime(c.UpdatedAt),
	}
	if c.LimitCents.Valid {
		card.Limit = &core.Money{Cents: c.LimitCents.Int64}
	}
	return card
}

func fromRecurring(re core.RecurringExpense) RecurringExpense {
	return RecurringExpense{
		ID:               re.ID,
		UserID:           re.UserID,
		Name:             re.Name,
		AmountCents:      re.Amount.Cents,
		Category:         re.Category,
		DueDay:           int64(re.DueDay),
		DueMonth:         int64(re.DueMonth),
		PaymentMethod:    string(re.PaymentMethod),
		CardID:           re.CardID,
		RecurrenceType:   string(re.RecurrenceType),
		Installments:     int64(re.Installments),
		InstallmentsPaid: int64(re.InstallmentsPaid),
		Priority:         string(re.Priority),
		AutoPay:          re.AutoPay,
		Status:           string(re.Status),
		LastPaidPeriod:   re.LastPaidPeriod,
		CreatedAt:        formatTime(re.CreatedAt),
		UpdatedAt:        formatTime(re.UpdatedAt),
	}
}

func (re RecurringExpense) toCore() core.RecurringExpense {
	return core.RecurringExpense{
		ID:               re.ID,
		UserID:           re.UserID,
		Name:             re.Name,
		Amount:           core.Money{Cents: re.AmountCents},
		Category:         re.Category,
		DueDay:           int(re.DueDay),
		DueMonth:         int(re.DueMonth),
		PaymentMethod:    core.PaymentMethod(re.PaymentMethod),
		CardID:           re.CardID,
		RecurrenceType:   core.RecurrenceType(re.RecurrenceType),
		Installments:     int(re.Installments),
		InstallmentsPaid: int(re.InstallmentsPaid),
		Priority:         core.Priority(re.Priority),
		AutoPay:          re.AutoPay,
		Status:           core.RecurringStatus(re.Status),
		LastPaidPeriod:   re.LastPaidPeriod,
		CreatedAt:        parseTime(re.CreatedAt),
		UpdatedAt:        parseTime(re.UpdatedAt),
	}
}

func fromDayoffRecord(rec dayoff.Record) DayoffRule {
	row := DayoffRule{
		ID:           rec.ID,
		UserID:       rec.UserID,
		Kind:         string(rec.Kind),
		Description:  rec.Description,
		IntervalDays: int64(rec.IntervalDays),
		StartDate:    formatDate(rec.StartDate),
		Date:         formatDate(rec.Date),
		CreatedAt:    formatTime(rec.CreatedAt),
		UpdatedAt:    formatTime(rec.UpdatedAt),
	}
	if rec.DayOfWeek != nil {
		row.DayOfWeek = sql.NullInt64{Int64: int64(*rec.DayOfWeek), Valid: true}
	}
	return row
}

func (r DayoffRule) toRecord() (dayoff.Record, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return dayoff.Record{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return dayoff.Record{}, err
	}
	rec := dayoff.Record{
		ID:           r.ID,
		UserID:       r.UserID,
		Kind:         dayoff.Kind(r.Kind),
		Description:  r.Description,
		IntervalDays: int(r.IntervalDays),
		StartDate:    start,
		Date:         date,
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
	if r.DayOfWeek.Valid {
		dow := int(r.DayOfWeek.Int64)
		rec.DayOfWeek = &dow
	}
	return rec, nil
}
