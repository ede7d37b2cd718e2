package services

import (
	"context"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"
)

// CardService manages credit cards and their monthly statements.
type CardService struct {
	storage  *storage.SQLiteRepository
	notifier notifier
	now      func() time.Time
}

func NewCardService(storage *storage.SQLiteRepository, n notifier, now func() time.Time) *CardService {
	return &CardService{storage: storage, notifier: n, now: now}
}

// Statement is the bill of a card due in a given month.
type Statement struct {
	CardID       string             `json:"card_id"`
	PeriodStart  core.Date          `json:"period_start"`
	PeriodEnd    core.Date          `json:"period_end"`
	DueDate      core.Date          `json:"due_date"`
	Total        core.Money         `json:"total"`
	Limit        *core.Money        `json:"limit,omitempty"`
	Available    *core.Money        `json:"available,omitempty"`
	Transactions []core.Transaction `json:"transactions"`
}

func (s *CardService) Create(ctx context.Context, userID string, c core.Card) (core.Card, error) {
	now := s.now()
	c.ID = core.NewID()
	c.UserID = userID
	c.Name = strings.TrimSpace(c.Name)
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	if err := s.storage.SaveCard(ctx, c); err != nil {
		return core.Card{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityCards, c.ID))
	return c, nil
}

func (s *CardService) Get(ctx context.Context, userID, id string) (core.Card, error) {
	return s.storage.GetCard(ctx, userID, id)
}

func (s *CardService) List(ctx context.Context, userID string) ([]core.Card, error) {
	return s.storage.ListCards(ctx, userID)
}

// Update replaces the editable fields of an existing card.
func (s *CardService) Update(ctx context.Context, userID, id string, in core.Card) (core.Card, error) {
	c, err := s.storage.GetCard(ctx, userID, id)
	if err != nil {
		return core.Card{}, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.LastDigits = in.LastDigits
	c.Brand = in.Brand
	c.Limit = in.Limit
	c.DueDay = in.DueDay
	c.ClosingDay = in.ClosingDay
	c.IsActive = in.IsActive
	c.Color = in.Color
	c.UpdatedAt = s.now()
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	if err := s.storage.SaveCard(ctx, c); err != nil {
		return core.Card{}, err
	}
	s.notifier.notify(ctx, upserted(userID, storage.EntityCards, c.ID))
	return c, nil
}

func (s *CardService) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteCard(ctx, userID, id); err != nil {
		return err
	}
	s.notifier.notify(ctx, deleted(userID, storage.EntityCards, id))
	return nil
}

// Statement sums the card expenses of the billing cycle whose bill is due in
// year/month.
func (s *CardService) Statement(ctx context.Context, userID, cardID string, year, month int) (Statement, error) {
	if month < 1 || month > 12 {
		return Statement{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	c, err := s.storage.GetCard(ctx, userID, cardID)
	if err != nil {
		return Statement{}, err
	}

	start, end, due := BillingCycle(c, year, month)
	txs, err := s.storage.ListCardTransactions(ctx, userID, cardID, start, end)
	if err != nil {
		return Statement{}, err
	}

	st := Statement{
		CardID:       cardID,
		PeriodStart:  start,
		PeriodEnd:    end,
		DueDate:      due,
		Total:        core.Summarize(txs).Expense,
		Transactions: txs,
	}
	if st.Transactions == nil {
		st.Transactions = []core.Transaction{}
	}
	if c.Limit != nil {
		limit := *c.Limit
		available := limit.Sub(st.Total)
		st.Limit = &limit
		st.Available = &available
	}
	return st, nil
}

// BillingCycle returns the purchase window and due date of the bill due in
// year/month. The cycle closes in the due month when the closing day comes
// before the due day, otherwise in the month before. Days beyond the end of
// a month are clamped.
func BillingCycle(c core.Card, year, month int) (start, end, due core.Date) {
	due = core.NewDate(year, month, core.ClampDay(year, month, c.DueDay))

	closeYear, closeMonth := year, month
	if c.ClosingDay >= c.DueDay {
		closeYear, closeMonth = prevMonth(year, month)
	}
	end = core.NewDate(closeYear, closeMonth, core.ClampDay(closeYear, closeMonth, c.ClosingDay))

	py, pm := prevMonth(closeYear, closeMonth)
	start = core.NewDate(py, pm, core.ClampDay(py, pm, c.ClosingDay)).AddDays(1)
	return start, end, due
}

func prevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
