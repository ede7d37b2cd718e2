package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok {
			assert.NoError(t, err, "case %d", i)
		} else {
			assert.Error(t, err, "case %d", i)
		}
	}
}

func TestDateDaysSince(t *testing.T) {
	start := NewDate(2025, 12, 7)
	assert.Equal(t, 21, NewDate(2025, 12, 28).DaysSince(start))
	assert.Equal(t, 13, NewDate(2025, 12, 20).DaysSince(start))
	assert.Equal(t, -1, NewDate(2025, 12, 6).DaysSince(start))
	// a late-evening local time keeps its own calendar date
	loc := time.FixedZone("X", -3*3600)
	d := DateOf(time.Date(2026, 3, 30, 23, 30, 0, 0, loc))
	assert.Equal(t, 30, d.Day())
	assert.Equal(t, 113, d.DaysSince(start))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2025-02-03"`)))
	assert.Equal(t, NewDate(2025, 2, 3), d)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-02-03"`, string(b))
	assert.Error(t, d.UnmarshalJSON([]byte(`"03/02/2025"`)))
}

func TestClampDay(t *testing.T) {
	assert.Equal(t, 28, ClampDay(2025, 2, 31))
	assert.Equal(t, 29, ClampDay(2024, 2, 30))
	assert.Equal(t, 15, ClampDay(2025, 4, 15))
	assert.Equal(t, 30, ClampDay(2025, 4, 31))
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Amount:   Money{Cents: 100},
		Category: "Food",
		Date:     NewDate(2025, 1, 1),
	}
	require.NoError(t, good.Validate())

	bads := map[string]func(tx *Transaction){
		"bad type":    func(tx *Transaction) { tx.Type = "transfer" },
		"zero amount": func(tx *Transaction) { tx.Amount = Money{} },
		"zero date":   func(tx *Transaction) { tx.Date = Date{} },
		"empty cat":   func(tx *Transaction) { tx.Category = "  " },
		"long desc":   func(tx *Transaction) { tx.Description = string(make([]byte, 201)) },
		"bad method":  func(tx *Transaction) { tx.PaymentMethod = "barter" },
	}
	for name, mutate := range bads {
		t.Run(name, func(t *testing.T) {
			tx := good
			mutate(&tx)
			err := tx.Validate()
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	base := RecurringExpense{
		Name:           "Rent",
		Amount:         Money{Cents: 150000},
		Category:       "Housing",
		DueDay:         5,
		PaymentMethod:  PayTransfer,
		RecurrenceType: Monthly,
		Priority:       PriorityHigh,
		Status:         StatusActive,
	}
	require.NoError(t, base.Validate())

	yearly := base
	yearly.RecurrenceType = Yearly
	assert.Error(t, yearly.Validate(), "yearly needs a due month")
	yearly.DueMonth = 3
	assert.NoError(t, yearly.Validate())

	inst := base
	inst.RecurrenceType = Installment
	assert.Error(t, inst.Validate())
	inst.Installments = 10
	assert.NoError(t, inst.Validate())
	inst.InstallmentsPaid = 11
	assert.Error(t, inst.Validate())

	card := base
	card.PaymentMethod = PayCreditCard
	err := card.Validate()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "card_id", ve.Field)
	card.CardID = "c1"
	assert.NoError(t, card.Validate())

	badDay := base
	badDay.DueDay = 32
	assert.ErrorIs(t, badDay.Validate(), ErrInvalidDay)
}

func TestCardValidate(t *testing.T) {
	c := Card{Name: "Visa", LastDigits: "1234", DueDay: 10, ClosingDay: 3, Color: "#112233"}
	require.NoError(t, c.Validate())
	c.LastDigits = "12a4"
	assert.Error(t, c.Validate())
	c.LastDigits = "1234"
	c.Limit = &Money{Cents: 0}
	assert.ErrorIs(t, c.Validate(), ErrInvalidAmount)
}

func TestCategoryValidate(t *testing.T) {
	assert.NoError(t, Category{Name: "Pets", Type: Expense}.Validate())
	assert.Error(t, Category{Name: "", Type: Expense}.Validate())
	assert.Error(t, Category{Name: "Pets", Type: "x"}.Validate())
	assert.Error(t, Category{Name: "Pets", Type: Expense, Color: "red"}.Validate())
}

func TestDefaultCategoryID(t *testing.T) {
	id := DefaultCategoryID("u1", Expense, "Food")
	assert.Equal(t, id, DefaultCategoryID("u1", Expense, " food"))
	assert.NotEqual(t, id, DefaultCategoryID("u1", Income, "Food"))
	assert.NotEqual(t, id, DefaultCategoryID("u2", Expense, "Food"))
	assert.Len(t, id, 36)
}
