package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Monthly     RecurrenceType = "monthly"
	Yearly      RecurrenceType = "yearly"
	Installment RecurrenceType = "installment"
)

const (
	StatusActive    RecurringStatus = "active"
	StatusPaused    RecurringStatus = "paused"
	StatusCompleted RecurringStatus = "completed"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	PayCash       PaymentMethod = "cash"
	PayDebit      PaymentMethod = "debit"
	PayCreditCard PaymentMethod = "credit_card"
	PayTransfer   PaymentMethod = "transfer"
	PayBankSlip   PaymentMethod = "bank_slip"
)

// VaultCategory is the category used for transactions moving money in and out of the goal.
const VaultCategory = "Vault"

type (
	TransactionType string
	RecurrenceType  string
	RecurringStatus string
	Priority        string
	PaymentMethod   string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID            string          `json:"id"`
		UserID        string          `json:"user_id"`
		Type          TransactionType `json:"type"`
		Amount        Money           `json:"amount"`
		Category      string          `json:"category"`
		Description   string          `json:"description"`
		Date          Date            `json:"date"`
		PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
		CardID        string          `json:"card_id,omitempty"`
		RecurringID   string          `json:"recurring_id,omitempty"`
		CreatedAt     time.Time       `json:"created_at"`
		UpdatedAt     time.Time       `json:"updated_at"`
	}

	Goal struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Name      string    `json:"name"`
		Target    Money     `json:"target"`
		Saved     Money     `json:"saved"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Category struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"`
		Color     string          `json:"color"`
		IsDefault bool            `json:"is_default"`
		Order     int             `json:"order"`
		CreatedAt time.Time       `json:"created_at"`
		UpdatedAt time.Time       `json:"updated_at"`
	}

	Card struct {
		ID         string    `json:"id"`
		UserID     string    `json:"user_id"`
		Name       string    `json:"name"`
		LastDigits string    `json:"last_digits"`
		Brand      string    `json:"brand"`
		Limit      *Money    `json:"limit,omitempty"`
		DueDay     int       `json:"due_day"`
		ClosingDay int       `json:"closing_day"`
		IsActive   bool      `json:"is_active"`
		Color      string    `json:"color"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}

	RecurringExpense struct {
		ID               string          `json:"id"`
		UserID           string          `json:"user_id"`
		Name             string          `json:"name"`
		Amount           Money           `json:"amount"`
		Category         string          `json:"category"`
		DueDay           int             `json:"due_day"`
		DueMonth         int             `json:"due_month,omitempty"` // yearly only
		PaymentMethod    PaymentMethod   `json:"payment_method"`
		CardID           string          `json:"card_id,omitempty"`
		RecurrenceType   RecurrenceType  `json:"recurrence_type"`
		Installments     int             `json:"installments,omitempty"`
		InstallmentsPaid int             `json:"installments_paid"`
		Priority         Priority        `json:"priority"`
		AutoPay          bool            `json:"auto_pay"`
		Status           RecurringStatus `json:"status"`
		LastPaidPeriod   string          `json:"last_paid_period,omitempty"`
		CreatedAt        time.Time       `json:"created_at"`
		UpdatedAt        time.Time       `json:"updated_at"`
	}
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrEmptyName           = errors.New("empty name")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrDefaultCategory     = errors.New("default categories cannot be modified")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientSavings = errors.New("insufficient savings")
	ErrGoalReached         = errors.New("goal already reached")
	ErrAlreadyPaid         = errors.New("recurring expense already paid for this period")
)

// ValidationError marks an error as caused by bad input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was produced by input validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return invalid("type", ErrInvalidType)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if len(t.Description) > 200 {
		return invalid("description", errors.New("description too long (max 200 characters)"))
	}
	if t.PaymentMethod != "" && !t.PaymentMethod.Valid() {
		return invalid("payment_method", fmt.Errorf("unknown payment method %q", t.PaymentMethod))
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if err := g.Target.Validate(); err != nil {
		return invalid("target", err)
	}
	if g.Saved.Cents < 0 {
		return invalid("saved", ErrInvalidAmount)
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if len(c.Name) > 50 {
		return invalid("name", errors.New("name too long (max 50 characters)"))
	}
	if !c.Type.Valid() {
		return invalid("type", ErrInvalidType)
	}
	if c.Color != "" && !hexColor.MatchString(c.Color) {
		return invalid("color", errors.New("color must be #RRGGBB"))
	}
	return nil
}

var lastDigits = regexp.MustCompile(`^[0-9]{4}$`)

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if !lastDigits.MatchString(c.LastDigits) {
		return invalid("last_digits", errors.New("must be exactly 4 digits"))
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return invalid("due_day", ErrInvalidDay)
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return invalid("closing_day", ErrInvalidDay)
	}
	if c.Limit != nil {
		if err := c.Limit.Validate(); err != nil {
			return invalid("limit", err)
		}
	}
	if c.Color != "" && !hexColor.MatchString(c.Color) {
		return invalid("color", errors.New("color must be #RRGGBB"))
	}
	return nil
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PayCash, PayDebit, PayCreditCard, PayTransfer, PayBankSlip:
		return true
	}
	return false
}

func (re RecurringExpense) Validate() error {
	if strings.TrimSpace(re.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if len(re.Name) > 200 {
		return invalid("name", errors.New("name too long (max 200 characters)"))
	}
	if err := re.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if strings.TrimSpace(re.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if re.DueDay < 1 || re.DueDay > 31 {
		return invalid("due_day", ErrInvalidDay)
	}
	switch re.RecurrenceType {
	case Monthly:
	case Yearly:
		if re.DueMonth < 1 || re.DueMonth > 12 {
			return invalid("due_month", ErrInvalidMonth)
		}
	case Installment:
		if re.Installments < 1 {
			return invalid("installments", errors.New("installments must be at least 1"))
		}
		if re.InstallmentsPaid < 0 || re.InstallmentsPaid > re.Installments {
			return invalid("installments_paid", errors.New("installments paid out of range"))
		}
	default:
		return invalid("recurrence_type", fmt.Errorf("unknown recurrence type %q", re.RecurrenceType))
	}
	if !re.PaymentMethod.Valid() {
		return invalid("payment_method", fmt.Errorf("unknown payment method %q", re.PaymentMethod))
	}
	if re.PaymentMethod == PayCreditCard && strings.TrimSpace(re.CardID) == "" {
		return invalid("card_id", errors.New("credit card payments need a card"))
	}
	switch re.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return invalid("priority", fmt.Errorf("unknown priority %q", re.Priority))
	}
	switch re.Status {
	case StatusActive, StatusPaused, StatusCompleted:
	default:
		return invalid("status", fmt.Errorf("unknown status %q", re.Status))
	}
	return nil
}
