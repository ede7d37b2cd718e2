package storage

import "database/sql"

// Timestamps are stored as RFC 3339 text in UTC and dates as YYYY-MM-DD so
// that lexical order matches chronological order.

type Transaction struct {
	ID            string
	UserID        string
	Type          string
	AmountCents   int64
	Category      string
	Description   string
	Date          string
	PaymentMethod string
	CardID        string
	RecurringID   string
	CreatedAt     string
	UpdatedAt     string
}

type Goal struct {
	ID          string
	UserID      string
	Name        string
	TargetCents int64
	SavedCents  int64
	CreatedAt   string
	UpdatedAt   string
}

type Category struct {
	ID        string
	UserID    string
	Name      string
	Type      string
	Color     string
	IsDefault bool
	SortOrder int64
	CreatedAt string
	UpdatedAt string
}

type Card struct {
	ID         string
	UserID     string
	Name       string
	LastDigits string
	Brand      string
	LimitCents sql.NullInt64
	DueDay     int64
	ClosingDay int64
	IsActive   bool
	Color      string
	CreatedAt  string
	UpdatedAt  string
}

type RecurringExpense struct {
	ID               string
	UserID           string
	Name             string
	AmountCents      int64
	Category         string
	DueDay           int64
	DueMonth         int64
	PaymentMethod    string
	CardID           string
	RecurrenceType   string
	Installments     int64
	InstallmentsPaid int64
	Priority         string
	AutoPay          bool
	Status           string
	LastPaidPeriod   string
	CreatedAt        string
	UpdatedAt        string
}

type RecurringRun struct {
	RecurringID   string
	Period        string
	TransactionID string
	CreatedAt     string
}

type DayoffRule struct {
	ID           string
	UserID       string
	Kind         string
	Description  string
	DayOfWeek    sql.NullInt64
	IntervalDays int64
	StartDate    string
	Date         string
	CreatedAt    string
	UpdatedAt    string
}

type SyncQueue struct {
	ID          int64
	UserID      string
	Entity      string
	EntityID    string
	Operation   string
	Status      string
	Attempts    int64
	LastError   string
	CreatedAt   string
	UpdatedAt   string
	ProcessedAt string
}
