package core

// DefaultCategory describes a seeded category.
type DefaultCategory struct {
	Name  string
	Type  TransactionType
	Color string
}

// DefaultCategories are created for every user on first access and cannot be
// renamed or deleted.
var DefaultCategories = []DefaultCategory{
	{"Food", Expense, "#e4572e"},
	{"Housing", Expense, "#29335c"},
	{"Transport", Expense, "#f3a712"},
	{"Health", Expense, "#a8c686"},
	{"Education", Expense, "#669bbc"},
	{"Leisure", Expense, "#8d6a9f"},
	{"Shopping", Expense, "#dd7373"},
	{"Bills", Expense, "#3b3b58"},
	{VaultCategory, Expense, "#2a9d8f"},
	{"Other", Expense, "#8a8a8a"},
	{"Salary", Income, "#2b9348"},
	{"Freelance", Income, "#55a630"},
	{"Investments", Income, "#80b918"},
	{VaultCategory, Income, "#2a9d8f"},
	{"Other", Income, "#8a8a8a"},
}
