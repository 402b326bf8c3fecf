package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementKind is the layout sub-type of a statement document.
type StatementKind string

const (
	StatementBank   StatementKind = "bank_account"
	StatementCredit StatementKind = "credit_card"
)

// Period is the date range printed on a statement.
type Period struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// CrossesYear reports whether the period spans a December to January boundary.
func (p Period) CrossesYear() bool {
	return p.End.Year() > p.Start.Year()
}

// RawTransaction is one transaction line as extracted by the parser, before
// deduplication and categorization. Amount is negative for debits.
type RawTransaction struct {
	AccountNumber string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Balance       *decimal.Decimal
	LineNo        int
}

// Section is one logical account section of a statement.
type Section struct {
	Account Account
	// Period is set when the section prints its own statement period.
	Period       Period
	Transactions []RawTransaction
}

// Statement is the parsed form of one statement document.
type Statement struct {
	Document string
	Kind     StatementKind
	Period   Period
	Sections []Section
}

// Accounts returns the accounts detected on the statement, in document order.
func (s Statement) Accounts() []Account {
	out := make([]Account, 0, len(s.Sections))
	for _, sec := range s.Sections {
		out = append(out, sec.Account)
	}
	return out
}

// Transactions returns every transaction of the statement in document order.
func (s Statement) Transactions() []RawTransaction {
	var out []RawTransaction
	for _, sec := range s.Sections {
		out = append(out, sec.Transactions...)
	}
	return out
}
