package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a stored transaction. It is inserted once; afterwards only
// its category may change, during re-categorization.
type Transaction struct {
	ID            TransactionID
	AccountID     AccountID
	AccountNumber string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Balance       *decimal.Decimal
	CategoryID    *CategoryID
	Label         CategoryLabel
	Fingerprint   Fingerprint
}

// NewTransaction builds a storable transaction from a parsed one.
func NewTransaction(accountID AccountID, raw RawTransaction, fp Fingerprint) Transaction {
	return Transaction{
		AccountID:     accountID,
		AccountNumber: raw.AccountNumber,
		Date:          raw.Date,
		Description:   raw.Description,
		Amount:        raw.Amount,
		Balance:       raw.Balance,
		Label:         UncategorizedLabel,
		Fingerprint:   fp,
	}
}

// IsDebit reports whether money left the account.
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// SameCategory reports whether a and b point to the same category (both nil counts).
func SameCategory(a, b *CategoryID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// TransactionFilter narrows store listings.
type TransactionFilter struct {
	AccountID     *AccountID
	Uncategorized bool
	Limit         int
}
