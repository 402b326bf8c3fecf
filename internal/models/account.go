package models

import "fmt"

// AccountType classifies an account detected on a statement.
type AccountType string

const (
	AccountChequing    AccountType = "CHEQUING"
	AccountSavings     AccountType = "SAVINGS"
	AccountCreditVisa  AccountType = "CREDIT_VISA"
	AccountCreditOther AccountType = "CREDIT_OTHER"
)

// IsCredit reports whether the account is a credit card.
func (t AccountType) IsCredit() bool {
	return t == AccountCreditVisa || t == AccountCreditOther
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountChequing, AccountSavings, AccountCreditVisa, AccountCreditOther:
		return true
	}
	return false
}

// Account is identified by its (masked) account number. Accounts are only
// ever upserted, never deleted.
type Account struct {
	ID     AccountID
	Number string
	Name   string
	Type   AccountType
}

func (a Account) String() string {
	if a.Name == "" {
		return fmt.Sprintf("%s (%s)", a.Number, a.Type)
	}
	return fmt.Sprintf("%s %s (%s)", a.Number, a.Name, a.Type)
}
