package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies what kind of funds holder an account is.
type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCurrent  AccountType = "current"
	AccountTypeWallet   AccountType = "wallet"
	AccountTypeInternal AccountType = "internal"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeSavings:  true,
	AccountTypeCurrent:  true,
	AccountTypeWallet:   true,
	AccountTypeInternal: true,
}

// IsValid reports whether the account type is one of the closed set.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
	AccountStatusClosed AccountStatus = "closed"
)

var validAccountStatuses = map[AccountStatus]bool{
	AccountStatusActive: true,
	AccountStatusFrozen: true,
	AccountStatusClosed: true,
}

// IsValid reports whether the account status is one of the closed set.
func (s AccountStatus) IsValid() bool {
	return validAccountStatuses[s]
}

// Account represents a holder of funds with a cached authoritative balance.
// The balance is mutated only by the posting engine under a row lock and
// equals the signed sum of the account's POSTED transactions at all times.
type Account struct {
	ID         string
	CustomerID string
	Name       string
	Type       AccountType
	Status     AccountStatus
	Balance    decimal.Decimal
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateActive checks the account accepts new transactions.
func (a *Account) ValidateActive() error {
	if a.Status != AccountStatusActive {
		return ErrAccountInactive
	}
	return nil
}

// ValidateDebit checks the account holds enough funds for a debit.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
