package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a monetary movement from the account's view.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

var validDirections = map[Direction]bool{
	DirectionCredit: true,
	DirectionDebit:  true,
}

// IsValid reports whether the direction is one of the closed set.
func (d Direction) IsValid() bool {
	return validDirections[d]
}

// Opposite returns the contra direction, used by reversals.
func (d Direction) Opposite() Direction {
	if d == DirectionCredit {
		return DirectionDebit
	}
	return DirectionCredit
}

// TransactionStatus is the lifecycle state of a transaction.
// PENDING -> {POSTED, REJECTED}; each edge is taken at most once.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusPosted   TransactionStatus = "posted"
	TransactionStatusRejected TransactionStatus = "rejected"
)

var validTransactionStatuses = map[TransactionStatus]bool{
	TransactionStatusPending:  true,
	TransactionStatusPosted:   true,
	TransactionStatusRejected: true,
}

// IsValid reports whether the status is one of the closed set.
func (s TransactionStatus) IsValid() bool {
	return validTransactionStatuses[s]
}

// Transaction is an immutable intent to move money against one account.
// Rows are never mutated after creation except for the single status
// transition and the reversal link.
type Transaction struct {
	ID            string
	AccountID     string
	Direction     Direction
	Amount        decimal.Decimal
	Status        TransactionStatus
	Reference     string
	EffectiveDate time.Time
	CreatorID     string
	ApproverID    *string
	// ReversesID links a contra transaction back to the one it undoes.
	ReversesID *string
	// ReversalID marks a posted transaction as reversed, at most once.
	ReversalID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks structural invariants before any store access.
func (t *Transaction) Validate() error {
	if !t.Direction.IsValid() {
		return ErrInvalidDirection
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// SignedAmount returns the amount with the sign of its balance effect
// (credit positive, debit negative).
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsReversed reports whether a contra transaction already exists.
func (t *Transaction) IsReversed() bool {
	return t.ReversalID != nil
}
