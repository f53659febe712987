package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GLType is the accounting class of a general-ledger account.
type GLType string

const (
	GLTypeAsset     GLType = "asset"
	GLTypeLiability GLType = "liability"
	GLTypeEquity    GLType = "equity"
	GLTypeIncome    GLType = "income"
	GLTypeExpense   GLType = "expense"
)

var validGLTypes = map[GLType]bool{
	GLTypeAsset:     true,
	GLTypeLiability: true,
	GLTypeEquity:    true,
	GLTypeIncome:    true,
	GLTypeExpense:   true,
}

// IsValid reports whether the GL type is one of the closed set.
func (t GLType) IsValid() bool {
	return validGLTypes[t]
}

// GLSide is the debit/credit side of a general-ledger entry.
type GLSide string

const (
	GLSideDebit  GLSide = "debit"
	GLSideCredit GLSide = "credit"
)

// GLAccount is a general-ledger account with a running balance kept on
// its normal side (debit-normal for assets/expenses, credit-normal
// otherwise).
type GLAccount struct {
	ID        string
	Code      string
	Name      string
	Type      GLType
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignedEffect returns the running-balance delta an entry on side causes
// for this account.
func (g *GLAccount) SignedEffect(side GLSide, amount decimal.Decimal) decimal.Decimal {
	debitNormal := g.Type == GLTypeAsset || g.Type == GLTypeExpense
	if (side == GLSideDebit) == debitNormal {
		return amount
	}
	return amount.Neg()
}

// GLEntry is one side of a balanced double-entry pair. Entries are
// created once and never mutated; the reconciliation matcher may link
// one statement line to an entry, at most once.
type GLEntry struct {
	ID            string
	GLAccountID   string
	TransactionID string
	Side          GLSide
	Amount        decimal.Decimal
	EffectiveDate time.Time
	// StatementLineID is set when a bank statement line reconciles
	// against this entry.
	StatementLineID *string
	CreatedAt       time.Time
}

// BalancedPair builds the canonical debit/credit pair for a customer
// movement: a credit into a customer account debits the vault (cash in)
// and credits deposits (liability up); a debit does the opposite.
func BalancedPair(txn *Transaction, vaultID, depositsID string) (vault, deposits GLEntry) {
	vaultSide, depositsSide := GLSideDebit, GLSideCredit
	if txn.Direction == DirectionDebit {
		vaultSide, depositsSide = GLSideCredit, GLSideDebit
	}

	vault = GLEntry{
		GLAccountID:   vaultID,
		TransactionID: txn.ID,
		Side:          vaultSide,
		Amount:        txn.Amount,
		EffectiveDate: txn.EffectiveDate,
	}
	deposits = GLEntry{
		GLAccountID:   depositsID,
		TransactionID: txn.ID,
		Side:          depositsSide,
		Amount:        txn.Amount,
		EffectiveDate: txn.EffectiveDate,
	}

	return vault, deposits
}
