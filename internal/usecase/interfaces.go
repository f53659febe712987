package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
)

// AccountRepository defines data access for customer accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for monetary movements.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, approverID *string, updatedAt time.Time) error
	SetReversal(ctx context.Context, tx Transaction, id, reversalID string, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// GLRepository defines data access for general-ledger accounts and entries.
type GLRepository interface {
	GetAccountForUpdate(ctx context.Context, tx Transaction, id string) (*domain.GLAccount, error)
	UpdateAccountBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	CreateEntry(ctx context.Context, tx Transaction, entry *domain.GLEntry) error
	GetEntriesByTransaction(ctx context.Context, transactionID string) ([]*domain.GLEntry, error)
	GetEntryForUpdate(ctx context.Context, tx Transaction, id string) (*domain.GLEntry, error)
	// FindUnmatchedEntries returns unreconciled entries on one GL account
	// with exactly this amount and an effective date inside [from, to],
	// locked for the duration of the caller's unit.
	FindUnmatchedEntries(ctx context.Context, tx Transaction, glAccountID string, amount decimal.Decimal, from, to time.Time) ([]*domain.GLEntry, error)
	SetStatementLine(ctx context.Context, tx Transaction, entryID, lineID string) error
	// CheckConsistency sums all debit entries and all credit entries.
	CheckConsistency(ctx context.Context) (debits, credits decimal.Decimal, err error)
}

// LoanRepository defines data access for loans and their schedules.
type LoanRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.LoanStatus, disbursedAt *time.Time, updatedAt time.Time) error
	CreateInstallments(ctx context.Context, tx Transaction, installments []*domain.Installment) error
	GetInstallments(ctx context.Context, loanID string) ([]*domain.Installment, error)
	// GetOutstandingForUpdate returns unpaid installments ordered by
	// ascending due date, locked for the caller's unit.
	GetOutstandingForUpdate(ctx context.Context, tx Transaction, loanID string) ([]*domain.Installment, error)
	UpdateInstallment(ctx context.Context, tx Transaction, inst *domain.Installment) error
	// MarkOverdue promotes past-due pending/partial installments to
	// overdue and returns how many rows changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// StatementRepository defines data access for bank statements and lines.
type StatementRepository interface {
	CreateStatement(ctx context.Context, tx Transaction, st *domain.BankStatement) error
	GetStatement(ctx context.Context, id string) (*domain.BankStatement, error)
	// CreateLines inserts lines, skipping any (statement, line_no) pair
	// that already exists, and returns how many were inserted.
	CreateLines(ctx context.Context, tx Transaction, lines []*domain.StatementLine) (int, error)
	ListUnmatched(ctx context.Context, statementID string) ([]*domain.StatementLine, error)
	GetLineForUpdate(ctx context.Context, tx Transaction, id string) (*domain.StatementLine, error)
	MarkMatched(ctx context.Context, tx Transaction, lineID, entryID string, updatedAt time.Time) error
}

// RiskAlertRepository defines data access for risk alerts.
type RiskAlertRepository interface {
	Create(ctx context.Context, tx Transaction, alert *domain.RiskAlert) error
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.RiskAlert, error)
	Resolve(ctx context.Context, tx Transaction, id, actorID string, resolvedAt time.Time) error
	ListOpen(ctx context.Context, limit, offset int) ([]*domain.RiskAlert, error)
}

// FiscalPeriodRepository defines data access for fiscal periods.
type FiscalPeriodRepository interface {
	// FindClosedContaining returns the closed period whose interval
	// contains the date, or nil when no closed period matches.
	FindClosedContaining(ctx context.Context, tx Transaction, date time.Time) (*domain.FiscalPeriod, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
