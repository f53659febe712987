package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

const glEntryColumns = `id, gl_account_id, transaction_id, side, amount, effective_date, statement_line_id, created_at`

// GLRepository implements usecase.GLRepository.
type GLRepository struct {
	pool *pgxpool.Pool
}

// NewGLRepository creates a new GLRepository.
func NewGLRepository(pool *pgxpool.Pool) *GLRepository {
	return &GLRepository{pool: pool}
}

// GetAccountForUpdate retrieves a GL account with a FOR UPDATE lock.
func (r *GLRepository) GetAccountForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.GLAccount, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT id, code, name, type, balance, created_at, updated_at
		FROM gl_accounts WHERE id = $1 FOR UPDATE
	`

	var (
		account              domain.GLAccount
		glType               string
		balance              pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := pgxTx.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Code,
		&account.Name,
		&glType,
		&balance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGLAccountNotFound
		}
		return nil, err
	}

	account.Type = domain.GLType(glType)
	account.Balance = numericToDecimal(balance)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}

// UpdateAccountBalance moves a GL account's running balance.
func (r *GLRepository) UpdateAccountBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE gl_accounts SET balance = $2, updated_at = $3 WHERE id = $1`

	_, err := pgxTx.Exec(ctx, query, id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))

	return err
}

// CreateEntry inserts one side of a balanced pair.
func (r *GLRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.GLEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO gl_entries (` + glEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		entry.ID,
		entry.GLAccountID,
		entry.TransactionID,
		string(entry.Side),
		decimalToNumeric(entry.Amount),
		timeToPgTimestamptz(entry.EffectiveDate),
		entry.StatementLineID,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetEntriesByTransaction retrieves the entries a transaction produced.
func (r *GLRepository) GetEntriesByTransaction(ctx context.Context, transactionID string) ([]*domain.GLEntry, error) {
	query := `
		SELECT ` + glEntryColumns + ` FROM gl_entries
		WHERE transaction_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetEntryForUpdate retrieves a GL entry with a FOR UPDATE lock.
func (r *GLRepository) GetEntryForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.GLEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + glEntryColumns + ` FROM gl_entries WHERE id = $1 FOR UPDATE`

	entry, err := scanEntry(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

// FindUnmatchedEntries retrieves unreconciled entries on one GL account
// with exactly this amount inside the date window, locked for the
// caller's unit.
func (r *GLRepository) FindUnmatchedEntries(ctx context.Context, tx usecase.Transaction, glAccountID string, amount decimal.Decimal, from, to time.Time) ([]*domain.GLEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + glEntryColumns + ` FROM gl_entries
		WHERE gl_account_id = $1
		  AND statement_line_id IS NULL
		  AND amount = $2
		  AND effective_date BETWEEN $3 AND $4
		ORDER BY effective_date
		FOR UPDATE
	`

	rows, err := pgxTx.Query(ctx, query,
		glAccountID,
		decimalToNumeric(amount),
		timeToPgTimestamptz(from),
		timeToPgTimestamptz(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// SetStatementLine marks an entry reconciled against a statement line.
func (r *GLRepository) SetStatementLine(ctx context.Context, tx usecase.Transaction, entryID, lineID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE gl_entries SET statement_line_id = $2 WHERE id = $1`

	_, err := pgxTx.Exec(ctx, query, entryID, lineID)

	return err
}

// CheckConsistency sums all debit entries and all credit entries.
func (r *GLRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE side = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE side = 'credit'), 0)
		FROM gl_entries
	`

	var debits, credits pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debits), numericToDecimal(credits), nil
}

func collectEntries(rows pgx.Rows) ([]*domain.GLEntry, error) {
	var entries []*domain.GLEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.GLEntry, error) {
	var (
		entry                    domain.GLEntry
		side                     string
		amount                   pgtype.Numeric
		effectiveDate, createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.GLAccountID,
		&entry.TransactionID,
		&side,
		&amount,
		&effectiveDate,
		&entry.StatementLineID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Side = domain.GLSide(side)
	entry.Amount = numericToDecimal(amount)
	entry.EffectiveDate = effectiveDate.Time
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}
