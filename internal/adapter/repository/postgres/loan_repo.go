package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

const loanColumns = `id, borrower_id, wallet_account_id, principal, annual_rate,
	tenure_months, status, disbursed_at, created_at, updated_at`

const installmentColumns = `id, loan_id, sequence, due_date, amount_due,
	principal_due, interest_due, amount_paid, status, created_at, updated_at`

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	return scanLoan(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a loan by ID with a FOR UPDATE lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	return scanLoan(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus moves a loan through its lifecycle.
func (r *LoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, disbursedAt *time.Time, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE loans
		SET status = $2, disbursed_at = $3, updated_at = $4
		WHERE id = $1
	`

	var disbursed pgtype.Timestamptz
	if disbursedAt != nil {
		disbursed = timeToPgTimestamptz(*disbursedAt)
	}

	_, err := pgxTx.Exec(ctx, query, id, string(status), disbursed, timeToPgTimestamptz(updatedAt))

	return err
}

// CreateInstallments inserts a full repayment schedule.
func (r *LoanRepository) CreateInstallments(ctx context.Context, tx usecase.Transaction, installments []*domain.Installment) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, inst := range installments {
		batch.Queue(query,
			inst.ID,
			inst.LoanID,
			inst.Sequence,
			timeToPgTimestamptz(inst.DueDate),
			decimalToNumeric(inst.AmountDue),
			decimalToNumeric(inst.PrincipalDue),
			decimalToNumeric(inst.InterestDue),
			decimalToNumeric(inst.AmountPaid),
			string(inst.Status),
			timeToPgTimestamptz(inst.CreatedAt),
			timeToPgTimestamptz(inst.UpdatedAt),
		)
	}

	return pgxTx.SendBatch(ctx, batch).Close()
}

// GetInstallments retrieves a loan's schedule in sequence order.
func (r *LoanRepository) GetInstallments(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + ` FROM installments
		WHERE loan_id = $1
		ORDER BY sequence
	`

	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInstallments(rows)
}

// GetOutstandingForUpdate retrieves unpaid installments oldest-due
// first, locked for the caller's unit.
func (r *LoanRepository) GetOutstandingForUpdate(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Installment, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + installmentColumns + ` FROM installments
		WHERE loan_id = $1 AND status IN ('pending', 'partial', 'overdue')
		ORDER BY due_date
		FOR UPDATE
	`

	rows, err := pgxTx.Query(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInstallments(rows)
}

// UpdateInstallment persists an installment after payment allocation.
func (r *LoanRepository) UpdateInstallment(ctx context.Context, tx usecase.Transaction, inst *domain.Installment) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE installments
		SET amount_paid = $2, status = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := pgxTx.Exec(ctx, query,
		inst.ID,
		decimalToNumeric(inst.AmountPaid),
		string(inst.Status),
		timeToPgTimestamptz(inst.UpdatedAt),
	)

	return err
}

// MarkOverdue promotes past-due pending/partial installments.
func (r *LoanRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE installments
		SET status = 'overdue', updated_at = $1
		WHERE status IN ('pending', 'partial') AND due_date < $1
	`

	tag, err := r.pool.Exec(ctx, query, timeToPgTimestamptz(asOf))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan                 domain.Loan
		status               string
		principal, rate      pgtype.Numeric
		disbursedAt          pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&loan.ID,
		&loan.BorrowerID,
		&loan.WalletAccountID,
		&principal,
		&rate,
		&loan.TenureMonths,
		&status,
		&disbursedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	loan.Status = domain.LoanStatus(status)
	loan.Principal = numericToDecimal(principal)
	loan.AnnualRate = numericToDecimal(rate)
	if disbursedAt.Valid {
		t := disbursedAt.Time
		loan.DisbursedAt = &t
	}
	loan.CreatedAt = createdAt.Time
	loan.UpdatedAt = updatedAt.Time

	return &loan, nil
}

func collectInstallments(rows pgx.Rows) ([]*domain.Installment, error) {
	var installments []*domain.Installment
	for rows.Next() {
		var (
			inst                           domain.Installment
			status                         string
			due, principalDue, interestDue pgtype.Numeric
			paid                           pgtype.Numeric
			dueDate, createdAt, updatedAt  pgtype.Timestamptz
		)

		err := rows.Scan(
			&inst.ID,
			&inst.LoanID,
			&inst.Sequence,
			&dueDate,
			&due,
			&principalDue,
			&interestDue,
			&paid,
			&status,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, err
		}

		inst.DueDate = dueDate.Time
		inst.AmountDue = numericToDecimal(due)
		inst.PrincipalDue = numericToDecimal(principalDue)
		inst.InterestDue = numericToDecimal(interestDue)
		inst.AmountPaid = numericToDecimal(paid)
		inst.Status = domain.InstallmentStatus(status)
		inst.CreatedAt = createdAt.Time
		inst.UpdatedAt = updatedAt.Time

		installments = append(installments, &inst)
	}

	return installments, rows.Err()
}
