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

const statementLineColumns = `id, statement_id, line_no, description, amount,
	value_date, status, matched_entry_id, created_at, updated_at`

// StatementRepository implements usecase.StatementRepository.
type StatementRepository struct {
	pool *pgxpool.Pool
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(pool *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{pool: pool}
}

// CreateStatement registers an uploaded statement inside the unit that
// also records its audit row.
func (r *StatementRepository) CreateStatement(ctx context.Context, tx usecase.Transaction, st *domain.BankStatement) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO bank_statements (id, bank_name, period_start, period_end, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := pgxTx.Exec(ctx, query,
		st.ID,
		st.BankName,
		timeToPgTimestamptz(st.PeriodStart),
		timeToPgTimestamptz(st.PeriodEnd),
		st.UploadedBy,
		timeToPgTimestamptz(st.CreatedAt),
	)

	return err
}

// GetStatement retrieves a bank statement by ID.
func (r *StatementRepository) GetStatement(ctx context.Context, id string) (*domain.BankStatement, error) {
	query := `
		SELECT id, bank_name, period_start, period_end, uploaded_by, created_at
		FROM bank_statements WHERE id = $1
	`

	var (
		st                    domain.BankStatement
		start, end, createdAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&st.ID,
		&st.BankName,
		&start,
		&end,
		&st.UploadedBy,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}
		return nil, err
	}

	st.PeriodStart = start.Time
	st.PeriodEnd = end.Time
	st.CreatedAt = createdAt.Time

	return &st, nil
}

// CreateLines inserts statement lines, skipping any (statement, line_no)
// pair already present. Returns how many rows were inserted.
func (r *StatementRepository) CreateLines(ctx context.Context, tx usecase.Transaction, lines []*domain.StatementLine) (int, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO statement_lines (` + statementLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (statement_id, line_no) DO NOTHING
	`

	inserted := 0
	for _, line := range lines {
		tag, err := pgxTx.Exec(ctx, query,
			line.ID,
			line.StatementID,
			line.LineNo,
			line.Description,
			decimalToNumeric(line.Amount),
			timeToPgTimestamptz(line.ValueDate),
			string(line.Status),
			line.MatchedEntryID,
			timeToPgTimestamptz(line.CreatedAt),
			timeToPgTimestamptz(line.UpdatedAt),
		)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ListUnmatched retrieves a statement's unmatched lines in file order.
func (r *StatementRepository) ListUnmatched(ctx context.Context, statementID string) ([]*domain.StatementLine, error) {
	query := `
		SELECT ` + statementLineColumns + ` FROM statement_lines
		WHERE statement_id = $1 AND status = 'unmatched'
		ORDER BY line_no
	`

	rows, err := r.pool.Query(ctx, query, statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.StatementLine
	for rows.Next() {
		line, err := scanStatementLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// GetLineForUpdate retrieves a statement line with a FOR UPDATE lock.
func (r *StatementRepository) GetLineForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.StatementLine, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + statementLineColumns + ` FROM statement_lines WHERE id = $1 FOR UPDATE`

	line, err := scanStatementLine(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLineNotFound
		}
		return nil, err
	}

	return line, nil
}

// MarkMatched links a line to its reconciled GL entry.
func (r *StatementRepository) MarkMatched(ctx context.Context, tx usecase.Transaction, lineID, entryID string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE statement_lines
		SET status = 'matched', matched_entry_id = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := pgxTx.Exec(ctx, query, lineID, entryID, timeToPgTimestamptz(updatedAt))

	return err
}

func scanStatementLine(row pgx.Row) (*domain.StatementLine, error) {
	var (
		line                 domain.StatementLine
		status               string
		amount               pgtype.Numeric
		valueDate            pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&line.ID,
		&line.StatementID,
		&line.LineNo,
		&line.Description,
		&amount,
		&valueDate,
		&status,
		&line.MatchedEntryID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	line.Status = domain.LineStatus(status)
	line.Amount = numericToDecimal(amount)
	line.ValueDate = valueDate.Time
	line.CreatedAt = createdAt.Time
	line.UpdatedAt = updatedAt.Time

	return &line, nil
}
