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

const riskAlertColumns = `id, transaction_id, account_id, amount, threshold,
	reason, status, resolved_by, resolved_at, created_at`

// RiskAlertRepository implements usecase.RiskAlertRepository.
type RiskAlertRepository struct {
	pool *pgxpool.Pool
}

// NewRiskAlertRepository creates a new RiskAlertRepository.
func NewRiskAlertRepository(pool *pgxpool.Pool) *RiskAlertRepository {
	return &RiskAlertRepository{pool: pool}
}

// Create inserts an alert inside the caller's unit so it commits or
// rolls back with the posting that raised it.
func (r *RiskAlertRepository) Create(ctx context.Context, tx usecase.Transaction, alert *domain.RiskAlert) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO risk_alerts (` + riskAlertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := pgxTx.Exec(ctx, query,
		alert.ID,
		alert.TransactionID,
		alert.AccountID,
		decimalToNumeric(alert.Amount),
		decimalToNumeric(alert.Threshold),
		alert.Reason,
		string(alert.Status),
		alert.ResolvedBy,
		alert.ResolvedAt,
		timeToPgTimestamptz(alert.CreatedAt),
	)

	return err
}

// GetByIDForUpdate retrieves an alert with a FOR UPDATE lock.
func (r *RiskAlertRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RiskAlert, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + riskAlertColumns + ` FROM risk_alerts WHERE id = $1 FOR UPDATE`

	return scanRiskAlert(pgxTx.QueryRow(ctx, query, id))
}

// Resolve closes an alert and records who resolved it.
func (r *RiskAlertRepository) Resolve(ctx context.Context, tx usecase.Transaction, id, actorID string, resolvedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE risk_alerts
		SET status = 'resolved', resolved_by = $2, resolved_at = $3
		WHERE id = $1
	`

	_, err := pgxTx.Exec(ctx, query, id, actorID, timeToPgTimestamptz(resolvedAt))

	return err
}

// ListOpen lists open alerts, newest first.
func (r *RiskAlertRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.RiskAlert, error) {
	query := `
		SELECT ` + riskAlertColumns + ` FROM risk_alerts
		WHERE status = 'open'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.RiskAlert
	for rows.Next() {
		alert, err := scanRiskAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

func scanRiskAlert(row pgx.Row) (*domain.RiskAlert, error) {
	var (
		alert                 domain.RiskAlert
		status                string
		amount, threshold     pgtype.Numeric
		resolvedBy            pgtype.Text
		resolvedAt, createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&alert.ID,
		&alert.TransactionID,
		&alert.AccountID,
		&amount,
		&threshold,
		&alert.Reason,
		&status,
		&resolvedBy,
		&resolvedAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, err
	}

	alert.Status = domain.AlertStatus(status)
	alert.Amount = numericToDecimal(amount)
	alert.Threshold = numericToDecimal(threshold)
	if resolvedBy.Valid {
		s := resolvedBy.String
		alert.ResolvedBy = &s
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		alert.ResolvedAt = &t
	}
	alert.CreatedAt = createdAt.Time

	return &alert, nil
}
