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

// FiscalPeriodRepository implements usecase.FiscalPeriodRepository.
type FiscalPeriodRepository struct {
	pool *pgxpool.Pool
}

// NewFiscalPeriodRepository creates a new FiscalPeriodRepository.
func NewFiscalPeriodRepository(pool *pgxpool.Pool) *FiscalPeriodRepository {
	return &FiscalPeriodRepository{pool: pool}
}

// FindClosedContaining returns the closed period whose interval
// contains the date, or nil when no closed period matches. Interval
// ends are inclusive.
func (r *FiscalPeriodRepository) FindClosedContaining(ctx context.Context, tx usecase.Transaction, date time.Time) (*domain.FiscalPeriod, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT id, name, period_start, period_end, status, closed_by, closed_at, created_at
		FROM fiscal_periods
		WHERE status = 'closed' AND period_start <= $1 AND period_end >= $1
		LIMIT 1
	`

	var (
		period              domain.FiscalPeriod
		status              string
		start, end          pgtype.Timestamptz
		closedBy            pgtype.Text
		closedAt, createdAt pgtype.Timestamptz
	)

	err := pgxTx.QueryRow(ctx, query, timeToPgTimestamptz(date)).Scan(
		&period.ID,
		&period.Name,
		&start,
		&end,
		&status,
		&closedBy,
		&closedAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	period.Status = domain.PeriodStatus(status)
	period.Start = start.Time
	period.End = end.Time
	if closedBy.Valid {
		s := closedBy.String
		period.ClosedBy = &s
	}
	if closedAt.Valid {
		t := closedAt.Time
		period.ClosedAt = &t
	}
	period.CreatedAt = createdAt.Time

	return &period, nil
}
