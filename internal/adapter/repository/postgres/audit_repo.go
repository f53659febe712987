package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

const auditColumns = `id, actor_id, action, entity_type, entity_id, kind,
	before_state, after_state, status, error_message, created_at`

// AuditRepository implements usecase.AuditRepository. Rows are
// append-only; there is no update or delete path.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts an audit row outside any unit. Used for events that
// must survive a rolled-back unit, like blocked self-approvals.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query, args, err := insertAuditArgs(log)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return err
}

// CreateTx inserts an audit row inside the caller's unit so the trail
// commits atomically with the state change it describes.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	pgxTx := tx.(*Tx).PgxTx()

	query, args, err := insertAuditArgs(log)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, query, args...)

	return err
}

// List retrieves audit rows with filtering, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE 1=1`
	args := []any{}

	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.StartDate))
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.EndDate))
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuditLogs(rows)
}

// GetByEntity retrieves the full trail for one entity, oldest first.
func (r *AuditRepository) GetByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + ` FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuditLogs(rows)
}

func insertAuditArgs(log *domain.AuditLog) (string, []any, error) {
	var beforeJSON, afterJSON []byte
	var err error

	if log.BeforeState != nil {
		beforeJSON, err = json.Marshal(log.BeforeState)
		if err != nil {
			return "", nil, err
		}
	}
	if log.AfterState != nil {
		afterJSON, err = json.Marshal(log.AfterState)
		if err != nil {
			return "", nil, err
		}
	}

	query := `
		INSERT INTO audit_logs (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	args := []any{
		log.ID,
		log.ActorID,
		log.Action,
		log.EntityType,
		log.EntityID,
		string(log.Kind),
		beforeJSON,
		afterJSON,
		log.Status,
		log.ErrorMessage,
		timeToPgTimestamptz(log.CreatedAt),
	}

	return query, args, nil
}

func collectAuditLogs(rows pgx.Rows) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			entry                 domain.AuditLog
			kind                  string
			beforeJSON, afterJSON []byte
			createdAt             pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&kind,
			&beforeJSON,
			&afterJSON,
			&entry.Status,
			&entry.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Kind = domain.AuditKind(kind)
		if len(beforeJSON) > 0 {
			_ = json.Unmarshal(beforeJSON, &entry.BeforeState)
		}
		if len(afterJSON) > 0 {
			_ = json.Unmarshal(afterJSON, &entry.AfterState)
		}
		entry.CreatedAt = createdAt.Time

		logs = append(logs, &entry)
	}

	return logs, rows.Err()
}
