package usecase

import (
	"context"
	"time"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// AlertUseCase handles the risk alert lifecycle. Alerts open on policy
// thresholds during posting; only explicit operator action resolves them.
type AlertUseCase struct {
	txManager TransactionManager
	alertRepo RiskAlertRepository
	auditRepo AuditRepository
	idGen     IDGenerator
	metrics   *metrics.Metrics
}

// NewAlertUseCase creates a new AlertUseCase.
func NewAlertUseCase(
	txManager TransactionManager,
	alertRepo RiskAlertRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AlertUseCase {
	return &AlertUseCase{
		txManager: txManager,
		alertRepo: alertRepo,
		auditRepo: auditRepo,
		idGen:     idGen,
		metrics:   m,
	}
}

// Resolve closes an open alert on operator authority.
func (uc *AlertUseCase) Resolve(ctx context.Context, alertID, actorID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	alert, err := uc.alertRepo.GetByIDForUpdate(txCtx, tx, alertID)
	if err != nil {
		return err
	}
	if alert.Status != domain.AlertStatusOpen {
		return domain.ErrAlertNotOpen
	}

	now := time.Now().UTC()
	if err := uc.alertRepo.Resolve(txCtx, tx, alertID, actorID, now); err != nil {
		return err
	}

	audit := newAuditLog(uc.idGen, actorID, domain.AuditActionAlertResolve, "risk_alert", alertID, alert, nil)
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.RiskAlertsResolved.Inc()
	}

	return nil
}

// ListOpen lists open alerts.
func (uc *AlertUseCase) ListOpen(ctx context.Context, limit, offset int) ([]*domain.RiskAlert, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.alertRepo.ListOpen(ctx, limit, offset)
}
