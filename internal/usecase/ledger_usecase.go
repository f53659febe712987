package usecase

import (
	"context"
	"fmt"

	"github.com/iho/bankcore/internal/domain"
)

// LedgerUseCase exposes ledger-wide checks.
type LedgerUseCase struct {
	glRepo    GLRepository
	auditRepo AuditRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(glRepo GLRepository, auditRepo AuditRepository) *LedgerUseCase {
	return &LedgerUseCase{glRepo: glRepo, auditRepo: auditRepo}
}

// CheckConsistency verifies double-entry bookkeeping: the sum of all
// debit entries must equal the sum of all credit entries.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) error {
	totalDebits, totalCredits, err := uc.glRepo.CheckConsistency(ctx)
	if err != nil {
		return err
	}

	if !totalDebits.Equal(totalCredits) {
		return fmt.Errorf(
			"ledger inconsistency detected: debits=%s credits=%s difference=%s",
			totalDebits.String(),
			totalCredits.String(),
			totalDebits.Sub(totalCredits).String(),
		)
	}

	return nil
}

// AuditTrail returns the audit rows recorded against one entity.
func (uc *LedgerUseCase) AuditTrail(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error) {
	return uc.auditRepo.GetByEntity(ctx, entityType, entityID)
}
