package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// ReconciliationUseCase pairs externally reported statement lines with
// internally posted GL entries, automatically on an exact rule and
// manually by operator override.
type ReconciliationUseCase struct {
	txManager     TransactionManager
	statementRepo StatementRepository
	glRepo        GLRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
	// Statement lines describe cash movements, so candidates come from
	// the vault GL account only.
	glVaultID string
	metrics   *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	statementRepo StatementRepository,
	glRepo GLRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	glVaultID string,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:     txManager,
		statementRepo: statementRepo,
		glRepo:        glRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
		glVaultID:     glVaultID,
		metrics:       m,
	}
}

// RegisterStatementInput describes an incoming bank statement.
type RegisterStatementInput struct {
	BankName    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	UploadedBy  string
}

// RegisterStatement records a bank statement so its lines can be
// uploaded against it.
func (uc *ReconciliationUseCase) RegisterStatement(ctx context.Context, input RegisterStatementInput) (*domain.BankStatement, error) {
	now := time.Now().UTC()
	st := &domain.BankStatement{
		ID:          uc.idGen.Generate(),
		BankName:    input.BankName,
		PeriodStart: input.PeriodStart.UTC(),
		PeriodEnd:   input.PeriodEnd.UTC(),
		UploadedBy:  input.UploadedBy,
		CreatedAt:   now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.statementRepo.CreateStatement(txCtx, tx, st); err != nil {
		return nil, err
	}

	audit := newAuditLog(uc.idGen, input.UploadedBy, domain.AuditActionStatementUpload, "bank_statement", st.ID, nil, st)
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return st, nil
}

// LineInput is one parsed statement line handed in by the upload layer.
type LineInput struct {
	LineNo      int
	Description string
	Amount      decimal.Decimal
	ValueDate   time.Time
}

// UploadLines persists parsed statement lines. Re-uploading the same
// lines is safe: pairs already present are skipped, so the returned
// count is the number actually inserted.
func (uc *ReconciliationUseCase) UploadLines(ctx context.Context, statementID, actorID string, inputs []LineInput) (int, error) {
	if _, err := uc.statementRepo.GetStatement(ctx, statementID); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	lines := make([]*domain.StatementLine, 0, len(inputs))
	for _, in := range inputs {
		if err := domain.ValidateAmount(in.Amount); err != nil {
			return 0, err
		}

		lines = append(lines, &domain.StatementLine{
			ID:          uc.idGen.Generate(),
			StatementID: statementID,
			LineNo:      in.LineNo,
			Description: in.Description,
			Amount:      in.Amount,
			ValueDate:   in.ValueDate.UTC(),
			Status:      domain.LineStatusUnmatched,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	inserted, err := uc.statementRepo.CreateLines(txCtx, tx, lines)
	if err != nil {
		return 0, err
	}

	audit := newAuditLog(uc.idGen, actorID, domain.AuditActionStatementUpload, "bank_statement", statementID, nil, map[string]any{
		"lines":    len(inputs),
		"inserted": inserted,
	})
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return 0, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, err
	}

	return inserted, nil
}

// AutoReconcileResult reports the outcome of an automatic pass.
type AutoReconcileResult struct {
	MatchedCount   int
	UnmatchedCount int
}

// AutoReconcile runs the automatic pass: for each unmatched line, find
// unreconciled vault entries with exactly equal amount within one day
// of the value date and link only a unique hit. Ambiguous or
// candidate-less lines stay unmatched for manual resolution. Each
// matched pair commits in its own short unit; no lock spans the
// whole statement.
func (uc *ReconciliationUseCase) AutoReconcile(ctx context.Context, statementID string) (*AutoReconcileResult, error) {
	lines, err := uc.statementRepo.ListUnmatched(ctx, statementID)
	if err != nil {
		return nil, err
	}

	result := &AutoReconcileResult{}
	for _, line := range lines {
		matched, err := uc.matchLine(ctx, line)
		if err != nil {
			return result, err
		}
		if matched {
			result.MatchedCount++
		} else {
			result.UnmatchedCount++
		}
	}

	if uc.metrics != nil {
		uc.metrics.LinesAutoMatched.Add(float64(result.MatchedCount))
	}

	return result, nil
}

// matchLine attempts one line inside its own unit.
func (uc *ReconciliationUseCase) matchLine(ctx context.Context, line *domain.StatementLine) (bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Re-read under lock; another pass may have matched it meanwhile.
	locked, err := uc.statementRepo.GetLineForUpdate(txCtx, tx, line.ID)
	if err != nil {
		return false, err
	}
	if locked.Status != domain.LineStatusUnmatched {
		return false, nil
	}

	from := locked.ValueDate.Add(-domain.ReconcileWindow)
	to := locked.ValueDate.Add(domain.ReconcileWindow)

	candidates, err := uc.glRepo.FindUnmatchedEntries(txCtx, tx, uc.glVaultID, locked.Amount, from, to)
	if err != nil {
		return false, err
	}

	// The SQL window fetches and locks candidates; the domain rule
	// decides, and only a unique hit links.
	var entry *domain.GLEntry
	for _, candidate := range candidates {
		if !locked.MatchesEntry(candidate) {
			continue
		}
		if entry != nil {
			return false, nil
		}
		entry = candidate
	}
	if entry == nil {
		return false, nil
	}

	now := time.Now().UTC()

	if err := uc.link(txCtx, tx, locked, entry, now); err != nil {
		return false, err
	}

	audit := newAuditLog(uc.idGen, "system", domain.AuditActionLineAutoMatch, "statement_line", locked.ID, nil, map[string]any{
		"entry_id": entry.ID,
		"amount":   locked.Amount.String(),
	})
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return false, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return false, err
	}

	return true, nil
}

// ManualMatch links a line and an entry on operator authority,
// bypassing the amount/date rule. Matching an already-linked pair again
// is a no-op; linking either side to something else fails.
func (uc *ReconciliationUseCase) ManualMatch(ctx context.Context, lineID, entryID, actorID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	line, err := uc.statementRepo.GetLineForUpdate(txCtx, tx, lineID)
	if err != nil {
		return err
	}

	entry, err := uc.glRepo.GetEntryForUpdate(txCtx, tx, entryID)
	if err != nil {
		return err
	}

	if line.Status == domain.LineStatusMatched {
		if line.MatchedEntryID != nil && *line.MatchedEntryID == entryID {
			return nil // retry of the same match
		}
		return domain.ErrAlreadyMatched
	}
	if entry.StatementLineID != nil {
		return domain.ErrAlreadyMatched
	}

	now := time.Now().UTC()

	if err := uc.link(txCtx, tx, line, entry, now); err != nil {
		return err
	}

	audit := newAuditLog(uc.idGen, actorID, domain.AuditActionLineManualMatch, "statement_line", line.ID, nil, map[string]any{
		"entry_id": entry.ID,
	})
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.LinesManuallyMatched.Inc()
	}

	return nil
}

// ListUnmatched returns a statement's still-unmatched lines.
func (uc *ReconciliationUseCase) ListUnmatched(ctx context.Context, statementID string) ([]*domain.StatementLine, error) {
	return uc.statementRepo.ListUnmatched(ctx, statementID)
}

// link marks both sides matched and cross-references them.
func (uc *ReconciliationUseCase) link(ctx context.Context, tx Transaction, line *domain.StatementLine, entry *domain.GLEntry, now time.Time) error {
	if err := uc.statementRepo.MarkMatched(ctx, tx, line.ID, entry.ID, now); err != nil {
		return err
	}
	if err := uc.glRepo.SetStatementLine(ctx, tx, entry.ID, line.ID); err != nil {
		return err
	}

	line.Status = domain.LineStatusMatched
	line.MatchedEntryID = &entry.ID
	entry.StatementLineID = &line.ID

	return nil
}
