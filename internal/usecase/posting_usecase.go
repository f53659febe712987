package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// PostingUseCase turns movement requests into consistent double-entry
// state changes. It owns the fiscal period guard, the maker-checker
// approval gate and the reversal path; every mutating operation runs as
// one database transaction with the account row locked throughout.
type PostingUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	glRepo      GLRepository
	fiscalRepo  FiscalPeriodRepository
	alertRepo   RiskAlertRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	limits      domain.ApprovalLimits
	deps        postingDeps
	metrics     *metrics.Metrics
}

// PostingConfig carries institution configuration resolved once at
// bootstrap: seeded GL account IDs, role limits and the risk threshold.
type PostingConfig struct {
	GLVaultAccountID    string
	GLDepositsAccountID string
	ApprovalLimits      domain.ApprovalLimits
	LargeTxThreshold    decimal.Decimal
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	glRepo GLRepository,
	fiscalRepo FiscalPeriodRepository,
	alertRepo RiskAlertRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cfg PostingConfig,
	m *metrics.Metrics,
) *PostingUseCase {
	return &PostingUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		glRepo:      glRepo,
		fiscalRepo:  fiscalRepo,
		alertRepo:   alertRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		limits:      cfg.ApprovalLimits,
		deps: postingDeps{
			accountRepo:      accountRepo,
			glRepo:           glRepo,
			alertRepo:        alertRepo,
			idGen:            idGen,
			metrics:          m,
			glVaultID:        cfg.GLVaultAccountID,
			glDepositsID:     cfg.GLDepositsAccountID,
			largeTxThreshold: cfg.LargeTxThreshold,
		},
		metrics: m,
	}
}

// CreateTransactionInput represents a requested monetary movement.
type CreateTransactionInput struct {
	AccountID     string
	Direction     domain.Direction
	Amount        decimal.Decimal
	Reference     string
	EffectiveDate *time.Time
	CreatorID     string
	CreatorRole   domain.Role
}

// CreateTransaction validates a movement request, checks the fiscal
// period guard and the approval gate, and either posts the movement
// immediately or records it PENDING for a second approver.
func (uc *PostingUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.Direction.IsValid() {
		return nil, domain.ErrInvalidDirection
	}
	if err := domain.ValidateReference(input.Reference); err != nil {
		return nil, err
	}

	needsApproval, err := uc.limits.RequiresApproval(input.CreatorRole, input.Amount)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()

	effectiveDate := now
	if input.EffectiveDate != nil {
		effectiveDate = input.EffectiveDate.UTC()
	}

	if err := uc.checkFiscalPeriod(txCtx, tx, effectiveDate); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateActive(); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		AccountID:     input.AccountID,
		Direction:     input.Direction,
		Amount:        input.Amount,
		Reference:     input.Reference,
		EffectiveDate: effectiveDate,
		CreatorID:     input.CreatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if needsApproval {
		txn.Status = domain.TransactionStatusPending

		if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
			return nil, err
		}

		audit := newAuditLog(uc.idGen, input.CreatorID, domain.AuditActionTransactionCreate, "transaction", txn.ID, nil, txn)
		if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
			return nil, err
		}

		if err := tx.Commit(txCtx); err != nil {
			return nil, err
		}

		if uc.metrics != nil {
			uc.metrics.TransactionsPending.Inc()
		}

		return txn, nil
	}

	txn.Status = domain.TransactionStatusPosted

	if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}
	if err := applyPosting(txCtx, tx, uc.deps, account, txn, now); err != nil {
		return nil, err
	}

	audit := newAuditLog(uc.idGen, input.CreatorID, domain.AuditActionTransactionPost, "transaction", txn.ID, nil, txn)
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsPosted.Inc()
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
	}

	return txn, nil
}

// Approve posts a PENDING transaction after the maker-checker check.
// The self-approval check runs inside the same unit as the write; an
// attempted violation is persisted as a security event even though the
// unit itself rolls back.
func (uc *PostingUseCase) Approve(ctx context.Context, transactionID, approverID string) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	txn, err := uc.txnRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil, domain.ErrNotPending
	}

	if approverID == txn.CreatorID {
		// The unit rolls back; the security event must survive it.
		_ = tx.Rollback(txCtx)

		event := newAuditLog(uc.idGen, approverID, domain.AuditActionSelfApprovalAttempt, "transaction", txn.ID, txn, nil)
		event.Kind = domain.AuditKindSecurity
		event.Status = string(domain.AuditStatusFailure)
		event.ErrorMessage = domain.ErrSelfApprovalForbidden.Error()
		if auditErr := uc.auditRepo.Create(ctx, event); auditErr != nil {
			return nil, fmt.Errorf("%w (security event not recorded: %v)", domain.ErrSelfApprovalForbidden, auditErr)
		}

		if uc.metrics != nil {
			uc.metrics.SecurityEvents.Inc()
		}

		return nil, domain.ErrSelfApprovalForbidden
	}

	now := time.Now().UTC()

	if err := uc.checkFiscalPeriod(txCtx, tx, txn.EffectiveDate); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, txn.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateActive(); err != nil {
		return nil, err
	}

	before := *txn
	txn.Status = domain.TransactionStatusPosted
	txn.ApproverID = &approverID
	txn.UpdatedAt = now

	if err := uc.txnRepo.UpdateStatus(txCtx, tx, txn.ID, domain.TransactionStatusPosted, &approverID, now); err != nil {
		return nil, err
	}
	if err := applyPosting(txCtx, tx, uc.deps, account, txn, now); err != nil {
		return nil, err
	}

	audit := newAuditLog(uc.idGen, approverID, domain.AuditActionTransactionApprove, "transaction", txn.ID, &before, txn)
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsApproved.Inc()
	}

	return txn, nil
}

// Reject moves a PENDING transaction to REJECTED with no balance effect.
// The transition is terminal.
func (uc *PostingUseCase) Reject(ctx context.Context, transactionID, approverID string) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	txn, err := uc.txnRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil, domain.ErrNotPending
	}

	now := time.Now().UTC()
	before := *txn
	txn.Status = domain.TransactionStatusRejected
	txn.ApproverID = &approverID
	txn.UpdatedAt = now

	if err := uc.txnRepo.UpdateStatus(txCtx, tx, txn.ID, domain.TransactionStatusRejected, &approverID, now); err != nil {
		return nil, err
	}

	audit := newAuditLog(uc.idGen, approverID, domain.AuditActionTransactionReject, "transaction", txn.ID, &before, txn)
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsRejected.Inc()
	}

	return txn, nil
}

// Reverse synthesizes a contra transaction undoing a POSTED movement.
// The already-reversed check is evaluated under the same row lock as
// the write, closing the race between check and commit. The original
// row keeps its status; only the reversal link marks it reversed.
func (uc *PostingUseCase) Reverse(ctx context.Context, transactionID, actorID string) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	original, err := uc.txnRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.TransactionStatusPosted {
		return nil, domain.ErrNotPosted
	}
	if original.IsReversed() {
		return nil, domain.ErrAlreadyReversed
	}

	now := time.Now().UTC()

	if err := uc.checkFiscalPeriod(txCtx, tx, now); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, original.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateActive(); err != nil {
		return nil, err
	}

	contra := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		AccountID:     original.AccountID,
		Direction:     original.Direction.Opposite(),
		Amount:        original.Amount,
		Status:        domain.TransactionStatusPosted,
		Reference:     "reversal of " + original.ID,
		EffectiveDate: now,
		CreatorID:     actorID,
		ReversesID:    &original.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.txnRepo.Create(txCtx, tx, contra); err != nil {
		return nil, err
	}
	if err := applyPosting(txCtx, tx, uc.deps, account, contra, now); err != nil {
		return nil, err
	}
	if err := uc.txnRepo.SetReversal(txCtx, tx, original.ID, contra.ID, now); err != nil {
		return nil, err
	}

	audit := newAuditLog(uc.idGen, actorID, domain.AuditActionTransactionReverse, "transaction", original.ID, original, contra)
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsReversed.Inc()
	}

	return contra, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *PostingUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// GetEntries retrieves the GL entries produced by a transaction.
func (uc *PostingUseCase) GetEntries(ctx context.Context, transactionID string) ([]*domain.GLEntry, error) {
	return uc.glRepo.GetEntriesByTransaction(ctx, transactionID)
}

// ListByAccount lists transactions for an account.
func (uc *PostingUseCase) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.txnRepo.ListByAccount(ctx, accountID, limit, offset)
}

// GetAccount retrieves an account with its cached balance.
func (uc *PostingUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// checkFiscalPeriod rejects the posting attempt when a closed period
// contains the effective date. Runs inside the unit, before any write.
func (uc *PostingUseCase) checkFiscalPeriod(ctx context.Context, tx Transaction, effectiveDate time.Time) error {
	period, err := uc.fiscalRepo.FindClosedContaining(ctx, tx, effectiveDate)
	if err != nil {
		return err
	}
	if period != nil {
		return domain.ErrPeriodClosed
	}

	return nil
}

// newAuditLog builds the append-only trail row every state change writes.
func newAuditLog(idGen IDGenerator, actorID string, action domain.AuditAction, entityType, entityID string, before, after any) *domain.AuditLog {
	return &domain.AuditLog{
		ID:          idGen.Generate(),
		ActorID:     actorID,
		Action:      string(action),
		EntityType:  entityType,
		EntityID:    entityID,
		Kind:        domain.AuditKindAudit,
		BeforeState: domain.MarshalState(before),
		AfterState:  domain.MarshalState(after),
		Status:      string(domain.AuditStatusSuccess),
		CreatedAt:   time.Now().UTC(),
	}
}
