package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// LoanUseCase handles disbursement and the repayment waterfall. Both
// operations share the posting engine's balance/GL path so loan money
// movements stay double-entry balanced like any other movement.
type LoanUseCase struct {
	txManager   TransactionManager
	loanRepo    LoanRepository
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	fiscalRepo  FiscalPeriodRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	deps        postingDeps
	metrics     *metrics.Metrics
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	glRepo GLRepository,
	fiscalRepo FiscalPeriodRepository,
	alertRepo RiskAlertRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cfg PostingConfig,
	m *metrics.Metrics,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:   txManager,
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		fiscalRepo:  fiscalRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
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

// Disburse activates an APPROVED loan: generates the flat-interest
// schedule, credits the borrower's wallet with the full principal and
// marks the loan ACTIVE, all in one unit. On any failure the loan stays
// APPROVED and neither schedule nor credit persists.
func (uc *LoanUseCase) Disburse(ctx context.Context, loanID, actorID string) (*domain.Loan, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusApproved {
		return nil, domain.ErrLoanNotApproved
	}

	now := time.Now().UTC()

	if err := uc.checkFiscalPeriod(txCtx, tx, now); err != nil {
		return nil, err
	}

	wallet, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, loan.WalletAccountID)
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateActive(); err != nil {
		return nil, err
	}

	installments := loan.GenerateSchedule(now)
	for _, inst := range installments {
		inst.ID = uc.idGen.Generate()
		inst.CreatedAt = now
		inst.UpdatedAt = now
	}
	if err := uc.loanRepo.CreateInstallments(txCtx, tx, installments); err != nil {
		return nil, err
	}

	before := *loan
	loan.Status = domain.LoanStatusActive
	loan.DisbursedAt = &now
	loan.UpdatedAt = now

	if err := uc.loanRepo.UpdateStatus(txCtx, tx, loan.ID, domain.LoanStatusActive, &now, now); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		AccountID:     wallet.ID,
		Direction:     domain.DirectionCredit,
		Amount:        loan.Principal,
		Status:        domain.TransactionStatusPosted,
		Reference:     "loan disbursement " + loan.ID,
		EffectiveDate: now,
		CreatorID:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}
	if err := applyPosting(txCtx, tx, uc.deps, wallet, txn, now); err != nil {
		return nil, err
	}

	audit := newAuditLog(uc.idGen, actorID, domain.AuditActionLoanDisburse, "loan", loan.ID, &before, loan)
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansDisbursed.Inc()
	}

	return loan, nil
}

// RepayResult reports what a repayment left outstanding.
type RepayResult struct {
	Remaining decimal.Decimal
}

// Repay debits the borrower's wallet and allocates the payment across
// outstanding installments oldest-first. A payment exceeding the total
// outstanding is rejected before any debit. Debit and waterfall commit
// as one unit.
func (uc *LoanUseCase) Repay(ctx context.Context, loanID string, amount decimal.Decimal, actorID string) (*RepayResult, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, domain.ErrLoanNotActive
	}

	now := time.Now().UTC()

	if err := uc.checkFiscalPeriod(txCtx, tx, now); err != nil {
		return nil, err
	}

	installments, err := uc.loanRepo.GetOutstandingForUpdate(txCtx, tx, loanID)
	if err != nil {
		return nil, err
	}

	outstanding := domain.TotalOutstanding(installments)
	if amount.GreaterThan(outstanding) {
		return nil, domain.ErrOverpayment
	}

	wallet, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, loan.WalletAccountID)
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateActive(); err != nil {
		return nil, err
	}
	if err := wallet.ValidateDebit(amount); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		AccountID:     wallet.ID,
		Direction:     domain.DirectionDebit,
		Amount:        amount,
		Status:        domain.TransactionStatusPosted,
		Reference:     "loan repayment " + loan.ID,
		EffectiveDate: now,
		CreatorID:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}
	if err := applyPosting(txCtx, tx, uc.deps, wallet, txn, now); err != nil {
		return nil, err
	}

	domain.AllocatePayment(installments, amount)
	for _, inst := range installments {
		if inst.AmountPaid.IsZero() && inst.Status != domain.InstallmentStatusPaid {
			continue
		}
		inst.UpdatedAt = now
		if err := uc.loanRepo.UpdateInstallment(txCtx, tx, inst); err != nil {
			return nil, err
		}
	}

	remaining := outstanding.Sub(amount)
	if remaining.IsZero() {
		if err := uc.loanRepo.UpdateStatus(txCtx, tx, loan.ID, domain.LoanStatusClosed, loan.DisbursedAt, now); err != nil {
			return nil, err
		}
		loan.Status = domain.LoanStatusClosed
	}

	audit := newAuditLog(uc.idGen, actorID, domain.AuditActionLoanRepay, "loan", loan.ID, nil, map[string]any{
		"payment":   amount.String(),
		"remaining": remaining.String(),
	})
	if err := uc.auditRepo.CreateTx(txCtx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RepaymentsApplied.Inc()
		uc.metrics.RepaymentAmount.Observe(amount.InexactFloat64())
	}

	return &RepayResult{Remaining: remaining}, nil
}

// GetLoan retrieves a loan with its schedule.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, []*domain.Installment, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	installments, err := uc.loanRepo.GetInstallments(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return loan, installments, nil
}

// MarkOverdue promotes past-due installments, called by an external
// scheduler.
func (uc *LoanUseCase) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return uc.loanRepo.MarkOverdue(ctx, asOf.UTC())
}

func (uc *LoanUseCase) checkFiscalPeriod(ctx context.Context, tx Transaction, effectiveDate time.Time) error {
	period, err := uc.fiscalRepo.FindClosedContaining(ctx, tx, effectiveDate)
	if err != nil {
		return err
	}
	if period != nil {
		return domain.ErrPeriodClosed
	}

	return nil
}
