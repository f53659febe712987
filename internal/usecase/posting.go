package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// postingDeps bundles everything needed to apply a posted movement
// inside an open unit. Shared by the posting and loan use cases so
// disbursement and repayment reuse the exact same balance/GL path.
type postingDeps struct {
	accountRepo AccountRepository
	glRepo      GLRepository
	alertRepo   RiskAlertRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics

	glVaultID        string
	glDepositsID     string
	largeTxThreshold decimal.Decimal
}

// applyPosting applies a POSTED transaction's effect: account balance
// delta, the balanced GL pair with running-balance updates, and a risk
// alert when the amount crosses the threshold. The account row must
// already be locked by the caller and the transaction row already
// written; every write lands in the caller's unit so a failure rolls
// back the whole movement.
func applyPosting(ctx context.Context, tx Transaction, deps postingDeps, account *domain.Account, txn *domain.Transaction, now time.Time) error {
	if txn.Direction == domain.DirectionDebit {
		if err := account.ValidateDebit(txn.Amount); err != nil {
			return err
		}
	}

	var newBalance decimal.Decimal
	if txn.Direction == domain.DirectionCredit {
		newBalance = account.ApplyCredit(txn.Amount)
	} else {
		newBalance = account.ApplyDebit(txn.Amount)
	}

	if err := deps.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}
	account.Balance = newBalance
	account.Version++

	if err := applyGLPair(ctx, tx, deps, txn, now); err != nil {
		return err
	}

	if deps.largeTxThreshold.IsPositive() && txn.Amount.GreaterThan(deps.largeTxThreshold) {
		alert := &domain.RiskAlert{
			ID:            deps.idGen.Generate(),
			TransactionID: txn.ID,
			AccountID:     account.ID,
			Amount:        txn.Amount,
			Threshold:     deps.largeTxThreshold,
			Reason:        "amount exceeds large transaction threshold",
			Status:        domain.AlertStatusOpen,
			CreatedAt:     now,
		}
		if err := deps.alertRepo.Create(ctx, tx, alert); err != nil {
			return err
		}
		if deps.metrics != nil {
			deps.metrics.RiskAlertsOpened.Inc()
		}
	}

	return nil
}

// applyGLPair writes the balanced debit/credit pair and moves each GL
// account's running balance by its own signed effect. GL rows are
// locked in sorted ID order to keep lock acquisition deterministic.
func applyGLPair(ctx context.Context, tx Transaction, deps postingDeps, txn *domain.Transaction, now time.Time) error {
	ids := []string{deps.glVaultID, deps.glDepositsID}
	sort.Strings(ids)

	glAccounts := make(map[string]*domain.GLAccount, 2)
	for _, id := range ids {
		gl, err := deps.glRepo.GetAccountForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		glAccounts[id] = gl
	}

	vaultEntry, depositsEntry := domain.BalancedPair(txn, deps.glVaultID, deps.glDepositsID)
	vaultEntry.ID = deps.idGen.Generate()
	vaultEntry.CreatedAt = now
	depositsEntry.ID = deps.idGen.Generate()
	depositsEntry.CreatedAt = now

	for _, entry := range []*domain.GLEntry{&vaultEntry, &depositsEntry} {
		if err := deps.glRepo.CreateEntry(ctx, tx, entry); err != nil {
			return err
		}

		gl := glAccounts[entry.GLAccountID]
		newBalance := gl.Balance.Add(gl.SignedEffect(entry.Side, entry.Amount))
		if err := deps.glRepo.UpdateAccountBalance(ctx, tx, gl.ID, newBalance, now); err != nil {
			return err
		}
		gl.Balance = newBalance
	}

	return nil
}
