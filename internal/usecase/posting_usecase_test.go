package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
	"github.com/iho/bankcore/internal/usecase/mocks"
)

type postingFixture struct {
	accountRepo *mocks.MockAccountRepository
	txnRepo     *mocks.MockTransactionRepository
	glRepo      *mocks.MockGLRepository
	fiscalRepo  *mocks.MockFiscalPeriodRepository
	alertRepo   *mocks.MockRiskAlertRepository
	auditRepo   *mocks.MockAuditRepository
	uc          *usecase.PostingUseCase
}

func newPostingFixture() *postingFixture {
	f := &postingFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		txnRepo:     mocks.NewMockTransactionRepository(),
		glRepo:      mocks.NewMockGLRepository(),
		fiscalRepo:  mocks.NewMockFiscalPeriodRepository(),
		alertRepo:   mocks.NewMockRiskAlertRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
	}

	f.glRepo.SeedAccount(&domain.GLAccount{
		ID:      "GL-1001",
		Code:    "1001",
		Name:    "Cash Vault",
		Type:    domain.GLTypeAsset,
		Balance: decimal.Zero,
	})
	f.glRepo.SeedAccount(&domain.GLAccount{
		ID:      "GL-2001",
		Code:    "2001",
		Name:    "Customer Deposits",
		Type:    domain.GLTypeLiability,
		Balance: decimal.Zero,
	})

	f.uc = usecase.NewPostingUseCase(
		mocks.NewMockTransactionManager(),
		f.accountRepo,
		f.txnRepo,
		f.glRepo,
		f.fiscalRepo,
		f.alertRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
		usecase.PostingConfig{
			GLVaultAccountID:    "GL-1001",
			GLDepositsAccountID: "GL-2001",
			ApprovalLimits: domain.ApprovalLimits{
				domain.RoleTeller:  decimal.NewFromInt(5000),
				domain.RoleFinance: decimal.NewFromInt(10000),
				domain.RoleManager: decimal.NewFromInt(100000),
				domain.RoleAdmin:   decimal.NewFromInt(1000000000),
			},
			LargeTxThreshold: decimal.NewFromInt(50000),
		},
		nil,
	)

	return f
}

func (f *postingFixture) seedAccount(id string, balance int64) *domain.Account {
	acc := &domain.Account{
		ID:         id,
		CustomerID: "cust-1",
		Name:       "test account",
		Type:       domain.AccountTypeSavings,
		Status:     domain.AccountStatusActive,
		Balance:    decimal.NewFromInt(balance),
	}
	f.accountRepo.Seed(acc)
	return acc
}

func TestPostingUseCase_CreateTransaction(t *testing.T) {
	tests := []struct {
		name          string
		input         usecase.CreateTransactionInput
		setup         func(*postingFixture)
		expectError   bool
		errorType     error
		expectStatus  domain.TransactionStatus
		expectBalance string
	}{
		{
			name: "credit posts immediately and moves the balance",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.DirectionCredit,
				Amount:      decimal.NewFromInt(500),
				Reference:   "cash deposit",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleTeller,
			},
			setup: func(f *postingFixture) {
				f.seedAccount("acc-1", 0)
			},
			expectStatus:  domain.TransactionStatusPosted,
			expectBalance: "500",
		},
		{
			name: "debit exceeding balance fails and leaves balance unchanged",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.DirectionDebit,
				Amount:      decimal.NewFromInt(700),
				Reference:   "cash withdrawal",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleTeller,
			},
			setup: func(f *postingFixture) {
				f.seedAccount("acc-1", 500)
			},
			expectError:   true,
			errorType:     domain.ErrInsufficientFunds,
			expectBalance: "500",
		},
		{
			name: "amount above the creator's limit gates for approval",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.DirectionCredit,
				Amount:      decimal.NewFromInt(150000),
				Reference:   "branch funding",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleFinance,
			},
			setup: func(f *postingFixture) {
				f.seedAccount("acc-1", 0)
			},
			expectStatus:  domain.TransactionStatusPending,
			expectBalance: "0",
		},
		{
			name: "zero amount rejected",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.DirectionCredit,
				Amount:      decimal.Zero,
				Reference:   "noop",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleTeller,
			},
			setup:       func(f *postingFixture) { f.seedAccount("acc-1", 0) },
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "negative amount rejected",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.DirectionCredit,
				Amount:      decimal.NewFromInt(-10),
				Reference:   "noop",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleTeller,
			},
			setup:       func(f *postingFixture) { f.seedAccount("acc-1", 0) },
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "unknown direction rejected",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.Direction("sideways"),
				Amount:      decimal.NewFromInt(100),
				Reference:   "noop",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleTeller,
			},
			setup:       func(f *postingFixture) { f.seedAccount("acc-1", 0) },
			expectError: true,
			errorType:   domain.ErrInvalidDirection,
		},
		{
			name: "unknown role rejected",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.DirectionCredit,
				Amount:      decimal.NewFromInt(100),
				Reference:   "noop",
				CreatorID:   "user-1",
				CreatorRole: domain.Role("auditor"),
			},
			setup:       func(f *postingFixture) { f.seedAccount("acc-1", 0) },
			expectError: true,
			errorType:   domain.ErrUnknownRole,
		},
		{
			name: "frozen account rejected",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-1",
				Direction:   domain.DirectionCredit,
				Amount:      decimal.NewFromInt(100),
				Reference:   "deposit",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleTeller,
			},
			setup: func(f *postingFixture) {
				acc := f.seedAccount("acc-1", 0)
				acc.Status = domain.AccountStatusFrozen
			},
			expectError: true,
			errorType:   domain.ErrAccountInactive,
		},
		{
			name: "missing account rejected",
			input: usecase.CreateTransactionInput{
				AccountID:   "acc-missing",
				Direction:   domain.DirectionCredit,
				Amount:      decimal.NewFromInt(100),
				Reference:   "deposit",
				CreatorID:   "user-1",
				CreatorRole: domain.RoleTeller,
			},
			setup:       func(f *postingFixture) {},
			expectError: true,
			errorType:   domain.ErrAccountNotFound,
		},
		{
			name: "effective date inside a closed period rejected",
			input: usecase.CreateTransactionInput{
				AccountID:     "acc-1",
				Direction:     domain.DirectionCredit,
				Amount:        decimal.NewFromInt(100),
				Reference:     "backdated deposit",
				EffectiveDate: timePtr(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)),
				CreatorID:     "user-1",
				CreatorRole:   domain.RoleTeller,
			},
			setup: func(f *postingFixture) {
				f.seedAccount("acc-1", 0)
				f.fiscalRepo.Seed(&domain.FiscalPeriod{
					ID:     "fp-1",
					Name:   "2025-03",
					Start:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
					End:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
					Status: domain.PeriodStatusClosed,
				})
			},
			expectError: true,
			errorType:   domain.ErrPeriodClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostingFixture()
			tt.setup(f)

			txn, err := f.uc.CreateTransaction(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if txn.Status != tt.expectStatus {
					t.Errorf("expected status %s, got %s", tt.expectStatus, txn.Status)
				}
			}

			if tt.expectBalance != "" {
				acc, getErr := f.accountRepo.GetByID(context.Background(), tt.input.AccountID)
				if getErr != nil {
					t.Fatalf("account lookup failed: %v", getErr)
				}
				if acc.Balance.String() != tt.expectBalance {
					t.Errorf("expected balance %s, got %s", tt.expectBalance, acc.Balance.String())
				}
			}
		})
	}
}

func TestPostingUseCase_CreateTransaction_GLPair(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-1", 0)

	txn, err := f.uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		AccountID:   "acc-1",
		Direction:   domain.DirectionCredit,
		Amount:      decimal.NewFromInt(500),
		Reference:   "cash deposit",
		CreatorID:   "user-1",
		CreatorRole: domain.RoleTeller,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := f.glRepo.GetEntriesByTransaction(context.Background(), txn.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 GL entries, got %d", len(entries))
	}

	var debits, credits int
	for _, e := range entries {
		if !e.Amount.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected entry amount 500, got %s", e.Amount.String())
		}
		switch e.Side {
		case domain.GLSideDebit:
			debits++
			if e.GLAccountID != "GL-1001" {
				t.Errorf("expected debit on vault, got %s", e.GLAccountID)
			}
		case domain.GLSideCredit:
			credits++
			if e.GLAccountID != "GL-2001" {
				t.Errorf("expected credit on deposits, got %s", e.GLAccountID)
			}
		}
	}
	if debits != 1 || credits != 1 {
		t.Errorf("expected one debit and one credit, got %d/%d", debits, credits)
	}

	// A customer credit grows both cash and the deposit liability.
	vault, _ := f.glRepo.GetAccountForUpdate(context.Background(), nil, "GL-1001")
	deposits, _ := f.glRepo.GetAccountForUpdate(context.Background(), nil, "GL-2001")
	if vault.Balance.String() != "500" {
		t.Errorf("expected vault balance 500, got %s", vault.Balance.String())
	}
	if deposits.Balance.String() != "500" {
		t.Errorf("expected deposits balance 500, got %s", deposits.Balance.String())
	}
}

func TestPostingUseCase_CreateTransaction_PendingHasNoEntries(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-1", 0)

	txn, err := f.uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		AccountID:   "acc-1",
		Direction:   domain.DirectionCredit,
		Amount:      decimal.NewFromInt(150000),
		Reference:   "branch funding",
		CreatorID:   "user-1",
		CreatorRole: domain.RoleFinance,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Status != domain.TransactionStatusPending {
		t.Fatalf("expected PENDING, got %s", txn.Status)
	}

	entries, err := f.glRepo.GetEntriesByTransaction(context.Background(), txn.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no GL entries for a pending transaction, got %d", len(entries))
	}
}

func TestPostingUseCase_CreateTransaction_LargeAmountOpensAlert(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-1", 0)

	_, err := f.uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		AccountID:   "acc-1",
		Direction:   domain.DirectionCredit,
		Amount:      decimal.NewFromInt(60000),
		Reference:   "treasury inflow",
		CreatorID:   "user-1",
		CreatorRole: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	alerts, err := f.alertRepo.ListOpen(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 open alert, got %d", len(alerts))
	}
	if !alerts[0].Amount.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("expected alert amount 60000, got %s", alerts[0].Amount.String())
	}
	if !alerts[0].Threshold.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected alert threshold 50000, got %s", alerts[0].Threshold.String())
	}
}

func TestPostingUseCase_Approve(t *testing.T) {
	pending := func(f *postingFixture) *domain.Transaction {
		f.seedAccount("acc-1", 0)
		txn := &domain.Transaction{
			ID:            "txn-1",
			AccountID:     "acc-1",
			Direction:     domain.DirectionCredit,
			Amount:        decimal.NewFromInt(150000),
			Status:        domain.TransactionStatusPending,
			Reference:     "branch funding",
			EffectiveDate: time.Now().UTC(),
			CreatorID:     "maker-1",
		}
		f.txnRepo.Seed(txn)
		return txn
	}

	t.Run("different approver posts the transaction", func(t *testing.T) {
		f := newPostingFixture()
		pending(f)

		txn, err := f.uc.Approve(context.Background(), "txn-1", "checker-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if txn.Status != domain.TransactionStatusPosted {
			t.Errorf("expected POSTED, got %s", txn.Status)
		}
		if txn.ApproverID == nil || *txn.ApproverID != "checker-1" {
			t.Error("expected approver recorded")
		}

		acc, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
		if acc.Balance.String() != "150000" {
			t.Errorf("expected balance 150000, got %s", acc.Balance.String())
		}
	})

	t.Run("creator cannot approve own transaction", func(t *testing.T) {
		f := newPostingFixture()
		pending(f)

		_, err := f.uc.Approve(context.Background(), "txn-1", "maker-1")
		if !errors.Is(err, domain.ErrSelfApprovalForbidden) {
			t.Fatalf("expected ErrSelfApprovalForbidden, got %v", err)
		}

		txn, _ := f.txnRepo.GetByID(context.Background(), "txn-1")
		if txn.Status != domain.TransactionStatusPending {
			t.Errorf("expected transaction to stay PENDING, got %s", txn.Status)
		}

		acc, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
		if !acc.Balance.IsZero() {
			t.Errorf("expected balance unchanged, got %s", acc.Balance.String())
		}

		var secEvents int
		for _, l := range f.auditRepo.Logs() {
			if l.Kind == domain.AuditKindSecurity {
				secEvents++
			}
		}
		if secEvents != 1 {
			t.Errorf("expected 1 security event, got %d", secEvents)
		}
	})

	t.Run("failed security event write is surfaced", func(t *testing.T) {
		f := newPostingFixture()
		pending(f)

		auditErr := errors.New("audit insert failed")
		f.auditRepo.CreateFunc = func(ctx context.Context, log *domain.AuditLog) error {
			return auditErr
		}

		_, err := f.uc.Approve(context.Background(), "txn-1", "maker-1")
		if !errors.Is(err, domain.ErrSelfApprovalForbidden) {
			t.Fatalf("expected ErrSelfApprovalForbidden, got %v", err)
		}
		if !strings.Contains(err.Error(), "security event not recorded") {
			t.Errorf("expected the unrecorded security event to be surfaced, got %v", err)
		}
	})

	t.Run("already posted cannot be approved", func(t *testing.T) {
		f := newPostingFixture()
		txn := pending(f)
		txn.Status = domain.TransactionStatusPosted

		_, err := f.uc.Approve(context.Background(), "txn-1", "checker-1")
		if !errors.Is(err, domain.ErrNotPending) {
			t.Fatalf("expected ErrNotPending, got %v", err)
		}
	})

	t.Run("missing transaction", func(t *testing.T) {
		f := newPostingFixture()

		_, err := f.uc.Approve(context.Background(), "txn-missing", "checker-1")
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("expected ErrTransactionNotFound, got %v", err)
		}
	})
}

func TestPostingUseCase_Reject(t *testing.T) {
	f := newPostingFixture()
	f.seedAccount("acc-1", 0)
	f.txnRepo.Seed(&domain.Transaction{
		ID:            "txn-1",
		AccountID:     "acc-1",
		Direction:     domain.DirectionCredit,
		Amount:        decimal.NewFromInt(150000),
		Status:        domain.TransactionStatusPending,
		Reference:     "branch funding",
		EffectiveDate: time.Now().UTC(),
		CreatorID:     "maker-1",
	})

	txn, err := f.uc.Reject(context.Background(), "txn-1", "checker-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Status != domain.TransactionStatusRejected {
		t.Errorf("expected REJECTED, got %s", txn.Status)
	}

	acc, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !acc.Balance.IsZero() {
		t.Errorf("expected balance unchanged, got %s", acc.Balance.String())
	}

	// The transition is terminal: no approval afterwards.
	if _, err := f.uc.Approve(context.Background(), "txn-1", "checker-2"); !errors.Is(err, domain.ErrNotPending) {
		t.Errorf("expected ErrNotPending after rejection, got %v", err)
	}
}

func TestPostingUseCase_Reverse(t *testing.T) {
	posted := func(f *postingFixture) *domain.Transaction {
		f.seedAccount("acc-1", 1000)
		txn := &domain.Transaction{
			ID:            "txn-1",
			AccountID:     "acc-1",
			Direction:     domain.DirectionCredit,
			Amount:        decimal.NewFromInt(300),
			Status:        domain.TransactionStatusPosted,
			Reference:     "cash deposit",
			EffectiveDate: time.Now().UTC(),
			CreatorID:     "maker-1",
		}
		f.txnRepo.Seed(txn)
		return txn
	}

	t.Run("reversal posts the opposite movement", func(t *testing.T) {
		f := newPostingFixture()
		posted(f)

		contra, err := f.uc.Reverse(context.Background(), "txn-1", "ops-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if contra.Direction != domain.DirectionDebit {
			t.Errorf("expected contra debit, got %s", contra.Direction)
		}
		if contra.ReversesID == nil || *contra.ReversesID != "txn-1" {
			t.Error("expected contra to reference the original")
		}

		acc, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
		if acc.Balance.String() != "700" {
			t.Errorf("expected balance 700, got %s", acc.Balance.String())
		}

		original, _ := f.txnRepo.GetByID(context.Background(), "txn-1")
		if !original.IsReversed() {
			t.Error("expected original marked reversed")
		}
	})

	t.Run("reversing twice fails", func(t *testing.T) {
		f := newPostingFixture()
		posted(f)

		if _, err := f.uc.Reverse(context.Background(), "txn-1", "ops-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.uc.Reverse(context.Background(), "txn-1", "ops-1"); !errors.Is(err, domain.ErrAlreadyReversed) {
			t.Fatalf("expected ErrAlreadyReversed, got %v", err)
		}
	})

	t.Run("pending cannot be reversed", func(t *testing.T) {
		f := newPostingFixture()
		txn := posted(f)
		txn.Status = domain.TransactionStatusPending

		if _, err := f.uc.Reverse(context.Background(), "txn-1", "ops-1"); !errors.Is(err, domain.ErrNotPosted) {
			t.Fatalf("expected ErrNotPosted, got %v", err)
		}
	})

	t.Run("reversing a reversal restores the balance", func(t *testing.T) {
		f := newPostingFixture()
		posted(f)

		contra, err := f.uc.Reverse(context.Background(), "txn-1", "ops-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.uc.Reverse(context.Background(), contra.ID, "ops-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		acc, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
		if acc.Balance.String() != "1000" {
			t.Errorf("expected balance 1000, got %s", acc.Balance.String())
		}
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
