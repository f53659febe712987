package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
	"github.com/iho/bankcore/internal/usecase/mocks"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name        string
		debits      decimal.Decimal
		credits     decimal.Decimal
		expectError bool
	}{
		{
			name:    "balanced ledger",
			debits:  decimal.NewFromInt(1000),
			credits: decimal.NewFromInt(1000),
		},
		{
			name:    "empty ledger",
			debits:  decimal.Zero,
			credits: decimal.Zero,
		},
		{
			name:        "unbalanced ledger",
			debits:      decimal.NewFromInt(1000),
			credits:     decimal.NewFromInt(999),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glRepo := mocks.NewMockGLRepository()
			glRepo.CheckConsistencyFunc = func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
				return tt.debits, tt.credits, nil
			}

			uc := usecase.NewLedgerUseCase(glRepo, mocks.NewMockAuditRepository())
			err := uc.CheckConsistency(context.Background())

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "ledger inconsistency") {
					t.Errorf("unexpected error message: %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLedgerUseCase_AuditTrail(t *testing.T) {
	auditRepo := mocks.NewMockAuditRepository()
	uc := usecase.NewLedgerUseCase(mocks.NewMockGLRepository(), auditRepo)

	_ = auditRepo.Create(context.Background(), &domain.AuditLog{
		ID: "log-1", ActorID: "user-1", Action: string(domain.AuditActionTransactionPost),
		EntityType: "transaction", EntityID: "txn-1",
	})
	_ = auditRepo.Create(context.Background(), &domain.AuditLog{
		ID: "log-2", ActorID: "user-2", Action: string(domain.AuditActionTransactionReverse),
		EntityType: "transaction", EntityID: "txn-1",
	})
	_ = auditRepo.Create(context.Background(), &domain.AuditLog{
		ID: "log-3", ActorID: "user-1", Action: string(domain.AuditActionLoanDisburse),
		EntityType: "loan", EntityID: "loan-1",
	})

	logs, err := uc.AuditTrail(context.Background(), "transaction", "txn-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(logs))
	}
}
