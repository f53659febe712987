package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBalancedPair(t *testing.T) {
	effective := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		direction    Direction
		vaultSide    GLSide
		depositsSide GLSide
	}{
		{
			name:         "customer credit debits vault",
			direction:    DirectionCredit,
			vaultSide:    GLSideDebit,
			depositsSide: GLSideCredit,
		},
		{
			name:         "customer debit credits vault",
			direction:    DirectionDebit,
			vaultSide:    GLSideCredit,
			depositsSide: GLSideDebit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &Transaction{
				ID:            "txn-1",
				Direction:     tt.direction,
				Amount:        decimal.NewFromInt(500),
				EffectiveDate: effective,
			}

			vault, deposits := BalancedPair(txn, "gl-vault", "gl-deposits")

			if vault.Side != tt.vaultSide {
				t.Errorf("vault side = %s, want %s", vault.Side, tt.vaultSide)
			}
			if deposits.Side != tt.depositsSide {
				t.Errorf("deposits side = %s, want %s", deposits.Side, tt.depositsSide)
			}
			if !vault.Amount.Equal(deposits.Amount) {
				t.Errorf("pair not balanced: %s vs %s", vault.Amount, deposits.Amount)
			}
			if vault.TransactionID != "txn-1" || deposits.TransactionID != "txn-1" {
				t.Error("entries must reference the producing transaction")
			}
			if vault.Side == deposits.Side {
				t.Error("pair must have one debit and one credit")
			}
		})
	}
}

func TestGLAccount_SignedEffect(t *testing.T) {
	amount := decimal.NewFromInt(100)

	asset := &GLAccount{Type: GLTypeAsset}
	if got := asset.SignedEffect(GLSideDebit, amount); !got.Equal(amount) {
		t.Errorf("asset debit effect = %s, want 100", got)
	}
	if got := asset.SignedEffect(GLSideCredit, amount); !got.Equal(amount.Neg()) {
		t.Errorf("asset credit effect = %s, want -100", got)
	}

	liability := &GLAccount{Type: GLTypeLiability}
	if got := liability.SignedEffect(GLSideCredit, amount); !got.Equal(amount) {
		t.Errorf("liability credit effect = %s, want 100", got)
	}
	if got := liability.SignedEffect(GLSideDebit, amount); !got.Equal(amount.Neg()) {
		t.Errorf("liability debit effect = %s, want -100", got)
	}
}
