package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoan_GenerateSchedule(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("flat interest split", func(t *testing.T) {
		loan := &Loan{
			ID:           "loan-1",
			Principal:    decimal.NewFromInt(120000),
			AnnualRate:   decimal.RequireFromString("0.12"),
			TenureMonths: 12,
		}

		installments := loan.GenerateSchedule(start)
		require.Len(t, installments, 12)

		want := decimal.RequireFromString("11200.00")
		for _, inst := range installments {
			assert.True(t, inst.AmountDue.Equal(want), "installment %d due = %s, want %s", inst.Sequence, inst.AmountDue, want)
			assert.Equal(t, InstallmentStatusPending, inst.Status)
		}

		assert.True(t, installments[0].DueDate.Equal(start.AddDate(0, 1, 0)), "first due date = %s", installments[0].DueDate)
		assert.True(t, installments[11].DueDate.Equal(start.AddDate(0, 12, 0)), "last due date = %s", installments[11].DueDate)
	})

	t.Run("rounding drift lands on last installment", func(t *testing.T) {
		loan := &Loan{
			Principal:    decimal.NewFromInt(100000),
			AnnualRate:   decimal.RequireFromString("0.10"),
			TenureMonths: 7,
		}

		installments := loan.GenerateSchedule(start)

		totalPrincipal := decimal.Zero
		totalInterest := decimal.Zero
		for _, inst := range installments {
			totalPrincipal = totalPrincipal.Add(inst.PrincipalDue)
			totalInterest = totalInterest.Add(inst.InterestDue)
		}

		assert.True(t, totalPrincipal.Equal(loan.Principal), "principal sum = %s, want %s", totalPrincipal, loan.Principal)

		wantInterest := decimal.RequireFromString("5833.33") // 100000 * 0.10 * 7/12
		assert.True(t, totalInterest.Equal(wantInterest), "interest sum = %s, want %s", totalInterest, wantInterest)
	})
}

func TestAllocatePayment(t *testing.T) {
	due := func(n int64) *Installment {
		return &Installment{
			Sequence:   int(n),
			DueDate:    time.Date(2026, time.Month(n), 1, 0, 0, 0, 0, time.UTC),
			AmountDue:  decimal.NewFromInt(1000),
			AmountPaid: decimal.Zero,
			Status:     InstallmentStatusPending,
		}
	}

	t.Run("exact sum of first k installments", func(t *testing.T) {
		installments := []*Installment{due(1), due(2), due(3)}

		leftover := AllocatePayment(installments, decimal.NewFromInt(2000))

		assert.True(t, leftover.IsZero(), "leftover = %s, want 0", leftover)
		assert.Equal(t, InstallmentStatusPaid, installments[0].Status)
		assert.Equal(t, InstallmentStatusPaid, installments[1].Status)
		assert.Equal(t, InstallmentStatusPending, installments[2].Status)
		assert.True(t, installments[2].AmountPaid.IsZero(), "third installment must be untouched")
	})

	t.Run("partial fill of next installment", func(t *testing.T) {
		installments := []*Installment{due(1), due(2)}

		leftover := AllocatePayment(installments, decimal.NewFromInt(1500))

		assert.True(t, leftover.IsZero(), "leftover = %s, want 0", leftover)
		assert.Equal(t, InstallmentStatusPaid, installments[0].Status)
		assert.Equal(t, InstallmentStatusPartial, installments[1].Status)
		assert.True(t, installments[1].AmountPaid.Equal(decimal.NewFromInt(500)), "second installment paid = %s, want 500", installments[1].AmountPaid)
	})

	t.Run("overdue installment still settles oldest first", func(t *testing.T) {
		first := due(1)
		first.Status = InstallmentStatusOverdue
		installments := []*Installment{first, due(2)}

		AllocatePayment(installments, decimal.NewFromInt(1000))

		assert.Equal(t, InstallmentStatusPaid, first.Status)
	})

	t.Run("payment exhausts all installments", func(t *testing.T) {
		installments := []*Installment{due(1), due(2)}

		leftover := AllocatePayment(installments, decimal.NewFromInt(2500))

		assert.True(t, leftover.Equal(decimal.NewFromInt(500)), "leftover = %s, want 500", leftover)
	})

	t.Run("never exceeds amount due", func(t *testing.T) {
		installments := []*Installment{due(1)}

		AllocatePayment(installments, decimal.NewFromInt(5000))

		assert.False(t, installments[0].AmountPaid.GreaterThan(installments[0].AmountDue),
			"paid %s exceeds due %s", installments[0].AmountPaid, installments[0].AmountDue)
	})
}

func TestTotalOutstanding(t *testing.T) {
	installments := []*Installment{
		{AmountDue: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(400), Status: InstallmentStatusPartial},
		{AmountDue: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(1000), Status: InstallmentStatusPaid},
		{AmountDue: decimal.NewFromInt(1000), AmountPaid: decimal.Zero, Status: InstallmentStatusPending},
	}

	got := TotalOutstanding(installments)
	assert.True(t, got.Equal(decimal.NewFromInt(1600)), "TotalOutstanding = %s, want 1600", got)
}
