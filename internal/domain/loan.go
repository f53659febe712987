package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusActive   LoanStatus = "active"
	LoanStatusClosed   LoanStatus = "closed"
)

var validLoanStatuses = map[LoanStatus]bool{
	LoanStatusApproved: true,
	LoanStatusActive:   true,
	LoanStatusClosed:   true,
}

// IsValid reports whether the loan status is one of the closed set.
func (s LoanStatus) IsValid() bool {
	return validLoanStatuses[s]
}

// InstallmentStatus is the repayment state of a single installment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPartial InstallmentStatus = "partial"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

// IsOutstanding reports whether the installment still accepts payment.
func (s InstallmentStatus) IsOutstanding() bool {
	return s == InstallmentStatusPending || s == InstallmentStatusPartial || s == InstallmentStatusOverdue
}

// Loan is a disbursed principal repaid over a fixed flat-interest
// schedule into the borrower's wallet account.
type Loan struct {
	ID              string
	BorrowerID      string
	WalletAccountID string
	Principal       decimal.Decimal
	// AnnualRate is the flat yearly interest rate, e.g. 0.12 for 12%.
	AnnualRate   decimal.Decimal
	TenureMonths int
	Status       LoanStatus
	DisbursedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Installment is one scheduled repayment of a loan. amount_paid never
// exceeds amount_due and installments settle in ascending due-date order.
type Installment struct {
	ID            string
	LoanID        string
	Sequence      int
	DueDate       time.Time
	AmountDue     decimal.Decimal
	PrincipalDue  decimal.Decimal
	InterestDue   decimal.Decimal
	AmountPaid    decimal.Decimal
	Status        InstallmentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Remaining returns the unpaid portion of the installment.
func (i *Installment) Remaining() decimal.Decimal {
	return i.AmountDue.Sub(i.AmountPaid)
}

// Apply allocates up to amount against the installment and returns the
// portion consumed. The status moves to PAID when fully settled,
// PARTIAL otherwise.
func (i *Installment) Apply(amount decimal.Decimal) decimal.Decimal {
	remaining := i.Remaining()

	applied := amount
	if applied.GreaterThan(remaining) {
		applied = remaining
	}

	i.AmountPaid = i.AmountPaid.Add(applied)
	if i.AmountPaid.Equal(i.AmountDue) {
		i.Status = InstallmentStatusPaid
	} else {
		i.Status = InstallmentStatusPartial
	}

	return applied
}

// GenerateSchedule builds the flat-interest amortization schedule:
// total interest = principal * rate * tenure/12, split evenly across
// tenure monthly installments due at one-month increments from start.
// Rounding drift lands on the last installment so the schedule sums
// exactly to principal plus interest.
func (l *Loan) GenerateSchedule(start time.Time) []*Installment {
	n := l.TenureMonths
	months := decimal.NewFromInt(int64(n))
	totalInterest := l.Principal.
		Mul(l.AnnualRate).
		Mul(months).
		Div(decimal.NewFromInt(12)).
		Round(2)

	principalPer := l.Principal.Div(months).Round(2)
	interestPer := totalInterest.Div(months).Round(2)

	installments := make([]*Installment, 0, n)
	for seq := 1; seq <= n; seq++ {
		p, i := principalPer, interestPer
		if seq == n {
			p = l.Principal.Sub(principalPer.Mul(decimal.NewFromInt(int64(n - 1))))
			i = totalInterest.Sub(interestPer.Mul(decimal.NewFromInt(int64(n - 1))))
		}

		installments = append(installments, &Installment{
			LoanID:       l.ID,
			Sequence:     seq,
			DueDate:      start.AddDate(0, seq, 0),
			AmountDue:    p.Add(i),
			PrincipalDue: p,
			InterestDue:  i,
			AmountPaid:   decimal.Zero,
			Status:       InstallmentStatusPending,
		})
	}

	return installments
}

// AllocatePayment runs the repayment waterfall: oldest outstanding
// installment first, each taking min(remaining payment, remaining due).
// Installments must already be ordered by ascending due date. Returns
// the unallocated remainder.
func AllocatePayment(installments []*Installment, payment decimal.Decimal) decimal.Decimal {
	remaining := payment
	for _, inst := range installments {
		if remaining.IsZero() {
			break
		}
		if !inst.Status.IsOutstanding() {
			continue
		}
		remaining = remaining.Sub(inst.Apply(remaining))
	}

	return remaining
}

// TotalOutstanding sums the unpaid dues of all outstanding installments.
func TotalOutstanding(installments []*Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		if inst.Status.IsOutstanding() {
			total = total.Add(inst.Remaining())
		}
	}

	return total
}
