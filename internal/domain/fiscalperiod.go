package domain

import "time"

// PeriodStatus is the state of a fiscal period.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// FiscalPeriod is a bounded date range. Once closed it forbids new
// postings whose effective date falls inside [Start, End].
type FiscalPeriod struct {
	ID        string
	Name      string
	Start     time.Time
	End       time.Time
	Status    PeriodStatus
	ClosedBy  *string
	ClosedAt  *time.Time
	CreatedAt time.Time
}

// Contains reports whether the effective date falls inside the period,
// inclusive on both ends.
func (p *FiscalPeriod) Contains(effectiveDate time.Time) bool {
	return !effectiveDate.Before(p.Start) && !effectiveDate.After(p.End)
}
