package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineStatus is the reconciliation state of a statement line.
type LineStatus string

const (
	LineStatusUnmatched LineStatus = "unmatched"
	LineStatusMatched   LineStatus = "matched"
)

// BankStatement is an uploaded batch of externally reported movements.
type BankStatement struct {
	ID          string
	BankName    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	UploadedBy  string
	CreatedAt   time.Time
}

// StatementLine is one externally reported movement. A matched line
// references exactly one internal GL entry and vice versa; lines are
// never deleted.
type StatementLine struct {
	ID          string
	StatementID string
	LineNo      int
	Description string
	Amount      decimal.Decimal
	ValueDate   time.Time
	Status      LineStatus
	// MatchedEntryID is the GL entry this line reconciled against.
	MatchedEntryID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReconcileWindow is the date tolerance for automatic matching.
const ReconcileWindow = 24 * time.Hour

// MatchesEntry reports whether the entry is an automatic-match candidate
// for this line: exactly equal amount and effective date within one day.
func (l *StatementLine) MatchesEntry(e *GLEntry) bool {
	if !l.Amount.Equal(e.Amount) {
		return false
	}

	diff := l.ValueDate.Sub(e.EffectiveDate)
	if diff < 0 {
		diff = -diff
	}

	return diff <= ReconcileWindow
}
