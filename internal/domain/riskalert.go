package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertStatus is the lifecycle state of a risk alert.
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "open"
	AlertStatusResolved AlertStatus = "resolved"
)

// RiskAlert flags a transaction that crossed a policy threshold. Alerts
// transition open -> resolved only by explicit operator action and are
// never deleted.
type RiskAlert struct {
	ID            string
	TransactionID string
	AccountID     string
	Amount        decimal.Decimal
	Threshold     decimal.Decimal
	Reason        string
	Status        AlertStatus
	ResolvedBy    *string
	ResolvedAt    *time.Time
	CreatedAt     time.Time
}
