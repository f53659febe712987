package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only trail entry. Every state-changing
// operation writes one inside the same atomic unit as the change.
type AuditLog struct {
	ID           string
	ActorID      string // Who performed the action
	Action       string // What action (transaction.post, loan.disburse, etc.)
	EntityType   string // Type of entity (transaction, loan, statement_line)
	EntityID     string // ID of the entity
	Kind         AuditKind
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditKind separates ordinary audit entries from security events
// raised by policy misuse (e.g. a self-approval attempt).
type AuditKind string

const (
	AuditKindAudit    AuditKind = "audit"
	AuditKindSecurity AuditKind = "security"
)

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Transaction actions
	AuditActionTransactionCreate  AuditAction = "transaction.create"
	AuditActionTransactionPost    AuditAction = "transaction.post"
	AuditActionTransactionApprove AuditAction = "transaction.approve"
	AuditActionTransactionReject  AuditAction = "transaction.reject"
	AuditActionTransactionReverse AuditAction = "transaction.reverse"

	// Loan actions
	AuditActionLoanDisburse AuditAction = "loan.disburse"
	AuditActionLoanRepay    AuditAction = "loan.repay"

	// Reconciliation actions
	AuditActionStatementUpload AuditAction = "statement.upload"
	AuditActionLineAutoMatch   AuditAction = "statement_line.auto_match"
	AuditActionLineManualMatch AuditAction = "statement_line.manual_match"

	// Risk actions
	AuditActionAlertResolve AuditAction = "risk_alert.resolve"

	// Security events
	AuditActionSelfApprovalAttempt AuditAction = "security.self_approval_attempt"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Kind       AuditKind
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}
