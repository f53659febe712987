package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
)

// AccountResponse represents a customer account in API responses.
type AccountResponse struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
	Version    int64           `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		Name:       a.Name,
		Type:       string(a.Type),
		Status:     string(a.Status),
		Balance:    a.Balance,
		Version:    a.Version,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference"`
	EffectiveDate time.Time       `json:"effective_date"`
	CreatorID     string          `json:"creator_id"`
	ApproverID    *string         `json:"approver_id,omitempty"`
	ReversesID    *string         `json:"reverses_id,omitempty"`
	ReversalID    *string         `json:"reversal_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Direction:     string(t.Direction),
		Amount:        t.Amount,
		Status:        string(t.Status),
		Reference:     t.Reference,
		EffectiveDate: t.EffectiveDate,
		CreatorID:     t.CreatorID,
		ApproverID:    t.ApproverID,
		ReversesID:    t.ReversesID,
		ReversalID:    t.ReversalID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// GLEntryResponse represents a general ledger entry in API responses.
type GLEntryResponse struct {
	ID              string          `json:"id"`
	GLAccountID     string          `json:"gl_account_id"`
	TransactionID   string          `json:"transaction_id"`
	Side            string          `json:"side"`
	Amount          decimal.Decimal `json:"amount"`
	EffectiveDate   time.Time       `json:"effective_date"`
	StatementLineID *string         `json:"statement_line_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// GLEntryFromDomain converts a domain GL entry to a response.
func GLEntryFromDomain(e *domain.GLEntry) *GLEntryResponse {
	return &GLEntryResponse{
		ID:              e.ID,
		GLAccountID:     e.GLAccountID,
		TransactionID:   e.TransactionID,
		Side:            string(e.Side),
		Amount:          e.Amount,
		EffectiveDate:   e.EffectiveDate,
		StatementLineID: e.StatementLineID,
		CreatedAt:       e.CreatedAt,
	}
}

// GLEntriesFromDomain converts domain GL entries to responses.
func GLEntriesFromDomain(entries []*domain.GLEntry) []*GLEntryResponse {
	result := make([]*GLEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = GLEntryFromDomain(e)
	}
	return result
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID              string          `json:"id"`
	BorrowerID      string          `json:"borrower_id"`
	WalletAccountID string          `json:"wallet_account_id"`
	Principal       decimal.Decimal `json:"principal"`
	AnnualRate      decimal.Decimal `json:"annual_rate"`
	TenureMonths    int             `json:"tenure_months"`
	Status          string          `json:"status"`
	DisbursedAt     *time.Time      `json:"disbursed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:              l.ID,
		BorrowerID:      l.BorrowerID,
		WalletAccountID: l.WalletAccountID,
		Principal:       l.Principal,
		AnnualRate:      l.AnnualRate,
		TenureMonths:    l.TenureMonths,
		Status:          string(l.Status),
		DisbursedAt:     l.DisbursedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// InstallmentResponse represents a scheduled repayment in API responses.
type InstallmentResponse struct {
	ID           string          `json:"id"`
	LoanID       string          `json:"loan_id"`
	Sequence     int             `json:"sequence"`
	DueDate      time.Time       `json:"due_date"`
	AmountDue    decimal.Decimal `json:"amount_due"`
	PrincipalDue decimal.Decimal `json:"principal_due"`
	InterestDue  decimal.Decimal `json:"interest_due"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Status       string          `json:"status"`
}

// InstallmentsFromDomain converts domain installments to responses.
func InstallmentsFromDomain(installments []*domain.Installment) []*InstallmentResponse {
	result := make([]*InstallmentResponse, len(installments))
	for i, inst := range installments {
		result[i] = &InstallmentResponse{
			ID:           inst.ID,
			LoanID:       inst.LoanID,
			Sequence:     inst.Sequence,
			DueDate:      inst.DueDate,
			AmountDue:    inst.AmountDue,
			PrincipalDue: inst.PrincipalDue,
			InterestDue:  inst.InterestDue,
			AmountPaid:   inst.AmountPaid,
			Status:       string(inst.Status),
		}
	}
	return result
}

// LoanDetailResponse is a loan together with its schedule.
type LoanDetailResponse struct {
	Loan         *LoanResponse          `json:"loan"`
	Installments []*InstallmentResponse `json:"installments"`
}

// RepayResponse reports what a repayment left outstanding.
type RepayResponse struct {
	Remaining decimal.Decimal `json:"remaining"`
}

// StatementResponse represents a bank statement in API responses.
type StatementResponse struct {
	ID          string    `json:"id"`
	BankName    string    `json:"bank_name"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatementFromDomain converts a domain statement to a response.
func StatementFromDomain(s *domain.BankStatement) *StatementResponse {
	return &StatementResponse{
		ID:          s.ID,
		BankName:    s.BankName,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		UploadedBy:  s.UploadedBy,
		CreatedAt:   s.CreatedAt,
	}
}

// StatementLineResponse represents a statement line in API responses.
type StatementLineResponse struct {
	ID             string          `json:"id"`
	StatementID    string          `json:"statement_id"`
	LineNo         int             `json:"line_no"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	ValueDate      time.Time       `json:"value_date"`
	Status         string          `json:"status"`
	MatchedEntryID *string         `json:"matched_entry_id,omitempty"`
}

// StatementLinesFromDomain converts domain statement lines to responses.
func StatementLinesFromDomain(lines []*domain.StatementLine) []*StatementLineResponse {
	result := make([]*StatementLineResponse, len(lines))
	for i, l := range lines {
		result[i] = &StatementLineResponse{
			ID:             l.ID,
			StatementID:    l.StatementID,
			LineNo:         l.LineNo,
			Description:    l.Description,
			Amount:         l.Amount,
			ValueDate:      l.ValueDate,
			Status:         string(l.Status),
			MatchedEntryID: l.MatchedEntryID,
		}
	}
	return result
}

// UploadLinesResponse reports how many lines an upload inserted.
type UploadLinesResponse struct {
	Inserted int `json:"inserted"`
}

// ReconcileResponse reports the outcome of an automatic pass.
type ReconcileResponse struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// RiskAlertResponse represents a risk alert in API responses.
type RiskAlertResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Threshold     decimal.Decimal `json:"threshold"`
	Reason        string          `json:"reason"`
	Status        string          `json:"status"`
	ResolvedBy    *string         `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RiskAlertsFromDomain converts domain risk alerts to responses.
func RiskAlertsFromDomain(alerts []*domain.RiskAlert) []*RiskAlertResponse {
	result := make([]*RiskAlertResponse, len(alerts))
	for i, a := range alerts {
		result[i] = &RiskAlertResponse{
			ID:            a.ID,
			TransactionID: a.TransactionID,
			AccountID:     a.AccountID,
			Amount:        a.Amount,
			Threshold:     a.Threshold,
			Reason:        a.Reason,
			Status:        string(a.Status),
			ResolvedBy:    a.ResolvedBy,
			ResolvedAt:    a.ResolvedAt,
			CreatedAt:     a.CreatedAt,
		}
	}
	return result
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	EntityType   string         `json:"entity_type"`
	EntityID     string         `json:"entity_id"`
	Kind         string         `json:"kind"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			ActorID:      l.ActorID,
			Action:       l.Action,
			EntityType:   l.EntityType,
			EntityID:     l.EntityID,
			Kind:         string(l.Kind),
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ConsistencyResponse reports the outcome of a ledger consistency check.
type ConsistencyResponse struct {
	Consistent bool   `json:"consistent"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
