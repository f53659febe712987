package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// CreateTransactionRequest represents a request to post a movement on a
// customer account.
type CreateTransactionRequest struct {
	AccountID     string          `json:"account_id"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	EffectiveDate *time.Time      `json:"effective_date,omitempty"`
	CreatorID     string          `json:"creator_id"`
	CreatorRole   string          `json:"creator_role"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		AccountID:     r.AccountID,
		Direction:     domain.Direction(r.Direction),
		Amount:        r.Amount,
		Reference:     r.Reference,
		EffectiveDate: r.EffectiveDate,
		CreatorID:     r.CreatorID,
		CreatorRole:   domain.Role(r.CreatorRole),
	}
}

// ActorRequest carries the acting user for approve, reject, reverse,
// disburse and resolve operations.
type ActorRequest struct {
	ActorID string `json:"actor_id"`
}

// RepayRequest represents a loan repayment.
type RepayRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	ActorID string          `json:"actor_id"`
}

// RegisterStatementRequest represents a request to register a bank
// statement before uploading its lines.
type RegisterStatementRequest struct {
	BankName    string    `json:"bank_name"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	UploadedBy  string    `json:"uploaded_by"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterStatementRequest) ToUseCaseInput() usecase.RegisterStatementInput {
	return usecase.RegisterStatementInput{
		BankName:    r.BankName,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		UploadedBy:  r.UploadedBy,
	}
}

// StatementLineItem is a single parsed line in an upload.
type StatementLineItem struct {
	LineNo      int             `json:"line_no"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ValueDate   time.Time       `json:"value_date"`
}

// UploadLinesRequest represents a batch of parsed statement lines.
type UploadLinesRequest struct {
	ActorID string              `json:"actor_id"`
	Lines   []StatementLineItem `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *UploadLinesRequest) ToUseCaseInput() []usecase.LineInput {
	inputs := make([]usecase.LineInput, len(r.Lines))
	for i, l := range r.Lines {
		inputs[i] = usecase.LineInput{
			LineNo:      l.LineNo,
			Description: l.Description,
			Amount:      l.Amount,
			ValueDate:   l.ValueDate,
		}
	}
	return inputs
}

// ManualMatchRequest links a statement line to a GL entry by hand.
type ManualMatchRequest struct {
	LineID  string `json:"line_id"`
	EntryID string `json:"entry_id"`
	ActorID string `json:"actor_id"`
}
