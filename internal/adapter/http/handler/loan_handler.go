package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	Disburse(ctx context.Context, loanID, actorID string) (*domain.Loan, error)
	Repay(ctx context.Context, loanID string, amount decimal.Decimal, actorID string) (*usecase.RepayResult, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, []*domain.Installment, error)
}

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Disburse pays an approved loan out to the borrower's wallet and
// generates the repayment schedule.
func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.Disburse(r.Context(), id, req.ActorID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to disburse loan", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Repay applies a payment across the loan's outstanding installments.
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.RepayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.loanUC.Repay(r.Context(), id, req.Amount, req.ActorID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to apply repayment", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RepayResponse{Remaining: result.Remaining})
}

// Get retrieves a loan and its schedule.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, installments, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get loan", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.LoanDetailResponse{
		Loan:         dto.LoanFromDomain(loan),
		Installments: dto.InstallmentsFromDomain(installments),
	})
}
