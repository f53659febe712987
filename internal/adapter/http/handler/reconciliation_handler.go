package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	RegisterStatement(ctx context.Context, input usecase.RegisterStatementInput) (*domain.BankStatement, error)
	UploadLines(ctx context.Context, statementID, actorID string, inputs []usecase.LineInput) (int, error)
	AutoReconcile(ctx context.Context, statementID string) (*usecase.AutoReconcileResult, error)
	ListUnmatched(ctx context.Context, statementID string) ([]*domain.StatementLine, error)
	ManualMatch(ctx context.Context, lineID, entryID, actorID string) error
}

// ReconciliationHandler handles statement and matching HTTP requests.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// RegisterStatement records a bank statement.
func (h *ReconciliationHandler) RegisterStatement(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	statement, err := h.reconUC.RegisterStatement(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to register statement", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.StatementFromDomain(statement))
}

// UploadLines persists parsed statement lines. Re-posting the same
// payload is safe, the response reports how many lines were new.
func (h *ReconciliationHandler) UploadLines(w http.ResponseWriter, r *http.Request) {
	statementID := chi.URLParam(r, "id")
	if statementID == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	var req dto.UploadLinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	inserted, err := h.reconUC.UploadLines(r.Context(), statementID, req.ActorID, req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to upload lines", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.UploadLinesResponse{Inserted: inserted})
}

// Reconcile runs the automatic matching pass over a statement.
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	statementID := chi.URLParam(r, "id")
	if statementID == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	result, err := h.reconUC.AutoReconcile(r.Context(), statementID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reconcile statement", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ReconcileResponse{
		Matched:   result.MatchedCount,
		Unmatched: result.UnmatchedCount,
	})
}

// ListUnmatched lists the lines of a statement still awaiting a match.
func (h *ReconciliationHandler) ListUnmatched(w http.ResponseWriter, r *http.Request) {
	statementID := chi.URLParam(r, "id")
	if statementID == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	lines, err := h.reconUC.ListUnmatched(r.Context(), statementID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list unmatched lines", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.StatementLinesFromDomain(lines))
}

// ManualMatch links a statement line to a GL entry by operator decision.
func (h *ReconciliationHandler) ManualMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.ManualMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.reconUC.ManualMatch(r.Context(), req.LineID, req.EntryID, req.ActorID); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to match line", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "matched"})
}
