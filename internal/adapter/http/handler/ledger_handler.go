package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) error
	AuditTrail(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error)
}

// LedgerHandler handles ledger-wide HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency verifies total debits equal total credits across the
// general ledger.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerUC.CheckConsistency(r.Context()); err != nil {
		writeJSON(w, http.StatusConflict, dto.ConsistencyResponse{
			Consistent: false,
			Detail:     err.Error(),
		})

		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: true})
}

// AuditTrail lists the audit history of an entity, oldest first.
func (h *LedgerHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")
	if entityType == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity type or ID", "")
		return
	}

	logs, err := h.ledgerUC.AuditTrail(r.Context(), entityType, entityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get audit trail", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
