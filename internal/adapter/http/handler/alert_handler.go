package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
)

// AlertService defines the behavior needed by AlertHandler.
type AlertService interface {
	ListOpen(ctx context.Context, limit, offset int) ([]*domain.RiskAlert, error)
	Resolve(ctx context.Context, alertID, actorID string) error
}

// AlertHandler handles risk alert HTTP requests.
type AlertHandler struct {
	alertUC AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertUC AlertService) *AlertHandler {
	return &AlertHandler{alertUC: alertUC}
}

// ListOpen lists alerts awaiting review.
func (h *AlertHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	alerts, err := h.alertUC.ListOpen(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list alerts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RiskAlertsFromDomain(alerts))
}

// Resolve closes an open alert after review.
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing alert ID", "")
		return
	}

	var req dto.ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.alertUC.Resolve(r.Context(), id, req.ActorID); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to resolve alert", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
