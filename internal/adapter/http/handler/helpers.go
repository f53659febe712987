package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes. Validation
// failures are 400, state conflicts (wrong status, already matched,
// already reversed) are 409, missing entities are 404.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrGLAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrStatementNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrOverpayment):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrPeriodClosed),
		errors.Is(err, domain.ErrSelfApprovalForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrNotPosted),
		errors.Is(err, domain.ErrAlreadyReversed),
		errors.Is(err, domain.ErrLoanNotApproved),
		errors.Is(err, domain.ErrLoanNotActive),
		errors.Is(err, domain.ErrAlreadyMatched),
		errors.Is(err, domain.ErrAlertNotOpen):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
