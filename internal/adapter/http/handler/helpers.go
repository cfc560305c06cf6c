package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/corebank/bankd/internal/adapter/http/dto"
	"github.com/corebank/bankd/internal/adapter/http/middleware"
	"github.com/corebank/bankd/internal/domain"
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

// writeDomainError maps a domain error to an HTTP status and writes it.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrScheduledItemNotFound),
		errors.Is(err, domain.ErrCreditNotFound),
		errors.Is(err, domain.ErrInstallmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrItemNotPending),
		errors.Is(err, domain.ErrInstallmentNotPending),
		errors.Is(err, domain.ErrContention):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrBalanceNotSettled),
		errors.Is(err, domain.ErrAccountNotActive),
		errors.Is(err, domain.ErrAccountClosed),
		errors.Is(err, domain.ErrCreditNotActive),
		errors.Is(err, domain.ErrInvalidTerm),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, domain.ErrInvalidBeneficiary):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// actorFrom extracts the authenticated actor from the request context.
func actorFrom(r *http.Request) *domain.User {
	user, _ := middleware.GetUserFromContext(r.Context())
	return user
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
