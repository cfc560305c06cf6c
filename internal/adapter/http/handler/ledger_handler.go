package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corebank/bankd/internal/adapter/http/dto"
	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	RecordOperation(ctx context.Context, actor *domain.User, input usecase.RecordOperationInput) (*domain.Operation, error)
	ListOperations(ctx context.Context, actor *domain.User, input usecase.ListOperationsInput) ([]*domain.Operation, error)
	GetBalance(ctx context.Context, actor *domain.User, accountID string) (*domain.Account, error)
	ListAlerts(ctx context.Context, actor *domain.User, accountID string, limit, offset int) ([]*domain.OverdraftAlert, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles journal and balance HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// RecordOperation applies a single journal entry to an account.
func (h *LedgerHandler) RecordOperation(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op, err := h.ledgerUC.RecordOperation(r.Context(), actorFrom(r), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to record operation")
		return
	}

	writeJSON(w, http.StatusCreated, dto.OperationFromDomain(op))
}

// ListOperations lists an account's journal entries, newest first.
func (h *LedgerHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	ops, err := h.ledgerUC.ListOperations(r.Context(), actorFrom(r), usecase.ListOperationsInput{
		AccountID: id,
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list operations")
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationsFromDomain(ops))
}

// GetBalance returns an account's balance and overdraft headroom.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.ledgerUC.GetBalance(r.Context(), actorFrom(r), id)
	if err != nil {
		writeDomainError(w, err, "failed to get balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ListAlerts lists an account's overdraft alerts.
func (h *LedgerHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	alerts, err := h.ledgerUC.ListAlerts(r.Context(), actorFrom(r), id,
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, err, "failed to list alerts")
		return
	}

	writeJSON(w, http.StatusOK, dto.AlertsFromDomain(alerts))
}

// CheckConsistency replays every account's journal.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, err, "consistency check failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromDomain(report))
}
