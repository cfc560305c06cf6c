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

// ScheduledService defines the behavior needed by ScheduledHandler.
type ScheduledService interface {
	ScheduleDebit(ctx context.Context, actor *domain.User, input usecase.ScheduleDebitInput) (*domain.ScheduledDebit, error)
	ListScheduledTransfers(ctx context.Context, actor *domain.User, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error)
	ListScheduledDebits(ctx context.Context, actor *domain.User, accountID string, limit, offset int) ([]*domain.ScheduledDebit, error)
	EditScheduledTransfer(ctx context.Context, actor *domain.User, id string, input usecase.EditScheduledItemInput) error
	CancelScheduledTransfer(ctx context.Context, actor *domain.User, id string) error
	EditScheduledDebit(ctx context.Context, actor *domain.User, id string, input usecase.EditScheduledItemInput) error
	CancelScheduledDebit(ctx context.Context, actor *domain.User, id string) error
}

// ScheduledHandler handles scheduled transfer and direct debit requests.
type ScheduledHandler struct {
	schedulerUC ScheduledService
}

// NewScheduledHandler creates a new ScheduledHandler.
func NewScheduledHandler(schedulerUC ScheduledService) *ScheduledHandler {
	return &ScheduledHandler{schedulerUC: schedulerUC}
}

// CreateDebit schedules a direct debit. Admin only.
func (h *ScheduledHandler) CreateDebit(w http.ResponseWriter, r *http.Request) {
	var req dto.ScheduleDebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	debit, err := h.schedulerUC.ScheduleDebit(r.Context(), actorFrom(r), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to schedule debit")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ScheduledDebitFromDomain(debit))
}

// ListTransfers lists scheduled transfers for the account in the query.
func (h *ScheduledHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account_id query parameter", "")
		return
	}

	items, err := h.schedulerUC.ListScheduledTransfers(r.Context(), actorFrom(r), accountID,
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, err, "failed to list scheduled transfers")
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduledTransfersFromDomain(items))
}

// ListDebits lists scheduled debits for the account in the query.
func (h *ScheduledHandler) ListDebits(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account_id query parameter", "")
		return
	}

	items, err := h.schedulerUC.ListScheduledDebits(r.Context(), actorFrom(r), accountID,
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, err, "failed to list scheduled debits")
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduledDebitsFromDomain(items))
}

// EditTransfer edits a pending scheduled transfer.
func (h *ScheduledHandler) EditTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.EditScheduledItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.schedulerUC.EditScheduledTransfer(r.Context(), actorFrom(r), id, req.ToUseCaseInput()); err != nil {
		writeDomainError(w, err, "failed to edit scheduled transfer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// CancelTransfer cancels a pending scheduled transfer.
func (h *ScheduledHandler) CancelTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.schedulerUC.CancelScheduledTransfer(r.Context(), actorFrom(r), id); err != nil {
		writeDomainError(w, err, "failed to cancel scheduled transfer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// EditDebit edits a pending scheduled debit. Admin only.
func (h *ScheduledHandler) EditDebit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.EditScheduledItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.schedulerUC.EditScheduledDebit(r.Context(), actorFrom(r), id, req.ToUseCaseInput()); err != nil {
		writeDomainError(w, err, "failed to edit scheduled debit")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// CancelDebit cancels a pending scheduled debit. Admin only.
func (h *ScheduledHandler) CancelDebit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.schedulerUC.CancelScheduledDebit(r.Context(), actorFrom(r), id); err != nil {
		writeDomainError(w, err, "failed to cancel scheduled debit")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
