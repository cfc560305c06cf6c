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

// CreditService defines the behavior needed by CreditHandler.
type CreditService interface {
	IssueCredit(ctx context.Context, actor *domain.User, input usecase.IssueCreditInput) (*domain.CreditContract, error)
	GetCredit(ctx context.Context, actor *domain.User, id string) (*domain.CreditContract, error)
	ListCredits(ctx context.Context, actor *domain.User, input usecase.ListCreditsInput) ([]*domain.CreditContract, error)
	ListSchedule(ctx context.Context, actor *domain.User, creditID string) ([]*domain.Installment, error)
	UpdateCredit(ctx context.Context, actor *domain.User, id string, input usecase.UpdateCreditInput) (*domain.CreditContract, error)
	AddInstallment(ctx context.Context, actor *domain.User, input usecase.AddInstallmentInput) (*domain.Installment, error)
	DeleteInstallment(ctx context.Context, actor *domain.User, id string) error
}

// CreditHandler handles credit contract HTTP requests.
type CreditHandler struct {
	creditUC CreditService
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(creditUC CreditService) *CreditHandler {
	return &CreditHandler{creditUC: creditUC}
}

// Issue creates a contract and its installment schedule. Admin only.
func (h *CreditHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	credit, err := h.creditUC.IssueCredit(r.Context(), actorFrom(r), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to issue credit")
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreditFromDomain(credit))
}

// Get retrieves a contract by ID.
func (h *CreditHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	credit, err := h.creditUC.GetCredit(r.Context(), actorFrom(r), id)
	if err != nil {
		writeDomainError(w, err, "failed to get credit")
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditFromDomain(credit))
}

// List lists contracts: admins see all, clients see their own.
func (h *CreditHandler) List(w http.ResponseWriter, r *http.Request) {
	credits, err := h.creditUC.ListCredits(r.Context(), actorFrom(r), usecase.ListCreditsInput{
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list credits")
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditsFromDomain(credits))
}

// ListSchedule lists a contract's installments in sequence order.
func (h *CreditHandler) ListSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	installments, err := h.creditUC.ListSchedule(r.Context(), actorFrom(r), id)
	if err != nil {
		writeDomainError(w, err, "failed to list schedule")
		return
	}

	writeJSON(w, http.StatusOK, dto.InstallmentsFromDomain(installments))
}

// Update edits the contract record. Installments are never regenerated.
// Admin only.
func (h *CreditHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	credit, err := h.creditUC.UpdateCredit(r.Context(), actorFrom(r), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to update credit")
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditFromDomain(credit))
}

// AddInstallment appends an ad hoc installment. Admin only.
func (h *CreditHandler) AddInstallment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.AddInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	inst, err := h.creditUC.AddInstallment(r.Context(), actorFrom(r), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, err, "failed to add installment")
		return
	}

	writeJSON(w, http.StatusCreated, dto.InstallmentFromDomain(inst))
}

// DeleteInstallment removes a pending installment. Admin only.
func (h *CreditHandler) DeleteInstallment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.creditUC.DeleteInstallment(r.Context(), actorFrom(r), id); err != nil {
		writeDomainError(w, err, "failed to delete installment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
