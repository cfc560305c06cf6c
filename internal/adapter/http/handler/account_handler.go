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

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, actor *domain.User, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, actor *domain.User, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, actor *domain.User, input usecase.ListAccountsInput) ([]*domain.Account, error)
	SetStatus(ctx context.Context, actor *domain.User, id string, status domain.AccountStatus) (*domain.Account, error)
	CloseAccount(ctx context.Context, actor *domain.User, id string) (*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), actorFrom(r), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), actorFrom(r), id)
	if err != nil {
		writeDomainError(w, err, "failed to get account")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts: admins see all, clients see their own.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), actorFrom(r), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, err, "failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Suspend suspends an active account.
func (h *AccountHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, domain.AccountStatusSuspended)
}

// Reactivate returns a suspended account to active.
func (h *AccountHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, domain.AccountStatusActive)
}

func (h *AccountHandler) setStatus(w http.ResponseWriter, r *http.Request, status domain.AccountStatus) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.SetStatus(r.Context(), actorFrom(r), id, status)
	if err != nil {
		writeDomainError(w, err, "failed to update account status")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Close closes an account after the settlement check.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.CloseAccount(r.Context(), actorFrom(r), id)
	if err != nil {
		writeDomainError(w, err, "failed to close account")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
