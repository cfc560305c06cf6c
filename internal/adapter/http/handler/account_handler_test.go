package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/adapter/http/dto"
	"github.com/corebank/bankd/internal/adapter/http/middleware"
	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

type accountServiceStub struct {
	createFn func(ctx context.Context, actor *domain.User, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn    func(ctx context.Context, actor *domain.User, id string) (*domain.Account, error)
	listFn   func(ctx context.Context, actor *domain.User, input usecase.ListAccountsInput) ([]*domain.Account, error)
	statusFn func(ctx context.Context, actor *domain.User, id string, status domain.AccountStatus) (*domain.Account, error)
	closeFn  func(ctx context.Context, actor *domain.User, id string) (*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, actor *domain.User, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, actor, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, actor *domain.User, id string) (*domain.Account, error) {
	return s.getFn(ctx, actor, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, actor *domain.User, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, actor, input)
}

func (s *accountServiceStub) SetStatus(ctx context.Context, actor *domain.User, id string, status domain.AccountStatus) (*domain.Account, error) {
	return s.statusFn(ctx, actor, id, status)
}

func (s *accountServiceStub) CloseAccount(ctx context.Context, actor *domain.User, id string) (*domain.Account, error) {
	return s.closeFn(ctx, actor, id)
}

func withActor(req *http.Request, user *domain.User) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, user)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func adminActor() *domain.User {
	return &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:             "acc-1",
		OwnerID:        "owner-1",
		Type:           domain.AccountTypeChecking,
		Balance:        decimal.NewFromInt(100),
		OverdraftLimit: decimal.NewFromInt(50),
		Status:         domain.AccountStatusActive,
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, actor *domain.User, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		OwnerID:        "owner-1",
		Type:           "checking",
		OverdraftLimit: decimal.NewFromInt(50),
		InitialBalance: decimal.NewFromInt(100),
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), adminActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OwnerID != "owner-1" || captured.Type != domain.AccountTypeChecking {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
	if !resp.Available.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected available 150, got %s", resp.Available)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, actor *domain.User, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json")), adminActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_Forbidden(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, actor *domain.User, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrForbidden
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{OwnerID: "owner-1", Type: "checking"})
	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)),
		&domain.User{ID: "client-1", Role: domain.RoleClient})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAccountHandler_Close_BalanceNotSettled(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		closeFn: func(ctx context.Context, actor *domain.User, id string) (*domain.Account, error) {
			return nil, domain.ErrBalanceNotSettled
		},
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/close", nil), adminActor())
	req = withURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Suspend_PassesStatus(t *testing.T) {
	var gotStatus domain.AccountStatus
	handler := NewAccountHandler(&accountServiceStub{
		statusFn: func(ctx context.Context, actor *domain.User, id string, status domain.AccountStatus) (*domain.Account, error) {
			gotStatus = status
			return &domain.Account{ID: id, Status: status}, nil
		},
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/suspend", nil), adminActor())
	req = withURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Suspend(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotStatus != domain.AccountStatusSuspended {
		t.Fatalf("expected suspended status, got %s", gotStatus)
	}
}
