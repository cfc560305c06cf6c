package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/adapter/http/dto"
	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

type transferServiceStub struct {
	transferFn func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error)
}

func (s *transferServiceStub) Transfer(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
	return s.transferFn(ctx, actor, input)
}

type transferSchedulerStub struct {
	scheduleFn func(ctx context.Context, actor *domain.User, input usecase.ScheduleTransferInput) (*domain.ScheduledTransfer, error)
}

func (s *transferSchedulerStub) ScheduleTransfer(ctx context.Context, actor *domain.User, input usecase.ScheduleTransferInput) (*domain.ScheduledTransfer, error) {
	return s.scheduleFn(ctx, actor, input)
}

func TestTransferHandler_Immediate(t *testing.T) {
	var gotInput usecase.TransferInput
	handler := NewTransferHandler(
		&transferServiceStub{
			transferFn: func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
				gotInput = input
				return &usecase.TransferResult{
					DebitOperation:  &domain.Operation{ID: "op-1", Kind: domain.OperationTransferDebit},
					CreditOperation: &domain.Operation{ID: "op-2", Kind: domain.OperationTransferCredit},
				}, nil
			},
		},
		&transferSchedulerStub{
			scheduleFn: func(ctx context.Context, actor *domain.User, input usecase.ScheduleTransferInput) (*domain.ScheduledTransfer, error) {
				t.Fatal("immediate transfer must not be scheduled")
				return nil, nil
			},
		},
	)

	body, _ := json.Marshal(dto.TransferRequest{
		SourceAccountID: "acc-1",
		Mode:            "internal",
		Destination:     "acc-2",
		Amount:          decimal.NewFromInt(100),
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body)), adminActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotInput.Mode != domain.TransferModeInternal || gotInput.Destination != "acc-2" {
		t.Fatalf("expected transfer input to match request, got %+v", gotInput)
	}

	var resp dto.TransferResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DebitOperation == nil || resp.CreditOperation == nil {
		t.Fatalf("expected both legs in response, got %+v", resp)
	}
}

func TestTransferHandler_FutureDateSchedules(t *testing.T) {
	executionDate := time.Now().Add(48 * time.Hour)

	var gotInput usecase.ScheduleTransferInput
	handler := NewTransferHandler(
		&transferServiceStub{
			transferFn: func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
				t.Fatal("future-dated transfer must not execute immediately")
				return nil, nil
			},
		},
		&transferSchedulerStub{
			scheduleFn: func(ctx context.Context, actor *domain.User, input usecase.ScheduleTransferInput) (*domain.ScheduledTransfer, error) {
				gotInput = input
				return &domain.ScheduledTransfer{
					ID:              "sched-1",
					SourceAccountID: input.SourceAccountID,
					Status:          domain.ScheduledStatusPending,
					ExecutionDate:   input.ExecutionDate,
				}, nil
			},
		},
	)

	body, _ := json.Marshal(dto.TransferRequest{
		SourceAccountID: "acc-1",
		Mode:            "internal",
		Destination:     "acc-2",
		Amount:          decimal.NewFromInt(100),
		ExecutionDate:   &executionDate,
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body)), adminActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if !gotInput.ExecutionDate.Equal(executionDate) {
		t.Fatalf("expected execution date to pass through, got %s", gotInput.ExecutionDate)
	}

	var resp dto.ScheduledTransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.ScheduledStatusPending) {
		t.Fatalf("expected pending status, got %s", resp.Status)
	}
}

func TestTransferHandler_InsufficientFunds(t *testing.T) {
	handler := NewTransferHandler(
		&transferServiceStub{
			transferFn: func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
				return nil, domain.ErrInsufficientFunds
			},
		},
		&transferSchedulerStub{},
	)

	body, _ := json.Marshal(dto.TransferRequest{
		SourceAccountID: "acc-1",
		Mode:            "internal",
		Destination:     "acc-2",
		Amount:          decimal.NewFromInt(1000),
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body)), adminActor())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
