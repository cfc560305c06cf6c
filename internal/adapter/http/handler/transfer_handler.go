package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/corebank/bankd/internal/adapter/http/dto"
	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error)
}

// TransferScheduler schedules a transfer for future execution.
type TransferScheduler interface {
	ScheduleTransfer(ctx context.Context, actor *domain.User, input usecase.ScheduleTransferInput) (*domain.ScheduledTransfer, error)
}

// TransferHandler handles transfer HTTP requests. A request carrying a
// future execution date is scheduled rather than executed.
type TransferHandler struct {
	ledgerUC    TransferService
	schedulerUC TransferScheduler
	now         func() time.Time
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerUC TransferService, schedulerUC TransferScheduler) *TransferHandler {
	return &TransferHandler{
		ledgerUC:    ledgerUC,
		schedulerUC: schedulerUC,
		now:         time.Now,
	}
}

// Create executes or schedules a transfer.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.ExecutionDate != nil && req.ExecutionDate.After(h.now()) {
		scheduled, err := h.schedulerUC.ScheduleTransfer(r.Context(), actorFrom(r), req.ToScheduleInput())
		if err != nil {
			writeDomainError(w, err, "failed to schedule transfer")
			return
		}

		writeJSON(w, http.StatusAccepted, dto.ScheduledTransferFromDomain(scheduled))
		return
	}

	result, err := h.ledgerUC.Transfer(r.Context(), actorFrom(r), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to execute transfer")
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferResultFromDomain(result))
}
