package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/corebank/bankd/internal/adapter/http/dto"
	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

// SweepService defines the behavior needed by SweepHandler.
type SweepService interface {
	RunSweep(ctx context.Context, actor *domain.User, now time.Time) (*usecase.SweepResult, error)
}

// SweepHandler triggers scheduler sweep runs.
type SweepHandler struct {
	schedulerUC SweepService
	now         func() time.Time
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(schedulerUC SweepService) *SweepHandler {
	return &SweepHandler{
		schedulerUC: schedulerUC,
		now:         time.Now,
	}
}

// Run executes one sweep over all due scheduled items. Admin only.
func (h *SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.schedulerUC.RunSweep(r.Context(), actorFrom(r), h.now())
	if err != nil {
		writeDomainError(w, err, "sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResultFromDomain(result))
}
