package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
)

// systemActor drives ledger mutations performed by the sweep itself.
var systemActor = &domain.User{ID: "system", Name: "scheduler", Role: domain.RoleAdmin}

// SchedulerUseCase manages planned transfers, direct debits and credit
// installment collection: creation and pending-only edits on one side, the
// due-item sweep on the other.
type SchedulerUseCase struct {
	txManager    TransactionManager
	transferRepo ScheduledTransferRepository
	debitRepo    ScheduledDebitRepository
	creditRepo   CreditRepository
	accountRepo  AccountRepository
	auditRepo    AuditRepository
	ledger       *LedgerUseCase
	authz        *Authorizer
	idGen        IDGenerator
	logger       zerolog.Logger
	workers      int
	metrics      *metrics.Metrics
}

// NewSchedulerUseCase creates a new SchedulerUseCase. workers bounds the
// sweep's concurrency; values below 1 mean sequential processing.
func NewSchedulerUseCase(
	txManager TransactionManager,
	transferRepo ScheduledTransferRepository,
	debitRepo ScheduledDebitRepository,
	creditRepo CreditRepository,
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	ledger *LedgerUseCase,
	authz *Authorizer,
	idGen IDGenerator,
	logger zerolog.Logger,
	workers int,
) *SchedulerUseCase {
	if workers < 1 {
		workers = 1
	}

	return &SchedulerUseCase{
		txManager:    txManager,
		transferRepo: transferRepo,
		debitRepo:    debitRepo,
		creditRepo:   creditRepo,
		accountRepo:  accountRepo,
		auditRepo:    auditRepo,
		ledger:       ledger,
		authz:        authz,
		idGen:        idGen,
		logger:       logger,
		workers:      workers,
	}
}

// WithMetrics enables sweep instrumentation.
func (uc *SchedulerUseCase) WithMetrics(m *metrics.Metrics) *SchedulerUseCase {
	uc.metrics = m
	return uc
}

// ScheduleTransferInput represents input for planning a transfer.
type ScheduleTransferInput struct {
	SourceAccountID   string
	Mode              domain.TransferMode
	Destination       string
	ExternalReference string
	Beneficiary       string
	Amount            decimal.Decimal
	Description       string
	ExecutionDate     time.Time
}

// ScheduleTransfer records a transfer for later execution by the sweep.
func (uc *SchedulerUseCase) ScheduleTransfer(ctx context.Context, actor *domain.User, input ScheduleTransferInput) (*domain.ScheduledTransfer, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	source, err := uc.accountRepo.GetByID(ctx, input.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.CanOperate(ctx, actor, source); err != nil {
		return nil, err
	}
	if !source.IsActive() {
		return nil, domain.ErrAccountNotActive
	}
	if input.Amount.GreaterThan(source.Available()) {
		return nil, domain.ErrInsufficientFunds
	}

	st := &domain.ScheduledTransfer{
		ID:              uc.idGen.Generate(),
		SourceAccountID: source.ID,
		Mode:            input.Mode,
		Amount:          input.Amount,
		Description:     input.Description,
		ExecutionDate:   input.ExecutionDate,
		Status:          domain.ScheduledStatusPending,
		CreatedBy:       actor.ID,
		CreatedAt:       time.Now().UTC(),
	}

	switch input.Mode {
	case domain.TransferModeInternal:
		destination, err := uc.ledger.resolveDestination(ctx, input.Destination)
		if err != nil {
			return nil, err
		}
		if destination.ID == source.ID {
			return nil, domain.ErrSameAccount
		}
		if !destination.IsActive() {
			return nil, domain.ErrAccountNotActive
		}
		st.DestinationAccountID = destination.ID

	case domain.TransferModeExternal:
		ref, err := domain.ValidateExternalReference(input.ExternalReference)
		if err != nil {
			return nil, err
		}
		if input.Beneficiary == "" {
			return nil, domain.ErrInvalidBeneficiary
		}
		st.ExternalReference = ref
		st.Beneficiary = input.Beneficiary

	default:
		return nil, fmt.Errorf("%w: transfer mode %q", domain.ErrInvalidKind, input.Mode)
	}

	if err := uc.transferRepo.Create(ctx, st); err != nil {
		return nil, err
	}

	uc.audit(ctx, actor, domain.AuditActionScheduledCreate, "scheduled_transfer", st.ID,
		fmt.Sprintf("transfer of %s scheduled for %s", st.Amount.StringFixed(2), st.ExecutionDate.Format("2006-01-02")))

	return st, nil
}

// ScheduleDebitInput represents input for planning a direct debit.
type ScheduleDebitInput struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Description          string
	ExecutionDate        time.Time
}

// ScheduleDebit records an administrator-created direct debit. An empty
// destination means the funds are collected outside the ledger.
func (uc *SchedulerUseCase) ScheduleDebit(ctx context.Context, actor *domain.User, input ScheduleDebitInput) (*domain.ScheduledDebit, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	source, err := uc.accountRepo.GetByID(ctx, input.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if !source.IsActive() {
		return nil, domain.ErrAccountNotActive
	}

	sd := &domain.ScheduledDebit{
		ID:              uc.idGen.Generate(),
		SourceAccountID: source.ID,
		Amount:          input.Amount,
		Description:     input.Description,
		ExecutionDate:   input.ExecutionDate,
		Status:          domain.ScheduledStatusPending,
		CreatedBy:       actor.ID,
		CreatedAt:       time.Now().UTC(),
	}

	if input.DestinationAccountID != "" {
		destination, err := uc.accountRepo.GetByID(ctx, input.DestinationAccountID)
		if err != nil {
			return nil, err
		}
		if destination.ID == source.ID {
			return nil, domain.ErrSameAccount
		}
		if !destination.IsActive() {
			return nil, domain.ErrAccountNotActive
		}
		sd.DestinationAccountID = &destination.ID
	}

	if err := uc.debitRepo.Create(ctx, sd); err != nil {
		return nil, err
	}

	uc.audit(ctx, actor, domain.AuditActionScheduledCreate, "scheduled_debit", sd.ID,
		fmt.Sprintf("direct debit of %s scheduled for %s", sd.Amount.StringFixed(2), sd.ExecutionDate.Format("2006-01-02")))

	return sd, nil
}

// EditScheduledItemInput carries the fields editable while an item is
// pending.
type EditScheduledItemInput struct {
	Amount        decimal.Decimal
	Description   string
	ExecutionDate time.Time
}

// EditScheduledTransfer edits a pending transfer. Once the sweep has
// claimed the item the edit is rejected.
func (uc *SchedulerUseCase) EditScheduledTransfer(ctx context.Context, actor *domain.User, id string, input EditScheduledItemInput) error {
	st, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.authorizeScheduledAccess(ctx, actor, st.SourceAccountID); err != nil {
		return err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}

	ok, err := uc.transferRepo.UpdatePending(ctx, id, input.Amount, input.Description, input.ExecutionDate)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrItemNotPending
	}

	uc.audit(ctx, actor, domain.AuditActionScheduledEdit, "scheduled_transfer", id, "pending transfer edited")
	return nil
}

// CancelScheduledTransfer cancels a pending transfer. The conditional
// status transition is the single point of truth for the race against the
// sweep's claim.
func (uc *SchedulerUseCase) CancelScheduledTransfer(ctx context.Context, actor *domain.User, id string) error {
	st, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.authorizeScheduledAccess(ctx, actor, st.SourceAccountID); err != nil {
		return err
	}

	ok, err := uc.transferRepo.CancelPending(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrItemNotPending
	}

	uc.audit(ctx, actor, domain.AuditActionScheduledCancel, "scheduled_transfer", id, "pending transfer cancelled")
	return nil
}

// EditScheduledDebit edits a pending direct debit.
func (uc *SchedulerUseCase) EditScheduledDebit(ctx context.Context, actor *domain.User, id string, input EditScheduledItemInput) error {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}

	if _, err := uc.debitRepo.GetByID(ctx, id); err != nil {
		return err
	}

	ok, err := uc.debitRepo.UpdatePending(ctx, id, input.Amount, input.Description, input.ExecutionDate)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrItemNotPending
	}

	uc.audit(ctx, actor, domain.AuditActionScheduledEdit, "scheduled_debit", id, "pending debit edited")
	return nil
}

// CancelScheduledDebit cancels a pending direct debit.
func (uc *SchedulerUseCase) CancelScheduledDebit(ctx context.Context, actor *domain.User, id string) error {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return err
	}

	if _, err := uc.debitRepo.GetByID(ctx, id); err != nil {
		return err
	}

	ok, err := uc.debitRepo.CancelPending(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrItemNotPending
	}

	uc.audit(ctx, actor, domain.AuditActionScheduledCancel, "scheduled_debit", id, "pending debit cancelled")
	return nil
}

// ListScheduledTransfers lists scheduled transfers for a source account.
func (uc *SchedulerUseCase) ListScheduledTransfers(ctx context.Context, actor *domain.User, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error) {
	if err := uc.authorizeScheduledAccess(ctx, actor, accountID); err != nil {
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.transferRepo.ListBySourceAccount(ctx, accountID, limit, offset)
}

// ListScheduledDebits lists scheduled debits for a source account.
func (uc *SchedulerUseCase) ListScheduledDebits(ctx context.Context, actor *domain.User, accountID string, limit, offset int) ([]*domain.ScheduledDebit, error) {
	if err := uc.authorizeScheduledAccess(ctx, actor, accountID); err != nil {
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.debitRepo.ListBySourceAccount(ctx, accountID, limit, offset)
}

func (uc *SchedulerUseCase) authorizeScheduledAccess(ctx context.Context, actor *domain.User, accountID string) error {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	return uc.authz.CanOperate(ctx, actor, account)
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Executed int
	Failed   int
	Skipped  int
}

func (r *SweepResult) add(other SweepResult) {
	r.Executed += other.Executed
	r.Failed += other.Failed
	r.Skipped += other.Skipped
}

// RunSweep discovers every scheduled transfer, direct debit and credit
// installment due on or before now and executes each through the ledger.
// Items are claimed with a conditional status transition, so repeated or
// concurrent sweeps execute each item at most once, and one item's failure
// never affects another.
func (uc *SchedulerUseCase) RunSweep(ctx context.Context, actor *domain.User, now time.Time) (*SweepResult, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	start := time.Now()

	transfers, err := uc.transferRepo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}
	debits, err := uc.debitRepo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}
	installments, err := uc.creditRepo.ListDueInstallments(ctx, now)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result SweepResult
	)
	sem := make(chan struct{}, uc.workers)

	run := func(work func() SweepResult) {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			r := work()

			mu.Lock()
			result.add(r)
			mu.Unlock()
		}()
	}

	for _, st := range transfers {
		run(func() SweepResult { return uc.processTransfer(ctx, st, now) })
	}
	for _, sd := range debits {
		run(func() SweepResult { return uc.processDebit(ctx, sd, now) })
	}
	for _, inst := range installments {
		run(func() SweepResult { return uc.processInstallment(ctx, inst, now) })
	}

	wg.Wait()

	if uc.metrics != nil {
		uc.metrics.SweepRuns.Inc()
		uc.metrics.SweepDuration.Observe(time.Since(start).Seconds())
		uc.metrics.SweepItems.WithLabelValues("executed").Add(float64(result.Executed))
		uc.metrics.SweepItems.WithLabelValues("failed").Add(float64(result.Failed))
		uc.metrics.SweepItems.WithLabelValues("skipped").Add(float64(result.Skipped))
	}

	uc.logger.Info().
		Int("executed", result.Executed).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Time("as_of", now).
		Msg("sweep finished")

	uc.audit(ctx, actor, domain.AuditActionSweepRun, "scheduler", "",
		fmt.Sprintf("executed=%d failed=%d skipped=%d", result.Executed, result.Failed, result.Skipped))

	return &result, nil
}

func (uc *SchedulerUseCase) processTransfer(ctx context.Context, st *domain.ScheduledTransfer, now time.Time) SweepResult {
	claimed, err := uc.transferRepo.Claim(ctx, st.ID)
	if err != nil {
		uc.logger.Error().Err(err).Str("scheduled_transfer", st.ID).Msg("claim failed")
		return SweepResult{Failed: 1}
	}
	if !claimed {
		return SweepResult{Skipped: 1}
	}

	input := TransferInput{
		SourceAccountID:   st.SourceAccountID,
		Destination:       st.DestinationAccountID,
		ExternalReference: st.ExternalReference,
		Beneficiary:       st.Beneficiary,
		Amount:            st.Amount,
		Note:              st.Description,
		Mode:              st.Mode,
	}

	if _, err := uc.ledger.Transfer(ctx, systemActor, input); err != nil {
		uc.logger.Warn().Err(err).Str("scheduled_transfer", st.ID).Msg("scheduled transfer failed")
		if markErr := uc.transferRepo.MarkError(ctx, st.ID, err.Error()); markErr != nil {
			uc.logger.Error().Err(markErr).Str("scheduled_transfer", st.ID).Msg("mark error failed")
		}
		return SweepResult{Failed: 1}
	}

	if err := uc.transferRepo.MarkExecuted(ctx, st.ID, now); err != nil {
		uc.logger.Error().Err(err).Str("scheduled_transfer", st.ID).Msg("mark executed failed")
		return SweepResult{Failed: 1}
	}

	return SweepResult{Executed: 1}
}

func (uc *SchedulerUseCase) processDebit(ctx context.Context, sd *domain.ScheduledDebit, now time.Time) SweepResult {
	claimed, err := uc.debitRepo.Claim(ctx, sd.ID)
	if err != nil {
		uc.logger.Error().Err(err).Str("scheduled_debit", sd.ID).Msg("claim failed")
		return SweepResult{Failed: 1}
	}
	if !claimed {
		return SweepResult{Skipped: 1}
	}

	execute := func() error {
		if sd.DestinationAccountID != nil {
			_, err := uc.ledger.Transfer(ctx, systemActor, TransferInput{
				SourceAccountID: sd.SourceAccountID,
				Destination:     *sd.DestinationAccountID,
				Amount:          sd.Amount,
				Note:            sd.Description,
				Mode:            domain.TransferModeInternal,
			})
			return err
		}

		_, err := uc.ledger.RecordOperation(ctx, systemActor, RecordOperationInput{
			AccountID:    sd.SourceAccountID,
			Kind:         domain.OperationDirectDebit,
			Amount:       sd.Amount,
			Counterparty: sd.Description,
			Category:     "direct debit",
			Note:         sd.Description,
		})
		return err
	}

	if err := execute(); err != nil {
		uc.logger.Warn().Err(err).Str("scheduled_debit", sd.ID).Msg("scheduled debit failed")
		if markErr := uc.debitRepo.MarkError(ctx, sd.ID, err.Error()); markErr != nil {
			uc.logger.Error().Err(markErr).Str("scheduled_debit", sd.ID).Msg("mark error failed")
		}
		return SweepResult{Failed: 1}
	}

	if err := uc.debitRepo.MarkExecuted(ctx, sd.ID, now); err != nil {
		uc.logger.Error().Err(err).Str("scheduled_debit", sd.ID).Msg("mark executed failed")
		return SweepResult{Failed: 1}
	}

	return SweepResult{Executed: 1}
}

// processInstallment collects one due installment: the installment flip to
// paid, the debit on the collection account and the principal reduction
// all commit in the same transaction. A failed collection rolls back and
// leaves the installment pending for the next sweep.
func (uc *SchedulerUseCase) processInstallment(ctx context.Context, inst *domain.Installment, now time.Time) SweepResult {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		uc.logger.Error().Err(err).Str("installment", inst.ID).Msg("begin failed")
		return SweepResult{Failed: 1}
	}
	defer tx.Rollback(ctx)

	credit, err := uc.creditRepo.GetByIDForUpdate(ctx, tx, inst.CreditID)
	if err != nil {
		uc.logger.Error().Err(err).Str("installment", inst.ID).Msg("credit lookup failed")
		return SweepResult{Failed: 1}
	}
	if credit.Status != domain.CreditStatusActive {
		return SweepResult{Skipped: 1}
	}

	claimed, err := uc.creditRepo.MarkInstallmentPaid(ctx, tx, inst.ID, now)
	if err != nil {
		uc.logger.Error().Err(err).Str("installment", inst.ID).Msg("claim failed")
		return SweepResult{Failed: 1}
	}
	if !claimed {
		return SweepResult{Skipped: 1}
	}

	op, notices, err := uc.ledger.applyOperation(ctx, tx, RecordOperationInput{
		AccountID:    credit.AccountID,
		Kind:         domain.OperationDirectDebit,
		Amount:       inst.Amount,
		Counterparty: fmt.Sprintf("credit %s", credit.ID),
		Category:     "credit installment",
		Note:         fmt.Sprintf("installment %d/%d", inst.Sequence, credit.TermMonths),
	}, now)
	if err != nil {
		uc.logger.Warn().Err(err).Str("installment", inst.ID).Msg("installment collection failed")
		return SweepResult{Failed: 1}
	}

	if settled := credit.ApplyPayment(inst.Amount); settled {
		credit.Status = domain.CreditStatusTerminated
	}
	credit.UpdatedAt = now

	if err := uc.creditRepo.UpdateTx(ctx, tx, credit); err != nil {
		uc.logger.Error().Err(err).Str("installment", inst.ID).Msg("credit update failed")
		return SweepResult{Failed: 1}
	}

	if err := tx.Commit(ctx); err != nil {
		uc.logger.Error().Err(err).Str("installment", inst.ID).Msg("commit failed")
		return SweepResult{Failed: 1}
	}

	if uc.metrics != nil {
		uc.metrics.InstallmentsPaid.Inc()
	}

	uc.ledger.dispatch(ctx, notices)
	uc.logger.Debug().
		Str("installment", inst.ID).
		Str("operation", op.ID).
		Msg("installment collected")

	return SweepResult{Executed: 1}
}

func (uc *SchedulerUseCase) audit(ctx context.Context, actor *domain.User, action, resourceType, resourceID, detail string) {
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
		CreatedAt:    time.Now().UTC(),
	})
}
