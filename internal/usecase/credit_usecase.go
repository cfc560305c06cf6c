package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
)

// CreditUseCase handles credit contract administration. The installment
// schedule is materialized once at issuance; contract edits deliberately
// leave existing installments untouched.
type CreditUseCase struct {
	txManager   TransactionManager
	creditRepo  CreditRepository
	accountRepo AccountRepository
	auditRepo   AuditRepository
	authz       *Authorizer
	notifier    Notifier
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewCreditUseCase creates a new CreditUseCase.
func NewCreditUseCase(
	txManager TransactionManager,
	creditRepo CreditRepository,
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	authz *Authorizer,
	notifier Notifier,
	idGen IDGenerator,
) *CreditUseCase {
	return &CreditUseCase{
		txManager:   txManager,
		creditRepo:  creditRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		authz:       authz,
		notifier:    notifier,
		idGen:       idGen,
	}
}

// WithMetrics enables credit issuance instrumentation.
func (uc *CreditUseCase) WithMetrics(m *metrics.Metrics) *CreditUseCase {
	uc.metrics = m
	return uc
}

// IssueCreditInput represents input for issuing a credit contract.
type IssueCreditInput struct {
	OwnerID       string
	AccountID     string
	Principal     decimal.Decimal
	AnnualRatePct decimal.Decimal
	TermMonths    int
	StartDate     time.Time
}

// IssueCredit creates a contract and its full installment schedule in one
// atomic unit. The collection account must be active and belong to the
// borrower.
func (uc *CreditUseCase) IssueCredit(ctx context.Context, actor *domain.User, input IssueCreditInput) (*domain.CreditContract, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, domain.ErrAccountNotActive
	}
	if account.OwnerID != input.OwnerID {
		return nil, domain.ErrForbidden
	}

	payment, err := domain.ComputeInstallment(input.Principal, input.AnnualRatePct, input.TermMonths)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	start := input.StartDate
	if start.IsZero() {
		start = now
	}

	credit := &domain.CreditContract{
		ID:                 uc.idGen.Generate(),
		OwnerID:            input.OwnerID,
		AccountID:          input.AccountID,
		Principal:          input.Principal,
		AnnualRatePct:      input.AnnualRatePct,
		TermMonths:         input.TermMonths,
		MonthlyPayment:     payment,
		StartDate:          start,
		EndDate:            start.AddDate(0, input.TermMonths, 0),
		RemainingPrincipal: input.Principal,
		Status:             domain.CreditStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	installments, err := credit.GenerateSchedule(uc.idGen.Generate, now)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.creditRepo.Create(ctx, tx, credit); err != nil {
		return nil, err
	}
	for _, inst := range installments {
		if err := uc.creditRepo.CreateInstallment(ctx, tx, inst); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CreditsIssued.Inc()
	}

	uc.audit(ctx, actor, domain.AuditActionCreditIssue, credit.ID,
		fmt.Sprintf("credit of %s over %d months at %s%%", credit.Principal.StringFixed(2), credit.TermMonths, credit.AnnualRatePct.String()))
	uc.notifier.Send(ctx, credit.OwnerID, "Credit granted",
		fmt.Sprintf("A credit of %s over %d months has been granted to you. Monthly payment: %s.",
			credit.Principal.StringFixed(2), credit.TermMonths, credit.MonthlyPayment.StringFixed(2)),
		domain.SeverityInfo)

	return credit, nil
}

// GetCredit retrieves a contract visible to the actor.
func (uc *CreditUseCase) GetCredit(ctx context.Context, actor *domain.User, id string) (*domain.CreditContract, error) {
	credit, err := uc.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() && credit.OwnerID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return credit, nil
}

// ListCreditsInput represents input for listing contracts.
type ListCreditsInput struct {
	Limit  int
	Offset int
}

// ListCredits lists contracts: admins see all, clients see their own.
func (uc *CreditUseCase) ListCredits(ctx context.Context, actor *domain.User, input ListCreditsInput) ([]*domain.CreditContract, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	if actor.Role.IsAdmin() {
		limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
		return uc.creditRepo.List(ctx, limit, offset)
	}

	return uc.creditRepo.ListByOwner(ctx, actor.ID)
}

// ListSchedule returns the contract's installments ordered by sequence.
func (uc *CreditUseCase) ListSchedule(ctx context.Context, actor *domain.User, creditID string) ([]*domain.Installment, error) {
	if _, err := uc.GetCredit(ctx, actor, creditID); err != nil {
		return nil, err
	}
	return uc.creditRepo.ListInstallments(ctx, creditID)
}

// UpdateCreditInput carries optional contract edits. Nil fields are left
// unchanged.
type UpdateCreditInput struct {
	Principal     *decimal.Decimal
	AnnualRatePct *decimal.Decimal
	EndDate       *time.Time
}

// UpdateCredit mutates the contract record only. Existing installments are
// never regenerated, matching long-standing product behavior.
func (uc *CreditUseCase) UpdateCredit(ctx context.Context, actor *domain.User, id string, input UpdateCreditInput) (*domain.CreditContract, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	credit, err := uc.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes []string

	if input.Principal != nil {
		if err := domain.ValidateAmount(*input.Principal); err != nil {
			return nil, err
		}
		credit.Principal = *input.Principal
		credit.RemainingPrincipal = *input.Principal
		changes = append(changes, fmt.Sprintf("principal=%s", input.Principal.StringFixed(2)))
	}
	if input.AnnualRatePct != nil {
		if input.AnnualRatePct.IsNegative() {
			return nil, domain.ErrInvalidRate
		}
		credit.AnnualRatePct = *input.AnnualRatePct
		changes = append(changes, fmt.Sprintf("rate=%s%%", input.AnnualRatePct.String()))
	}
	if input.EndDate != nil {
		credit.EndDate = *input.EndDate
		changes = append(changes, fmt.Sprintf("end_date=%s", input.EndDate.Format("2006-01-02")))
	}

	if len(changes) == 0 {
		return credit, nil
	}

	credit.UpdatedAt = time.Now().UTC()
	if err := uc.creditRepo.Update(ctx, credit); err != nil {
		return nil, err
	}

	uc.audit(ctx, actor, domain.AuditActionCreditEdit, credit.ID, fmt.Sprintf("edited: %v", changes))
	uc.notifier.Send(ctx, credit.OwnerID, "Credit contract updated",
		fmt.Sprintf("Your credit contract was updated (%v).", changes), domain.SeverityInfo)

	return credit, nil
}

// AddInstallmentInput represents input for an ad hoc installment.
type AddInstallmentInput struct {
	CreditID string
	Amount   decimal.Decimal
	DueDate  time.Time
}

// AddInstallment appends an ad hoc installment with the next sequence
// number.
func (uc *CreditUseCase) AddInstallment(ctx context.Context, actor *domain.User, input AddInstallmentInput) (*domain.Installment, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	credit, err := uc.creditRepo.GetByID(ctx, input.CreditID)
	if err != nil {
		return nil, err
	}
	if credit.Status != domain.CreditStatusActive {
		return nil, domain.ErrCreditNotActive
	}

	maxSeq, err := uc.creditRepo.MaxInstallmentSequence(ctx, credit.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inst := &domain.Installment{
		ID:        uc.idGen.Generate(),
		CreditID:  credit.ID,
		Sequence:  maxSeq + 1,
		DueDate:   input.DueDate,
		Amount:    input.Amount,
		Status:    domain.InstallmentStatusPending,
		CreatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.creditRepo.CreateInstallment(ctx, tx, inst); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.audit(ctx, actor, domain.AuditActionInstallmentAdd, inst.ID,
		fmt.Sprintf("installment %d of %s on credit %s", inst.Sequence, inst.Amount.StringFixed(2), credit.ID))

	return inst, nil
}

// DeleteInstallment removes an installment, refusing once it has been
// paid.
func (uc *CreditUseCase) DeleteInstallment(ctx context.Context, actor *domain.User, id string) error {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return err
	}

	inst, err := uc.creditRepo.GetInstallment(ctx, id)
	if err != nil {
		return err
	}
	if inst.Status != domain.InstallmentStatusPending {
		return domain.ErrInstallmentNotPending
	}

	deleted, err := uc.creditRepo.DeletePendingInstallment(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrInstallmentNotPending
	}

	uc.audit(ctx, actor, domain.AuditActionInstallmentDelete, id,
		fmt.Sprintf("installment %d removed from credit %s", inst.Sequence, inst.CreditID))

	return nil
}

func (uc *CreditUseCase) audit(ctx context.Context, actor *domain.User, action, resourceID, detail string) {
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: "credit",
		ResourceID:   resourceID,
		Detail:       detail,
		CreatedAt:    time.Now().UTC(),
	})
}
