package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
)

// AccountUseCase handles account administration: creation, suspension,
// reactivation and closure.
type AccountUseCase struct {
	accountRepo AccountRepository
	auditRepo   AuditRepository
	authz       *Authorizer
	ledger      *LedgerUseCase
	notifier    Notifier
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	authz *Authorizer,
	ledger *LedgerUseCase,
	notifier Notifier,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		authz:       authz,
		ledger:      ledger,
		notifier:    notifier,
		idGen:       idGen,
	}
}

// WithMetrics enables account lifecycle instrumentation.
func (uc *AccountUseCase) WithMetrics(m *metrics.Metrics) *AccountUseCase {
	uc.metrics = m
	return uc
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID        string
	Type           domain.AccountType
	OverdraftLimit decimal.Decimal
	InitialBalance decimal.Decimal
}

// CreateAccount opens a new active account. A positive initial balance is
// journaled as an opening deposit so the replay invariant holds from the
// first entry.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, actor *domain.User, input CreateAccountInput) (*domain.Account, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if input.OverdraftLimit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.InitialBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Type == "" {
		input.Type = domain.AccountTypeChecking
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		OwnerID:        input.OwnerID,
		Number:         domain.NewAccountNumber(),
		Type:           input.Type,
		Balance:        decimal.Zero,
		OverdraftLimit: input.OverdraftLimit,
		Status:         domain.AccountStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if input.InitialBalance.IsPositive() {
		op, err := uc.ledger.RecordOperation(ctx, actor, RecordOperationInput{
			AccountID: account.ID,
			Kind:      domain.OperationDeposit,
			Amount:    input.InitialBalance,
			Category:  "opening",
			Note:      "opening balance",
		})
		if err != nil {
			return nil, err
		}
		account.Balance = op.BalanceAfter
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	uc.audit(ctx, actor, domain.AuditActionAccountCreate, account.ID,
		fmt.Sprintf("opened %s account %s for owner %s", account.Type, account.Number, account.OwnerID))
	uc.notifier.Send(ctx, account.OwnerID, "Account opened",
		fmt.Sprintf("A new %s account %s has been opened for you.", account.Type, account.Number),
		domain.SeverityInfo)

	return account, nil
}

// GetAccount retrieves an account the actor may see.
func (uc *AccountUseCase) GetAccount(ctx context.Context, actor *domain.User, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.CanOperate(ctx, actor, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts: admins see every account, clients see the
// accounts they own.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, actor *domain.User, input ListAccountsInput) ([]*domain.Account, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	if actor.Role.IsAdmin() {
		limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
		return uc.accountRepo.List(ctx, limit, offset)
	}

	return uc.accountRepo.ListByOwner(ctx, actor.ID)
}

// SetStatus flips an account between active and suspended.
func (uc *AccountUseCase) SetStatus(ctx context.Context, actor *domain.User, id string, status domain.AccountStatus) (*domain.Account, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if status != domain.AccountStatusActive && status != domain.AccountStatusSuspended {
		return nil, domain.ErrInvalidTransition
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.CanTransition(status) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}

	account.Status = status
	account.UpdatedAt = now

	uc.audit(ctx, actor, domain.AuditActionAccountStatus, account.ID,
		fmt.Sprintf("account %s set to %s", account.Number, status))
	uc.notifier.Send(ctx, account.OwnerID, "Account status changed",
		fmt.Sprintf("Your account %s is now %s.", account.Number, status), domain.SeverityInfo)

	return account, nil
}

// CloseAccount closes an account permanently. Closure is refused while the
// balance is positive and above the settlement tolerance; a negative
// balance does not block closure.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, actor *domain.User, id string) (*domain.Account, error) {
	if err := uc.authz.RequireAdmin(actor); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateClosure(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateStatus(ctx, id, domain.AccountStatusClosed, now); err != nil {
		return nil, err
	}

	account.Status = domain.AccountStatusClosed
	account.UpdatedAt = now

	if uc.metrics != nil {
		uc.metrics.AccountsClosed.Inc()
	}

	uc.audit(ctx, actor, domain.AuditActionAccountClose, account.ID,
		fmt.Sprintf("account %s closed", account.Number))
	uc.notifier.Send(ctx, account.OwnerID, "Account closed",
		fmt.Sprintf("Your account %s has been closed.", account.Number), domain.SeverityInfo)

	return account, nil
}

func (uc *AccountUseCase) audit(ctx context.Context, actor *domain.User, action, resourceID, detail string) {
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: "account",
		ResourceID:   resourceID,
		Detail:       detail,
		CreatedAt:    time.Now().UTC(),
	})
}
