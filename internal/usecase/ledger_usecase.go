package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
)

// LedgerUseCase is the single entry point for balance mutations. Every
// mutation runs as one atomic unit: balance read under lock, overdraft
// check, journal append, balance write and monitor pass either all happen
// or none do.
type LedgerUseCase struct {
	txManager     TransactionManager
	accountRepo   AccountRepository
	operationRepo OperationRepository
	auditRepo     AuditRepository
	monitor       *Monitor
	authz         *Authorizer
	notifier      Notifier
	idGen         IDGenerator
	retrier       Retrier
	metrics       *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	operationRepo OperationRepository,
	auditRepo AuditRepository,
	monitor *Monitor,
	authz *Authorizer,
	notifier Notifier,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:     txManager,
		accountRepo:   accountRepo,
		operationRepo: operationRepo,
		auditRepo:     auditRepo,
		monitor:       monitor,
		authz:         authz,
		notifier:      notifier,
		idGen:         idGen,
	}
}

// WithRetrier makes ledger transactions retry transient lock contention
// before surfacing domain.ErrContention to the caller.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	uc.retrier = r
	return uc
}

// WithMetrics enables operation and transfer instrumentation.
func (uc *LedgerUseCase) WithMetrics(m *metrics.Metrics) *LedgerUseCase {
	uc.metrics = m
	return uc
}

// RecordOperationInput represents input for recording a single operation.
type RecordOperationInput struct {
	AccountID    string
	Kind         domain.OperationKind
	Amount       decimal.Decimal
	Counterparty string
	Category     string
	Note         string
}

// RecordOperation atomically applies a single journal entry to an account.
func (uc *LedgerUseCase) RecordOperation(ctx context.Context, actor *domain.User, input RecordOperationInput) (*domain.Operation, error) {
	if !input.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.CanOperate(ctx, actor, account); err != nil {
		return nil, err
	}

	start := time.Now()

	var (
		op      *domain.Operation
		notices []Notice
	)
	err = uc.inTx(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		now := time.Now().UTC()

		o, n, err := uc.applyOperation(ctx, tx, input, now)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		op, notices = o, n
		return nil
	})
	if err != nil {
		uc.countOperationError(err)
		return nil, err
	}

	uc.observeOperation(op, start)
	uc.dispatch(ctx, notices)
	uc.audit(ctx, actor, domain.AuditActionOperationCreate, "operation", op.ID,
		fmt.Sprintf("%s of %s on account %s", op.Kind, op.Amount.StringFixed(2), op.AccountID))

	return op, nil
}

// inTx runs one transactional body, retrying transient lock contention
// when a retrier is configured.
func (uc *LedgerUseCase) inTx(ctx context.Context, body func() error) error {
	if uc.retrier == nil {
		return body()
	}
	return uc.retrier.Retry(ctx, body)
}

// applyOperation performs the locked read-modify-write for one journal
// entry inside an open transaction. The caller owns commit and rollback.
func (uc *LedgerUseCase) applyOperation(ctx context.Context, tx Transaction, input RecordOperationInput, now time.Time) (*domain.Operation, []Notice, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if !account.IsActive() {
		return nil, nil, domain.ErrAccountNotActive
	}

	newBalance := account.Balance.Add(input.Kind.SignedAmount(input.Amount))
	if newBalance.LessThan(account.FloorBalance()) {
		return nil, nil, domain.ErrInsufficientFunds
	}

	op := &domain.Operation{
		ID:           uc.idGen.Generate(),
		AccountID:    account.ID,
		Kind:         input.Kind,
		Amount:       input.Amount,
		Counterparty: input.Counterparty,
		Category:     input.Category,
		Note:         input.Note,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}

	if err := uc.operationRepo.Create(ctx, tx, op); err != nil {
		return nil, nil, err
	}
	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, nil, err
	}

	account.Balance = newBalance

	notices, err := uc.monitor.Check(ctx, tx, account, now)
	if err != nil {
		return nil, nil, err
	}

	return op, notices, nil
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	SourceAccountID string
	// Destination identifies the receiving account by ID or display number
	// for internal transfers. It is ignored for external transfers.
	Destination string
	// ExternalReference and Beneficiary describe the receiving side of an
	// external transfer.
	ExternalReference string
	Beneficiary       string
	Amount            decimal.Decimal
	Note              string
	Mode              domain.TransferMode
}

// TransferResult holds the journal entries created by a transfer. External
// transfers have no credit leg.
type TransferResult struct {
	DebitOperation  *domain.Operation
	CreditOperation *domain.Operation
}

// Transfer moves money out of a source account: two linked legs committed
// as one unit for internal transfers, a single debit leg for external ones.
func (uc *LedgerUseCase) Transfer(ctx context.Context, actor *domain.User, input TransferInput) (*TransferResult, error) {
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

	var result *TransferResult
	switch input.Mode {
	case domain.TransferModeExternal:
		result, err = uc.transferExternal(ctx, actor, source, input)
	case domain.TransferModeInternal:
		result, err = uc.transferInternal(ctx, actor, source, input)
	default:
		return nil, fmt.Errorf("%w: transfer mode %q", domain.ErrInvalidKind, input.Mode)
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransferErrors.WithLabelValues(errorReason(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersExecuted.WithLabelValues(string(input.Mode)).Inc()
	}
	return result, nil
}

func (uc *LedgerUseCase) transferExternal(ctx context.Context, actor *domain.User, source *domain.Account, input TransferInput) (*TransferResult, error) {
	ref, err := domain.ValidateExternalReference(input.ExternalReference)
	if err != nil {
		return nil, err
	}
	if input.Beneficiary == "" {
		return nil, domain.ErrInvalidBeneficiary
	}

	debit, err := uc.RecordOperation(ctx, actor, RecordOperationInput{
		AccountID:    source.ID,
		Kind:         domain.OperationTransferDebit,
		Amount:       input.Amount,
		Counterparty: fmt.Sprintf("%s (%s)", input.Beneficiary, ref),
		Category:     "external transfer",
		Note:         input.Note,
	})
	if err != nil {
		return nil, err
	}

	return &TransferResult{DebitOperation: debit}, nil
}

func (uc *LedgerUseCase) transferInternal(ctx context.Context, actor *domain.User, source *domain.Account, input TransferInput) (*TransferResult, error) {
	destination, err := uc.resolveDestination(ctx, input.Destination)
	if err != nil {
		return nil, err
	}
	if destination.ID == source.ID {
		return nil, domain.ErrSameAccount
	}
	if !destination.IsActive() {
		return nil, domain.ErrAccountNotActive
	}

	// Lock both accounts in ascending ID order so concurrent transfers in
	// opposite directions cannot deadlock.
	ids := []string{source.ID, destination.ID}
	sort.Strings(ids)

	var (
		debit, credit *domain.Operation
		notices       []Notice
	)
	err = uc.inTx(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(accounts) != len(ids) {
			return domain.ErrAccountNotFound
		}

		now := time.Now().UTC()

		d, debitNotices, err := uc.applyOperation(ctx, tx, RecordOperationInput{
			AccountID:    source.ID,
			Kind:         domain.OperationTransferDebit,
			Amount:       input.Amount,
			Counterparty: destination.Number,
			Category:     "transfer",
			Note:         input.Note,
		}, now)
		if err != nil {
			return err
		}

		c, creditNotices, err := uc.applyOperation(ctx, tx, RecordOperationInput{
			AccountID:    destination.ID,
			Kind:         domain.OperationTransferCredit,
			Amount:       input.Amount,
			Counterparty: source.Number,
			Category:     "transfer",
			Note:         input.Note,
		}, now)
		if err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		debit, credit = d, c
		notices = append(debitNotices, creditNotices...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.dispatch(ctx, notices)
	uc.audit(ctx, actor, domain.AuditActionTransferCreate, "account", source.ID,
		fmt.Sprintf("transfer of %s from %s to %s", input.Amount.StringFixed(2), source.Number, destination.Number))

	return &TransferResult{DebitOperation: debit, CreditOperation: credit}, nil
}

// resolveDestination finds an internal account by ID first, then by display
// number.
func (uc *LedgerUseCase) resolveDestination(ctx context.Context, identifier string) (*domain.Account, error) {
	if identifier == "" {
		return nil, domain.ErrAccountNotFound
	}

	account, err := uc.accountRepo.GetByID(ctx, identifier)
	if err == nil {
		return account, nil
	}

	return uc.accountRepo.GetByNumber(ctx, identifier)
}

// ListOperationsInput represents input for listing journal entries.
type ListOperationsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListOperations lists an account's journal entries, newest first.
func (uc *LedgerUseCase) ListOperations(ctx context.Context, actor *domain.User, input ListOperationsInput) ([]*domain.Operation, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.CanOperate(ctx, actor, account); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.operationRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// ListAlerts lists an account's overdraft alerts, open and resolved.
func (uc *LedgerUseCase) ListAlerts(ctx context.Context, actor *domain.User, accountID string, limit, offset int) ([]*domain.OverdraftAlert, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.CanOperate(ctx, actor, account); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.monitor.alertRepo.ListByAccount(ctx, accountID, limit, offset)
}

// GetBalance returns the account's current balance and overdraft headroom.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, actor *domain.User, accountID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := uc.authz.CanOperate(ctx, actor, account); err != nil {
		return nil, err
	}

	return account, nil
}

// ConsistencyReport is the result of replaying every account's journal.
type ConsistencyReport struct {
	AccountsChecked int
	Inconsistent    []string
}

// Consistent reports whether every account passed the replay check.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Inconsistent) == 0
}

// CheckConsistency replays each account's journal and verifies both the
// running-sum chain between consecutive entries and that the final sum
// equals the stored balance.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	ids, err := uc.accountRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{}

	for _, id := range ids {
		account, err := uc.accountRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		ops, err := uc.operationRepo.ListByAccountAsc(ctx, id)
		if err != nil {
			return nil, err
		}

		report.AccountsChecked++

		if !replayMatches(account, ops) {
			report.Inconsistent = append(report.Inconsistent, id)
		}
	}

	return report, nil
}

func replayMatches(account *domain.Account, ops []*domain.Operation) bool {
	running := decimal.Zero
	for _, op := range ops {
		running = running.Add(op.SignedAmount())
		if !running.Equal(op.BalanceAfter) {
			return false
		}
	}
	return running.Equal(account.Balance)
}

func (uc *LedgerUseCase) observeOperation(op *domain.Operation, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.OperationsRecorded.WithLabelValues(string(op.Kind)).Inc()
	uc.metrics.OperationAmount.Observe(op.Amount.InexactFloat64())
	uc.metrics.OperationDuration.Observe(time.Since(start).Seconds())
}

func (uc *LedgerUseCase) countOperationError(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.OperationErrors.WithLabelValues(errorReason(err)).Inc()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotActive):
		return "account_not_active"
	case errors.Is(err, domain.ErrContention):
		return "contention"
	default:
		return "other"
	}
}

// dispatch sends notices produced inside a committed transaction. The
// Notifier contract makes sends fire-and-forget.
func (uc *LedgerUseCase) dispatch(ctx context.Context, notices []Notice) {
	for _, n := range notices {
		uc.notifier.Send(ctx, n.OwnerID, n.Subject, n.Body, n.Severity)
	}
}

func (uc *LedgerUseCase) audit(ctx context.Context, actor *domain.User, action, resourceType, resourceID, detail string) {
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}

	// Audit writes are best-effort; the repository logs its own failures.
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
