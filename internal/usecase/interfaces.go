package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// OperationRepository defines data access for journal entries.
type OperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.Operation) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error)
	ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.Operation, error)
}

// AlertRepository defines data access for overdraft alerts.
type AlertRepository interface {
	Create(ctx context.Context, tx Transaction, alert *domain.OverdraftAlert) error
	GetUnresolvedForUpdate(ctx context.Context, tx Transaction, accountID string) (*domain.OverdraftAlert, error)
	Update(ctx context.Context, tx Transaction, alert *domain.OverdraftAlert) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.OverdraftAlert, error)
}

// ScheduledTransferRepository defines data access for scheduled transfers.
type ScheduledTransferRepository interface {
	Create(ctx context.Context, st *domain.ScheduledTransfer) error
	GetByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error)
	ListDue(ctx context.Context, day time.Time) ([]*domain.ScheduledTransfer, error)
	ListBySourceAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error)
	// Claim transitions pending -> processing; it returns false when the item
	// was already claimed, cancelled or executed.
	Claim(ctx context.Context, id string) (bool, error)
	MarkExecuted(ctx context.Context, id string, executedAt time.Time) error
	MarkError(ctx context.Context, id string, message string) error
	// UpdatePending edits amount, description and execution date while the
	// item is still pending; it returns false once the item left pending.
	UpdatePending(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error)
	// CancelPending transitions pending -> cancelled; it returns false once
	// the item left pending.
	CancelPending(ctx context.Context, id string) (bool, error)
}

// ScheduledDebitRepository defines data access for scheduled direct debits.
type ScheduledDebitRepository interface {
	Create(ctx context.Context, sd *domain.ScheduledDebit) error
	GetByID(ctx context.Context, id string) (*domain.ScheduledDebit, error)
	ListDue(ctx context.Context, day time.Time) ([]*domain.ScheduledDebit, error)
	ListBySourceAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledDebit, error)
	Claim(ctx context.Context, id string) (bool, error)
	MarkExecuted(ctx context.Context, id string, executedAt time.Time) error
	MarkError(ctx context.Context, id string, message string) error
	UpdatePending(ctx context.Context, id string, amount decimal.Decimal, description string, executionDate time.Time) (bool, error)
	CancelPending(ctx context.Context, id string) (bool, error)
}

// CreditRepository defines data access for credit contracts and their
// installments.
type CreditRepository interface {
	Create(ctx context.Context, tx Transaction, credit *domain.CreditContract) error
	GetByID(ctx context.Context, id string) (*domain.CreditContract, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.CreditContract, error)
	Update(ctx context.Context, credit *domain.CreditContract) error
	UpdateTx(ctx context.Context, tx Transaction, credit *domain.CreditContract) error
	List(ctx context.Context, limit, offset int) ([]*domain.CreditContract, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.CreditContract, error)

	CreateInstallment(ctx context.Context, tx Transaction, inst *domain.Installment) error
	GetInstallment(ctx context.Context, id string) (*domain.Installment, error)
	ListInstallments(ctx context.Context, creditID string) ([]*domain.Installment, error)
	ListDueInstallments(ctx context.Context, day time.Time) ([]*domain.Installment, error)
	MaxInstallmentSequence(ctx context.Context, creditID string) (int, error)
	// MarkInstallmentPaid transitions pending -> paid; it returns false when
	// the installment was already paid or deleted.
	MarkInstallmentPaid(ctx context.Context, tx Transaction, id string, paidAt time.Time) (bool, error)
	// DeletePendingInstallment removes the installment only while pending.
	DeletePendingInstallment(ctx context.Context, id string) (bool, error)
}

// MandateRepository defines data access for delegated mandates.
type MandateRepository interface {
	HasActiveMandate(ctx context.Context, accountID, granteeID string, at time.Time) (bool, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation that failed on transient lock contention.
// Implementations surface domain.ErrContention once attempts are
// exhausted, so callers never block indefinitely on a held row lock.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Notifier informs account owners of ledger events. Sends are
// fire-and-forget: failures are logged by the implementation and never
// propagate into the triggering transaction.
type Notifier interface {
	Send(ctx context.Context, ownerID, subject, body string, severity domain.Severity)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
