package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
	"github.com/corebank/bankd/internal/usecase"
	"github.com/corebank/bankd/internal/usecase/mocks"
)

// Registered once for the test binary; assertions measure deltas because
// counters accumulate across tests.
var testMetrics = metrics.New()

// reRunRetrier re-runs the body on any error, the way the postgres
// retrier does for lock contention, and reports contention once
// attempts are exhausted.
type reRunRetrier struct {
	maxAttempts int
	attempts    int
}

func (r *reRunRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < r.maxAttempts; i++ {
		r.attempts++
		if err = operation(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrContention, err)
}

type ledgerFixture struct {
	accountRepo   *mocks.MockAccountRepository
	operationRepo *mocks.MockOperationRepository
	alertRepo     *mocks.MockAlertRepository
	auditRepo     *mocks.MockAuditRepository
	mandateRepo   *mocks.MockMandateRepository
	notifier      *mocks.MockNotifier
	ledger        *usecase.LedgerUseCase
}

func newLedgerFixture(thresholdDays int) *ledgerFixture {
	f := &ledgerFixture{
		accountRepo:   mocks.NewMockAccountRepository(),
		operationRepo: mocks.NewMockOperationRepository(),
		alertRepo:     mocks.NewMockAlertRepository(),
		auditRepo:     mocks.NewMockAuditRepository(),
		mandateRepo:   mocks.NewMockMandateRepository(),
		notifier:      mocks.NewMockNotifier(),
	}

	idGen := mocks.NewMockIDGenerator()
	authz := usecase.NewAuthorizer(f.mandateRepo)
	monitor := usecase.NewMonitor(f.alertRepo, idGen, thresholdDays)

	f.ledger = usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		f.accountRepo,
		f.operationRepo,
		f.auditRepo,
		monitor,
		authz,
		f.notifier,
		idGen,
	)

	return f
}

func (f *ledgerFixture) addAccount(id, ownerID string, balance, overdraft int64) *domain.Account {
	account := &domain.Account{
		ID:             id,
		OwnerID:        ownerID,
		Number:         "FR76" + id,
		Type:           domain.AccountTypeChecking,
		Balance:        decimal.NewFromInt(balance),
		OverdraftLimit: decimal.NewFromInt(overdraft),
		Status:         domain.AccountStatusActive,
	}
	_ = f.accountRepo.Create(context.Background(), account)
	return account
}

func adminUser() *domain.User {
	return &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
}

func clientUser(id string) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleClient}
}

func TestLedgerUseCase_RecordOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("debit within overdraft succeeds", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 50)

		op, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationWithdrawal,
			Amount:    decimal.NewFromInt(120),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !op.BalanceAfter.Equal(decimal.NewFromInt(-20)) {
			t.Errorf("BalanceAfter = %s, want -20", op.BalanceAfter)
		}

		account, _ := f.accountRepo.GetByID(ctx, "acc-1")
		if !account.Balance.Equal(decimal.NewFromInt(-20)) {
			t.Errorf("stored balance = %s, want -20", account.Balance)
		}
	})

	t.Run("debit past overdraft floor is rejected with no partial effect", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 50)

		_, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationDebit,
			Amount:    decimal.NewFromInt(200),
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}

		account, _ := f.accountRepo.GetByID(ctx, "acc-1")
		if !account.Balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("balance changed to %s, want 100 untouched", account.Balance)
		}
		ops, _ := f.operationRepo.ListByAccountAsc(ctx, "acc-1")
		if len(ops) != 0 {
			t.Errorf("expected no journal entries, got %d", len(ops))
		}
	})

	t.Run("debit to exactly the floor passes", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 50)

		op, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationDebit,
			Amount:    decimal.NewFromInt(150),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !op.BalanceAfter.Equal(decimal.NewFromInt(-50)) {
			t.Errorf("BalanceAfter = %s, want -50", op.BalanceAfter)
		}
	})

	t.Run("suspended account rejects operations", func(t *testing.T) {
		f := newLedgerFixture(2)
		account := f.addAccount("acc-1", "owner-1", 100, 0)
		account.Status = domain.AccountStatusSuspended

		_, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationCredit,
			Amount:    decimal.NewFromInt(10),
		})
		if !errors.Is(err, domain.ErrAccountNotActive) {
			t.Fatalf("expected ErrAccountNotActive, got %v", err)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 0)

		_, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationKind("chargeback"),
			Amount:    decimal.NewFromInt(10),
		})
		if !errors.Is(err, domain.ErrInvalidKind) {
			t.Fatalf("expected ErrInvalidKind, got %v", err)
		}
	})

	t.Run("owner may operate, stranger may not", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 0)

		input := usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationDeposit,
			Amount:    decimal.NewFromInt(10),
		}

		if _, err := f.ledger.RecordOperation(ctx, clientUser("owner-1"), input); err != nil {
			t.Fatalf("owner should operate own account: %v", err)
		}
		if _, err := f.ledger.RecordOperation(ctx, clientUser("stranger"), input); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("mandate holder may operate", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 0)
		f.mandateRepo.Grant(&domain.Mandate{
			ID:        "mandate-1",
			AccountID: "acc-1",
			GranteeID: "delegate-1",
			Status:    domain.MandateStatusActive,
		})

		_, err := f.ledger.RecordOperation(ctx, clientUser("delegate-1"), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationDeposit,
			Amount:    decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("mandate holder should operate: %v", err)
		}
	})
}

func TestLedgerUseCase_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("internal transfer creates both legs", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-a", "owner-1", 500, 0)
		f.addAccount("acc-b", "owner-2", 0, 0)

		result, err := f.ledger.Transfer(ctx, adminUser(), usecase.TransferInput{
			SourceAccountID: "acc-a",
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(300),
			Mode:            domain.TransferModeInternal,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !result.DebitOperation.BalanceAfter.Equal(decimal.NewFromInt(200)) {
			t.Errorf("source BalanceAfter = %s, want 200", result.DebitOperation.BalanceAfter)
		}
		if !result.CreditOperation.BalanceAfter.Equal(decimal.NewFromInt(300)) {
			t.Errorf("destination BalanceAfter = %s, want 300", result.CreditOperation.BalanceAfter)
		}

		source, _ := f.accountRepo.GetByID(ctx, "acc-a")
		destination, _ := f.accountRepo.GetByID(ctx, "acc-b")
		if !source.Balance.Equal(decimal.NewFromInt(200)) || !destination.Balance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("balances = %s / %s, want 200 / 300", source.Balance, destination.Balance)
		}
	})

	t.Run("destination resolved by account number", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-a", "owner-1", 100, 0)
		destination := f.addAccount("acc-b", "owner-2", 0, 0)

		_, err := f.ledger.Transfer(ctx, adminUser(), usecase.TransferInput{
			SourceAccountID: "acc-a",
			Destination:     destination.Number,
			Amount:          decimal.NewFromInt(50),
			Mode:            domain.TransferModeInternal,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("same account rejected", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-a", "owner-1", 100, 0)

		_, err := f.ledger.Transfer(ctx, adminUser(), usecase.TransferInput{
			SourceAccountID: "acc-a",
			Destination:     "acc-a",
			Amount:          decimal.NewFromInt(50),
			Mode:            domain.TransferModeInternal,
		})
		if !errors.Is(err, domain.ErrSameAccount) {
			t.Fatalf("expected ErrSameAccount, got %v", err)
		}
	})

	t.Run("amount above available funds rejected before any leg", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-a", "owner-1", 100, 20)
		f.addAccount("acc-b", "owner-2", 0, 0)

		_, err := f.ledger.Transfer(ctx, adminUser(), usecase.TransferInput{
			SourceAccountID: "acc-a",
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(121),
			Mode:            domain.TransferModeInternal,
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}

		ops, _ := f.operationRepo.ListByAccountAsc(ctx, "acc-a")
		if len(ops) != 0 {
			t.Errorf("expected no journal entries, got %d", len(ops))
		}
	})

	t.Run("external transfer records a single debit leg", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-a", "owner-1", 100, 0)

		result, err := f.ledger.Transfer(ctx, adminUser(), usecase.TransferInput{
			SourceAccountID:   "acc-a",
			ExternalReference: "de89 3704 0044 0532 0130 00",
			Beneficiary:       "ACME GmbH",
			Amount:            decimal.NewFromInt(40),
			Mode:              domain.TransferModeExternal,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.CreditOperation != nil {
			t.Error("external transfer must not have a credit leg")
		}

		ops, _ := f.operationRepo.ListByAccountAsc(ctx, "acc-a")
		if len(ops) != 1 {
			t.Fatalf("expected one journal entry, got %d", len(ops))
		}
		if ops[0].Kind != domain.OperationTransferDebit {
			t.Errorf("kind = %s, want %s", ops[0].Kind, domain.OperationTransferDebit)
		}
	})

	t.Run("external transfer rejects malformed reference", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-a", "owner-1", 100, 0)

		_, err := f.ledger.Transfer(ctx, adminUser(), usecase.TransferInput{
			SourceAccountID:   "acc-a",
			ExternalReference: "DE89",
			Beneficiary:       "ACME GmbH",
			Amount:            decimal.NewFromInt(40),
			Mode:              domain.TransferModeExternal,
		})
		if !errors.Is(err, domain.ErrInvalidReference) {
			t.Fatalf("expected ErrInvalidReference, got %v", err)
		}
	})
}

func TestLedgerUseCase_RetriesLockContention(t *testing.T) {
	ctx := context.Background()

	t.Run("transient lock failure is retried to success", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 0)
		retrier := &reRunRetrier{maxAttempts: 3}
		f.ledger.WithRetrier(retrier)

		calls := 0
		f.accountRepo.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("canceling statement due to lock timeout")
			}
			return f.accountRepo.GetByID(ctx, id)
		}

		op, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationDeposit,
			Amount:    decimal.NewFromInt(50),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if retrier.attempts != 2 {
			t.Errorf("attempts = %d, want 2", retrier.attempts)
		}
		if !op.BalanceAfter.Equal(decimal.NewFromInt(150)) {
			t.Errorf("BalanceAfter = %s, want 150", op.BalanceAfter)
		}
	})

	t.Run("exhausted retries surface contention with no partial effect", func(t *testing.T) {
		f := newLedgerFixture(2)
		f.addAccount("acc-1", "owner-1", 100, 0)
		retrier := &reRunRetrier{maxAttempts: 3}
		f.ledger.WithRetrier(retrier)

		f.accountRepo.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
			return nil, errors.New("canceling statement due to lock timeout")
		}

		_, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-1",
			Kind:      domain.OperationDeposit,
			Amount:    decimal.NewFromInt(50),
		})
		if !errors.Is(err, domain.ErrContention) {
			t.Fatalf("expected ErrContention, got %v", err)
		}
		if retrier.attempts != 3 {
			t.Errorf("attempts = %d, want 3", retrier.attempts)
		}

		account, _ := f.accountRepo.GetByID(ctx, "acc-1")
		if !account.Balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("balance changed to %s, want 100 untouched", account.Balance)
		}
		ops, _ := f.operationRepo.ListByAccountAsc(ctx, "acc-1")
		if len(ops) != 0 {
			t.Errorf("expected no journal entries, got %d", len(ops))
		}
	})
}

func TestLedgerUseCase_Instrumentation(t *testing.T) {
	ctx := context.Background()

	f := newLedgerFixture(2)
	f.ledger.WithMetrics(testMetrics)
	f.addAccount("acc-a", "owner-1", 100, 0)
	f.addAccount("acc-b", "owner-2", 0, 0)

	deposits := testutil.ToFloat64(testMetrics.OperationsRecorded.WithLabelValues(string(domain.OperationDeposit)))
	rejections := testutil.ToFloat64(testMetrics.OperationErrors.WithLabelValues("insufficient_funds"))
	transfers := testutil.ToFloat64(testMetrics.TransfersExecuted.WithLabelValues(string(domain.TransferModeInternal)))

	if _, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
		AccountID: "acc-a",
		Kind:      domain.OperationDeposit,
		Amount:    decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
		AccountID: "acc-a",
		Kind:      domain.OperationDebit,
		Amount:    decimal.NewFromInt(10000),
	}); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := f.ledger.Transfer(ctx, adminUser(), usecase.TransferInput{
		SourceAccountID: "acc-a",
		Destination:     "acc-b",
		Amount:          decimal.NewFromInt(5),
		Mode:            domain.TransferModeInternal,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(testMetrics.OperationsRecorded.WithLabelValues(string(domain.OperationDeposit))) - deposits; got != 1 {
		t.Errorf("deposit counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(testMetrics.OperationErrors.WithLabelValues("insufficient_funds")) - rejections; got != 1 {
		t.Errorf("insufficient_funds counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(testMetrics.TransfersExecuted.WithLabelValues(string(domain.TransferModeInternal))) - transfers; got != 1 {
		t.Errorf("internal transfer counter delta = %v, want 1", got)
	}
}

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	ctx := context.Background()

	f := newLedgerFixture(2)
	f.addAccount("acc-a", "owner-1", 0, 0)

	for _, amount := range []int64{100, 40, 25} {
		kind := domain.OperationDeposit
		if amount == 40 {
			kind = domain.OperationWithdrawal
		}
		if _, err := f.ledger.RecordOperation(ctx, adminUser(), usecase.RecordOperationInput{
			AccountID: "acc-a",
			Kind:      kind,
			Amount:    decimal.NewFromInt(amount),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	report, err := f.ledger.CheckConsistency(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Consistent() {
		t.Fatalf("replay should match, inconsistent: %v", report.Inconsistent)
	}
	if report.AccountsChecked != 1 {
		t.Errorf("AccountsChecked = %d, want 1", report.AccountsChecked)
	}

	// Tamper with the stored balance behind the journal's back.
	account, _ := f.accountRepo.GetByID(ctx, "acc-a")
	account.Balance = account.Balance.Add(decimal.NewFromInt(1))

	report, err = f.ledger.CheckConsistency(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Consistent() {
		t.Fatal("tampered balance should be reported")
	}
}
