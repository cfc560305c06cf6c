package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
	"github.com/corebank/bankd/internal/usecase/mocks"
)

type schedulerFixture struct {
	*ledgerFixture
	transferRepo *mocks.MockScheduledTransferRepository
	debitRepo    *mocks.MockScheduledDebitRepository
	creditRepo   *mocks.MockCreditRepository
	scheduler    *usecase.SchedulerUseCase
}

func newSchedulerFixture(workers int) *schedulerFixture {
	f := &schedulerFixture{
		ledgerFixture: newLedgerFixture(2),
		transferRepo:  mocks.NewMockScheduledTransferRepository(),
		debitRepo:     mocks.NewMockScheduledDebitRepository(),
		creditRepo:    mocks.NewMockCreditRepository(),
	}

	f.scheduler = usecase.NewSchedulerUseCase(
		mocks.NewMockTransactionManager(),
		f.transferRepo,
		f.debitRepo,
		f.creditRepo,
		f.accountRepo,
		f.auditRepo,
		f.ledger,
		usecase.NewAuthorizer(f.mandateRepo),
		mocks.NewMockIDGenerator(),
		zerolog.Nop(),
		workers,
	)

	return f
}

func TestSchedulerUseCase_ScheduleTransfer(t *testing.T) {
	ctx := context.Background()
	future := time.Now().UTC().AddDate(0, 0, 7)

	t.Run("owner schedules an internal transfer", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)
		f.addAccount("acc-b", "owner-2", 0, 0)

		st, err := f.scheduler.ScheduleTransfer(ctx, clientUser("owner-1"), usecase.ScheduleTransferInput{
			SourceAccountID: "acc-a",
			Mode:            domain.TransferModeInternal,
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(100),
			ExecutionDate:   future,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Status != domain.ScheduledStatusPending {
			t.Errorf("status = %s, want pending", st.Status)
		}
		if st.DestinationAccountID != "acc-b" {
			t.Errorf("destination = %s, want acc-b", st.DestinationAccountID)
		}
	})

	t.Run("amount above available funds rejected at scheduling time", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 100, 0)
		f.addAccount("acc-b", "owner-2", 0, 0)

		_, err := f.scheduler.ScheduleTransfer(ctx, clientUser("owner-1"), usecase.ScheduleTransferInput{
			SourceAccountID: "acc-a",
			Mode:            domain.TransferModeInternal,
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(500),
			ExecutionDate:   future,
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
	})

	t.Run("stranger may not schedule on another account", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)
		f.addAccount("acc-b", "owner-2", 0, 0)

		_, err := f.scheduler.ScheduleTransfer(ctx, clientUser("stranger"), usecase.ScheduleTransferInput{
			SourceAccountID: "acc-a",
			Mode:            domain.TransferModeInternal,
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(10),
			ExecutionDate:   future,
		})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("scheduled debit is admin only", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)

		_, err := f.scheduler.ScheduleDebit(ctx, clientUser("owner-1"), usecase.ScheduleDebitInput{
			SourceAccountID: "acc-a",
			Amount:          decimal.NewFromInt(10),
			ExecutionDate:   future,
		})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestSchedulerUseCase_EditAndCancel(t *testing.T) {
	ctx := context.Background()
	future := time.Now().UTC().AddDate(0, 0, 7)

	f := newSchedulerFixture(1)
	f.addAccount("acc-a", "owner-1", 500, 0)
	f.addAccount("acc-b", "owner-2", 0, 0)

	st, err := f.scheduler.ScheduleTransfer(ctx, clientUser("owner-1"), usecase.ScheduleTransferInput{
		SourceAccountID: "acc-a",
		Mode:            domain.TransferModeInternal,
		Destination:     "acc-b",
		Amount:          decimal.NewFromInt(100),
		ExecutionDate:   future,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edit := usecase.EditScheduledItemInput{
		Amount:        decimal.NewFromInt(150),
		Description:   "rent",
		ExecutionDate: future.AddDate(0, 0, 1),
	}
	if err := f.scheduler.EditScheduledTransfer(ctx, clientUser("owner-1"), st.ID, edit); err != nil {
		t.Fatalf("pending edit should pass: %v", err)
	}

	if err := f.scheduler.CancelScheduledTransfer(ctx, clientUser("owner-1"), st.ID); err != nil {
		t.Fatalf("pending cancel should pass: %v", err)
	}

	// The item left pending: both edit and cancel must now refuse.
	if err := f.scheduler.EditScheduledTransfer(ctx, clientUser("owner-1"), st.ID, edit); !errors.Is(err, domain.ErrItemNotPending) {
		t.Fatalf("expected ErrItemNotPending, got %v", err)
	}
	if err := f.scheduler.CancelScheduledTransfer(ctx, clientUser("owner-1"), st.ID); !errors.Is(err, domain.ErrItemNotPending) {
		t.Fatalf("expected ErrItemNotPending, got %v", err)
	}
}

func TestSchedulerUseCase_RunSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)

	t.Run("due transfer executes through the ledger", func(t *testing.T) {
		f := newSchedulerFixture(4)
		f.addAccount("acc-a", "owner-1", 500, 0)
		f.addAccount("acc-b", "owner-2", 0, 0)

		st, err := f.scheduler.ScheduleTransfer(ctx, adminUser(), usecase.ScheduleTransferInput{
			SourceAccountID: "acc-a",
			Mode:            domain.TransferModeInternal,
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(300),
			ExecutionDate:   yesterday,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Executed != 1 || result.Failed != 0 || result.Skipped != 0 {
			t.Fatalf("result = %+v, want 1 executed", result)
		}

		source, _ := f.accountRepo.GetByID(ctx, "acc-a")
		destination, _ := f.accountRepo.GetByID(ctx, "acc-b")
		if !source.Balance.Equal(decimal.NewFromInt(200)) || !destination.Balance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("balances = %s / %s, want 200 / 300", source.Balance, destination.Balance)
		}

		stored, _ := f.transferRepo.GetByID(ctx, st.ID)
		if stored.Status != domain.ScheduledStatusExecuted {
			t.Errorf("status = %s, want executed", stored.Status)
		}
		if stored.ExecutedAt == nil {
			t.Error("ExecutedAt should be set")
		}

		// A second sweep finds nothing due and moves no money.
		result, err = f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Executed != 0 || result.Failed != 0 || result.Skipped != 0 {
			t.Fatalf("second sweep should be empty, got %+v", result)
		}

		source, _ = f.accountRepo.GetByID(ctx, "acc-a")
		destination, _ = f.accountRepo.GetByID(ctx, "acc-b")
		if !source.Balance.Equal(decimal.NewFromInt(200)) || !destination.Balance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("second sweep moved money: balances = %s / %s, want 200 / 300", source.Balance, destination.Balance)
		}
		stored, _ = f.transferRepo.GetByID(ctx, st.ID)
		if stored.Status != domain.ScheduledStatusExecuted {
			t.Errorf("status after second sweep = %s, want executed", stored.Status)
		}
	})

	t.Run("failing debit lands in error without touching other items", func(t *testing.T) {
		f := newSchedulerFixture(4)
		f.addAccount("acc-a", "owner-1", 50, 0)
		f.addAccount("acc-b", "owner-2", 500, 0)
		f.addAccount("acc-c", "owner-3", 0, 0)

		// Insufficient funds on acc-a.
		failing, err := f.scheduler.ScheduleDebit(ctx, adminUser(), usecase.ScheduleDebitInput{
			SourceAccountID: "acc-a",
			Amount:          decimal.NewFromInt(200),
			Description:     "insurance",
			ExecutionDate:   yesterday,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ok, err := f.scheduler.ScheduleTransfer(ctx, adminUser(), usecase.ScheduleTransferInput{
			SourceAccountID: "acc-b",
			Mode:            domain.TransferModeInternal,
			Destination:     "acc-c",
			Amount:          decimal.NewFromInt(100),
			ExecutionDate:   yesterday,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Executed != 1 || result.Failed != 1 {
			t.Fatalf("result = %+v, want 1 executed and 1 failed", result)
		}

		stored, _ := f.debitRepo.GetByID(ctx, failing.ID)
		if stored.Status != domain.ScheduledStatusError {
			t.Errorf("status = %s, want error", stored.Status)
		}
		if stored.ErrorMessage == "" {
			t.Error("ErrorMessage should carry the failure")
		}

		source, _ := f.accountRepo.GetByID(ctx, "acc-a")
		if !source.Balance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("failed debit must not move funds, balance = %s", source.Balance)
		}

		executed, _ := f.transferRepo.GetByID(ctx, ok.ID)
		if executed.Status != domain.ScheduledStatusExecuted {
			t.Errorf("unrelated transfer status = %s, want executed", executed.Status)
		}
	})

	t.Run("already claimed item is skipped", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)
		f.addAccount("acc-b", "owner-2", 0, 0)

		st, err := f.scheduler.ScheduleTransfer(ctx, adminUser(), usecase.ScheduleTransferInput{
			SourceAccountID: "acc-a",
			Mode:            domain.TransferModeInternal,
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(100),
			ExecutionDate:   yesterday,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Another sweep got there first.
		f.transferRepo.ListDueFunc = func(ctx context.Context, day time.Time) ([]*domain.ScheduledTransfer, error) {
			stored, _ := f.transferRepo.GetByID(ctx, st.ID)
			return []*domain.ScheduledTransfer{stored}, nil
		}
		f.transferRepo.ClaimFunc = func(ctx context.Context, id string) (bool, error) {
			return false, nil
		}

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Skipped != 1 || result.Executed != 0 {
			t.Fatalf("result = %+v, want 1 skipped", result)
		}
	})

	t.Run("future items are left alone", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)
		f.addAccount("acc-b", "owner-2", 0, 0)

		if _, err := f.scheduler.ScheduleTransfer(ctx, adminUser(), usecase.ScheduleTransferInput{
			SourceAccountID: "acc-a",
			Mode:            domain.TransferModeInternal,
			Destination:     "acc-b",
			Amount:          decimal.NewFromInt(100),
			ExecutionDate:   now.AddDate(0, 0, 3),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Executed != 0 || result.Failed != 0 || result.Skipped != 0 {
			t.Fatalf("result = %+v, want nothing processed", result)
		}
	})

	t.Run("sweep requires an administrator", func(t *testing.T) {
		f := newSchedulerFixture(1)

		_, err := f.scheduler.RunSweep(ctx, clientUser("owner-1"), now)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestSchedulerUseCase_InstallmentCollection(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	issue := func(f *schedulerFixture, remaining int64) (*domain.CreditContract, *domain.Installment) {
		credit := &domain.CreditContract{
			ID:                 "credit-1",
			OwnerID:            "owner-1",
			AccountID:          "acc-a",
			Principal:          decimal.NewFromInt(remaining),
			TermMonths:         2,
			MonthlyPayment:     decimal.NewFromInt(100),
			RemainingPrincipal: decimal.NewFromInt(remaining),
			Status:             domain.CreditStatusActive,
		}
		inst := &domain.Installment{
			ID:       "inst-1",
			CreditID: credit.ID,
			Sequence: 1,
			DueDate:  now.AddDate(0, 0, -1),
			Amount:   decimal.NewFromInt(100),
			Status:   domain.InstallmentStatusPending,
		}
		_ = f.creditRepo.Create(ctx, nil, credit)
		_ = f.creditRepo.CreateInstallment(ctx, nil, inst)
		return credit, inst
	}

	t.Run("due installment debits the account and reduces the principal", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)
		credit, inst := issue(f, 200)

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Executed != 1 {
			t.Fatalf("result = %+v, want 1 executed", result)
		}

		account, _ := f.accountRepo.GetByID(ctx, "acc-a")
		if !account.Balance.Equal(decimal.NewFromInt(400)) {
			t.Errorf("balance = %s, want 400", account.Balance)
		}

		stored, _ := f.creditRepo.GetInstallment(ctx, inst.ID)
		if stored.Status != domain.InstallmentStatusPaid {
			t.Errorf("installment status = %s, want paid", stored.Status)
		}
		if !credit.RemainingPrincipal.Equal(decimal.NewFromInt(100)) {
			t.Errorf("remaining principal = %s, want 100", credit.RemainingPrincipal)
		}
		if credit.Status != domain.CreditStatusActive {
			t.Errorf("credit status = %s, want active", credit.Status)
		}

		ops, _ := f.operationRepo.ListByAccountAsc(ctx, "acc-a")
		if len(ops) != 1 || ops[0].Kind != domain.OperationDirectDebit {
			t.Fatalf("expected one direct_debit entry, got %v", ops)
		}
	})

	t.Run("final installment terminates the contract", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)
		credit, _ := issue(f, 100)

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Executed != 1 {
			t.Fatalf("result = %+v, want 1 executed", result)
		}

		if credit.Status != domain.CreditStatusTerminated {
			t.Errorf("credit status = %s, want terminated", credit.Status)
		}
		if !credit.RemainingPrincipal.IsZero() {
			t.Errorf("remaining principal = %s, want 0", credit.RemainingPrincipal)
		}
	})

	t.Run("failed collection leaves the installment pending", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 20, 0)
		_, inst := issue(f, 200)

		// The paid flip happens inside the collection transaction; when the
		// debit fails the rollback discards it, which the in-memory mock
		// cannot replay on its own.
		f.creditRepo.MarkInstallmentPaidFunc = func(ctx context.Context, tx usecase.Transaction, id string, paidAt time.Time) (bool, error) {
			return true, nil
		}

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Failed != 1 {
			t.Fatalf("result = %+v, want 1 failed", result)
		}

		stored, _ := f.creditRepo.GetInstallment(ctx, inst.ID)
		if stored.Status != domain.InstallmentStatusPending {
			t.Errorf("installment status = %s, want pending for retry", stored.Status)
		}

		account, _ := f.accountRepo.GetByID(ctx, "acc-a")
		if !account.Balance.Equal(decimal.NewFromInt(20)) {
			t.Errorf("failed collection must not move funds, balance = %s", account.Balance)
		}
	})

	t.Run("terminated contract installments are skipped", func(t *testing.T) {
		f := newSchedulerFixture(1)
		f.addAccount("acc-a", "owner-1", 500, 0)
		credit, inst := issue(f, 200)
		credit.Status = domain.CreditStatusTerminated

		// The due query joins on active contracts; simulate a contract
		// terminated between listing and claiming.
		f.creditRepo.ListDueInstallmentsFunc = func(ctx context.Context, day time.Time) ([]*domain.Installment, error) {
			return []*domain.Installment{inst}, nil
		}

		result, err := f.scheduler.RunSweep(ctx, adminUser(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Skipped != 1 {
			t.Fatalf("result = %+v, want 1 skipped", result)
		}
	})
}
