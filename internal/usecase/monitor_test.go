package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
	"github.com/corebank/bankd/internal/usecase/mocks"
)

func TestMonitor_Check(t *testing.T) {
	ctx := context.Background()
	tx := &mocks.MockTransaction{}
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	breachedAccount := func() *domain.Account {
		// Below the floor: the overdraft limit was tightened after the
		// balance went negative.
		return &domain.Account{
			ID:             "acc-1",
			OwnerID:        "owner-1",
			Number:         "FR76acc1",
			Balance:        decimal.NewFromInt(-80),
			OverdraftLimit: decimal.NewFromInt(50),
			Status:         domain.AccountStatusActive,
		}
	}

	t.Run("breach opens an alert without notifying", func(t *testing.T) {
		alertRepo := mocks.NewMockAlertRepository()
		monitor := usecase.NewMonitor(alertRepo, mocks.NewMockIDGenerator(), 5)

		notices, err := monitor.Check(ctx, tx, breachedAccount(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notices) != 0 {
			t.Errorf("opening an alert must not notify, got %d notices", len(notices))
		}

		alert, _ := alertRepo.GetUnresolvedForUpdate(ctx, tx, "acc-1")
		if alert == nil {
			t.Fatal("expected an open alert")
		}
		if alert.DurationDays != 0 {
			t.Errorf("DurationDays = %d, want 0", alert.DurationDays)
		}
		if !alert.CurrentAmount.Equal(decimal.NewFromInt(80)) {
			t.Errorf("CurrentAmount = %s, want 80", alert.CurrentAmount)
		}
	})

	t.Run("escalation fires exactly once past the threshold", func(t *testing.T) {
		alertRepo := mocks.NewMockAlertRepository()
		monitor := usecase.NewMonitor(alertRepo, mocks.NewMockIDGenerator(), 3)
		account := breachedAccount()

		if _, err := monitor.Check(ctx, tx, account, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		notices, err := monitor.Check(ctx, tx, account, now.AddDate(0, 0, 2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notices) != 0 {
			t.Errorf("below threshold, got %d notices", len(notices))
		}

		notices, err = monitor.Check(ctx, tx, account, now.AddDate(0, 0, 4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notices) != 1 {
			t.Fatalf("crossing threshold should notify once, got %d", len(notices))
		}
		if notices[0].Severity != domain.SeverityAlert {
			t.Errorf("severity = %s, want alert", notices[0].Severity)
		}
		if notices[0].OwnerID != "owner-1" {
			t.Errorf("notice owner = %s, want owner-1", notices[0].OwnerID)
		}

		notices, err = monitor.Check(ctx, tx, account, now.AddDate(0, 0, 5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notices) != 0 {
			t.Errorf("escalation must never resend, got %d notices", len(notices))
		}
	})

	t.Run("zero threshold escalates on first re-observation", func(t *testing.T) {
		alertRepo := mocks.NewMockAlertRepository()
		monitor := usecase.NewMonitor(alertRepo, mocks.NewMockIDGenerator(), 0)
		account := breachedAccount()

		if _, err := monitor.Check(ctx, tx, account, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		notices, err := monitor.Check(ctx, tx, account, now.Add(time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notices) != 1 {
			t.Fatalf("expected immediate escalation, got %d notices", len(notices))
		}
	})

	t.Run("recovery resolves the open alert", func(t *testing.T) {
		alertRepo := mocks.NewMockAlertRepository()
		monitor := usecase.NewMonitor(alertRepo, mocks.NewMockIDGenerator(), 5)
		account := breachedAccount()

		if _, err := monitor.Check(ctx, tx, account, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		account.Balance = decimal.NewFromInt(-50) // back at the floor
		notices, err := monitor.Check(ctx, tx, account, now.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notices) != 0 {
			t.Errorf("resolution must not notify, got %d notices", len(notices))
		}

		open, _ := alertRepo.GetUnresolvedForUpdate(ctx, tx, "acc-1")
		if open != nil {
			t.Error("alert should be resolved")
		}
	})

	t.Run("no breach and no alert is a no-op", func(t *testing.T) {
		alertRepo := mocks.NewMockAlertRepository()
		monitor := usecase.NewMonitor(alertRepo, mocks.NewMockIDGenerator(), 5)
		account := breachedAccount()
		account.Balance = decimal.NewFromInt(10)

		notices, err := monitor.Check(ctx, tx, account, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notices) != 0 {
			t.Errorf("expected no notices, got %d", len(notices))
		}
	})
}
