package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
)

// Notice is a notification produced inside a ledger transaction and
// dispatched only after the transaction commits.
type Notice struct {
	OwnerID  string
	Subject  string
	Body     string
	Severity domain.Severity
}

// Monitor drives the overdraft alert state machine. It runs inside the
// ledger transaction that mutated the account, so alert state always moves
// in the same atomic unit as the balance.
type Monitor struct {
	alertRepo     AlertRepository
	idGen         IDGenerator
	thresholdDays int
	metrics       *metrics.Metrics
}

// NewMonitor creates a new Monitor. thresholdDays is the number of
// consecutive days below the overdraft limit before an open alert
// escalates; zero makes an alert eligible on its first re-observation.
func NewMonitor(alertRepo AlertRepository, idGen IDGenerator, thresholdDays int) *Monitor {
	return &Monitor{
		alertRepo:     alertRepo,
		idGen:         idGen,
		thresholdDays: thresholdDays,
	}
}

// WithMetrics enables alert state instrumentation.
func (m *Monitor) WithMetrics(mm *metrics.Metrics) *Monitor {
	m.metrics = mm
	return m
}

// Check re-evaluates the alert state for an account whose balance was just
// mutated. It returns the notices to dispatch once the surrounding
// transaction commits.
func (m *Monitor) Check(ctx context.Context, tx Transaction, account *domain.Account, now time.Time) ([]Notice, error) {
	alert, err := m.alertRepo.GetUnresolvedForUpdate(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}

	breached := account.Balance.LessThan(account.FloorBalance())

	switch {
	case breached && alert == nil:
		alert = &domain.OverdraftAlert{
			ID:            m.idGen.Generate(),
			AccountID:     account.ID,
			OpenedAt:      now,
			CurrentAmount: account.Balance.Abs(),
			DurationDays:  0,
		}
		if err := m.alertRepo.Create(ctx, tx, alert); err != nil {
			return nil, err
		}
		if m.metrics != nil {
			m.metrics.AlertsOpened.Inc()
			m.metrics.OpenAlerts.Inc()
		}
		return nil, nil

	case breached:
		escalate := alert.Observe(account.Balance, now, m.thresholdDays)
		if err := m.alertRepo.Update(ctx, tx, alert); err != nil {
			return nil, err
		}
		if !escalate {
			return nil, nil
		}
		if m.metrics != nil {
			m.metrics.AlertsEscalated.Inc()
		}
		return []Notice{m.escalationNotice(account, alert)}, nil

	case alert != nil:
		alert.Resolve(now)
		if err := m.alertRepo.Update(ctx, tx, alert); err != nil {
			return nil, err
		}
		if m.metrics != nil {
			m.metrics.AlertsResolved.Inc()
			m.metrics.OpenAlerts.Dec()
		}
		return nil, nil
	}

	return nil, nil
}

func (m *Monitor) escalationNotice(account *domain.Account, alert *domain.OverdraftAlert) Notice {
	body := fmt.Sprintf(
		"Account %s has been below its overdraft limit for %d day(s).\n"+
			"Current balance: %s\nOverdraft limit: %s\n"+
			"Please settle the balance as soon as possible.",
		account.Number, alert.DurationDays, account.Balance.StringFixed(2),
		account.FloorBalance().StringFixed(2),
	)

	return Notice{
		OwnerID:  account.OwnerID,
		Subject:  "Alert: prolonged negative balance",
		Body:     body,
		Severity: domain.SeverityAlert,
	}
}
