package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverdraftAlert tracks an account whose balance sits below its overdraft
// limit. At most one unresolved alert exists per account; the alert lives
// from the first breaching observation until the balance recovers.
type OverdraftAlert struct {
	ID            string
	AccountID     string
	OpenedAt      time.Time
	CurrentAmount decimal.Decimal
	DurationDays  int
	Escalated     bool
	EscalatedAt   *time.Time
	Resolved      bool
	ResolvedAt    *time.Time
}

// Observe refreshes the alert with the balance seen at now. It returns true
// when this observation crosses the escalation threshold for the first
// time; the Escalated flag is one-way and subsequent observations keep
// updating amount and duration without re-escalating.
func (a *OverdraftAlert) Observe(balance decimal.Decimal, now time.Time, thresholdDays int) (escalate bool) {
	a.CurrentAmount = balance.Abs()
	a.DurationDays = int(now.Sub(a.OpenedAt).Hours() / 24)

	if a.DurationDays >= thresholdDays && !a.Escalated {
		a.Escalated = true
		a.EscalatedAt = &now
		return true
	}
	return false
}

// Resolve marks the alert resolved at now.
func (a *OverdraftAlert) Resolve(now time.Time) {
	a.Resolved = true
	a.ResolvedAt = &now
}
