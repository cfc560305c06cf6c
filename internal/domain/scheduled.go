package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledStatus is the state of a scheduled item. Pending items may be
// edited or cancelled; processing marks the sweep's atomic claim; executed,
// cancelled and error are terminal and never retried.
type ScheduledStatus string

const (
	ScheduledStatusPending    ScheduledStatus = "pending"
	ScheduledStatusProcessing ScheduledStatus = "processing"
	ScheduledStatusExecuted   ScheduledStatus = "executed"
	ScheduledStatusCancelled  ScheduledStatus = "cancelled"
	ScheduledStatusError      ScheduledStatus = "error"
)

// IsTerminal reports whether no further transition is possible.
func (s ScheduledStatus) IsTerminal() bool {
	switch s {
	case ScheduledStatusExecuted, ScheduledStatusCancelled, ScheduledStatusError:
		return true
	default:
		return false
	}
}

// TransferMode distinguishes transfers between two ledger accounts from
// transfers leaving the ledger.
type TransferMode string

const (
	TransferModeInternal TransferMode = "internal"
	TransferModeExternal TransferMode = "external"
)

// ScheduledTransfer is a transfer instructed to execute on a future date.
// Internal transfers name a destination account; external transfers carry
// an opaque reference (IBAN) plus a beneficiary label.
type ScheduledTransfer struct {
	ID                   string
	SourceAccountID      string
	Mode                 TransferMode
	DestinationAccountID string
	ExternalReference    string
	Beneficiary          string
	Amount               decimal.Decimal
	Description          string
	ExecutionDate        time.Time
	Status               ScheduledStatus
	ErrorMessage         string
	ExecutedAt           *time.Time
	CreatedBy            string
	CreatedAt            time.Time
}

// ScheduledDebit is an administrator-created direct debit pulled from a
// source account on its execution date. A nil destination means the funds
// are collected outside the ledger.
type ScheduledDebit struct {
	ID                   string
	SourceAccountID      string
	DestinationAccountID *string
	Amount               decimal.Decimal
	Description          string
	ExecutionDate        time.Time
	Status               ScheduledStatus
	ErrorMessage         string
	ExecutedAt           *time.Time
	CreatedBy            string
	CreatedAt            time.Time
}

// DueOn reports whether the item should be picked up by a sweep running on
// the given day.
func (t *ScheduledTransfer) DueOn(day time.Time) bool {
	return t.Status == ScheduledStatusPending && !t.ExecutionDate.After(day)
}

// DueOn reports whether the debit should be picked up by a sweep running on
// the given day.
func (d *ScheduledDebit) DueOn(day time.Time) bool {
	return d.Status == ScheduledStatusPending && !d.ExecutionDate.After(day)
}
