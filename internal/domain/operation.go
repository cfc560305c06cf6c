package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind classifies a journal entry.
type OperationKind string

const (
	OperationCredit         OperationKind = "credit"
	OperationDebit          OperationKind = "debit"
	OperationDeposit        OperationKind = "deposit"
	OperationWithdrawal     OperationKind = "withdrawal"
	OperationTransferDebit  OperationKind = "transfer_debit"
	OperationTransferCredit OperationKind = "transfer_credit"
	OperationDirectDebit    OperationKind = "direct_debit"
)

// debitKinds subtract from the balance; every other valid kind adds.
var debitKinds = map[OperationKind]bool{
	OperationDebit:         true,
	OperationWithdrawal:    true,
	OperationTransferDebit: true,
	OperationDirectDebit:   true,
}

var validKinds = map[OperationKind]bool{
	OperationCredit:         true,
	OperationDebit:          true,
	OperationDeposit:        true,
	OperationWithdrawal:     true,
	OperationTransferDebit:  true,
	OperationTransferCredit: true,
	OperationDirectDebit:    true,
}

// IsValid reports whether the kind is a known operation kind.
func (k OperationKind) IsValid() bool {
	return validKinds[k]
}

// IsDebit reports whether the kind subtracts from the balance.
func (k OperationKind) IsDebit() bool {
	return debitKinds[k]
}

// SignedAmount returns amount with the sign implied by the kind.
func (k OperationKind) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	if k.IsDebit() {
		return amount.Neg()
	}
	return amount
}

// Operation is a single immutable journal entry. Entries are append-only:
// for an account ordered by creation, BalanceAfter of entry n equals
// BalanceAfter of entry n-1 plus the signed amount of entry n.
type Operation struct {
	ID           string
	AccountID    string
	Kind         OperationKind
	Amount       decimal.Decimal
	Counterparty string
	Category     string
	Note         string
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}

// SignedAmount returns the entry amount with the sign implied by its kind.
func (o *Operation) SignedAmount() decimal.Decimal {
	return o.Kind.SignedAmount(o.Amount)
}
