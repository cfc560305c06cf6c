package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusClosed    AccountStatus = "closed"
)

// AccountType distinguishes product kinds; it carries no balance semantics.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// Account represents a bank account holding a signed balance. The balance
// may go negative down to -OverdraftLimit.
type Account struct {
	ID             string
	OwnerID        string
	Number         string
	Type           AccountType
	Balance        decimal.Decimal
	OverdraftLimit decimal.Decimal
	Status         AccountStatus
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// closureTolerance is the residual positive balance below which an account
// may still be closed.
var closureTolerance = decimal.NewFromFloat(0.01)

// IsActive reports whether the account accepts new operations.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// FloorBalance is the lowest balance this account may reach.
func (a *Account) FloorBalance() decimal.Decimal {
	return a.OverdraftLimit.Neg()
}

// Available is the amount that can still be debited before the overdraft
// limit is hit.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Add(a.OverdraftLimit)
}

// ValidateDebit checks whether debiting amount would breach the overdraft
// limit.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).LessThan(a.FloorBalance()) {
		return ErrInsufficientFunds
	}
	return nil
}

// CanTransition reports whether the status change is allowed. Closed is
// terminal; active and suspended flip freely.
func (a *Account) CanTransition(to AccountStatus) bool {
	if a.Status == AccountStatusClosed {
		return false
	}
	switch to {
	case AccountStatusActive, AccountStatusSuspended, AccountStatusClosed:
		return to != a.Status
	default:
		return false
	}
}

// ValidateClosure applies the closure balance rule: closure is blocked while
// the balance is positive and above the tolerance. A negative balance does
// not block closure.
func (a *Account) ValidateClosure() error {
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	if a.Balance.GreaterThanOrEqual(decimal.Zero) && a.Balance.Abs().GreaterThan(closureTolerance) {
		return ErrBalanceNotSettled
	}
	return nil
}
