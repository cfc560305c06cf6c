package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountNotActive  = errors.New("account is not active")
	ErrAccountClosed     = errors.New("account is closed")
	ErrInvalidTransition = errors.New("invalid account status transition")
	ErrBalanceNotSettled = errors.New("account balance must be settled before closure")

	// Ledger errors
	ErrInsufficientFunds = errors.New("insufficient funds: overdraft limit exceeded")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidKind       = errors.New("unknown operation kind")
	ErrSameAccount       = errors.New("source and destination accounts are identical")

	// Scheduled item errors
	ErrScheduledItemNotFound = errors.New("scheduled item not found")
	ErrItemNotPending        = errors.New("scheduled item is no longer pending")

	// Credit errors
	ErrCreditNotFound        = errors.New("credit contract not found")
	ErrCreditNotActive       = errors.New("credit contract is not active")
	ErrInstallmentNotFound   = errors.New("installment not found")
	ErrInstallmentNotPending = errors.New("installment is not pending")
	ErrInvalidTerm           = errors.New("term must be at least one month")
	ErrInvalidRate           = errors.New("annual rate must not be negative")

	// Concurrency errors
	ErrContention = errors.New("operation aborted due to lock contention, retry")
)
