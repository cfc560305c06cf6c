package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	OwnerID        string          `json:"owner_id"`
	Type           string          `json:"type"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID:        r.OwnerID,
		Type:           domain.AccountType(r.Type),
		OverdraftLimit: r.OverdraftLimit,
		InitialBalance: r.InitialBalance,
	}
}

// RecordOperationRequest represents a request to record a journal entry.
type RecordOperationRequest struct {
	AccountID    string          `json:"account_id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"`
	Category     string          `json:"category,omitempty"`
	Note         string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordOperationRequest) ToUseCaseInput() usecase.RecordOperationInput {
	return usecase.RecordOperationInput{
		AccountID:    r.AccountID,
		Kind:         domain.OperationKind(r.Kind),
		Amount:       r.Amount,
		Counterparty: r.Counterparty,
		Category:     r.Category,
		Note:         r.Note,
	}
}

// TransferRequest represents a request to move money out of an account. A
// future execution date schedules the transfer instead of executing it
// immediately.
type TransferRequest struct {
	SourceAccountID   string          `json:"source_account_id"`
	Mode              string          `json:"mode"`
	Destination       string          `json:"destination,omitempty"`
	ExternalReference string          `json:"external_reference,omitempty"`
	Beneficiary       string          `json:"beneficiary,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Note              string          `json:"note,omitempty"`
	ExecutionDate     *time.Time      `json:"execution_date,omitempty"`
}

// ToUseCaseInput converts to an immediate transfer input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		SourceAccountID:   r.SourceAccountID,
		Destination:       r.Destination,
		ExternalReference: r.ExternalReference,
		Beneficiary:       r.Beneficiary,
		Amount:            r.Amount,
		Note:              r.Note,
		Mode:              domain.TransferMode(r.Mode),
	}
}

// ToScheduleInput converts to a scheduled transfer input.
func (r *TransferRequest) ToScheduleInput() usecase.ScheduleTransferInput {
	var executionDate time.Time
	if r.ExecutionDate != nil {
		executionDate = *r.ExecutionDate
	}
	return usecase.ScheduleTransferInput{
		SourceAccountID:   r.SourceAccountID,
		Mode:              domain.TransferMode(r.Mode),
		Destination:       r.Destination,
		ExternalReference: r.ExternalReference,
		Beneficiary:       r.Beneficiary,
		Amount:            r.Amount,
		Description:       r.Note,
		ExecutionDate:     executionDate,
	}
}

// ScheduleDebitRequest represents a request to schedule a direct debit.
type ScheduleDebitRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description,omitempty"`
	ExecutionDate        time.Time       `json:"execution_date"`
}

// ToUseCaseInput converts to use case input.
func (r *ScheduleDebitRequest) ToUseCaseInput() usecase.ScheduleDebitInput {
	return usecase.ScheduleDebitInput{
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Description:          r.Description,
		ExecutionDate:        r.ExecutionDate,
	}
}

// EditScheduledItemRequest represents an edit of a pending scheduled item.
type EditScheduledItemRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	ExecutionDate time.Time       `json:"execution_date"`
}

// ToUseCaseInput converts to use case input.
func (r *EditScheduledItemRequest) ToUseCaseInput() usecase.EditScheduledItemInput {
	return usecase.EditScheduledItemInput{
		Amount:        r.Amount,
		Description:   r.Description,
		ExecutionDate: r.ExecutionDate,
	}
}

// IssueCreditRequest represents a request to issue a credit contract.
type IssueCreditRequest struct {
	OwnerID       string          `json:"owner_id"`
	AccountID     string          `json:"account_id"`
	Principal     decimal.Decimal `json:"principal"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`
	TermMonths    int             `json:"term_months"`
	StartDate     time.Time       `json:"start_date"`
}

// ToUseCaseInput converts to use case input.
func (r *IssueCreditRequest) ToUseCaseInput() usecase.IssueCreditInput {
	return usecase.IssueCreditInput{
		OwnerID:       r.OwnerID,
		AccountID:     r.AccountID,
		Principal:     r.Principal,
		AnnualRatePct: r.AnnualRatePct,
		TermMonths:    r.TermMonths,
		StartDate:     r.StartDate,
	}
}

// UpdateCreditRequest represents a partial update of a credit contract.
// Omitted fields are left unchanged; installments are never regenerated.
type UpdateCreditRequest struct {
	Principal     *decimal.Decimal `json:"principal,omitempty"`
	AnnualRatePct *decimal.Decimal `json:"annual_rate_pct,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateCreditRequest) ToUseCaseInput() usecase.UpdateCreditInput {
	return usecase.UpdateCreditInput{
		Principal:     r.Principal,
		AnnualRatePct: r.AnnualRatePct,
		EndDate:       r.EndDate,
	}
}

// AddInstallmentRequest represents a request to append an ad hoc
// installment to a contract's schedule.
type AddInstallmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

// ToUseCaseInput converts to use case input.
func (r *AddInstallmentRequest) ToUseCaseInput(creditID string) usecase.AddInstallmentInput {
	return usecase.AddInstallmentInput{
		CreditID: creditID,
		Amount:   r.Amount,
		DueDate:  r.DueDate,
	}
}
