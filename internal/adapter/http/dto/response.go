package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Number         string          `json:"number"`
	Type           string          `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	Available      decimal.Decimal `json:"available"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		OwnerID:        a.OwnerID,
		Number:         a.Number,
		Type:           string(a.Type),
		Balance:        a.Balance,
		OverdraftLimit: a.OverdraftLimit,
		Available:      a.Available(),
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// OperationResponse represents a journal entry in API responses.
type OperationResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"`
	Category     string          `json:"category,omitempty"`
	Note         string          `json:"note,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OperationFromDomain converts a domain operation to a response.
func OperationFromDomain(o *domain.Operation) *OperationResponse {
	return &OperationResponse{
		ID:           o.ID,
		AccountID:    o.AccountID,
		Kind:         string(o.Kind),
		Amount:       o.Amount,
		Counterparty: o.Counterparty,
		Category:     o.Category,
		Note:         o.Note,
		BalanceAfter: o.BalanceAfter,
		CreatedAt:    o.CreatedAt,
	}
}

// OperationsFromDomain converts domain operations to responses.
func OperationsFromDomain(ops []*domain.Operation) []*OperationResponse {
	result := make([]*OperationResponse, len(ops))
	for i, o := range ops {
		result[i] = OperationFromDomain(o)
	}
	return result
}

// TransferResultResponse holds the journal entries created by an immediate
// transfer. External transfers have no credit leg.
type TransferResultResponse struct {
	DebitOperation  *OperationResponse `json:"debit_operation"`
	CreditOperation *OperationResponse `json:"credit_operation,omitempty"`
}

// TransferResultFromDomain converts a transfer result to a response.
func TransferResultFromDomain(r *usecase.TransferResult) *TransferResultResponse {
	resp := &TransferResultResponse{
		DebitOperation: OperationFromDomain(r.DebitOperation),
	}
	if r.CreditOperation != nil {
		resp.CreditOperation = OperationFromDomain(r.CreditOperation)
	}
	return resp
}

// AlertResponse represents an overdraft alert in API responses.
type AlertResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	OpenedAt      time.Time       `json:"opened_at"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	DurationDays  int             `json:"duration_days"`
	Escalated     bool            `json:"escalated"`
	EscalatedAt   *time.Time      `json:"escalated_at,omitempty"`
	Resolved      bool            `json:"resolved"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
}

// AlertFromDomain converts a domain alert to a response.
func AlertFromDomain(a *domain.OverdraftAlert) *AlertResponse {
	return &AlertResponse{
		ID:            a.ID,
		AccountID:     a.AccountID,
		OpenedAt:      a.OpenedAt,
		CurrentAmount: a.CurrentAmount,
		DurationDays:  a.DurationDays,
		Escalated:     a.Escalated,
		EscalatedAt:   a.EscalatedAt,
		Resolved:      a.Resolved,
		ResolvedAt:    a.ResolvedAt,
	}
}

// AlertsFromDomain converts domain alerts to responses.
func AlertsFromDomain(alerts []*domain.OverdraftAlert) []*AlertResponse {
	result := make([]*AlertResponse, len(alerts))
	for i, a := range alerts {
		result[i] = AlertFromDomain(a)
	}
	return result
}

// ScheduledTransferResponse represents a scheduled transfer in API
// responses.
type ScheduledTransferResponse struct {
	ID                   string          `json:"id"`
	SourceAccountID      string          `json:"source_account_id"`
	Mode                 string          `json:"mode"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	ExternalReference    string          `json:"external_reference,omitempty"`
	Beneficiary          string          `json:"beneficiary,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description,omitempty"`
	ExecutionDate        time.Time       `json:"execution_date"`
	Status               string          `json:"status"`
	ErrorMessage         string          `json:"error_message,omitempty"`
	ExecutedAt           *time.Time      `json:"executed_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ScheduledTransferFromDomain converts a scheduled transfer to a response.
func ScheduledTransferFromDomain(t *domain.ScheduledTransfer) *ScheduledTransferResponse {
	return &ScheduledTransferResponse{
		ID:                   t.ID,
		SourceAccountID:      t.SourceAccountID,
		Mode:                 string(t.Mode),
		DestinationAccountID: t.DestinationAccountID,
		ExternalReference:    t.ExternalReference,
		Beneficiary:          t.Beneficiary,
		Amount:               t.Amount,
		Description:          t.Description,
		ExecutionDate:        t.ExecutionDate,
		Status:               string(t.Status),
		ErrorMessage:         t.ErrorMessage,
		ExecutedAt:           t.ExecutedAt,
		CreatedAt:            t.CreatedAt,
	}
}

// ScheduledTransfersFromDomain converts scheduled transfers to responses.
func ScheduledTransfersFromDomain(items []*domain.ScheduledTransfer) []*ScheduledTransferResponse {
	result := make([]*ScheduledTransferResponse, len(items))
	for i, t := range items {
		result[i] = ScheduledTransferFromDomain(t)
	}
	return result
}

// ScheduledDebitResponse represents a scheduled direct debit in API
// responses.
type ScheduledDebitResponse struct {
	ID                   string          `json:"id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description,omitempty"`
	ExecutionDate        time.Time       `json:"execution_date"`
	Status               string          `json:"status"`
	ErrorMessage         string          `json:"error_message,omitempty"`
	ExecutedAt           *time.Time      `json:"executed_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ScheduledDebitFromDomain converts a scheduled debit to a response.
func ScheduledDebitFromDomain(d *domain.ScheduledDebit) *ScheduledDebitResponse {
	return &ScheduledDebitResponse{
		ID:                   d.ID,
		SourceAccountID:      d.SourceAccountID,
		DestinationAccountID: d.DestinationAccountID,
		Amount:               d.Amount,
		Description:          d.Description,
		ExecutionDate:        d.ExecutionDate,
		Status:               string(d.Status),
		ErrorMessage:         d.ErrorMessage,
		ExecutedAt:           d.ExecutedAt,
		CreatedAt:            d.CreatedAt,
	}
}

// ScheduledDebitsFromDomain converts scheduled debits to responses.
func ScheduledDebitsFromDomain(items []*domain.ScheduledDebit) []*ScheduledDebitResponse {
	result := make([]*ScheduledDebitResponse, len(items))
	for i, d := range items {
		result[i] = ScheduledDebitFromDomain(d)
	}
	return result
}

// CreditResponse represents a credit contract in API responses.
type CreditResponse struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"owner_id"`
	AccountID          string          `json:"account_id"`
	Principal          decimal.Decimal `json:"principal"`
	AnnualRatePct      decimal.Decimal `json:"annual_rate_pct"`
	TermMonths         int             `json:"term_months"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            time.Time       `json:"end_date"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CreditFromDomain converts a domain credit contract to a response.
func CreditFromDomain(c *domain.CreditContract) *CreditResponse {
	return &CreditResponse{
		ID:                 c.ID,
		OwnerID:            c.OwnerID,
		AccountID:          c.AccountID,
		Principal:          c.Principal,
		AnnualRatePct:      c.AnnualRatePct,
		TermMonths:         c.TermMonths,
		MonthlyPayment:     c.MonthlyPayment,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		RemainingPrincipal: c.RemainingPrincipal,
		Status:             string(c.Status),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// CreditsFromDomain converts domain credit contracts to responses.
func CreditsFromDomain(credits []*domain.CreditContract) []*CreditResponse {
	result := make([]*CreditResponse, len(credits))
	for i, c := range credits {
		result[i] = CreditFromDomain(c)
	}
	return result
}

// InstallmentResponse represents an installment in API responses.
type InstallmentResponse struct {
	ID        string          `json:"id"`
	CreditID  string          `json:"credit_id"`
	Sequence  int             `json:"sequence"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// InstallmentFromDomain converts a domain installment to a response.
func InstallmentFromDomain(inst *domain.Installment) *InstallmentResponse {
	return &InstallmentResponse{
		ID:        inst.ID,
		CreditID:  inst.CreditID,
		Sequence:  inst.Sequence,
		DueDate:   inst.DueDate,
		Amount:    inst.Amount,
		Status:    string(inst.Status),
		PaidAt:    inst.PaidAt,
		CreatedAt: inst.CreatedAt,
	}
}

// InstallmentsFromDomain converts domain installments to responses.
func InstallmentsFromDomain(installments []*domain.Installment) []*InstallmentResponse {
	result := make([]*InstallmentResponse, len(installments))
	for i, inst := range installments {
		result[i] = InstallmentFromDomain(inst)
	}
	return result
}

// SweepResultResponse summarizes one sweep run.
type SweepResultResponse struct {
	Executed int `json:"executed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// SweepResultFromDomain converts a sweep result to a response.
func SweepResultFromDomain(r *usecase.SweepResult) *SweepResultResponse {
	return &SweepResultResponse{
		Executed: r.Executed,
		Failed:   r.Failed,
		Skipped:  r.Skipped,
	}
}

// ConsistencyResponse is the result of a journal replay check.
type ConsistencyResponse struct {
	AccountsChecked int      `json:"accounts_checked"`
	Inconsistent    []string `json:"inconsistent,omitempty"`
	Consistent      bool     `json:"consistent"`
}

// ConsistencyFromDomain converts a consistency report to a response.
func ConsistencyFromDomain(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		AccountsChecked: r.AccountsChecked,
		Inconsistent:    r.Inconsistent,
		Consistent:      r.Consistent(),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
