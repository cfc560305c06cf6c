package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditStatus is the lifecycle state of a credit contract.
type CreditStatus string

const (
	CreditStatusActive     CreditStatus = "active"
	CreditStatusTerminated CreditStatus = "terminated"
)

// InstallmentStatus is the lifecycle state of a single installment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
)

// CreditContract is a fixed-payment loan. Its installment schedule is
// materialized once at issuance; later edits to principal, rate or end date
// never regenerate existing installments.
type CreditContract struct {
	ID                 string
	OwnerID            string
	AccountID          string
	Principal          decimal.Decimal
	AnnualRatePct      decimal.Decimal
	TermMonths         int
	MonthlyPayment     decimal.Decimal
	StartDate          time.Time
	EndDate            time.Time
	RemainingPrincipal decimal.Decimal
	Status             CreditStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Installment is one scheduled repayment of a credit contract.
type Installment struct {
	ID        string
	CreditID  string
	Sequence  int
	DueDate   time.Time
	Amount    decimal.Decimal
	Status    InstallmentStatus
	PaidAt    *time.Time
	CreatedAt time.Time
}

var (
	hundred    = decimal.NewFromInt(100)
	twelve     = decimal.NewFromInt(12)
	decimalOne = decimal.NewFromInt(1)
)

// ComputeInstallment returns the constant monthly payment that amortizes
// principal at annualRatePct over termMonths. With a zero rate the
// principal is split evenly. The result is rounded to currency precision
// once and reused identically for every installment; rounding drift is
// accepted on the final installment.
func ComputeInstallment(principal, annualRatePct decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	if termMonths < 1 {
		return decimal.Zero, ErrInvalidTerm
	}
	if annualRatePct.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}

	months := decimal.NewFromInt(int64(termMonths))

	monthlyRate := annualRatePct.Div(hundred).Div(twelve)
	if monthlyRate.IsZero() {
		return principal.Div(months).Round(2), nil
	}

	// principal * r * (1+r)^n / ((1+r)^n - 1)
	compound := decimalOne.Add(monthlyRate).Pow(months)
	payment := principal.Mul(monthlyRate).Mul(compound).Div(compound.Sub(decimalOne))

	return payment.Round(2), nil
}

// GenerateSchedule builds the contract's installments: one per month for
// the full term, each due i months after start and all pending.
func (c *CreditContract) GenerateSchedule(idGen func() string, now time.Time) ([]*Installment, error) {
	amount, err := ComputeInstallment(c.Principal, c.AnnualRatePct, c.TermMonths)
	if err != nil {
		return nil, err
	}

	installments := make([]*Installment, 0, c.TermMonths)
	for i := 1; i <= c.TermMonths; i++ {
		installments = append(installments, &Installment{
			ID:        idGen(),
			CreditID:  c.ID,
			Sequence:  i,
			DueDate:   c.StartDate.AddDate(0, i, 0),
			Amount:    amount,
			Status:    InstallmentStatusPending,
			CreatedAt: now,
		})
	}

	return installments, nil
}

// ApplyPayment reduces the remaining principal by the collected installment
// amount, flooring at zero, and reports whether the contract is fully
// repaid.
func (c *CreditContract) ApplyPayment(amount decimal.Decimal) (settled bool) {
	c.RemainingPrincipal = c.RemainingPrincipal.Sub(amount)
	if c.RemainingPrincipal.LessThanOrEqual(decimal.Zero) {
		c.RemainingPrincipal = decimal.Zero
	}
	return c.RemainingPrincipal.IsZero()
}
