package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrInvalidReference   = errors.New("invalid external account reference")
	ErrInvalidBeneficiary = errors.New("beneficiary name is required")
)

// Validation constants
const (
	MaxOperationAmount = "1000000000" // 1 billion
	MinOperationAmount = "0.01"

	accountNumberPrefix = "FR76"
	accountNumberDigits = 23

	minReferenceLength = 15
	maxReferenceLength = 34
)

// ValidateAmount validates an operation or transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinOperationAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinOperationAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxOperationAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxOperationAmount)
	}

	return nil
}

// ValidateExternalReference normalizes and validates an IBAN-like external
// account reference. Only length is checked; the reference is opaque to the
// ledger.
func ValidateExternalReference(ref string) (string, error) {
	ref = strings.ToUpper(strings.ReplaceAll(ref, " ", ""))

	if len(ref) < minReferenceLength || len(ref) > maxReferenceLength {
		return "", ErrInvalidReference
	}

	return ref, nil
}

// NewAccountNumber generates a display account number: a fixed country
// prefix followed by 23 digits.
func NewAccountNumber() string {
	var b strings.Builder
	b.WriteString(accountNumberPrefix)
	for i := 0; i < accountNumberDigits; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}

// ValidatePagination limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
