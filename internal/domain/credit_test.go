package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestComputeInstallment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		want      string
		wantErr   error
	}{
		{
			name:      "zero rate splits evenly",
			principal: "1200",
			rate:      "0",
			term:      12,
			want:      "100.00",
		},
		{
			name:      "standard annuity",
			principal: "10000",
			rate:      "12",
			term:      24,
			want:      "470.73",
		},
		{
			name:      "single month repays everything",
			principal: "500",
			rate:      "0",
			term:      1,
			want:      "500.00",
		},
		{
			name:      "zero principal rejected",
			principal: "0",
			rate:      "5",
			term:      12,
			wantErr:   ErrInvalidAmount,
		},
		{
			name:      "zero term rejected",
			principal: "1000",
			rate:      "5",
			term:      0,
			wantErr:   ErrInvalidTerm,
		},
		{
			name:      "negative rate rejected",
			principal: "1000",
			rate:      "-1",
			term:      12,
			wantErr:   ErrInvalidRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeInstallment(dec(tt.principal), dec(tt.rate), tt.term)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestCreditContract_GenerateSchedule(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	credit := &CreditContract{
		ID:            "credit-1",
		Principal:     dec("1200"),
		AnnualRatePct: decimal.Zero,
		TermMonths:    12,
		StartDate:     start,
	}

	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	}

	installments, err := credit.GenerateSchedule(idGen, start)
	require.NoError(t, err)
	require.Len(t, installments, 12)

	for i, inst := range installments {
		assert.Equal(t, "credit-1", inst.CreditID)
		assert.Equal(t, i+1, inst.Sequence)
		assert.Equal(t, start.AddDate(0, i+1, 0), inst.DueDate)
		assert.Equal(t, "100.00", inst.Amount.StringFixed(2))
		assert.Equal(t, InstallmentStatusPending, inst.Status)
	}
}

func TestCreditContract_ApplyPayment(t *testing.T) {
	credit := &CreditContract{
		RemainingPrincipal: dec("200"),
	}

	settled := credit.ApplyPayment(dec("150"))
	assert.False(t, settled)
	assert.Equal(t, "50.00", credit.RemainingPrincipal.StringFixed(2))

	// Overshooting the remaining principal floors at zero.
	settled = credit.ApplyPayment(dec("150"))
	assert.True(t, settled)
	assert.True(t, credit.RemainingPrincipal.IsZero())
}
