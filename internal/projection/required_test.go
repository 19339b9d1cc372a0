package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveRequiredPayment(t *testing.T) {
	r := SolveRequiredPayment(1000, 12, 12)
	require.Empty(t, r.Error)
	assert.Equal(t, 88.85, r.MonthlyPayment)

	p := Simulate(1000, 12, r.MonthlyPayment)
	require.Empty(t, p.Error)
	assert.LessOrEqual(t, p.Months, 12)
}

func TestSolveRequiredPaymentZeroRate(t *testing.T) {
	r := SolveRequiredPayment(1000, 0, 8)
	require.Empty(t, r.Error)
	assert.Equal(t, 125.0, r.MonthlyPayment)
}

func TestSolveRequiredPaymentRejectsHorizon(t *testing.T) {
	for _, n := range []int{0, -3} {
		r := SolveRequiredPayment(1000, 12, n)
		assert.Equal(t, ErrNonPositiveTarget, r.Error)
		assert.Equal(t, 0.0, r.MonthlyPayment)
	}
}

func TestSolveRequiredPaymentPaidOff(t *testing.T) {
	r := SolveRequiredPayment(0, 12, 12)
	assert.Empty(t, r.Error)
	assert.Equal(t, 0.0, r.MonthlyPayment)
}
