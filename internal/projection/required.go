package projection

import (
	"math"

	"github.com/shopspring/decimal"

	"debttrack/internal/finmath"
)

const (
	ErrNonPositiveTarget = "Target months must be greater than zero"
	ErrUnsolvablePayment = "Required payment could not be computed for this horizon"
)

type RequiredPayment struct {
	TargetMonths   int     `json:"target_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
	Error          string  `json:"error,omitempty"`
}

// SolveRequiredPayment finds the level payment that amortizes balance in
// targetMonths: rate*B / (1 - (1+rate)^-n). The result is rounded up to
// the cent so the payment clears the balance within the horizon.
func SolveRequiredPayment(balance, annualRatePercent float64, targetMonths int) RequiredPayment {
	r := RequiredPayment{TargetMonths: targetMonths}
	if targetMonths <= 0 {
		r.Error = ErrNonPositiveTarget
		return r
	}
	if balance <= 0 {
		return r
	}

	rate := MonthlyRate(annualRatePercent)
	var payment float64
	if rate == 0 {
		payment = balance / float64(targetMonths)
	} else {
		payment = rate * balance / (1 - math.Pow(1+rate, -float64(targetMonths)))
	}
	if math.IsNaN(payment) || math.IsInf(payment, 0) || payment <= 0 {
		r.Error = ErrUnsolvablePayment
		return r
	}

	payment, _ = decimal.NewFromFloat(payment).RoundCeil(2).Float64()
	if payment <= finmath.RoundCurrency(balance*rate) {
		r.Error = ErrPaymentBelowInterest
	}
	r.MonthlyPayment = payment
	return r
}
