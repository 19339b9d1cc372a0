// Package projection runs month-by-month payoff simulations and the
// scenario comparisons built on them.
package projection

import (
	"math"

	"debttrack/internal/finmath"
)

const (
	// MaxMonths bounds every simulation loop (50 years).
	MaxMonths = 600
	// BalanceTolerance is the residual below which a balance counts as paid.
	BalanceTolerance = 0.01
)

const (
	ErrNonPositivePayment   = "Monthly payment must be greater than zero"
	ErrPaymentBelowInterest = "Payment must exceed monthly interest to pay off debt"
	ErrCeilingReached       = "Debt not paid off within 600 months"
)

type MonthlyBreakdown struct {
	Month           int     `json:"month"`
	Balance         float64 `json:"balance"`
	InterestCharged float64 `json:"interest_charged"`
	PaymentAmount   float64 `json:"payment_amount"`
	PrincipalPaid   float64 `json:"principal_paid"`
}

// PayoffProjection is the outcome of one simulation. A non-empty Error
// marks a domain failure; the other fields then hold a degraded result.
type PayoffProjection struct {
	Months        int                `json:"months"`
	TotalInterest float64            `json:"total_interest"`
	FinalBalance  float64            `json:"final_balance"`
	Schedule      []MonthlyBreakdown `json:"schedule"`
	Error         string             `json:"error,omitempty"`
}

// Paid reports whether the simulation reached a zero balance.
func (p PayoffProjection) Paid() bool {
	return p.Error == "" && p.FinalBalance == 0
}

// MonthlyRate converts an annual percentage rate to a per-month fraction.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 12 / 100
}

// Step advances a balance by one month: interest accrues first, then the
// payment is applied, capped at the balance so the last month never
// overpays. Every simulated path in the module goes through Step.
func Step(month int, balance, monthlyRate, payment float64) MonthlyBreakdown {
	interest := finmath.RoundCurrency(balance * monthlyRate)
	balance = finmath.RoundCurrency(balance + interest)
	applied := math.Min(payment, balance)
	if applied < 0 {
		applied = 0
	}
	balance = finmath.RoundCurrency(balance - applied)
	if balance < BalanceTolerance {
		balance = 0
	}
	applied = finmath.RoundCurrency(applied)
	return MonthlyBreakdown{
		Month:           month,
		Balance:         balance,
		InterestCharged: interest,
		PaymentAmount:   applied,
		PrincipalPaid:   finmath.RoundCurrency(applied - interest),
	}
}

// Simulate amortizes balance at annualRatePercent with a level monthly
// payment until it is paid off or MaxMonths is reached.
func Simulate(balance, annualRatePercent, monthlyPayment float64) PayoffProjection {
	if balance <= 0 {
		return PayoffProjection{Schedule: []MonthlyBreakdown{}}
	}
	if monthlyPayment <= 0 {
		return PayoffProjection{
			FinalBalance: balance,
			Schedule:     []MonthlyBreakdown{},
			Error:        ErrNonPositivePayment,
		}
	}

	rate := MonthlyRate(annualRatePercent)
	if monthlyPayment <= finmath.RoundCurrency(balance*rate) {
		return PayoffProjection{
			Months:       MaxMonths,
			FinalBalance: balance,
			Schedule:     []MonthlyBreakdown{},
			Error:        ErrPaymentBelowInterest,
		}
	}

	p := PayoffProjection{Schedule: make([]MonthlyBreakdown, 0, 64)}
	var totalInterest float64
	for month := 1; month <= MaxMonths && balance > 0; month++ {
		row := Step(month, balance, rate, monthlyPayment)
		p.Schedule = append(p.Schedule, row)
		totalInterest += row.InterestCharged
		balance = row.Balance
		p.Months = month
	}
	p.TotalInterest = finmath.RoundCurrency(totalInterest)
	p.FinalBalance = balance
	if balance > 0 {
		p.Error = ErrCeilingReached
	}
	return p
}

// BalancePath re-simulates the balance after each of the first horizon
// months. Index 0 is the starting balance. Once paid off the path stays at
// zero; a non-positive payment leaves the balance untouched.
func BalancePath(balance, annualRatePercent, monthlyPayment float64, horizon int) []float64 {
	path := make([]float64, 0, horizon+1)
	balance = math.Max(0, balance)
	path = append(path, balance)
	rate := MonthlyRate(annualRatePercent)
	for month := 1; month <= horizon; month++ {
		if balance > 0 && monthlyPayment > 0 {
			balance = Step(month, balance, rate, monthlyPayment).Balance
		}
		path = append(path, balance)
	}
	return path
}
