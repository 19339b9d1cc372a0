package projection

import (
	"fmt"
	"math"
	"time"

	"debttrack/internal/core"
	"debttrack/internal/finmath"
)

// DefaultLookbackMonths is the trailing window for the current trend payment.
const DefaultLookbackMonths = 3

const (
	ScenarioMinimum = "Minimum Payment"
	ScenarioTrend   = "Current Trend"
)

// ExtraPayments are layered on the larger of the minimum and trend payments.
var ExtraPayments = []float64{50, 100, 200}

// Scenario is a projection keyed by the monthly payment that produced it.
type Scenario struct {
	Name           string  `json:"name"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPaid      float64 `json:"total_paid"`
	PayoffProjection
}

func NewScenario(name string, balance, annualRatePercent, payment float64) Scenario {
	p := Simulate(balance, annualRatePercent, payment)
	return Scenario{
		Name:             name,
		MonthlyPayment:   payment,
		TotalPaid:        finmath.RoundCurrency(math.Max(0, balance) + p.TotalInterest),
		PayoffProjection: p,
	}
}

// CurrentTrendPayment averages PAYMENT transactions dated within
// lookbackMonths before now. ok is false when there are none.
func CurrentTrendPayment(txs []core.Transaction, now time.Time, lookbackMonths int) (payment float64, ok bool) {
	if lookbackMonths <= 0 {
		lookbackMonths = DefaultLookbackMonths
	}
	cutoff := finmath.AddMonths(now, -lookbackMonths)
	var amounts []float64
	for _, tx := range txs {
		if tx.Kind != core.KindPayment || tx.Date.Before(cutoff) || tx.Date.After(now) {
			continue
		}
		amounts = append(amounts, tx.Effect().Reduction)
	}
	if len(amounts) == 0 {
		return 0, false
	}
	return finmath.RoundCurrency(finmath.Mean(amounts)), true
}

// BuildScenarios runs the standard comparison set for an account: its
// minimum payment, its recent payment trend, and fixed extras on top of
// the larger of the two. Scenarios with a simulator error are kept.
func BuildScenarios(account core.Account, txs []core.Transaction, now time.Time, lookbackMonths int) []Scenario {
	scenarios := make([]Scenario, 0, 2+len(ExtraPayments))
	base := 0.0

	if account.MinimumPayment != nil && *account.MinimumPayment > 0 {
		minimum := *account.MinimumPayment
		scenarios = append(scenarios, NewScenario(ScenarioMinimum, account.Balance, account.InterestRate, minimum))
		base = math.Max(base, minimum)
	}

	if trend, ok := CurrentTrendPayment(txs, now, lookbackMonths); ok {
		scenarios = append(scenarios, NewScenario(ScenarioTrend, account.Balance, account.InterestRate, trend))
		base = math.Max(base, trend)
	}

	if base > 0 {
		for _, extra := range ExtraPayments {
			name := fmt.Sprintf("Extra $%d/month", int(extra))
			scenarios = append(scenarios, NewScenario(name, account.Balance, account.InterestRate, finmath.RoundCurrency(base+extra)))
		}
	}
	return scenarios
}

// Find returns the scenario with the given name.
func Find(scenarios []Scenario, name string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
