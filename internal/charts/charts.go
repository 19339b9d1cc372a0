// Package charts shapes ledger and projection data into labeled series.
// Colors and renderer kinds are hints for the presentation layer.
package charts

import (
	"fmt"
	"math"

	"debttrack/internal/core"
	"debttrack/internal/finmath"
	"debttrack/internal/interest"
	"debttrack/internal/projection"
)

// MaxComparisonMonths caps the projection comparison horizon.
const MaxComparisonMonths = 60

type Renderer string

const (
	Line     Renderer = "line"
	Bar      Renderer = "bar"
	Doughnut Renderer = "doughnut"
)

var palette = []string{"#2563eb", "#16a34a", "#dc2626", "#f59e0b", "#7c3aed", "#0891b2", "#db2777", "#65a30d"}

// Color picks a palette entry by position, wrapping around.
func Color(i int) string {
	return palette[i%len(palette)]
}

// Dataset values are pointers so a missing point marshals as null.
type Dataset struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
	Color string     `json:"color,omitempty"`
	Kind  Renderer   `json:"kind,omitempty"`
}

type ChartSeries struct {
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

func Value(f float64) *float64 {
	v := finmath.RoundCurrency(f)
	return &v
}

func values(fs []float64) []*float64 {
	out := make([]*float64, len(fs))
	for i, f := range fs {
		out[i] = Value(f)
	}
	return out
}

// BalanceReduction plots each snapshot balance alongside the amount
// reduced since the first snapshot.
func BalanceReduction(snapshots []core.Snapshot) ChartSeries {
	c := ChartSeries{Title: "Balance Reduction", Labels: make([]string, 0, len(snapshots))}
	balances := make([]float64, 0, len(snapshots))
	reduced := make([]float64, 0, len(snapshots))
	for _, s := range snapshots {
		c.Labels = append(c.Labels, s.CapturedAt.Format("2006-01-02"))
		balances = append(balances, s.Balance)
		reduced = append(reduced, snapshots[0].Balance-s.Balance)
	}
	c.Datasets = []Dataset{
		{Label: "Balance", Data: values(balances), Color: Color(0), Kind: Line},
		{Label: "Amount Reduced", Data: values(reduced), Color: Color(1), Kind: Line},
	}
	return c
}

// InterestAccumulation plots monthly interest and its running total.
func InterestAccumulation(h interest.History) ChartSeries {
	c := ChartSeries{Title: "Interest Accumulation", Labels: make([]string, 0, len(h.Months))}
	monthly := make([]float64, 0, len(h.Months))
	cumulative := make([]float64, 0, len(h.Months))
	var running float64
	for _, m := range h.Months {
		running += m.Interest
		c.Labels = append(c.Labels, m.Label)
		monthly = append(monthly, m.Interest)
		cumulative = append(cumulative, running)
	}
	c.Datasets = []Dataset{
		{Label: "Monthly Interest", Data: values(monthly), Color: Color(2), Kind: Bar},
		{Label: "Cumulative Interest", Data: values(cumulative), Color: Color(3), Kind: Line},
	}
	return c
}

// PaymentDistribution splits the money paid into principal, interest and
// fees. Principal is payments net of interest, floored at zero.
func PaymentDistribution(txs []core.Transaction) ChartSeries {
	m := core.Summarize(txs)
	principal := math.Max(0, m.Payments-m.Interest)
	return ChartSeries{
		Title:  "Payment Distribution",
		Labels: []string{"Principal", "Interest", "Fees"},
		Datasets: []Dataset{{
			Label: "Amount",
			Data:  values([]float64{principal, m.Interest, m.Fees}),
			Color: Color(0),
			Kind:  Doughnut,
		}},
	}
}

// ComparisonHorizon is the longest scenario, capped at MaxComparisonMonths.
func ComparisonHorizon(scenarios []projection.Scenario) int {
	h := 0
	for _, s := range scenarios {
		h = max(h, s.Months)
	}
	return min(h, MaxComparisonMonths)
}

// ProjectionComparison re-simulates each scenario's balance month by month
// over a shared horizon so the paths can be plotted side by side.
func ProjectionComparison(balance, annualRatePercent float64, scenarios []projection.Scenario) ChartSeries {
	horizon := ComparisonHorizon(scenarios)
	c := ChartSeries{Title: "Payoff Projection Comparison", Labels: make([]string, 0, horizon+1)}
	for m := 0; m <= horizon; m++ {
		c.Labels = append(c.Labels, fmt.Sprintf("Month %d", m))
	}
	c.Datasets = make([]Dataset, 0, len(scenarios))
	for i, s := range scenarios {
		path := projection.BalancePath(balance, annualRatePercent, s.MonthlyPayment, horizon)
		c.Datasets = append(c.Datasets, Dataset{
			Label: s.Name,
			Data:  values(path),
			Color: Color(i),
			Kind:  Line,
		})
	}
	return c
}

// MultiAccountBalance lines up every account's monthly snapshot balance on
// one month axis. A month with no snapshot for an account is null.
func MultiAccountBalance(ledgers []core.AccountLedger) ChartSeries {
	perAccount := make([]map[string]float64, len(ledgers))
	months := make(map[string]struct{})
	for i, l := range ledgers {
		perAccount[i] = latestPerMonth(l.Snapshots)
		for key := range perAccount[i] {
			months[key] = struct{}{}
		}
	}

	keys := finmath.SortedKeys(months)
	c := ChartSeries{Title: "Account Balances", Labels: make([]string, 0, len(keys))}
	for _, key := range keys {
		c.Labels = append(c.Labels, finmath.LabelForKey(key))
	}
	c.Datasets = make([]Dataset, 0, len(ledgers))
	for i, l := range ledgers {
		data := make([]*float64, len(keys))
		for j, key := range keys {
			if bal, ok := perAccount[i][key]; ok {
				data[j] = Value(bal)
			}
		}
		c.Datasets = append(c.Datasets, Dataset{
			Label: l.Account.Name,
			Data:  data,
			Color: Color(i),
			Kind:  Line,
		})
	}
	return c
}

func latestPerMonth(snapshots []core.Snapshot) map[string]float64 {
	out := make(map[string]float64)
	seen := make(map[string]core.Snapshot)
	for _, s := range snapshots {
		key := finmath.MonthKey(s.CapturedAt)
		if prev, ok := seen[key]; ok && s.CapturedAt.Before(prev.CapturedAt) {
			continue
		}
		seen[key] = s
		out[key] = s.Balance
	}
	return out
}
