package charts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debttrack/internal/core"
	"debttrack/internal/interest"
	"debttrack/internal/projection"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 0, 0, 0, time.UTC)
}

func floats(ps []*float64) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}

func TestBalanceReduction(t *testing.T) {
	c := BalanceReduction([]core.Snapshot{
		{Balance: 1000, CapturedAt: at(2024, 1, 1)},
		{Balance: 850.5, CapturedAt: at(2024, 2, 1)},
		{Balance: 700, CapturedAt: at(2024, 3, 1)},
	})
	assert.Equal(t, []string{"2024-01-01", "2024-02-01", "2024-03-01"}, c.Labels)
	require.Len(t, c.Datasets, 2)
	assert.Equal(t, []float64{1000, 850.5, 700}, floats(c.Datasets[0].Data))
	assert.Equal(t, []float64{0, 149.5, 300}, floats(c.Datasets[1].Data))
}

func TestInterestAccumulation(t *testing.T) {
	h := interest.History{Months: []interest.Month{
		{Label: "Jan 2024", Interest: 10},
		{Label: "Feb 2024", Interest: 0},
		{Label: "Mar 2024", Interest: 12.25},
	}}
	c := InterestAccumulation(h)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, c.Labels)
	assert.Equal(t, []float64{10, 0, 12.25}, floats(c.Datasets[0].Data))
	assert.Equal(t, []float64{10, 10, 22.25}, floats(c.Datasets[1].Data))
}

func TestPaymentDistribution(t *testing.T) {
	c := PaymentDistribution([]core.Transaction{
		{Kind: core.KindPayment, Amount: 300},
		{Kind: core.KindInterest, Amount: 45},
		{Kind: core.KindAdjustment, Amount: 25},
		{Kind: core.KindAdjustment, Amount: -10},
		{Kind: core.KindCharge, Amount: 500},
	})
	assert.Equal(t, []string{"Principal", "Interest", "Fees"}, c.Labels)
	assert.Equal(t, []float64{255, 45, 25}, floats(c.Datasets[0].Data))
	assert.Equal(t, Doughnut, c.Datasets[0].Kind)
}

func TestPaymentDistributionClampsPrincipal(t *testing.T) {
	c := PaymentDistribution([]core.Transaction{
		{Kind: core.KindPayment, Amount: 20},
		{Kind: core.KindInterest, Amount: 45},
	})
	assert.Equal(t, []float64{0, 45, 0}, floats(c.Datasets[0].Data))
}

func TestProjectionComparisonMatchesSimulator(t *testing.T) {
	minPay := 100.0
	acct := core.Account{Balance: 4000, InterestRate: 19.99, MinimumPayment: &minPay}
	scenarios := projection.BuildScenarios(acct, nil, at(2024, 6, 1), 3)
	require.Len(t, scenarios, 4)

	c := ProjectionComparison(acct.Balance, acct.InterestRate, scenarios)
	horizon := ComparisonHorizon(scenarios)
	assert.Equal(t, MaxComparisonMonths, horizon)
	require.Len(t, c.Labels, horizon+1)
	assert.Equal(t, "Month 0", c.Labels[0])
	require.Len(t, c.Datasets, len(scenarios))

	for i, s := range scenarios {
		data := floats(c.Datasets[i].Data)
		assert.Equal(t, 4000.0, data[0])
		for m := 1; m <= horizon; m++ {
			if m <= len(s.Schedule) {
				assert.Equal(t, s.Schedule[m-1].Balance, data[m], "%s month %d", s.Name, m)
			} else {
				assert.Equal(t, 0.0, data[m], "%s month %d", s.Name, m)
			}
		}
	}
}

func TestProjectionComparisonShortHorizon(t *testing.T) {
	scenarios := []projection.Scenario{projection.NewScenario("Current Trend", 90, 18, 100)}
	c := ProjectionComparison(90, 18, scenarios)
	assert.Equal(t, []string{"Month 0", "Month 1"}, c.Labels)
	assert.Equal(t, []float64{90, 0}, floats(c.Datasets[0].Data))
}

func TestMultiAccountBalanceUsesNullForGaps(t *testing.T) {
	ledgers := []core.AccountLedger{
		{
			Account: core.Account{Name: "Visa"},
			Snapshots: []core.Snapshot{
				{Balance: 1000, CapturedAt: at(2024, 1, 5)},
				{Balance: 900, CapturedAt: at(2024, 3, 5)},
			},
		},
		{
			Account: core.Account{Name: "Car"},
			Snapshots: []core.Snapshot{
				{Balance: 5000, CapturedAt: at(2024, 2, 5)},
				{Balance: 4800, CapturedAt: at(2024, 3, 1)},
				{Balance: 4750, CapturedAt: at(2024, 3, 20)},
			},
		},
	}
	c := MultiAccountBalance(ledgers)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, c.Labels)
	require.Len(t, c.Datasets, 2)

	visa := c.Datasets[0].Data
	require.Len(t, visa, 3)
	assert.Equal(t, 1000.0, *visa[0])
	assert.Nil(t, visa[1])
	assert.Equal(t, 900.0, *visa[2])

	car := c.Datasets[1].Data
	assert.Nil(t, car[0])
	assert.Equal(t, 4750.0, *car[2])

	raw, err := json.Marshal(c.Datasets[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[1000,null,900]`)
}
