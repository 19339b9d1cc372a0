package interest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debttrack/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestReconstruct(t *testing.T) {
	now := day(2024, time.June, 20)
	ledger := core.AccountLedger{
		Account: core.Account{Balance: 2000, InterestRate: 18},
		Transactions: []core.Transaction{
			{Kind: core.KindInterest, Amount: 40, Date: day(2023, time.January, 5)}, // outside window
			{Kind: core.KindInterest, Amount: 30, Date: day(2024, time.February, 3)},
			{Kind: core.KindPayment, Amount: 500, Date: day(2024, time.February, 10)},
			{Kind: core.KindInterest, Amount: 25.5, Date: day(2024, time.April, 3)},
			{Kind: core.KindInterest, Amount: 4.5, Date: day(2024, time.April, 28)},
		},
		Snapshots: []core.Snapshot{
			{Balance: 2600, CapturedAt: day(2024, time.March, 1)},
			{Balance: 2450, CapturedAt: day(2024, time.April, 1)},
			{Balance: 2400, CapturedAt: day(2024, time.April, 30)},
		},
	}

	h := Reconstruct(ledger, now, 6)
	require.Len(t, h.Months, 3)

	assert.Equal(t, Month{Key: "2024-02", Label: "Feb 2024", Interest: 30, Balance: 0}, h.Months[0])
	assert.Equal(t, Month{Key: "2024-03", Label: "Mar 2024", Interest: 0, Balance: 2600}, h.Months[1])
	assert.Equal(t, Month{Key: "2024-04", Label: "Apr 2024", Interest: 30, Balance: 2400}, h.Months[2])

	assert.Equal(t, 60.0, h.WindowInterest)
	assert.Equal(t, 100.0, h.TotalInterestPaid)
	assert.Equal(t, 2, h.ActiveMonths)
	assert.Equal(t, 30.0, h.AverageMonthlyInterest)
	assert.Equal(t, 30.0, h.EstimatedNextMonth)
}

func TestReconstructEmpty(t *testing.T) {
	h := Reconstruct(core.AccountLedger{Account: core.Account{Balance: 0, InterestRate: 20}}, day(2024, 1, 1), 0)
	assert.Empty(t, h.Months)
	assert.NotNil(t, h.Months)
	assert.Equal(t, 0.0, h.AverageMonthlyInterest)
	assert.Equal(t, 0.0, h.EstimatedNextMonth)
}

func TestWindowStart(t *testing.T) {
	now := day(2024, time.March, 15)
	assert.Equal(t, time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC), WindowStart(now, 6))
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), WindowStart(now, 1))
	assert.Equal(t, time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC), WindowStart(now, 0))
}
