package analytics

import (
	"time"

	"debttrack/internal/core"
	"debttrack/internal/finmath"
)

type MonthComparison struct {
	Month            string  `json:"month"`
	Label            string  `json:"label"`
	Balance          float64 `json:"balance"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"change_percentage"`
}

type TrendAnalysis struct {
	PaymentCount       int               `json:"payment_count"`
	AveragePayment     float64           `json:"average_payment"`
	MedianPayment      float64           `json:"median_payment"`
	PaymentStdDev      float64           `json:"payment_std_dev"`
	PaymentConsistency float64           `json:"payment_consistency"`
	PaymentTrend       finmath.Trend     `json:"payment_trend"`
	BalanceTrend       finmath.Trend     `json:"balance_trend"`
	MonthOverMonth     []MonthComparison `json:"month_over_month"`
}

// PaymentConsistency is 1 - min(1, cv) over the payment amounts, where cv
// is stddev/mean. A zero mean counts as fully inconsistent.
func PaymentConsistency(payments []float64) float64 {
	mean := finmath.Mean(payments)
	cv := 1.0
	if mean != 0 {
		cv = finmath.StandardDeviation(payments) / mean
	}
	if cv < 0 {
		cv = -cv
	}
	return finmath.Clamp(finmath.RoundTo(1-min(1, cv), 4), 0, 1)
}

// MonthOverMonth walks the monthly trend oldest to newest. Change is
// previous minus current, so a positive change means the debt shrank.
func MonthOverMonth(trend []MonthlyTrendPoint) []MonthComparison {
	out := make([]MonthComparison, 0, len(trend))
	for i, p := range trend {
		c := MonthComparison{Month: p.Month, Label: p.Label, Balance: p.TotalBalance}
		if i > 0 {
			prev := trend[i-1].TotalBalance
			c.Change = finmath.RoundCurrency(prev - p.TotalBalance)
			c.ChangePercentage = finmath.Percentage(c.Change, prev)
		}
		out = append(out, c)
	}
	return out
}

// Trends analyzes payment behavior and balance movement across ledgers.
func Trends(ledgers []core.AccountLedger) TrendAnalysis {
	var payments []float64
	monthly := make(map[string]float64)
	for _, l := range ledgers {
		for _, tx := range l.Transactions {
			if tx.Kind != core.KindPayment {
				continue
			}
			amount := tx.Effect().Reduction
			payments = append(payments, amount)
			monthly[finmath.MonthKey(tx.Date)] += amount
		}
	}

	monthlyPayments := make([]float64, 0, len(monthly))
	for _, key := range finmath.SortedKeys(monthly) {
		monthlyPayments = append(monthlyPayments, monthly[key])
	}

	trend := MonthlyTrend(ledgers)
	balances := make([]float64, 0, len(trend))
	for _, p := range trend {
		balances = append(balances, p.TotalBalance)
	}

	return TrendAnalysis{
		PaymentCount:       len(payments),
		AveragePayment:     finmath.RoundCurrency(finmath.Mean(payments)),
		MedianPayment:      finmath.RoundCurrency(finmath.Median(payments)),
		PaymentStdDev:      finmath.RoundCurrency(finmath.StandardDeviation(payments)),
		PaymentConsistency: PaymentConsistency(payments),
		PaymentTrend:       finmath.TrendSlope(monthlyPayments),
		BalanceTrend:       finmath.TrendSlope(balances),
		MonthOverMonth:     MonthOverMonth(trend),
	}
}

// TrendsSince restricts the payment analysis to transactions on or after
// since. Snapshots are kept whole so month-over-month stays continuous.
func TrendsSince(ledgers []core.AccountLedger, since time.Time) TrendAnalysis {
	filtered := make([]core.AccountLedger, len(ledgers))
	for i, l := range ledgers {
		filtered[i] = l
		filtered[i].Transactions = nil
		for _, tx := range l.Transactions {
			if !tx.Date.Before(since) {
				filtered[i].Transactions = append(filtered[i].Transactions, tx)
			}
		}
	}
	return Trends(filtered)
}
