// Package analytics aggregates ledgers into per-account and portfolio
// statistics. All functions are pure; callers pass in "now".
package analytics

import (
	"time"

	"debttrack/internal/core"
	"debttrack/internal/finmath"
	"debttrack/internal/projection"
)

type AccountAnalytics struct {
	AccountID               int64         `json:"account_id"`
	Name                    string        `json:"name"`
	CurrentBalance          float64       `json:"current_balance"`
	InitialBalance          float64       `json:"initial_balance"`
	InterestRate            float64       `json:"interest_rate"`
	TotalReduced            float64       `json:"total_reduced"`
	TotalIncreased          float64       `json:"total_increased"`
	TotalReduction          float64       `json:"total_reduction"`
	TotalPayments           float64       `json:"total_payments"`
	TotalCharges            float64       `json:"total_charges"`
	TotalInterest           float64       `json:"total_interest"`
	TotalFees               float64       `json:"total_fees"`
	TransactionCount        int           `json:"transaction_count"`
	ProgressPercentage      float64       `json:"progress_percentage"`
	MonthsTracked           float64       `json:"months_tracked"`
	AverageMonthlyReduction float64       `json:"average_monthly_reduction"`
	CreditUtilization       *float64      `json:"credit_utilization,omitempty"`
	CurrentTrendPayment     float64       `json:"current_trend_payment"`
	ProjectedPayoff         PayoffOutlook `json:"projected_payoff"`
}

// Baseline is the earliest snapshot balance, or the current balance when
// the account has no snapshots.
func Baseline(ledger core.AccountLedger) float64 {
	if len(ledger.Snapshots) == 0 {
		return ledger.Account.Balance
	}
	earliest := ledger.Snapshots[0]
	for _, s := range ledger.Snapshots[1:] {
		if s.CapturedAt.Before(earliest.CapturedAt) {
			earliest = s
		}
	}
	return earliest.Balance
}

// trackingStart is the earliest snapshot, else the account's creation.
func trackingStart(ledger core.AccountLedger, now time.Time) time.Time {
	start := ledger.Account.CreatedAt
	for _, s := range ledger.Snapshots {
		if start.IsZero() || s.CapturedAt.Before(start) {
			start = s.CapturedAt
		}
	}
	if start.IsZero() {
		return now
	}
	return start
}

// Progress is the share of the baseline paid down, clamped to [0, 100].
func Progress(baseline, current float64) float64 {
	return finmath.Clamp(finmath.Percentage(baseline-current, baseline), 0, 100)
}

// Outlook projects the account's payoff date from its recent payment
// trend. It never fails; missing inputs and simulator errors come back
// as an unavailable outlook.
func Outlook(ledger core.AccountLedger, now time.Time, lookbackMonths int) (PayoffOutlook, float64) {
	trend, ok := projection.CurrentTrendPayment(ledger.Transactions, now, lookbackMonths)
	if !ok {
		if ledger.Account.Balance <= 0 {
			return Projected(now, 0, 0), 0
		}
		return Unavailable(ReasonNoRecentPayments), 0
	}
	p := projection.Simulate(ledger.Account.Balance, ledger.Account.InterestRate, trend)
	if p.Error != "" {
		return Unavailable(p.Error), trend
	}
	return Projected(finmath.AddMonths(now, p.Months), p.Months, trend), trend
}

func ForAccount(ledger core.AccountLedger, now time.Time, lookbackMonths int) AccountAnalytics {
	acct := ledger.Account
	m := core.Summarize(ledger.Transactions)
	baseline := Baseline(ledger)
	elapsed := finmath.ElapsedMonths(trackingStart(ledger, now), now)

	a := AccountAnalytics{
		AccountID:               acct.ID,
		Name:                    acct.Name,
		CurrentBalance:          finmath.RoundCurrency(acct.Balance),
		InitialBalance:          finmath.RoundCurrency(baseline),
		InterestRate:            acct.InterestRate,
		TotalReduced:            finmath.RoundCurrency(m.Reduction),
		TotalIncreased:          finmath.RoundCurrency(m.Increase),
		TotalReduction:          finmath.RoundCurrency(m.Net()),
		TotalPayments:           finmath.RoundCurrency(m.Payments),
		TotalCharges:            finmath.RoundCurrency(m.Charges),
		TotalInterest:           finmath.RoundCurrency(m.Interest),
		TotalFees:               finmath.RoundCurrency(m.Fees),
		TransactionCount:        m.Count,
		ProgressPercentage:      Progress(baseline, acct.Balance),
		MonthsTracked:           finmath.RoundTo(elapsed, 1),
		AverageMonthlyReduction: finmath.RoundCurrency(m.Net() / elapsed),
	}
	if acct.CreditLimit != nil && *acct.CreditLimit > 0 {
		u := finmath.Percentage(acct.Balance, *acct.CreditLimit)
		a.CreditUtilization = &u
	}
	a.ProjectedPayoff, a.CurrentTrendPayment = Outlook(ledger, now, lookbackMonths)
	return a
}
