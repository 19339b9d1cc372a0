package analytics

import (
	"strings"
	"time"

	"debttrack/internal/core"
	"debttrack/internal/finmath"
)

type MonthlyTrendPoint struct {
	Month        string  `json:"month"`
	Label        string  `json:"label"`
	TotalBalance float64 `json:"total_balance"`
	Reduction    float64 `json:"reduction"`
}

type OverallAnalytics struct {
	AccountCount          int                 `json:"account_count"`
	ActiveAccounts        int                 `json:"active_accounts"`
	TotalBalance          float64             `json:"total_balance"`
	TotalInitialBalance   float64             `json:"total_initial_balance"`
	TotalReduced          float64             `json:"total_reduced"`
	TotalIncreased        float64             `json:"total_increased"`
	TotalReduction        float64             `json:"total_reduction"`
	TotalPayments         float64             `json:"total_payments"`
	TotalInterest         float64             `json:"total_interest"`
	TotalFees             float64             `json:"total_fees"`
	OverallProgress       float64             `json:"overall_progress"`
	AverageInterestRate   float64             `json:"average_interest_rate"`
	Accounts              []AccountAnalytics  `json:"accounts"`
	MonthlyTrend          []MonthlyTrendPoint `json:"monthly_trend"`
	ProjectedDebtFreeDate PayoffOutlook       `json:"projected_debt_free_date"`
}

// ForPortfolio repeats the per-account analysis for every ledger and sums
// the results. An empty portfolio yields zero totals and empty lists.
func ForPortfolio(ledgers []core.AccountLedger, now time.Time, lookbackMonths int) OverallAnalytics {
	o := OverallAnalytics{
		Accounts:     make([]AccountAnalytics, 0, len(ledgers)),
		MonthlyTrend: MonthlyTrend(ledgers),
	}
	if len(ledgers) == 0 {
		o.ProjectedDebtFreeDate = Unavailable(ReasonNoAccounts)
		return o
	}

	var m core.Movement
	var balance, initial, weightedRate float64
	for _, l := range ledgers {
		o.Accounts = append(o.Accounts, ForAccount(l, now, lookbackMonths))
		for _, tx := range l.Transactions {
			m.Add(tx)
		}
		balance += l.Account.Balance
		initial += Baseline(l)
		weightedRate += l.Account.InterestRate * l.Account.Balance
		if l.Account.IsActive {
			o.ActiveAccounts++
		}
	}

	o.AccountCount = len(ledgers)
	o.TotalBalance = finmath.RoundCurrency(balance)
	o.TotalInitialBalance = finmath.RoundCurrency(initial)
	o.TotalReduced = finmath.RoundCurrency(m.Reduction)
	o.TotalIncreased = finmath.RoundCurrency(m.Increase)
	o.TotalReduction = finmath.RoundCurrency(m.Net())
	o.TotalPayments = finmath.RoundCurrency(m.Payments)
	o.TotalInterest = finmath.RoundCurrency(m.Interest)
	o.TotalFees = finmath.RoundCurrency(m.Fees)
	o.OverallProgress = Progress(initial, balance)
	if balance > 0 {
		o.AverageInterestRate = finmath.RoundCurrency(weightedRate / balance)
	}
	o.ProjectedDebtFreeDate = debtFree(o.Accounts, now)
	return o
}

// debtFree is the latest projected payoff across accounts that still owe.
// Any owing account without a projection makes the whole outlook unavailable.
func debtFree(accounts []AccountAnalytics, now time.Time) PayoffOutlook {
	var reasons []string
	latest := Projected(now, 0, 0)
	var payment float64
	for _, a := range accounts {
		if a.CurrentBalance <= 0 {
			continue
		}
		o := a.ProjectedPayoff
		if !o.Available() {
			reasons = append(reasons, a.Name+": "+o.Reason)
			continue
		}
		payment += o.MonthlyPayment
		if o.Months > latest.Months {
			latest = Projected(*o.Date, o.Months, 0)
		}
	}
	if len(reasons) > 0 {
		return Unavailable(strings.Join(reasons, "; "))
	}
	latest.MonthlyPayment = finmath.RoundCurrency(payment)
	return latest
}

// monthlyBalances maps each account to its latest snapshot balance per
// month key.
func monthlyBalances(l core.AccountLedger) map[string]float64 {
	out := make(map[string]float64)
	latest := make(map[string]time.Time)
	for _, s := range l.Snapshots {
		key := finmath.MonthKey(s.CapturedAt)
		if t, ok := latest[key]; ok && s.CapturedAt.Before(t) {
			continue
		}
		latest[key] = s.CapturedAt
		out[key] = s.Balance
	}
	return out
}

// MonthlyTrend sums every account's monthly snapshot balance and differences
// consecutive months. The first month has no prior bucket and reduces by 0.
func MonthlyTrend(ledgers []core.AccountLedger) []MonthlyTrendPoint {
	totals := make(map[string]float64)
	for _, l := range ledgers {
		for key, bal := range monthlyBalances(l) {
			totals[key] += bal
		}
	}
	points := make([]MonthlyTrendPoint, 0, len(totals))
	for i, key := range finmath.SortedKeys(totals) {
		p := MonthlyTrendPoint{
			Month:        key,
			Label:        finmath.LabelForKey(key),
			TotalBalance: finmath.RoundCurrency(totals[key]),
		}
		if i > 0 {
			p.Reduction = finmath.RoundCurrency(points[i-1].TotalBalance - p.TotalBalance)
		}
		points = append(points, p)
	}
	return points
}
