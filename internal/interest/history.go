// Package interest rebuilds an account's monthly interest history from its
// ledger and estimates the coming month.
package interest

import (
	"time"

	"debttrack/internal/core"
	"debttrack/internal/finmath"
)

const DefaultMonths = 12

// Month is one bucket of the history. Either field may be zero when only
// the other signal has data for the month.
type Month struct {
	Key      string  `json:"month"`
	Label    string  `json:"label"`
	Interest float64 `json:"interest"`
	Balance  float64 `json:"balance"`
}

type History struct {
	Months                 []Month `json:"months"`
	WindowInterest         float64 `json:"window_interest"`
	TotalInterestPaid      float64 `json:"total_interest_paid"`
	AverageMonthlyInterest float64 `json:"average_monthly_interest"`
	ActiveMonths           int     `json:"active_months"`
	EstimatedNextMonth     float64 `json:"estimated_next_month"`
}

// WindowStart is the first instant of the oldest month in a window of
// the given length ending with the month containing now.
func WindowStart(now time.Time, months int) time.Time {
	if months <= 0 {
		months = DefaultMonths
	}
	return finmath.AddMonths(finmath.StartOfMonth(now), -(months - 1))
}

// Reconstruct buckets INTEREST transactions and snapshots over the last
// months calendar months. Snapshots only label a bucket with a balance,
// the latest one in the month winning. The average divides window interest
// by the number of months that actually carried interest.
func Reconstruct(ledger core.AccountLedger, now time.Time, months int) History {
	start := WindowStart(now, months)
	buckets := make(map[string]*Month)
	bucket := func(t time.Time) *Month {
		key := finmath.MonthKey(t)
		b, ok := buckets[key]
		if !ok {
			b = &Month{Key: key, Label: finmath.MonthLabel(t)}
			buckets[key] = b
		}
		return b
	}

	var h History
	var total, window float64
	for _, tx := range ledger.Transactions {
		if tx.Kind != core.KindInterest {
			continue
		}
		amount := tx.Effect().Increase
		total += amount
		if tx.Date.Before(start) || tx.Date.After(now) {
			continue
		}
		window += amount
		bucket(tx.Date).Interest += amount
	}

	active := 0
	for _, b := range buckets {
		if b.Interest > 0 {
			active++
		}
	}

	for _, s := range ledger.Snapshots {
		if s.CapturedAt.Before(start) || s.CapturedAt.After(now) {
			continue
		}
		bucket(s.CapturedAt).Balance = s.Balance
	}

	h.Months = make([]Month, 0, len(buckets))
	for _, key := range finmath.SortedKeys(buckets) {
		b := buckets[key]
		b.Interest = finmath.RoundCurrency(b.Interest)
		h.Months = append(h.Months, *b)
	}

	h.WindowInterest = finmath.RoundCurrency(window)
	h.TotalInterestPaid = finmath.RoundCurrency(total)
	h.ActiveMonths = active
	if active > 0 {
		h.AverageMonthlyInterest = finmath.RoundCurrency(window / float64(active))
	}
	h.EstimatedNextMonth = EstimateNextMonth(ledger.Account)
	return h
}

// EstimateNextMonth applies the account's monthly rate to its live balance.
func EstimateNextMonth(account core.Account) float64 {
	return finmath.RoundCurrency(account.Balance * account.MonthlyRate())
}
