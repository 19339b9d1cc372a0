package analytics

import (
	"time"
)

type OutlookStatus string

const (
	OutlookProjected   OutlookStatus = "projected"
	OutlookUnavailable OutlookStatus = "unavailable"
)

const (
	ReasonNoRecentPayments = "no payments in the lookback window"
	ReasonNoAccounts       = "no accounts"
)

// PayoffOutlook is either a projected payoff date or the reason no date
// could be projected. Date is nil exactly when Status is unavailable.
type PayoffOutlook struct {
	Status         OutlookStatus `json:"status"`
	Date           *time.Time    `json:"date"`
	Months         int           `json:"months,omitempty"`
	MonthlyPayment float64       `json:"monthly_payment,omitempty"`
	Reason         string        `json:"reason,omitempty"`
}

func Projected(date time.Time, months int, payment float64) PayoffOutlook {
	return PayoffOutlook{Status: OutlookProjected, Date: &date, Months: months, MonthlyPayment: payment}
}

func Unavailable(reason string) PayoffOutlook {
	return PayoffOutlook{Status: OutlookUnavailable, Reason: reason}
}

func (o PayoffOutlook) Available() bool {
	return o.Status == OutlookProjected && o.Date != nil
}
