// Package finmath provides the numeric primitives shared by the projection,
// analytics and chart packages. Every function is total over ordinary
// numeric input.
package finmath

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SlopeThreshold separates a stable series from a moving one.
const SlopeThreshold = 0.01

type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

type Trend struct {
	Slope     float64   `json:"slope"`
	Direction Direction `json:"direction"`
}

// RoundCurrency rounds to two decimals, halves away from zero. The value is
// rounded on its shortest decimal representation so 1.005 becomes 1.01.
// NaN and infinities are returned unchanged.
func RoundCurrency(x float64) float64 {
	return RoundTo(x, 2)
}

func RoundTo(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

func Sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StandardDeviation is the population standard deviation.
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// Percentage returns part as a rounded percent of whole, 0 when whole is 0.
func Percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return RoundCurrency(part / whole * 100)
}

// TrendSlope fits an ordinary least-squares line over (index, value).
// Fewer than two points is a stable zero slope.
func TrendSlope(series []float64) Trend {
	n := float64(len(series))
	if len(series) < 2 {
		return Trend{Direction: Stable}
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Trend{Direction: Stable}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	dir := Stable
	switch {
	case slope > SlopeThreshold:
		dir = Increasing
	case slope < -SlopeThreshold:
		dir = Decreasing
	}
	return Trend{Slope: slope, Direction: dir}
}

func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// MonthKey buckets a date as "YYYY-MM". Keys sort chronologically.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthLabel renders a date as "Jan 2006".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// LabelForKey turns a MonthKey back into its MonthLabel. Unparseable keys
// are returned as-is.
func LabelForKey(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return MonthLabel(t)
}

// SortedKeys returns the map's keys in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddMonths adds whole calendar months.
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// ElapsedMonths is the fractional number of average-length months between
// from and to, never less than 1.
func ElapsedMonths(from, to time.Time) float64 {
	const avgMonth = 365.25 / 12 * 24 * float64(time.Hour)
	m := float64(to.Sub(from)) / avgMonth
	if m < 1 {
		return 1
	}
	return m
}

// StartOfMonth truncates to midnight UTC on the first of the month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
