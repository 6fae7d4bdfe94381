package forecast

import (
	"time"

	"bilancio/internal/core"
)

// Month-third boundaries for spending pattern buckets.
const (
	earlyPeriodEnd = 10
	midPeriodEnd   = 20

	// DefaultPatternLookbackMonths is the number of completed months
	// the analyzer inspects when the caller does not override it.
	DefaultPatternLookbackMonths = 3
)

// PeriodBucket holds one per-month total for each look-back month and
// their arithmetic mean. No smoothing or outlier rejection is applied:
// with look-back windows this short a single anomalous month fully
// influences the average, and that trade-off is accepted.
type PeriodBucket struct {
	MonthTotals []float64 `json:"monthTotals"`
	Average     float64   `json:"average"`
}

// SpendingPattern buckets historical expenses into early (days 1-10),
// mid (11-20) and late (21-end) month thirds. It is an auxiliary
// signal for callers who want to tell front-loaded from back-loaded
// spenders; the projection does not consume it.
type SpendingPattern struct {
	Early PeriodBucket `json:"early"`
	Mid   PeriodBucket `json:"mid"`
	Late  PeriodBucket `json:"late"`
	// Months is the number of completed months analyzed.
	Months int `json:"months"`
}

// AnalyzePattern computes per-third monthly totals over the trailing
// lookbackMonths completed months. The in-progress month of now is
// always excluded. Months with no transactions contribute zero totals.
func AnalyzePattern(txs []core.Transaction, now time.Time, lookbackMonths int) SpendingPattern {
	if lookbackMonths <= 0 {
		lookbackMonths = DefaultPatternLookbackMonths
	}

	// Per-month totals keyed by year*100+month, one slot per third.
	type thirds struct{ early, mid, late float64 }
	byMonth := make(map[int]*thirds, lookbackMonths)

	currentStart := monthStart(now)
	for back := 1; back <= lookbackMonths; back++ {
		m := currentStart.AddDate(0, -back, 0)
		byMonth[m.Year()*100+int(m.Month())] = &thirds{}
	}

	for _, tx := range txs {
		if tx.Kind != core.Expense || !tx.Computable {
			continue
		}
		slot, ok := byMonth[tx.MonthKey()]
		if !ok {
			continue
		}
		amount := tx.Amount.Euros()
		switch day := tx.Date.Day(); {
		case day <= earlyPeriodEnd:
			slot.early += amount
		case day <= midPeriodEnd:
			slot.mid += amount
		default:
			slot.late += amount
		}
	}

	pattern := SpendingPattern{Months: lookbackMonths}
	// Oldest month first, so the series reads chronologically.
	for back := lookbackMonths; back >= 1; back-- {
		m := currentStart.AddDate(0, -back, 0)
		slot := byMonth[m.Year()*100+int(m.Month())]
		pattern.Early.MonthTotals = append(pattern.Early.MonthTotals, slot.early)
		pattern.Mid.MonthTotals = append(pattern.Mid.MonthTotals, slot.mid)
		pattern.Late.MonthTotals = append(pattern.Late.MonthTotals, slot.late)
	}
	pattern.Early.Average = mean(pattern.Early.MonthTotals)
	pattern.Mid.Average = mean(pattern.Mid.MonthTotals)
	pattern.Late.Average = mean(pattern.Late.MonthTotals)

	return pattern
}
