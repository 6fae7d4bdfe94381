package forecast

import (
	"time"

	"bilancio/internal/core"
)

// DefaultVariableLookbackMonths is the number of trailing completed
// months the variable spending estimator samples.
const DefaultVariableLookbackMonths = 3

// VariableEstimate is the expected non-recurring spend for the rest of
// the current month, derived from same-period historical spending.
type VariableEstimate struct {
	// DailyRate is the mean daily spend across all sampled historical
	// days (days strictly after today's day-of-month in each look-back
	// month).
	DailyRate float64 `json:"dailyRate"`
	// Remaining is DailyRate multiplied by the days left this month.
	Remaining float64 `json:"remaining"`
	// SampledDays is how many historical calendar days fed the rate.
	SampledDays int `json:"sampledDays"`
}

// EstimateVariableSpending predicts back-of-month spending from the
// back of past months: only historical days strictly after today's
// day-of-month qualify, which keeps already-booked early-month expenses
// out of the sample. Recurring amounts falling in those historical days
// are deliberately NOT subtracted; the estimate accepts that overlap.
//
// Zero-spend qualifying days count toward the rate, so thin history
// pulls the estimate down rather than up.
func EstimateVariableSpending(txs []core.Transaction, now time.Time, lookbackMonths int) VariableEstimate {
	if lookbackMonths <= 0 {
		lookbackMonths = DefaultVariableLookbackMonths
	}

	today := now.Day()
	daysRemaining := daysInMonth(now.Year(), now.Month()) - today

	currentStart := monthStart(now)
	sampledDays := 0
	monthKeys := make(map[int]bool, lookbackMonths)
	for back := 1; back <= lookbackMonths; back++ {
		m := currentStart.AddDate(0, -back, 0)
		monthKeys[m.Year()*100+int(m.Month())] = true
		if tail := daysInMonth(m.Year(), m.Month()) - today; tail > 0 {
			sampledDays += tail
		}
	}

	total := 0.0
	for _, tx := range txs {
		if tx.Kind != core.Expense || !tx.Computable {
			continue
		}
		if !monthKeys[tx.MonthKey()] {
			continue
		}
		if tx.Date.Day() <= today {
			continue
		}
		total += tx.Amount.Euros()
	}

	est := VariableEstimate{SampledDays: sampledDays}
	if sampledDays > 0 {
		est.DailyRate = total / float64(sampledDays)
	}
	if daysRemaining > 0 {
		est.Remaining = est.DailyRate * float64(daysRemaining)
	}
	return est
}
