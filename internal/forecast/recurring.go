// Package forecast implements the financial forecasting engine:
// recurring expense detection, spending pattern analysis, variable
// spending estimation, daily projection series, month-end prediction
// and debt amortization.
//
// Every entry point is a pure function of its explicit inputs. The
// engine never reads the wall clock, never writes, and never fails on
// sparse data: missing history degrades to zero estimates and minimum
// confidence instead of errors.
package forecast

import (
	"sort"

	"bilancio/internal/core"
)

// Confidence scoring coefficients for recurring detection. The score is
// an additive heuristic, not a calibrated probability: frequency,
// amount stability and date stability each contribute independently,
// capped at 100.
const (
	// RecurringWindowMonths is the trailing detection window, current
	// month included.
	RecurringWindowMonths = 4

	// MinRecurringMonths is the minimum number of distinct months a
	// group must appear in before it counts as a pattern. A
	// single-occurrence expense never qualifies.
	MinRecurringMonths = 2

	// ConfidencePerMonth is awarded for every distinct month observed.
	ConfidencePerMonth = 25

	// AmountStabilityBonus applies when the amount standard deviation
	// stays below AmountStabilityRatio of the mean amount.
	AmountStabilityBonus = 20
	AmountStabilityRatio = 0.1

	// DayStabilityBonus applies when the day-of-month standard
	// deviation stays below DayStabilityMaxStdDev days.
	DayStabilityBonus    = 15
	DayStabilityMaxStdDev = 3.0
)

// RecurringCandidate is a (description, category) expense group that
// repeats across months. Candidates are recomputed from scratch on
// every prediction request and never persisted.
type RecurringCandidate struct {
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	MonthsObserved  int     `json:"monthsObserved"`
	EstimatedAmount float64 `json:"estimatedAmount"`
	AmountStdDev    float64 `json:"amountStdDev"`
	ExpectedDay     float64 `json:"expectedDayOfMonth"`
	DayStdDev       float64 `json:"dayStdDev"`
	// LastSeenMonth is the most recent observation month as year*100+month.
	LastSeenMonth int `json:"lastSeenMonth"`
	Confidence    int `json:"confidencePercent"`
}

type recurringGroup struct {
	description string
	category    string
	amounts     []float64
	days        []float64
	months      map[int]bool
	lastMonth   int
}

// DetectRecurring identifies recurring expense candidates in a set of
// historical expense transactions. Grouping is strict on the
// (description, category) pair; no fuzzy matching. Output is sorted by
// expected day-of-month ascending so consumers can slot pending items
// into a calendar.
func DetectRecurring(txs []core.Transaction) []RecurringCandidate {
	groups := make(map[[2]string]*recurringGroup)
	for _, tx := range txs {
		if tx.Kind != core.Expense || !tx.Computable {
			continue
		}
		key := [2]string{tx.Description, tx.Category}
		g, ok := groups[key]
		if !ok {
			g = &recurringGroup{
				description: tx.Description,
				category:    tx.Category,
				months:      make(map[int]bool),
			}
			groups[key] = g
		}
		g.amounts = append(g.amounts, tx.Amount.Euros())
		g.days = append(g.days, float64(tx.Date.Day()))
		mk := tx.MonthKey()
		g.months[mk] = true
		if mk > g.lastMonth {
			g.lastMonth = mk
		}
	}

	var candidates []RecurringCandidate
	for _, g := range groups {
		monthsObserved := len(g.months)
		if monthsObserved < MinRecurringMonths {
			continue
		}
		c := RecurringCandidate{
			Description:     g.description,
			Category:        g.category,
			MonthsObserved:  monthsObserved,
			EstimatedAmount: mean(g.amounts),
			AmountStdDev:    stdDev(g.amounts),
			ExpectedDay:     mean(g.days),
			DayStdDev:       stdDev(g.days),
			LastSeenMonth:   g.lastMonth,
		}
		c.Confidence = recurringConfidence(c)
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ExpectedDay != candidates[j].ExpectedDay {
			return candidates[i].ExpectedDay < candidates[j].ExpectedDay
		}
		return candidates[i].Description < candidates[j].Description
	})

	return candidates
}

// recurringConfidence scores frequency, amount stability and date
// stability additively, capped at 100. Zero variance earns both
// stability bonuses.
func recurringConfidence(c RecurringCandidate) int {
	score := c.MonthsObserved * ConfidencePerMonth
	if c.AmountStdDev < AmountStabilityRatio*c.EstimatedAmount {
		score += AmountStabilityBonus
	}
	if c.DayStdDev < DayStabilityMaxStdDev {
		score += DayStabilityBonus
	}
	if score > 100 {
		score = 100
	}
	return score
}

// PendingRecurring filters candidates whose expected day has not yet
// occurred this month: strictly later than today's day-of-month.
func PendingRecurring(candidates []RecurringCandidate, today int) []RecurringCandidate {
	var pending []RecurringCandidate
	for _, c := range candidates {
		if c.ExpectedDay > float64(today) {
			pending = append(pending, c)
		}
	}
	return pending
}

// PendingRecurringTotal sums the estimated amounts of pending
// candidates: the recurring component of remaining predicted spend.
func PendingRecurringTotal(pending []RecurringCandidate) float64 {
	total := 0.0
	for _, c := range pending {
		total += c.EstimatedAmount
	}
	return total
}
