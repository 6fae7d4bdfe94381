package forecast

import "math"

// Amortization bounds and defaults.
const (
	// MaxPayoffMonths is a hard safety cap on the simulation, guarding
	// against floating-point stickiness near zero.
	MaxPayoffMonths = 600

	// PayoffBalanceTolerance is the remaining principal below which a
	// debt counts as paid off.
	PayoffBalanceTolerance = 0.01

	// DefaultAnnualRatePercent is the flat annual interest rate assumed
	// when a debt carries no explicit rate.
	DefaultAnnualRatePercent = 18.0
)

// DebtPayoffResult describes how a fixed monthly payment retires a
// debt. NeverPaysOff is a sentinel state, not an error: it means the
// payment does not cover the monthly interest accrual, so the
// principal never shrinks.
type DebtPayoffResult struct {
	Months        int     `json:"months"`
	NeverPaysOff  bool    `json:"neverPaysOff"`
	TotalInterest float64 `json:"totalInterest"`
	TotalPaid     float64 `json:"totalPaid"`
}

// DebtPayment is one debt with its assigned monthly payment.
type DebtPayment struct {
	Principal      float64
	MonthlyPayment float64
	MonthlyRate    float64
}

// MonthlyRate converts a flat annual percentage rate to its monthly
// fraction (18 -> 0.015).
func MonthlyRate(annualPercent float64) float64 {
	return annualPercent / 100 / 12
}

// PayoffSchedule simulates paying down principal with a fixed monthly
// payment at the given monthly interest rate. The month-by-month
// simulation is the canonical method: it captures the stopping
// condition and per-month rounding exactly, where the closed-form
// formula drifts at small-balance edges.
//
// The function is total. Zero principal is already paid off; a payment
// at or below the monthly interest accrual yields the never-pays-off
// sentinel rather than an error.
func PayoffSchedule(principal, monthlyPayment, monthlyRate float64) DebtPayoffResult {
	if principal <= 0 {
		return DebtPayoffResult{}
	}
	if monthlyPayment <= principal*monthlyRate {
		// Interest accrues at least as fast as the payment: the
		// principal never decreases.
		return DebtPayoffResult{NeverPaysOff: true}
	}

	remaining := principal
	totalInterest := 0.0
	months := 0
	for remaining > PayoffBalanceTolerance && months < MaxPayoffMonths {
		interest := remaining * monthlyRate
		principalPaid := monthlyPayment - interest
		remaining -= principalPaid
		totalInterest += interest
		months++
	}

	return DebtPayoffResult{
		Months:        months,
		TotalInterest: totalInterest,
		TotalPaid:     principal + totalInterest,
	}
}

// AggregatePayoff combines several debts paid in parallel with
// independent payments: all must reach zero, so months is the maximum
// across debts while interest and paid totals sum. One insufficient
// payment turns the whole aggregate into the never sentinel.
func AggregatePayoff(debts []DebtPayment) DebtPayoffResult {
	var agg DebtPayoffResult
	for _, d := range debts {
		r := PayoffSchedule(d.Principal, d.MonthlyPayment, d.MonthlyRate)
		if r.NeverPaysOff {
			return DebtPayoffResult{NeverPaysOff: true}
		}
		if r.Months > agg.Months {
			agg.Months = r.Months
		}
		agg.TotalInterest += r.TotalInterest
		agg.TotalPaid += r.TotalPaid
	}
	return agg
}

// closedFormMonths is the logarithmic amortization estimate. It exists
// as an O(1) cross-check of the simulation and is intentionally not
// part of the public surface.
func closedFormMonths(principal, monthlyPayment, monthlyRate float64) float64 {
	if principal <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		return principal / monthlyPayment
	}
	x := 1 - principal*monthlyRate/monthlyPayment
	if x <= 0 {
		return math.Inf(1)
	}
	return -math.Log(x) / math.Log(1+monthlyRate)
}
