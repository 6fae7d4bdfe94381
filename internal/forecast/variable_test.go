package forecast

import (
	"math"
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestEstimateVariableSpending(t *testing.T) {
	// Today is April 20th; the sample covers days 21+ of January,
	// February and March: 11 + 9 + 11 = 31 qualifying days.
	now := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		expense(2024, 1, 25, "Cena fuori", "Fuori", 6200),
		expense(2024, 2, 28, "Bar", "Fuori", 3100),
		expense(2024, 3, 21, "Spesa", "Spesa", 9300),
		// Before the cutoff day: excluded from the sample.
		expense(2024, 3, 20, "Spesa", "Spesa", 50000),
		expense(2024, 1, 5, "Spesa", "Spesa", 50000),
		// Current month never feeds the estimate.
		expense(2024, 4, 25, "Spesa", "Spesa", 50000),
	}

	est := EstimateVariableSpending(txs, now, 3)

	if est.SampledDays != 31 {
		t.Fatalf("SampledDays = %d, want 31", est.SampledDays)
	}
	wantRate := 186.0 / 31.0
	if math.Abs(est.DailyRate-wantRate) > 1e-9 {
		t.Errorf("DailyRate = %v, want %v", est.DailyRate, wantRate)
	}
	// April has 30 days: 10 remain.
	wantRemaining := wantRate * 10
	if math.Abs(est.Remaining-wantRemaining) > 1e-9 {
		t.Errorf("Remaining = %v, want %v", est.Remaining, wantRemaining)
	}
}

func TestEstimateVariableSpendingZeroSpendDaysDilute(t *testing.T) {
	// A single historical purchase spread over a long sample window
	// keeps the daily rate low; empty days are part of the mean.
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		expense(2024, 3, 15, "Spesa", "Spesa", 6300),
	}

	est := EstimateVariableSpending(txs, now, 3)

	// Days 11+ of January (21), February (19), March (21) = 61.
	if est.SampledDays != 61 {
		t.Fatalf("SampledDays = %d, want 61", est.SampledDays)
	}
	wantRate := 63.0 / 61.0
	if math.Abs(est.DailyRate-wantRate) > 1e-9 {
		t.Errorf("DailyRate = %v, want %v", est.DailyRate, wantRate)
	}
}

func TestEstimateVariableSpendingNoHistory(t *testing.T) {
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	est := EstimateVariableSpending(nil, now, 0)

	if est.DailyRate != 0 || est.Remaining != 0 {
		t.Errorf("empty history gave rate %v remaining %v, want zeros", est.DailyRate, est.Remaining)
	}
}

func TestEstimateVariableSpendingLastDayOfMonth(t *testing.T) {
	// Nothing remains to predict on the last day.
	now := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		expense(2024, 3, 31, "Spesa", "Spesa", 10000),
	}

	est := EstimateVariableSpending(txs, now, 3)
	if est.Remaining != 0 {
		t.Errorf("Remaining = %v on the last day, want 0", est.Remaining)
	}
	if est.DailyRate == 0 {
		t.Error("DailyRate = 0, want positive from the March 31st sample")
	}
}
