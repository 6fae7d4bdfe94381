package forecast

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"bilancio/internal/core"
)

// stubLedger serves canned data for orchestrator tests.
type stubLedger struct {
	history []core.Transaction
	daily   map[string]map[int]core.Money
	balance core.Money
	budget  core.Money
	err     error
}

func (s *stubLedger) ExpensesSince(_ context.Context, _ time.Time, _ int) ([]core.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func (s *stubLedger) DailyExpenseTotals(_ context.Context, year, month int) (map[int]core.Money, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.daily[fmt.Sprintf("%04d-%02d", year, month)], nil
}

func (s *stubLedger) AvailableBalance(context.Context) (core.Money, error) {
	if s.err != nil {
		return core.Money{}, s.err
	}
	return s.balance, nil
}

func (s *stubLedger) MonthlyBudgetTotal(context.Context) (core.Money, error) {
	if s.err != nil {
		return core.Money{}, s.err
	}
	return s.budget, nil
}

func (s *stubLedger) CreditAccounts(context.Context) ([]core.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func fixtureLedger() *stubLedger {
	return &stubLedger{
		history: []core.Transaction{
			// Rent, stable across four months.
			expense(2024, 1, 3, "Affitto", "Casa", 85000),
			expense(2024, 2, 3, "Affitto", "Casa", 85000),
			expense(2024, 3, 3, "Affitto", "Casa", 85000),
			expense(2024, 4, 3, "Affitto", "Casa", 85000),
			// Gym late in the month, not yet paid in April.
			expense(2024, 1, 27, "Palestra", "Salute", 4500),
			expense(2024, 2, 27, "Palestra", "Salute", 4500),
			expense(2024, 3, 27, "Palestra", "Salute", 4500),
			// Variable groceries, distinct merchants so they never group.
			expense(2024, 1, 18, "Esselunga", "Spesa", 12000),
			expense(2024, 2, 22, "Conad", "Spesa", 9000),
			expense(2024, 3, 25, "Carrefour", "Spesa", 15000),
		},
		daily: map[string]map[int]core.Money{
			"2024-04": {3: {Cents: 85000}, 8: {Cents: 4200}},
			"2024-03": {3: {Cents: 85000}, 25: {Cents: 15000}, 27: {Cents: 4500}},
			"2024-02": {3: {Cents: 85000}, 22: {Cents: 9000}, 27: {Cents: 4500}},
		},
		balance: core.Money{Cents: 250000},
		budget:  core.Money{Cents: 150000},
	}
}

func TestPredictAssemblesForecast(t *testing.T) {
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	p := NewPredictor(fixtureLedger(), 3)

	result, err := p.Predict(context.Background(), now)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if result.Year != 2024 || result.Month != 4 || result.Day != 10 {
		t.Errorf("result dated %d-%d-%d, want 2024-4-10", result.Year, result.Month, result.Day)
	}
	if result.DaysRemaining != 20 {
		t.Errorf("DaysRemaining = %d, want 20", result.DaysRemaining)
	}
	if result.SpentSoFar != 892 {
		t.Errorf("SpentSoFar = %v, want 892", result.SpentSoFar)
	}

	// The gym (day 27) is pending; rent (day 3) already happened.
	if len(result.Pending) != 1 || result.Pending[0].Description != "Palestra" {
		t.Fatalf("Pending = %+v, want only Palestra", result.Pending)
	}
	if result.PendingRecurringAmount != 45 {
		t.Errorf("PendingRecurringAmount = %v, want 45", result.PendingRecurringAmount)
	}

	wantRemaining := result.PendingRecurringAmount + result.EstimatedVariableSpending
	if result.TotalPredictedRemaining != wantRemaining {
		t.Errorf("TotalPredictedRemaining = %v, want %v", result.TotalPredictedRemaining, wantRemaining)
	}
	if result.ProjectedEndOfMonth != result.AvailableBalance-wantRemaining {
		t.Errorf("ProjectedEndOfMonth = %v, want balance minus remaining", result.ProjectedEndOfMonth)
	}
	if result.ProjectedTotalSpend != result.SpentSoFar+wantRemaining {
		t.Errorf("ProjectedTotalSpend = %v, want spent plus remaining", result.ProjectedTotalSpend)
	}

	if len(result.Projection) != 30 {
		t.Errorf("projection has %d points, want 30", len(result.Projection))
	}

	// Three completed months of data and two candidates:
	// 20 + min(40, 45) + min(30, 10) = 70.
	if result.Confidence != 70 {
		t.Errorf("Confidence = %d, want 70", result.Confidence)
	}
}

func TestPredictIdempotent(t *testing.T) {
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	p := NewPredictor(fixtureLedger(), 3)

	first, err := p.Predict(context.Background(), now)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	second, err := p.Predict(context.Background(), now)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two Predict() calls with identical inputs disagree")
	}
}

func TestPredictSparseData(t *testing.T) {
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	p := NewPredictor(&stubLedger{}, 3)

	result, err := p.Predict(context.Background(), now)
	if err != nil {
		t.Fatalf("Predict() with empty ledger errored: %v", err)
	}

	if result.Confidence != BaseConfidence {
		t.Errorf("Confidence = %d, want base %d", result.Confidence, BaseConfidence)
	}
	if result.SpentSoFar != 0 || result.PendingRecurringAmount != 0 ||
		result.EstimatedVariableSpending != 0 || result.TotalPredictedRemaining != 0 {
		t.Errorf("sparse data produced non-zero totals: %+v", result)
	}
	if result.WillExceedBudget {
		t.Error("sparse data flagged budget overrun")
	}
	if result.BudgetProgressPercent != 0 {
		t.Errorf("BudgetProgressPercent = %d, want 0 without a budget", result.BudgetProgressPercent)
	}
	if len(result.Projection) != 30 {
		t.Errorf("sparse projection has %d points, want 30", len(result.Projection))
	}
}

func TestPredictPropagatesLedgerFailure(t *testing.T) {
	wantErr := errors.New("ledger offline")
	p := NewPredictor(&stubLedger{err: wantErr}, 3)

	_, err := p.Predict(context.Background(), time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, wantErr) {
		t.Errorf("Predict() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestPredictBudgetOverrun(t *testing.T) {
	l := fixtureLedger()
	l.budget = core.Money{Cents: 50000} // 500 budget, rent alone is 850
	p := NewPredictor(l, 3)

	result, err := p.Predict(context.Background(), time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if !result.WillExceedBudget {
		t.Error("WillExceedBudget = false, want true")
	}
	if result.ProjectedOverspend <= 0 {
		t.Errorf("ProjectedOverspend = %v, want positive", result.ProjectedOverspend)
	}
	if result.BudgetProgressPercent <= 100 {
		t.Errorf("BudgetProgressPercent = %d, want >100", result.BudgetProgressPercent)
	}
}

func TestOverallConfidenceMonotonic(t *testing.T) {
	for months := 0; months < 6; months++ {
		for cands := 0; cands < 10; cands++ {
			base := OverallConfidence(months, cands)
			if base < BaseConfidence || base > 100 {
				t.Fatalf("OverallConfidence(%d, %d) = %d, outside [%d, 100]", months, cands, base, BaseConfidence)
			}
			if next := OverallConfidence(months+1, cands); next < base {
				t.Errorf("confidence dropped when months grew: (%d,%d)=%d -> %d", months, cands, base, next)
			}
			if next := OverallConfidence(months, cands+1); next < base {
				t.Errorf("confidence dropped when candidates grew: (%d,%d)=%d -> %d", months, cands, base, next)
			}
		}
	}
}
