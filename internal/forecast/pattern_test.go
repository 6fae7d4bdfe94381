package forecast

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestAnalyzePatternBuckets(t *testing.T) {
	now := time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		// January: front-loaded.
		expense(2024, 1, 2, "Spesa", "Spesa", 10000),
		expense(2024, 1, 8, "Spesa", "Spesa", 5000),
		// February: mid-month.
		expense(2024, 2, 15, "Spesa", "Spesa", 6000),
		// March: back-loaded, including the last day.
		expense(2024, 3, 25, "Spesa", "Spesa", 4000),
		expense(2024, 3, 31, "Spesa", "Spesa", 2000),
		// Current month must be excluded entirely.
		expense(2024, 4, 2, "Spesa", "Spesa", 99999),
		// Too old for the 3-month window.
		expense(2023, 12, 5, "Spesa", "Spesa", 88888),
	}

	p := AnalyzePattern(txs, now, DefaultPatternLookbackMonths)

	if p.Months != 3 {
		t.Fatalf("Months = %d, want 3", p.Months)
	}
	for _, b := range []PeriodBucket{p.Early, p.Mid, p.Late} {
		if len(b.MonthTotals) != 3 {
			t.Fatalf("bucket has %d month totals, want 3", len(b.MonthTotals))
		}
	}

	// Chronological order: Jan, Feb, Mar.
	wantEarly := []float64{150, 0, 0}
	wantMid := []float64{0, 60, 0}
	wantLate := []float64{0, 0, 60}
	for i := range wantEarly {
		if p.Early.MonthTotals[i] != wantEarly[i] {
			t.Errorf("Early[%d] = %v, want %v", i, p.Early.MonthTotals[i], wantEarly[i])
		}
		if p.Mid.MonthTotals[i] != wantMid[i] {
			t.Errorf("Mid[%d] = %v, want %v", i, p.Mid.MonthTotals[i], wantMid[i])
		}
		if p.Late.MonthTotals[i] != wantLate[i] {
			t.Errorf("Late[%d] = %v, want %v", i, p.Late.MonthTotals[i], wantLate[i])
		}
	}

	if p.Early.Average != 50 {
		t.Errorf("Early.Average = %v, want 50", p.Early.Average)
	}
	if p.Mid.Average != 20 {
		t.Errorf("Mid.Average = %v, want 20", p.Mid.Average)
	}
	if p.Late.Average != 20 {
		t.Errorf("Late.Average = %v, want 20", p.Late.Average)
	}
}

func TestAnalyzePatternNoHistory(t *testing.T) {
	now := time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)
	p := AnalyzePattern(nil, now, 0)

	if p.Months != DefaultPatternLookbackMonths {
		t.Errorf("Months = %d, want default %d", p.Months, DefaultPatternLookbackMonths)
	}
	if p.Early.Average != 0 || p.Mid.Average != 0 || p.Late.Average != 0 {
		t.Errorf("empty history produced non-zero averages: %v/%v/%v",
			p.Early.Average, p.Mid.Average, p.Late.Average)
	}
}

func TestAnalyzePatternYearBoundary(t *testing.T) {
	// Looking back from February crosses into the previous year.
	now := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		expense(2023, 11, 5, "Spesa", "Spesa", 3000),
		expense(2023, 12, 22, "Spesa", "Spesa", 6000),
		expense(2024, 1, 15, "Spesa", "Spesa", 9000),
	}

	p := AnalyzePattern(txs, now, 3)

	if p.Early.MonthTotals[0] != 30 {
		t.Errorf("Nov early total = %v, want 30", p.Early.MonthTotals[0])
	}
	if p.Late.MonthTotals[1] != 60 {
		t.Errorf("Dec late total = %v, want 60", p.Late.MonthTotals[1])
	}
	if p.Mid.MonthTotals[2] != 90 {
		t.Errorf("Jan mid total = %v, want 90", p.Mid.MonthTotals[2])
	}
}
