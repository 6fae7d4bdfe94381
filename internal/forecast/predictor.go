package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// Overall forecast confidence coefficients. Like the per-candidate
// score this is a bounded heuristic combining data recency and pattern
// richness, not a statistical confidence interval.
const (
	BaseConfidence          = 20
	ConfidencePerDataMonth  = 15
	DataMonthsConfidenceCap = 40
	ConfidencePerCandidate  = 5
	CandidateConfidenceCap  = 30
)

// FreeToSpendReserveRatio is the share of the variable estimate held
// back when computing free-to-spend. Only half the estimate is treated
// as safe to allocate, reserving headroom against estimation error.
const FreeToSpendReserveRatio = 0.5

// PredictionResult is the assembled month-end forecast. It is
// ephemeral: recomputed on every request, never stored.
type PredictionResult struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`

	AvailableBalance          float64 `json:"availableBalance"`
	SpentSoFar                float64 `json:"spentSoFar"`
	DaysRemaining             int     `json:"daysRemaining"`
	PendingRecurringAmount    float64 `json:"pendingRecurringTotal"`
	EstimatedVariableSpending float64 `json:"estimatedVariableSpending"`
	TotalPredictedRemaining   float64 `json:"totalPredictedRemaining"`
	ProjectedEndOfMonth       float64 `json:"projectedEndOfMonthBalance"`
	FreeToSpend               float64 `json:"freeToSpend"`

	MonthlyBudget         float64 `json:"monthlyBudget"`
	ProjectedTotalSpend   float64 `json:"projectedTotalSpend"`
	ProjectedOverspend    float64 `json:"projectedOverspend"`
	WillExceedBudget      bool    `json:"willExceedBudget"`
	BudgetProgressPercent int     `json:"budgetProgressPercent"`

	Confidence int `json:"confidencePercent"`

	Recurring  []RecurringCandidate `json:"recurring"`
	Pending    []RecurringCandidate `json:"pendingRecurring"`
	Pattern    SpendingPattern      `json:"pattern"`
	Projection []ProjectionPoint    `json:"projection"`
}

// Predictor composes the forecasting engine over an injected ledger.
// It holds no mutable state: Predict is a pure function of the ledger
// snapshot and the explicit now parameter.
type Predictor struct {
	ledger   ledger.Ledger
	lookback int
}

// NewPredictor wires the orchestrator to a ledger. lookbackMonths
// controls the pattern and variable-spending windows; values below 1
// fall back to the default of 3 completed months.
func NewPredictor(l ledger.Ledger, lookbackMonths int) *Predictor {
	if lookbackMonths <= 0 {
		lookbackMonths = DefaultPatternLookbackMonths
	}
	return &Predictor{ledger: l, lookback: lookbackMonths}
}

// Predict builds the full month-end forecast for the month of now.
//
// The five ledger reads are independent, so they run concurrently and
// are joined before any computation starts. A failing read fails the
// whole forecast: a prediction missing one of its inputs is not
// meaningful, and partial degradation would hide that.
func (p *Predictor) Predict(ctx context.Context, now time.Time) (PredictionResult, error) {
	var (
		history []core.Transaction
		daily   [MaxComparisonMonths + 1]map[int]core.Money
		balance core.Money
		budget  core.Money
	)

	currentStart := monthStart(now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = p.ledger.ExpensesSince(gctx, now, RecurringWindowMonths)
		if err != nil {
			return fmt.Errorf("expense history: %w", err)
		}
		return nil
	})
	for i := 0; i <= MaxComparisonMonths; i++ {
		i := i
		g.Go(func() error {
			m := currentStart.AddDate(0, -i, 0)
			totals, err := p.ledger.DailyExpenseTotals(gctx, m.Year(), int(m.Month()))
			if err != nil {
				return fmt.Errorf("daily totals %d-%02d: %w", m.Year(), int(m.Month()), err)
			}
			daily[i] = totals
			return nil
		})
	}
	g.Go(func() error {
		var err error
		balance, err = p.ledger.AvailableBalance(gctx)
		if err != nil {
			return fmt.Errorf("available balance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budget, err = p.ledger.MonthlyBudgetTotal(gctx)
		if err != nil {
			return fmt.Errorf("budget total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return PredictionResult{}, err
	}

	return p.assemble(now, history, daily, balance, budget), nil
}

func (p *Predictor) assemble(now time.Time, history []core.Transaction, daily [MaxComparisonMonths + 1]map[int]core.Money, balance, budget core.Money) PredictionResult {
	today := now.Day()
	currentKey := now.Year()*100 + int(now.Month())

	candidates := DetectRecurring(history)
	pending := PendingRecurring(candidates, today)
	pendingTotal := PendingRecurringTotal(pending)
	pattern := AnalyzePattern(history, now, p.lookback)
	variable := EstimateVariableSpending(history, now, p.lookback)

	currentTotals := toEuroTotals(daily[0])
	spentSoFar := 0.0
	for day, amount := range currentTotals {
		if day <= today {
			spentSoFar += amount
		}
	}

	projInput := ProjectionInput{
		Now:         now,
		DailyTotals: currentTotals,
		DailyRate:   variable.DailyRate,
		Pending:     pending,
	}
	for i := 1; i <= MaxComparisonMonths; i++ {
		m := monthStart(now).AddDate(0, -i, 0)
		projInput.PrevMonths = append(projInput.PrevMonths, PrevMonthTotals{
			Year:   m.Year(),
			Month:  m.Month(),
			Totals: toEuroTotals(daily[i]),
		})
	}

	totalPredictedRemaining := pendingTotal + variable.Remaining
	availableBalance := balance.Euros()
	monthlyBudget := budget.Euros()
	projectedTotalSpend := spentSoFar + totalPredictedRemaining
	projectedOverspend := math.Max(0, projectedTotalSpend-monthlyBudget)

	result := PredictionResult{
		Year:  now.Year(),
		Month: int(now.Month()),
		Day:   today,

		AvailableBalance:          availableBalance,
		SpentSoFar:                spentSoFar,
		DaysRemaining:             daysInMonth(now.Year(), now.Month()) - today,
		PendingRecurringAmount:    pendingTotal,
		EstimatedVariableSpending: variable.Remaining,
		TotalPredictedRemaining:   totalPredictedRemaining,
		ProjectedEndOfMonth:       availableBalance - totalPredictedRemaining,
		FreeToSpend:               math.Max(0, availableBalance-pendingTotal-FreeToSpendReserveRatio*variable.Remaining),

		MonthlyBudget:       monthlyBudget,
		ProjectedTotalSpend: projectedTotalSpend,
		ProjectedOverspend:  projectedOverspend,
		WillExceedBudget:    monthlyBudget > 0 && projectedOverspend > 0,

		Confidence: OverallConfidence(completedDataMonths(history, currentKey), len(candidates)),

		Recurring:  candidates,
		Pending:    pending,
		Pattern:    pattern,
		Projection: BuildDailyProjection(projInput),
	}
	if monthlyBudget > 0 {
		result.BudgetProgressPercent = int(math.Round(projectedTotalSpend / monthlyBudget * 100))
	}

	return result
}

// OverallConfidence is a deterministic function of how many completed
// months of data exist and how many recurring candidates were found.
// With zero history it bottoms out at the base term.
func OverallConfidence(monthsOfData, candidateCount int) int {
	months := monthsOfData * ConfidencePerDataMonth
	if months > DataMonthsConfidenceCap {
		months = DataMonthsConfidenceCap
	}
	cands := candidateCount * ConfidencePerCandidate
	if cands > CandidateConfidenceCap {
		cands = CandidateConfidenceCap
	}
	score := BaseConfidence + months + cands
	if score > 100 {
		score = 100
	}
	return score
}

// completedDataMonths counts distinct months with expense data,
// excluding the in-progress month.
func completedDataMonths(txs []core.Transaction, currentKey int) int {
	months := make(map[int]bool)
	for _, tx := range txs {
		if tx.Kind != core.Expense || !tx.Computable {
			continue
		}
		if key := tx.MonthKey(); key != currentKey {
			months[key] = true
		}
	}
	return len(months)
}

func toEuroTotals(in map[int]core.Money) map[int]float64 {
	out := make(map[int]float64, len(in))
	for day, m := range in {
		out[day] = m.Euros()
	}
	return out
}
