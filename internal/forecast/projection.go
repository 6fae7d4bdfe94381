package forecast

import (
	"time"
)

// ProjectionBandRatio is the fixed ±15% envelope drawn around
// predicted values. It is a visual uncertainty band, not derived from
// the variance of the underlying recurring items.
const ProjectionBandRatio = 0.15

// MaxComparisonMonths caps how many previous months ride along the
// projection series for visual comparison.
const MaxComparisonMonths = 2

// ProjectionPoint is one day of the month in the projection series.
// Exactly one of Actual and Predicted is set, split at today.
type ProjectionPoint struct {
	Day           int      `json:"day"`
	Actual        *float64 `json:"actual"`
	Predicted     *float64 `json:"predicted"`
	PredictedLow  float64  `json:"predictedLow"`
	PredictedHigh float64  `json:"predictedHigh"`
	PrevMonth1    *float64 `json:"prevMonth1,omitempty"`
	PrevMonth2    *float64 `json:"prevMonth2,omitempty"`
}

// ProjectionInput carries everything the builder needs; the builder
// itself never touches the ledger or the clock.
type ProjectionInput struct {
	// Now fixes the current month and the actual/predicted split day.
	Now time.Time
	// DailyTotals holds the current month's per-day expense totals in
	// euros, keyed by day of month. Days without spending are absent.
	DailyTotals map[int]float64
	// DailyRate is the estimated variable spend per remaining day.
	DailyRate float64
	// Pending lists recurring candidates still expected this month;
	// each is slotted into the day its ExpectedDay falls on.
	Pending []RecurringCandidate
	// PrevMonths holds up to two previous months' per-day totals,
	// most recent first, for the comparison series.
	PrevMonths []PrevMonthTotals
}

// PrevMonthTotals is one earlier month's per-day expense totals.
type PrevMonthTotals struct {
	Year   int
	Month  time.Month
	Totals map[int]float64
}

// BuildDailyProjection produces the day-by-day cumulative spend series
// for the month of in.Now: actual cumulative spend through today
// (carrying the last known value over no-spend days), predicted
// cumulative spend with a ±15% band afterwards, and previous-month
// comparison values aligned by calendar day index.
func BuildDailyProjection(in ProjectionInput) []ProjectionPoint {
	today := in.Now.Day()
	days := daysInMonth(in.Now.Year(), in.Now.Month())

	points := make([]ProjectionPoint, days)

	cumulative := 0.0
	for day := 1; day <= days; day++ {
		p := ProjectionPoint{Day: day}
		if day <= today {
			cumulative += in.DailyTotals[day]
			actual := cumulative
			p.Actual = &actual
		} else {
			predicted := cumulative +
				float64(day-today)*in.DailyRate +
				pendingDueThrough(in.Pending, today, day)
			p.Predicted = &predicted
			p.PredictedLow = predicted * (1 - ProjectionBandRatio)
			p.PredictedHigh = predicted * (1 + ProjectionBandRatio)
		}
		points[day-1] = p
	}

	attachComparisonSeries(points, in.PrevMonths)

	return points
}

// pendingDueThrough sums pending recurring amounts expected in the
// half-open interval (today, day].
func pendingDueThrough(pending []RecurringCandidate, today, day int) float64 {
	sum := 0.0
	for _, c := range pending {
		if c.ExpectedDay > float64(today) && c.ExpectedDay <= float64(day) {
			sum += c.EstimatedAmount
		}
	}
	return sum
}

// attachComparisonSeries adds up to two previous months' cumulative
// series, matched by calendar day. A shorter previous month simply
// stops early; no weekday alignment is attempted.
func attachComparisonSeries(points []ProjectionPoint, prev []PrevMonthTotals) {
	for n, pm := range prev {
		if n >= MaxComparisonMonths {
			break
		}
		length := daysInMonth(pm.Year, pm.Month)
		cumulative := 0.0
		for i := range points {
			day := points[i].Day
			if day > length {
				break
			}
			cumulative += pm.Totals[day]
			value := cumulative
			switch n {
			case 0:
				points[i].PrevMonth1 = &value
			case 1:
				points[i].PrevMonth2 = &value
			}
		}
	}
}
