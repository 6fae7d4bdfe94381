// Package ledger defines the read-only query ports the forecasting
// engine consumes. Any transaction source (SQLite, Google Sheets, an
// in-memory store) can back them.
package ledger

import (
	"context"
	"time"

	"bilancio/internal/core"
)

// Ports for outbound ledger adapters.
type (
	// ExpenseHistoryReader returns computable expense transactions from
	// non-excluded accounts over a trailing month window.
	ExpenseHistoryReader interface {
		// ExpensesSince returns all computable expenses in the trailing
		// monthsBack months, the month of now included.
		ExpensesSince(ctx context.Context, now time.Time, monthsBack int) ([]core.Transaction, error)
	}

	// DailyTotalsReader provides per-day expense sums for one month,
	// used to build cumulative actual-so-far series.
	DailyTotalsReader interface {
		DailyExpenseTotals(ctx context.Context, year, month int) (map[int]core.Money, error)
	}

	// BalanceReader returns the sum of balances across accounts not
	// flagged exclude-from-stats.
	BalanceReader interface {
		AvailableBalance(ctx context.Context) (core.Money, error)
	}

	// BudgetReader returns the sum of active category budget caps.
	BudgetReader interface {
		MonthlyBudgetTotal(ctx context.Context) (core.Money, error)
	}

	// CreditAccountsReader lists credit accounts for debt payoff runs.
	CreditAccountsReader interface {
		CreditAccounts(ctx context.Context) ([]core.Account, error)
	}
)

// Ledger is the full query surface the prediction orchestrator needs.
type Ledger interface {
	ExpenseHistoryReader
	DailyTotalsReader
	BalanceReader
	BudgetReader
	CreditAccountsReader
}
