package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
)

// parseTransactionRow maps one spreadsheet row to a transaction.
// Columns: Date (YYYY-MM-DD), Kind, Description, Amount, Category,
// Computable, Account, ApplicableMonth (YYYY-MM). Rows that fail
// validation are dropped, which also covers header rows.
func parseTransactionRow(cols []string) (core.Transaction, bool) {
	if len(cols) < 5 {
		return core.Transaction{}, false
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(cols[0]))
	if err != nil {
		return core.Transaction{}, false
	}
	cents, err := core.ParseDecimalToCents(cols[3])
	if err != nil {
		return core.Transaction{}, false
	}

	tx := core.Transaction{
		Date:        core.Date{Time: date},
		Kind:        core.TransactionKind(strings.ToLower(strings.TrimSpace(cols[1]))),
		Description: strings.TrimSpace(cols[2]),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(cols[4]),
		Computable:  true,
	}
	if len(cols) >= 6 && strings.TrimSpace(cols[5]) != "" {
		tx.Computable = parseFlag(cols[5])
	}
	if len(cols) >= 7 {
		tx.AccountID = strings.TrimSpace(cols[6])
	}
	if len(cols) >= 8 {
		if m, err := time.Parse("2006-01", strings.TrimSpace(cols[7])); err == nil {
			tx.ApplicableMonth = core.NewDate(m.Year(), int(m.Month()), 1)
		}
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, false
	}
	return tx, true
}

// parseAccountRow maps one spreadsheet row to an account.
// Columns: ID, Kind, Balance, CreditLimit, ExcludeFromStats.
func parseAccountRow(cols []string) (core.Account, bool) {
	if len(cols) < 3 {
		return core.Account{}, false
	}
	balance, ok := parseSignedEuros(cols[2])
	if !ok {
		return core.Account{}, false
	}

	a := core.Account{
		ID:      strings.TrimSpace(cols[0]),
		Kind:    core.AccountKind(strings.ToLower(strings.TrimSpace(cols[1]))),
		Balance: core.Money{Cents: balance},
	}
	if len(cols) >= 4 {
		if limit, ok := parseSignedEuros(cols[3]); ok {
			a.CreditLimit = core.Money{Cents: limit}
		}
	}
	if len(cols) >= 5 {
		a.ExcludeFromStats = parseFlag(cols[4])
	}

	if err := a.Validate(); err != nil {
		return core.Account{}, false
	}
	return a, true
}

// parseBudgetRow maps one spreadsheet row to a category budget.
// Columns: Category, Cap, Active. A missing Active column means
// active.
func parseBudgetRow(cols []string) (core.CategoryBudget, bool) {
	if len(cols) < 2 {
		return core.CategoryBudget{}, false
	}
	capCents, ok := parseSignedEuros(cols[1])
	if !ok || capCents < 0 {
		return core.CategoryBudget{}, false
	}

	b := core.CategoryBudget{
		Category: strings.TrimSpace(cols[0]),
		Cap:      core.Money{Cents: capCents},
		Active:   true,
	}
	if len(cols) >= 3 && strings.TrimSpace(cols[2]) != "" {
		b.Active = parseFlag(cols[2])
	}

	if err := b.Validate(); err != nil {
		return core.CategoryBudget{}, false
	}
	return b, true
}

// parseSignedEuros parses balances, limits and caps, which unlike
// transaction amounts may be negative or zero.
func parseSignedEuros(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return core.FromEuros(f).Cents, true
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "si", "sì", "x":
		return true
	}
	return false
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
