package memory

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
)

// NewFromFiles builds a store seeded from CSV files under base:
// seed_accounts.csv, seed_transactions.csv and seed_budgets.csv.
// Missing files and malformed rows are skipped, so a header line or an
// absent directory just yields a smaller (or empty) store.
func NewFromFiles(base string) *Store {
	s := New()

	for _, row := range readRows(filepath.Join(base, "seed_accounts.csv")) {
		if a, ok := parseAccountSeed(row); ok {
			_ = s.UpsertAccount(a)
		}
	}
	for _, row := range readRows(filepath.Join(base, "seed_transactions.csv")) {
		if tx, ok := parseTransactionSeed(row); ok {
			_ = s.AddTransaction(tx)
		}
	}
	for _, row := range readRows(filepath.Join(base, "seed_budgets.csv")) {
		if b, ok := parseBudgetSeed(row); ok {
			_ = s.SetBudget(b)
		}
	}
	return s
}

func readRows(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil
	}
	return rows
}

// parseAccountSeed parses id,kind,balance_cents,credit_limit_cents,exclude.
func parseAccountSeed(row []string) (core.Account, bool) {
	if len(row) < 3 {
		return core.Account{}, false
	}
	balance, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil {
		return core.Account{}, false
	}
	a := core.Account{
		ID:      strings.TrimSpace(row[0]),
		Kind:    core.AccountKind(strings.ToLower(strings.TrimSpace(row[1]))),
		Balance: core.Money{Cents: balance},
	}
	if len(row) > 3 {
		if limit, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64); err == nil {
			a.CreditLimit = core.Money{Cents: limit}
		}
	}
	if len(row) > 4 {
		a.ExcludeFromStats = seedFlag(row[4])
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, false
	}
	return a, true
}

// parseTransactionSeed parses
// date,kind,description,amount_cents,category,computable,account_id,applicable_month.
func parseTransactionSeed(row []string) (core.Transaction, bool) {
	if len(row) < 5 {
		return core.Transaction{}, false
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
	if err != nil {
		return core.Transaction{}, false
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
	if err != nil {
		return core.Transaction{}, false
	}
	tx := core.Transaction{
		Date:        core.Date{Time: date},
		Kind:        core.TransactionKind(strings.ToLower(strings.TrimSpace(row[1]))),
		Description: strings.TrimSpace(row[2]),
		Amount:      core.Money{Cents: amount},
		Category:    strings.TrimSpace(row[4]),
		Computable:  true,
	}
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		tx.Computable = seedFlag(row[5])
	}
	if len(row) > 6 {
		tx.AccountID = strings.TrimSpace(row[6])
	}
	if len(row) > 7 && strings.TrimSpace(row[7]) != "" {
		applicable, err := time.Parse("2006-01", strings.TrimSpace(row[7]))
		if err != nil {
			return core.Transaction{}, false
		}
		tx.ApplicableMonth = core.Date{Time: applicable}
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, false
	}
	return tx, true
}

// parseBudgetSeed parses category,cap_cents,active.
func parseBudgetSeed(row []string) (core.CategoryBudget, bool) {
	if len(row) < 2 {
		return core.CategoryBudget{}, false
	}
	capCents, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
	if err != nil {
		return core.CategoryBudget{}, false
	}
	b := core.CategoryBudget{
		Category: strings.TrimSpace(row[0]),
		Cap:      core.Money{Cents: capCents},
		Active:   true,
	}
	if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
		b.Active = seedFlag(row[2])
	}
	if err := b.Validate(); err != nil {
		return core.CategoryBudget{}, false
	}
	return b, true
}

func seedFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "si", "sì", "x":
		return true
	default:
		return false
	}
}
