// Package memory is an in-memory ledger backend. It serves tests and
// local runs without external storage; every query port is backed by
// plain slices behind a mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bilancio/internal/core"
)

type Store struct {
	mu       sync.Mutex
	txs      []core.Transaction
	accounts map[string]core.Account
	budgets  map[string]core.CategoryBudget
}

func New() *Store {
	return &Store{
		accounts: make(map[string]core.Account),
		budgets:  make(map[string]core.CategoryBudget),
	}
}

// AddTransaction validates and stores a transaction.
func (s *Store) AddTransaction(tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return nil
}

// UpsertAccount validates and stores an account, replacing any
// existing account with the same ID.
func (s *Store) UpsertAccount(a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}

// SetBudget validates and stores a category budget, replacing any
// existing budget for the same category.
func (s *Store) SetBudget(b core.CategoryBudget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.Category] = b
	return nil
}

// ExpensesSince returns computable expenses from non-excluded accounts
// whose effective month falls in the trailing monthsBack months, the
// month of now included.
func (s *Store) ExpensesSince(_ context.Context, now time.Time, monthsBack int) ([]core.Transaction, error) {
	if monthsBack < 1 {
		monthsBack = 1
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthsBack - 1), 0)
	minKey := first.Year()*100 + int(first.Month())
	maxKey := now.Year()*100 + int(now.Month())

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.Kind != core.Expense || !tx.Computable || s.excludedLocked(tx.AccountID) {
			continue
		}
		if key := tx.MonthKey(); key >= minKey && key <= maxKey {
			out = append(out, tx)
		}
	}
	return out, nil
}

// DailyExpenseTotals sums computable expenses from non-excluded
// accounts per day of the given calendar month. Days with no spending
// are absent from the map.
func (s *Store) DailyExpenseTotals(_ context.Context, year, month int) (map[int]core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[int]core.Money)
	for _, tx := range s.txs {
		if tx.Kind != core.Expense || !tx.Computable || s.excludedLocked(tx.AccountID) {
			continue
		}
		if tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}
		day := tx.Date.Day()
		totals[day] = core.Money{Cents: totals[day].Cents + tx.Amount.Cents}
	}
	return totals, nil
}

// AvailableBalance sums balances across accounts not flagged
// exclude-from-stats. With no accounts it returns zero.
func (s *Store) AvailableBalance(context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, a := range s.accounts {
		if a.ExcludeFromStats {
			continue
		}
		total += a.Balance.Cents
	}
	return core.Money{Cents: total}, nil
}

// MonthlyBudgetTotal sums the caps of active category budgets.
func (s *Store) MonthlyBudgetTotal(context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, b := range s.budgets {
		if !b.Active {
			continue
		}
		total += b.Cap.Cents
	}
	return core.Money{Cents: total}, nil
}

// CreditAccounts returns credit accounts sorted by ID.
func (s *Store) CreditAccounts(context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.Kind == core.Credit {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// excludedLocked reports whether the transaction's account is flagged
// exclude-from-stats. Transactions without an account are kept.
func (s *Store) excludedLocked(accountID string) bool {
	if accountID == "" {
		return false
	}
	a, ok := s.accounts[accountID]
	return ok && a.ExcludeFromStats
}
