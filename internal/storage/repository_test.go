package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bilancio/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "bilancio.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	accounts := []core.Account{
		{ID: "conto", Kind: core.Checking, Balance: core.Money{Cents: 150000}},
		{ID: "fondo", Kind: core.Savings, Balance: core.Money{Cents: 900000}, ExcludeFromStats: true},
		{ID: "carta", Kind: core.Credit, Balance: core.Money{Cents: -50000}, CreditLimit: core.Money{Cents: 200000}},
	}
	for _, a := range accounts {
		if err := repo.UpsertAccount(ctx, a); err != nil {
			t.Fatalf("UpsertAccount(%s): %v", a.ID, err)
		}
	}

	txs := []core.Transaction{
		{Date: core.NewDate(2024, 3, 5), Kind: core.Expense, Description: "Affitto", Amount: core.Money{Cents: 85000}, Category: "Casa", Computable: true, AccountID: "conto"},
		{Date: core.NewDate(2024, 3, 5), Kind: core.Expense, Description: "Luce", Amount: core.Money{Cents: 4000}, Category: "Casa", Computable: true, AccountID: "conto"},
		{Date: core.NewDate(2024, 3, 9), Kind: core.Expense, Description: "Cena", Amount: core.Money{Cents: 3500}, Category: "Fuori", Computable: false, AccountID: "conto"},
		{Date: core.NewDate(2024, 3, 14), Kind: core.Expense, Description: "Vacanza", Amount: core.Money{Cents: 60000}, Category: "Viaggi", Computable: true, AccountID: "fondo"},
		{Date: core.NewDate(2024, 3, 27), Kind: core.Income, Description: "Stipendio", Amount: core.Money{Cents: 230000}, Category: "Lavoro", Computable: true, AccountID: "conto"},
	}
	for _, tx := range txs {
		if _, err := repo.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("InsertTransaction(%s): %v", tx.Description, err)
		}
	}

	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	history, err := repo.ExpensesSince(ctx, now, 4)
	if err != nil {
		t.Fatalf("ExpensesSince() error = %v", err)
	}
	// Rent and the utility bill survive; the dinner is not computable,
	// the holiday is on an excluded account, the salary is income.
	if len(history) != 2 {
		t.Fatalf("ExpensesSince() returned %d transactions, want 2: %+v", len(history), history)
	}

	totals, err := repo.DailyExpenseTotals(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("DailyExpenseTotals() error = %v", err)
	}
	if len(totals) != 1 || totals[5].Cents != 89000 {
		t.Errorf("DailyExpenseTotals() = %v, want day 5 = 89000 cents", totals)
	}

	balance, err := repo.AvailableBalance(ctx)
	if err != nil {
		t.Fatalf("AvailableBalance() error = %v", err)
	}
	if balance.Cents != 100000 {
		t.Errorf("AvailableBalance() = %d cents, want 100000", balance.Cents)
	}

	credits, err := repo.CreditAccounts(ctx)
	if err != nil {
		t.Fatalf("CreditAccounts() error = %v", err)
	}
	if len(credits) != 1 || credits[0].ID != "carta" || credits[0].Balance.Cents != -50000 {
		t.Errorf("CreditAccounts() = %+v, want carta with -50000 cents", credits)
	}
}

func TestApplicableMonthSurvivesStorage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := core.Transaction{
		Date:            core.NewDate(2023, 12, 28),
		Kind:            core.Expense,
		Description:     "Affitto gennaio",
		Amount:          core.Money{Cents: 85000},
		Category:        "Casa",
		Computable:      true,
		ApplicableMonth: core.NewDate(2024, 1, 1),
	}
	if _, err := repo.InsertTransaction(ctx, tx); err != nil {
		t.Fatalf("InsertTransaction() error = %v", err)
	}

	// A one-month January window must include the December payment.
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	history, err := repo.ExpensesSince(ctx, now, 1)
	if err != nil {
		t.Fatalf("ExpensesSince() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("ExpensesSince() returned %d transactions, want 1", len(history))
	}
	if got := history[0].MonthKey(); got != 202401 {
		t.Errorf("MonthKey() = %d, want 202401", got)
	}
}

func TestBudgetUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertBudget(ctx, core.CategoryBudget{Category: "Casa", Cap: core.Money{Cents: 90000}, Active: true}); err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}
	if err := repo.UpsertBudget(ctx, core.CategoryBudget{Category: "Spesa", Cap: core.Money{Cents: 40000}, Active: true}); err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}
	// Deactivating replaces the earlier row.
	if err := repo.UpsertBudget(ctx, core.CategoryBudget{Category: "Spesa", Cap: core.Money{Cents: 40000}, Active: false}); err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}

	total, err := repo.MonthlyBudgetTotal(ctx)
	if err != nil {
		t.Fatalf("MonthlyBudgetTotal() error = %v", err)
	}
	if total.Cents != 90000 {
		t.Errorf("MonthlyBudgetTotal() = %d cents, want 90000", total.Cents)
	}
}

func TestInsertTransactionRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.InsertTransaction(context.Background(), core.Transaction{
		Date: core.NewDate(2024, 3, 5),
		Kind: core.Expense,
	})
	if err == nil {
		t.Error("InsertTransaction() accepted an incomplete transaction")
	}
}
