// Package storage is the SQLite ledger backend. The repository
// implements every read port in internal/ledger plus the write
// helpers used to record transactions, accounts and budgets.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// effectiveMonthKey is the year*100+month a transaction counts toward,
// honoring the applicable-month override columns when set.
const effectiveMonthKey = `(COALESCE(t.applicable_year, CAST(strftime('%Y', t.tx_date) AS INTEGER)) * 100
	+ COALESCE(t.applicable_month, CAST(strftime('%m', t.tx_date) AS INTEGER)))`

// ExpensesSince implements ledger.ExpenseHistoryReader. The window is
// whole calendar months, the month of now included, and transactions
// on excluded accounts never show up.
func (r *SQLiteRepository) ExpensesSince(ctx context.Context, now time.Time, monthsBack int) ([]core.Transaction, error) {
	if monthsBack < 1 {
		monthsBack = 1
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthsBack - 1), 0)
	minKey := first.Year()*100 + int(first.Month())
	maxKey := now.Year()*100 + int(now.Month())

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.tx_date, t.kind, t.description, t.amount_cents, t.category,
		       t.computable, COALESCE(t.account_id, ''), t.applicable_year, t.applicable_month
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.kind = 'expense'
		  AND t.computable = 1
		  AND COALESCE(a.exclude_from_stats, 0) = 0
		  AND `+effectiveMonthKey+` BETWEEN ? AND ?
		ORDER BY t.tx_date, t.id`, minKey, maxKey)
	if err != nil {
		return nil, fmt.Errorf("query expense history: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense history: %w", err)
	}
	return out, nil
}

// DailyExpenseTotals implements ledger.DailyTotalsReader. Days with no
// spending are absent from the map.
func (r *SQLiteRepository) DailyExpenseTotals(ctx context.Context, year, month int) (map[int]core.Money, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%d', t.tx_date) AS INTEGER) AS day, SUM(t.amount_cents)
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.kind = 'expense'
		  AND t.computable = 1
		  AND COALESCE(a.exclude_from_stats, 0) = 0
		  AND strftime('%Y-%m', t.tx_date) = ?
		GROUP BY day`, fmt.Sprintf("%04d-%02d", year, month))
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[int]core.Money)
	for rows.Next() {
		var day int
		var cents int64
		if err := rows.Scan(&day, &cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals[day] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily totals: %w", err)
	}
	return totals, nil
}

// AvailableBalance implements ledger.BalanceReader.
func (r *SQLiteRepository) AvailableBalance(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE exclude_from_stats = 0`,
	).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("query available balance: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// MonthlyBudgetTotal implements ledger.BudgetReader.
func (r *SQLiteRepository) MonthlyBudgetTotal(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cap_cents), 0) FROM category_budgets WHERE active = 1`,
	).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("query budget total: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CreditAccounts implements ledger.CreditAccountsReader.
func (r *SQLiteRepository) CreditAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, balance_cents, credit_limit_cents, exclude_from_stats
		FROM accounts
		WHERE kind = 'credit'
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query credit accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		var kind string
		var excluded int
		if err := rows.Scan(&a.ID, &kind, &a.Balance.Cents, &a.CreditLimit.Cents, &excluded); err != nil {
			return nil, fmt.Errorf("scan credit account: %w", err)
		}
		a.Kind = core.AccountKind(kind)
		a.ExcludeFromStats = excluded != 0
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit accounts: %w", err)
	}
	return out, nil
}

// InsertTransaction validates and records a transaction, returning the
// assigned row ID.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	var applicableYear, applicableMonth sql.NullInt64
	if !tx.ApplicableMonth.IsEmpty() {
		applicableYear = sql.NullInt64{Int64: int64(tx.ApplicableMonth.Year()), Valid: true}
		applicableMonth = sql.NullInt64{Int64: int64(tx.ApplicableMonth.Month()), Valid: true}
	}
	var accountID sql.NullString
	if tx.AccountID != "" {
		accountID = sql.NullString{String: tx.AccountID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (tx_date, kind, description, amount_cents, category, computable, account_id, applicable_year, applicable_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Date.Format("2006-01-02"), string(tx.Kind), tx.Description, tx.Amount.Cents,
		tx.Category, boolToInt(tx.Computable), accountID, applicableYear, applicableMonth)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"kind", tx.Kind,
		"date", tx.Date.Format("2006-01-02"))

	return id, nil
}

// UpsertAccount validates and records an account, replacing any
// existing row with the same ID.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, kind, balance_cents, credit_limit_cents, exclude_from_stats)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			balance_cents = excluded.balance_cents,
			credit_limit_cents = excluded.credit_limit_cents,
			exclude_from_stats = excluded.exclude_from_stats`,
		a.ID, string(a.Kind), a.Balance.Cents, a.CreditLimit.Cents, boolToInt(a.ExcludeFromStats))
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// UpsertBudget validates and records a category budget.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.CategoryBudget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO category_budgets (category, cap_cents, active)
		VALUES (?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			cap_cents = excluded.cap_cents,
			active = excluded.active`,
		b.Category, b.Cap.Cents, boolToInt(b.Active))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		tx              core.Transaction
		rawDate         string
		kind            string
		computable      int
		applicableYear  sql.NullInt64
		applicableMonth sql.NullInt64
	)
	err := rows.Scan(&rawDate, &kind, &tx.Description, &tx.Amount.Cents, &tx.Category,
		&computable, &tx.AccountID, &applicableYear, &applicableMonth)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	parsed, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", rawDate, err)
	}
	tx.Date = core.Date{Time: parsed}
	tx.Kind = core.TransactionKind(kind)
	tx.Computable = computable != 0
	if applicableYear.Valid && applicableMonth.Valid {
		tx.ApplicableMonth = core.NewDate(int(applicableYear.Int64), int(applicableMonth.Int64), 1)
	}
	return tx, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
