// Package sheets is a read-only ledger backend over a Google
// spreadsheet. Transactions, accounts and budgets each live on their
// own sheet; rows are parsed best-effort and malformed ones are
// skipped so a stray header or note never breaks a forecast.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	accountsSheet     string
	budgetsSheet      string
}

var _ ledger.Ledger = (*Client)(nil)

// New creates a Sheets-backed ledger over the given spreadsheet.
// Sheet names left empty fall back to Transactions, Accounts and
// Budgets. Service account credentials come from the environment.
func New(ctx context.Context, spreadsheetID, transactionsSheet, accountsSheet, budgetsSheet string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	if transactionsSheet = strings.TrimSpace(transactionsSheet); transactionsSheet == "" {
		transactionsSheet = "Transactions"
	}
	if accountsSheet = strings.TrimSpace(accountsSheet); accountsSheet == "" {
		accountsSheet = "Accounts"
	}
	if budgetsSheet = strings.TrimSpace(budgetsSheet); budgetsSheet == "" {
		budgetsSheet = "Budgets"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: transactionsSheet,
		accountsSheet:     accountsSheet,
		budgetsSheet:      budgetsSheet,
	}, nil
}

// newSheetsService initializes a Sheets service using service account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")))
	if len(credentialsJSON) == 0 {
		file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
		if file == "" {
			file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		}
		if file == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExpensesSince implements ledger.ExpenseHistoryReader.
func (c *Client) ExpensesSince(ctx context.Context, now time.Time, monthsBack int) ([]core.Transaction, error) {
	if monthsBack < 1 {
		monthsBack = 1
	}
	txs, err := c.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	excluded, err := c.excludedAccounts(ctx)
	if err != nil {
		return nil, err
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthsBack - 1), 0)
	minKey := first.Year()*100 + int(first.Month())
	maxKey := now.Year()*100 + int(now.Month())

	var out []core.Transaction
	for _, tx := range txs {
		if tx.Kind != core.Expense || !tx.Computable || excluded[tx.AccountID] {
			continue
		}
		if key := tx.MonthKey(); key >= minKey && key <= maxKey {
			out = append(out, tx)
		}
	}
	return out, nil
}

// DailyExpenseTotals implements ledger.DailyTotalsReader.
func (c *Client) DailyExpenseTotals(ctx context.Context, year, month int) (map[int]core.Money, error) {
	txs, err := c.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	excluded, err := c.excludedAccounts(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[int]core.Money)
	for _, tx := range txs {
		if tx.Kind != core.Expense || !tx.Computable || excluded[tx.AccountID] {
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

// AvailableBalance implements ledger.BalanceReader.
func (c *Client) AvailableBalance(ctx context.Context) (core.Money, error) {
	accounts, err := c.loadAccounts(ctx)
	if err != nil {
		return core.Money{}, err
	}
	var total int64
	for _, a := range accounts {
		if a.ExcludeFromStats {
			continue
		}
		total += a.Balance.Cents
	}
	return core.Money{Cents: total}, nil
}

// MonthlyBudgetTotal implements ledger.BudgetReader.
func (c *Client) MonthlyBudgetTotal(ctx context.Context) (core.Money, error) {
	if c.svc == nil {
		return core.Money{}, errors.New("sheets service not initialized")
	}
	rows, err := c.readRange(ctx, c.budgetsSheet, "A:C")
	if err != nil {
		return core.Money{}, err
	}
	var total int64
	for _, row := range rows {
		b, ok := parseBudgetRow(toStrings(row))
		if !ok || !b.Active {
			continue
		}
		total += b.Cap.Cents
	}
	return core.Money{Cents: total}, nil
}

// CreditAccounts implements ledger.CreditAccountsReader.
func (c *Client) CreditAccounts(ctx context.Context) ([]core.Account, error) {
	accounts, err := c.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Account
	for _, a := range accounts {
		if a.Kind == core.Credit {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *Client) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rows, err := c.readRange(ctx, c.transactionsSheet, "A:H")
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	skipped := 0
	for _, row := range rows {
		tx, ok := parseTransactionRow(toStrings(row))
		if !ok {
			skipped++
			continue
		}
		out = append(out, tx)
	}
	if skipped > 1 {
		// One skipped row is the header; more means malformed data.
		slog.WarnContext(ctx, "Skipped malformed transaction rows",
			"sheet", c.transactionsSheet, "skipped", skipped-1)
	}
	return out, nil
}

func (c *Client) loadAccounts(ctx context.Context) ([]core.Account, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rows, err := c.readRange(ctx, c.accountsSheet, "A:E")
	if err != nil {
		return nil, err
	}
	var out []core.Account
	for _, row := range rows {
		a, ok := parseAccountRow(toStrings(row))
		if !ok {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Client) excludedAccounts(ctx context.Context) (map[string]bool, error) {
	accounts, err := c.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]bool)
	for _, a := range accounts {
		if a.ExcludeFromStats {
			excluded[a.ID] = true
		}
	}
	return excluded, nil
}

func (c *Client) readRange(ctx context.Context, sheetName, cols string) ([][]any, error) {
	rng := fmt.Sprintf("%s!%s", sheetName, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}
