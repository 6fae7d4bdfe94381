package backend

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/ledger/memory"
	"bilancio/internal/ledger/sheets"
	"bilancio/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new ledger factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateLedger implements Factory.CreateLedger.
func (f *DefaultFactory) CreateLedger(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteLedger(config)
	case SheetsBackend:
		return f.createSheetsLedger(ctx, config)
	case MemoryBackend:
		return f.createMemoryLedger()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteLedger(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite ledger", "db_path", config.SQLiteDBPath)

	return &Result{
		Ledger:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsLedger(ctx context.Context, config Config) (*Result, error) {
	cli, err := sheets.New(ctx, config.GoogleSpreadsheetID,
		config.GoogleTransactionsSheet, config.GoogleAccountsSheet, config.GoogleBudgetsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets ledger", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &Result{Ledger: cli}, nil
}

func (f *DefaultFactory) createMemoryLedger() (*Result, error) {
	// Seed from ./data if present; an empty store is fine for tests.
	store := memory.NewFromFiles("data")

	f.logger.Info("Initialized in-memory ledger")

	return &Result{Ledger: store}, nil
}
