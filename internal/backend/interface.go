// Package backend selects and builds the ledger implementation the
// engine reads from.
package backend

import (
	"context"

	"bilancio/internal/ledger"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the ledger instance and optional cleanup function.
type Result struct {
	Ledger  ledger.Ledger
	Cleanup CleanupFunc
}

// Factory creates ledgers based on configuration.
type Factory interface {
	CreateLedger(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for ledger creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleAccountsSheet     string
	GoogleBudgetsSheet      string
}

// Type identifies a ledger backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
