package sheets

import (
	"context"
	"testing"
)

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), "", "", "", ""); err == nil {
		t.Fatal("New() with empty spreadsheet ID returned nil error")
	}
	if _, err := New(context.Background(), "   ", "Movimenti", "", ""); err == nil {
		t.Fatal("New() with blank spreadsheet ID returned nil error")
	}
}
