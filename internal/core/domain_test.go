package core

import (
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:        NewDate(2024, 3, 15),
		Kind:        Expense,
		Description: "Supermercato",
		Amount:      Money{Cents: 4250},
		Category:    "Spesa",
		Computable:  true,
	}

	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr error
	}{
		{name: "valid expense", mutate: func(tx *Transaction) {}, wantErr: nil},
		{name: "valid income", mutate: func(tx *Transaction) { tx.Kind = Income }, wantErr: nil},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = Money{} }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, wantErr: ErrInvalidAmount},
		{name: "unknown kind", mutate: func(tx *Transaction) { tx.Kind = "transfer" }, wantErr: ErrInvalidKind},
		{name: "blank description", mutate: func(tx *Transaction) { tx.Description = "   " }, wantErr: ErrEmptyDescription},
		{name: "blank category", mutate: func(tx *Transaction) { tx.Category = "" }, wantErr: ErrEmptyCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionMonthKey(t *testing.T) {
	tx := Transaction{Date: NewDate(2024, 12, 28)}
	if got := tx.MonthKey(); got != 202412 {
		t.Errorf("MonthKey() = %d, want 202412", got)
	}

	// ApplicableMonth override wins over the transaction date.
	tx.ApplicableMonth = NewDate(2025, 1, 1)
	if got := tx.MonthKey(); got != 202501 {
		t.Errorf("MonthKey() with override = %d, want 202501", got)
	}
}

func TestAccountDebt(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		want    float64
	}{
		{
			name:    "credit account in debt",
			account: Account{ID: "cc1", Kind: Credit, Balance: Money{Cents: -150000}},
			want:    1500,
		},
		{
			name:    "credit account paid off",
			account: Account{ID: "cc2", Kind: Credit, Balance: Money{Cents: 0}},
			want:    0,
		},
		{
			name:    "checking account ignores negative balance",
			account: Account{ID: "ch1", Kind: Checking, Balance: Money{Cents: -5000}},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.Debt(); got != tt.want {
				t.Errorf("Debt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccountValidate(t *testing.T) {
	a := Account{ID: "a1", Kind: Checking, Balance: Money{Cents: 100000}}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate() valid account = %v", err)
	}
	a.Kind = "wallet"
	if err := a.Validate(); err == nil {
		t.Error("Validate() accepted unknown account kind")
	}
	a = Account{ID: " ", Kind: Savings}
	if err := a.Validate(); err == nil {
		t.Error("Validate() accepted blank account id")
	}
}
