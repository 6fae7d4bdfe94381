package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	Checking   AccountKind = "checking"
	Savings    AccountKind = "savings"
	Investment AccountKind = "investment"
	Credit     AccountKind = "credit"
)

type (
	TransactionKind string

	AccountKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is an immutable ledger record. The forecasting engine
	// only ever reads these; amounts are positive magnitudes and the
	// kind tells income from expense.
	Transaction struct {
		Date        Date
		Kind        TransactionKind
		Description string
		Amount      Money
		Category    string
		Computable  bool
		AccountID   string
		// ApplicableMonth overrides the month a transaction counts
		// toward (e.g. January rent paid late in December). Zero
		// value means the transaction date decides.
		ApplicableMonth Date
	}

	Account struct {
		ID               string
		Kind             AccountKind
		Balance          Money // signed; negative on credit accounts means debt
		CreditLimit      Money
		ExcludeFromStats bool
	}

	// CategoryBudget is a monthly spending cap for one category.
	CategoryBudget struct {
		Category string
		Cap      Money
		Active   bool
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is zero (optional dates use the zero value)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// MonthKey returns a sortable year*100+month key, honoring an
// ApplicableMonth override when the transaction carries one.
func (t Transaction) MonthKey() int {
	d := t.Date
	if !t.ApplicableMonth.IsEmpty() {
		d = t.ApplicableMonth
	}
	return d.Year()*100 + d.Month()
}

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (k AccountKind) Valid() bool {
	switch k {
	case Checking, Savings, Investment, Credit:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.ApplicableMonth.IsEmpty() {
		if err := t.ApplicableMonth.Validate(); err != nil {
			return errors.New("invalid applicable month: " + err.Error())
		}
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("empty account id")
	}
	if !a.Kind.Valid() {
		return errors.New("invalid account kind")
	}
	if a.Kind == Credit && a.CreditLimit.Cents < 0 {
		return errors.New("negative credit limit")
	}
	return nil
}

// Debt returns the outstanding debt magnitude of a credit account in
// euros. Non-credit accounts and positive balances yield 0.
func (a Account) Debt() float64 {
	if a.Kind != Credit || a.Balance.Cents >= 0 {
		return 0
	}
	return float64(-a.Balance.Cents) / 100.0
}

func (b CategoryBudget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Cap.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
