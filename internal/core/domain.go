package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxKind = "income"
	Expense TxKind = "expense"
)

type (
	// TxKind is the closed set of transaction kinds. Amounts are always
	// stored positive; the sign of a transaction is derived from its kind.
	TxKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a posted ledger entry. Immutable once posted;
	// the only mutation is deletion.
	Transaction struct {
		ID          int64
		Date        Date
		Amount      Money
		Kind        TxKind
		Category    string
		Description string
	}

	// RecurringTemplate describes a monthly payment applied on DueDay.
	// Templates are created and deleted, never updated; deleting one does
	// not retract transactions it already produced.
	RecurringTemplate struct {
		ID          int64
		Name        string
		Amount      Money
		Category    string
		Description string
		DueDay      int // 1-31, clamped to month end when shorter
	}

	// SavingsGoal is the singleton goal row. Target of zero means unset.
	SavingsGoal struct {
		Target Money
		Saved  Money
	}

	Category struct {
		Name      string
		Protected bool
	}
)

var (
	ErrInvalidDueDay     = errors.New("due day must be between 1 and 31")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyCategory     = errors.New("empty category")
	ErrProtectedCategory = errors.New("category is protected")
)

// NewDate creates a calendar date. Time-of-day is never significant.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

// SameMonth reports whether two dates fall in the same year and month.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// String renders the date as YYYY-MM-DD, the format used in storage.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (k TxKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Signed returns the amount in cents with the sign implied by the kind.
func (t Transaction) Signed() int64 {
	if t.Kind == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (rt RecurringTemplate) Validate() error {
	if len(strings.TrimSpace(rt.Name)) == 0 {
		return ErrEmptyName
	}
	if len(rt.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rt.Category) == "" {
		return ErrEmptyCategory
	}
	if rt.DueDay < 1 || rt.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if len(rt.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if g.Target.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.Saved.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsSet reports whether a goal target has been configured.
func (g SavingsGoal) IsSet() bool {
	return g.Target.Cents > 0
}
