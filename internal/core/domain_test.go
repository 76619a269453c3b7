package core

import (
	"testing"
	"time"
)

func TestDateHelpers(t *testing.T) {
	d := NewDate(2025, 3, 15)
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 15 {
		t.Fatalf("unexpected date parts: %v", d)
	}
	if !d.SameMonth(NewDate(2025, 3, 1)) {
		t.Error("SameMonth should match same year+month")
	}
	if d.SameMonth(NewDate(2024, 3, 15)) {
		t.Error("SameMonth should not match different year")
	}
	if !d.SameDay(DateOf(time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC))) {
		t.Error("DateOf should truncate time-of-day")
	}
	if got := d.AddDays(17); !got.SameDay(NewDate(2025, 4, 1)) {
		t.Errorf("AddDays(17) = %v, want 2025-04-01", got)
	}
	if d.String() != "2025-03-15" {
		t.Errorf("String() = %q, want 2025-03-15", d.String())
	}
}

func TestTxKindValidate(t *testing.T) {
	if err := Income.Validate(); err != nil {
		t.Errorf("income should be valid: %v", err)
	}
	if err := Expense.Validate(); err != nil {
		t.Errorf("expense should be valid: %v", err)
	}
	if err := TxKind("transfer").Validate(); err == nil {
		t.Error("unknown kind should be rejected")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		Amount:      Money{Cents: 1550},
		Kind:        Expense,
		Category:    "Food",
		Description: "lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Amount: Money{Cents: 1}, Kind: Expense, Category: "c"},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 0}, Kind: Expense, Category: "c"},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Kind: "magic", Category: "c"},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Kind: Income, Category: "  "},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestTransactionSigned(t *testing.T) {
	e := Transaction{Amount: Money{Cents: 800}, Kind: Expense}
	if e.Signed() != -800 {
		t.Errorf("expense Signed() = %d, want -800", e.Signed())
	}
	i := Transaction{Amount: Money{Cents: 800}, Kind: Income}
	if i.Signed() != 800 {
		t.Errorf("income Signed() = %d, want 800", i.Signed())
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	good := RecurringTemplate{Name: "Rent", Amount: Money{Cents: 80000}, Category: "Housing", DueDay: 31}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name string
		rt   RecurringTemplate
	}{
		{"empty name", RecurringTemplate{Amount: Money{Cents: 1}, Category: "c", DueDay: 1}},
		{"zero amount", RecurringTemplate{Name: "x", Category: "c", DueDay: 1}},
		{"empty category", RecurringTemplate{Name: "x", Amount: Money{Cents: 1}, DueDay: 1}},
		{"due day 0", RecurringTemplate{Name: "x", Amount: Money{Cents: 1}, Category: "c", DueDay: 0}},
		{"due day 32", RecurringTemplate{Name: "x", Amount: Money{Cents: 1}, Category: "c", DueDay: 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rt.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSavingsGoal(t *testing.T) {
	if (SavingsGoal{}).IsSet() {
		t.Error("zero goal should not be set")
	}
	g := SavingsGoal{Target: Money{Cents: 100000}, Saved: Money{Cents: 2500}}
	if !g.IsSet() {
		t.Error("goal with target should be set")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("expected ok, got %v", err)
	}
	if err := (SavingsGoal{Saved: Money{Cents: -1}}).Validate(); err == nil {
		t.Error("negative saved should be rejected")
	}
}
