package tui

import (
	"testing"

	"budgetbuddy/internal/core"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "£0.00"},
		{1, "£0.01"},
		{1550, "£15.50"},
		{123456, "£1234.56"},
	}

	for _, tt := range tests {
		if got := FormatMoney(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("FormatMoney(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	income := core.Transaction{Kind: core.Income, Amount: core.Money{Cents: 10000}}
	if got := FormatSigned(income); got != "+£100.00" {
		t.Errorf("FormatSigned(income) = %q, want +£100.00", got)
	}

	expense := core.Transaction{Kind: core.Expense, Amount: core.Money{Cents: 1550}}
	if got := FormatSigned(expense); got != "-£15.50" {
		t.Errorf("FormatSigned(expense) = %q, want -£15.50", got)
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(-350); got != "-£3.50" {
		t.Errorf("FormatCents(-350) = %q, want -£3.50", got)
	}
	if got := FormatCents(350); got != "£3.50" {
		t.Errorf("FormatCents(350) = %q, want £3.50", got)
	}
}
