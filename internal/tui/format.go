package tui

import (
	"fmt"

	"budgetbuddy/internal/core"
)

const currencySymbol = "£"

// FormatMoney renders an amount as "£12.34".
func FormatMoney(m core.Money) string {
	return fmt.Sprintf("%s%.2f", currencySymbol, m.Pounds())
}

// FormatSigned renders an amount with the sign implied by the kind,
// "+£100.00" for income and "-£15.50" for expenses.
func FormatSigned(tx core.Transaction) string {
	sign := "-"
	if tx.Kind == core.Income {
		sign = "+"
	}
	return sign + FormatMoney(tx.Amount)
}

// FormatCents renders a raw signed cent total as "£-3.50" style text.
func FormatCents(cents int64) string {
	if cents < 0 {
		return fmt.Sprintf("-%s%.2f", currencySymbol, float64(-cents)/100.0)
	}
	return fmt.Sprintf("%s%.2f", currencySymbol, float64(cents)/100.0)
}
