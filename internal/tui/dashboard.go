package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/services"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#875FFF", Dark: "#875FFF"}).
			Padding(0, 1)

	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	dueStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FFD75F", Dark: "#FFD75F"})
	paidStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	oneOffStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF87D7", Dark: "#FF87D7"})
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// RenderOverview renders the financial overview panel.
func RenderOverview(income, expense core.Money, balanceCents int64) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Financial Overview"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Income:  %s\n", incomeStyle.Render(FormatMoney(income)))
	fmt.Fprintf(&b, "Expense: %s\n", expenseStyle.Render(FormatMoney(expense)))
	fmt.Fprintf(&b, "Balance: %s", FormatCents(balanceCents))
	return panelStyle.Render(b.String())
}

// RenderGoal renders the savings goal panel with a progress bar.
func RenderGoal(goal core.SavingsGoal) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Savings Goal"))
	b.WriteString("\n")

	if !goal.IsSet() {
		b.WriteString(faintStyle.Render("No goal set"))
		return panelStyle.Render(b.String())
	}

	fmt.Fprintf(&b, "%s of %s\n", FormatMoney(goal.Saved), FormatMoney(goal.Target))
	b.WriteString(progressBar(goal.Saved.Cents, goal.Target.Cents, 30))
	return panelStyle.Render(b.String())
}

func progressBar(current, target int64, width int) string {
	if target <= 0 {
		return ""
	}
	ratio := float64(current) / float64(target)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3.0f%%", paidStyle.Render(bar), ratio*100)
}

// RenderDueTemplates renders this month's recurring payments with
// their paid, due, or upcoming state.
func RenderDueTemplates(events []services.ScheduledEvent) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recurring This Month"))
	b.WriteString("\n")

	if len(events) == 0 {
		b.WriteString(faintStyle.Render("No recurring templates configured"))
		return panelStyle.Render(b.String())
	}

	for i, ev := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ev.Date.String())
		b.WriteString("  ")
		b.WriteString(renderEvent(ev))
	}
	return panelStyle.Render(b.String())
}

// RenderWeek renders one Monday-anchored week of the calendar.
func RenderWeek(week services.WeekProjection) string {
	var b strings.Builder
	for i, day := range week.Days {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(day.Date.Time.Format("Mon 02 Jan"))
		if len(day.Events) == 0 {
			b.WriteString(faintStyle.Render("  -"))
			continue
		}
		for _, ev := range day.Events {
			b.WriteString("  ")
			b.WriteString(renderEvent(ev))
		}
	}
	return b.String()
}

func renderEvent(ev services.ScheduledEvent) string {
	tag := fmt.Sprintf("[%s] %s %s", ev.Status, ev.Label, FormatMoney(ev.Amount))
	switch ev.Status {
	case services.StatusDue:
		return dueStyle.Render(tag)
	case services.StatusPaid:
		return paidStyle.Render(tag)
	case services.StatusOneOff:
		return oneOffStyle.Render(tag)
	default:
		return faintStyle.Render(tag)
	}
}

// RenderCalendar renders N successive weeks.
func RenderCalendar(weeks []services.WeekProjection) string {
	parts := make([]string, 0, len(weeks))
	for _, week := range weeks {
		header := titleStyle.Render(fmt.Sprintf("Week of %s", week.Start.String()))
		parts = append(parts, header+"\n"+RenderWeek(week))
	}
	return panelStyle.Render(strings.Join(parts, "\n\n"))
}

// RenderStartupBanner renders the result of the startup auto-apply pass.
func RenderStartupBanner(result services.RunResult) string {
	if result.SkippedRun {
		return faintStyle.Render("Recurring payments already checked today")
	}
	if len(result.Applied) == 0 && len(result.Failed) == 0 {
		return faintStyle.Render("No recurring payments due today")
	}

	var b strings.Builder
	for i, applied := range result.Applied {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(paidStyle.Render(fmt.Sprintf("Applied %s (%s)", applied.TemplateName, FormatMoney(applied.Amount))))
	}
	for _, failed := range result.Failed {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(expenseStyle.Render(fmt.Sprintf("Failed to apply %s: %s", failed.TemplateName, failed.Reason)))
	}
	return panelStyle.Render(b.String())
}

// RenderTransactions renders a transaction table.
func RenderTransactions(txs []core.Transaction) string {
	if len(txs) == 0 {
		return faintStyle.Render("No transactions recorded yet")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-12s %-10s %-15s %-12s %s", "ID", "Date", "Kind", "Category", "Amount", "Description")
	for _, tx := range txs {
		amount := FormatSigned(tx)
		if tx.Kind == core.Income {
			amount = incomeStyle.Render(amount)
		} else {
			amount = expenseStyle.Render(amount)
		}
		fmt.Fprintf(&b, "\n%-5d %-12s %-10s %-15s %-12s %s",
			tx.ID, tx.Date.String(), tx.Kind, tx.Category, amount, tx.Description)
	}
	return b.String()
}

// RenderSummary renders a period breakdown by category.
func RenderSummary(s services.PeriodSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Summary %s to %s", s.From.String(), s.To.String())))
	b.WriteString("\n")

	if len(s.Flows) == 0 {
		b.WriteString(faintStyle.Render("Nothing recorded in this period"))
		return panelStyle.Render(b.String())
	}

	for _, flow := range s.Flows {
		total := FormatMoney(flow.Total)
		if flow.Kind == core.Income {
			total = incomeStyle.Render(total)
		} else {
			total = expenseStyle.Render(total)
		}
		fmt.Fprintf(&b, "%-10s %-15s %s\n", flow.Kind, flow.Category, total)
	}
	fmt.Fprintf(&b, "Income %s / Expense %s / Net %s",
		incomeStyle.Render(FormatMoney(s.Income)),
		expenseStyle.Render(FormatMoney(s.Expense)),
		FormatCents(s.Net().Cents))
	return panelStyle.Render(b.String())
}

// RenderTemplates renders the recurring template table.
func RenderTemplates(templates []core.RecurringTemplate) string {
	if len(templates) == 0 {
		return faintStyle.Render("No recurring templates found")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-20s %-12s %-15s %s", "ID", "Name", "Amount", "Category", "Due day")
	for _, rt := range templates {
		fmt.Fprintf(&b, "\n%-5d %-20s %-12s %-15s %d",
			rt.ID, rt.Name, FormatMoney(rt.Amount), rt.Category, rt.DueDay)
	}
	return b.String()
}

// RenderCategories renders the category registry.
func RenderCategories(categories []core.Category) string {
	if len(categories) == 0 {
		return faintStyle.Render("No categories defined")
	}

	var b strings.Builder
	for i, cat := range categories {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(cat.Name)
		if cat.Protected {
			b.WriteString(faintStyle.Render(" (protected)"))
		}
	}
	return b.String()
}
