package tui

import (
	"strings"
	"testing"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/services"
)

func TestRenderDueTemplates(t *testing.T) {
	events := []services.ScheduledEvent{
		{Date: core.NewDate(2025, 6, 5), Amount: core.Money{Cents: 80000}, Category: "Housing", Label: "Rent", Status: services.StatusPaid},
		{Date: core.NewDate(2025, 6, 15), Amount: core.Money{Cents: 3500}, Category: "Health", Label: "Gym", Status: services.StatusDue},
		{Date: core.NewDate(2025, 6, 28), Amount: core.Money{Cents: 1299}, Category: "Subscription", Label: "Netflix", Status: services.StatusUpcoming},
	}

	out := RenderDueTemplates(events)
	for _, want := range []string{
		"Recurring This Month",
		"2025-06-05", "[paid] Rent",
		"2025-06-15", "[due] Gym",
		"2025-06-28", "[upcoming] Netflix",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDueTemplates() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderDueTemplates_NoTemplates(t *testing.T) {
	out := RenderDueTemplates(nil)
	if !strings.Contains(out, "No recurring templates configured") {
		t.Errorf("RenderDueTemplates(nil) = %q, want empty-state message", out)
	}
}
