package services

import (
	"strings"

	"budgetbuddy/internal/core"
)

// DaySlot carries the events landing on one calendar day. A day may
// hold zero or several events.
type DaySlot struct {
	Date   core.Date
	Events []ScheduledEvent
}

// WeekProjection is a Monday-anchored 7-day grid.
type WeekProjection struct {
	Start core.Date
	Days  [7]DaySlot
}

// StartOfWeek returns the Monday of the week containing d.
func StartOfWeek(d core.Date) core.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// ProjectWeek maps templates and posted transactions onto the 7 days
// starting at start. Recurring occurrences are tagged paid when their
// canonical description was posted in the month the day falls in, due
// otherwise. Expense transactions above threshold are tagged one-off,
// unless they were generated by the recurring mechanism itself.
//
// The projector never touches a store: it is a pure view over inputs
// the caller has already read.
func ProjectWeek(start core.Date, templates []core.RecurringTemplate, posted PostedIndex, txs []core.Transaction, threshold core.Money) WeekProjection {
	week := WeekProjection{Start: start}

	for i := 0; i < 7; i++ {
		day := start.AddDays(i)
		slot := DaySlot{Date: day}

		for _, rt := range templates {
			occurrence := OccurrenceDate(day.Year(), day.Month(), rt.DueDay)
			if !occurrence.SameDay(day) {
				continue
			}
			status := StatusDue
			if posted.SatisfiedIn(CanonicalDescription(rt.Name), day.Year(), day.Month()) {
				status = StatusPaid
			}
			slot.Events = append(slot.Events, ScheduledEvent{
				Date:     day,
				Amount:   rt.Amount,
				Category: rt.Category,
				Label:    rt.Name,
				Status:   status,
			})
		}

		for _, tx := range txs {
			if tx.Kind != core.Expense || !tx.Date.SameDay(day) {
				continue
			}
			if tx.Amount.Cents <= threshold.Cents {
				continue
			}
			if strings.HasPrefix(tx.Description, RecurringPrefix) {
				continue
			}
			label := tx.Description
			if label == "" {
				label = tx.Category
			}
			slot.Events = append(slot.Events, ScheduledEvent{
				Date:     day,
				Amount:   tx.Amount,
				Category: tx.Category,
				Label:    label,
				Status:   StatusOneOff,
			})
		}

		week.Days[i] = slot
	}
	return week
}

// ProjectWeeks repeats the per-day computation over n successive
// weeks. Each day's paid/due status is judged against the month that
// day falls in, so crossing into the next month resets the
// satisfied-check to that month's postings.
func ProjectWeeks(start core.Date, weeks int, templates []core.RecurringTemplate, posted PostedIndex, txs []core.Transaction, threshold core.Money) []WeekProjection {
	if weeks < 1 {
		weeks = 1
	}
	out := make([]WeekProjection, 0, weeks)
	for w := 0; w < weeks; w++ {
		out = append(out, ProjectWeek(start.AddDays(7*w), templates, posted, txs, threshold))
	}
	return out
}
