// Package services implements the recurring-payment engine: dueness
// computation, the once-per-day auto-apply pass, the calendar
// projection, and the orchestration around the ledger store.
package services

import (
	"fmt"
	"sort"
	"time"

	"budgetbuddy/internal/core"
)

// RecurringPrefix marks transactions generated from a recurring
// template. The full description doubles as the de-duplication key:
// a template counts as satisfied for a month when a transaction with
// its canonical description exists in that month. Templates sharing a
// name therefore share one key.
const RecurringPrefix = "Recurring payment: "

// CanonicalDescription returns the description posted for a template
// and matched against when checking whether it was already applied.
func CanonicalDescription(name string) string {
	return RecurringPrefix + name
}

// EventStatus classifies a calendar event.
type EventStatus string

const (
	StatusDue      EventStatus = "due"
	StatusPaid     EventStatus = "paid"
	StatusUpcoming EventStatus = "upcoming"
	StatusOneOff   EventStatus = "one-off"
)

// ScheduledEvent is the scheduler's output to the UI layer.
type ScheduledEvent struct {
	Date     core.Date
	Amount   core.Money
	Category string
	Label    string
	Status   EventStatus
}

// PostedIndex maps a canonical description to the set of year-months
// ("2006-01") in which a matching transaction exists.
type PostedIndex map[string]map[string]struct{}

// NewPostedIndex builds the index from already-posted transactions.
func NewPostedIndex(txs []core.Transaction) PostedIndex {
	idx := make(PostedIndex, len(txs))
	for _, tx := range txs {
		idx.Add(tx.Description, tx.Date.Year(), tx.Date.Month())
	}
	return idx
}

// Add records that description was posted in the given month.
func (idx PostedIndex) Add(description string, year, month int) {
	months, ok := idx[description]
	if !ok {
		months = make(map[string]struct{})
		idx[description] = months
	}
	months[monthKey(year, month)] = struct{}{}
}

// SatisfiedIn reports whether description was posted in the given month.
func (idx PostedIndex) SatisfiedIn(description string, year, month int) bool {
	months, ok := idx[description]
	if !ok {
		return false
	}
	_, ok = months[monthKey(year, month)]
	return ok
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// OccurrenceDate computes the day a template falls due within a month.
// A due day past the month's end is clamped to the last day, never
// skipped: day 31 in February yields Feb 28 (29 in leap years).
func OccurrenceDate(year, month, dueDay int) core.Date {
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dueDay > lastDay {
		dueDay = lastDay
	}
	return core.NewDate(year, month, dueDay)
}

// ComputeDueTemplates classifies every template for today's month:
// paid when its canonical description was already posted this month,
// due when unpaid and its occurrence date is on or before today,
// upcoming otherwise. Events come back in ascending template-ID order
// so repeated runs over the same inputs are reproducible.
func ComputeDueTemplates(today core.Date, templates []core.RecurringTemplate, posted PostedIndex) []ScheduledEvent {
	sorted := make([]core.RecurringTemplate, len(templates))
	copy(sorted, templates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	events := make([]ScheduledEvent, 0, len(sorted))
	for _, rt := range sorted {
		occurrence := OccurrenceDate(today.Year(), today.Month(), rt.DueDay)

		status := StatusUpcoming
		if posted.SatisfiedIn(CanonicalDescription(rt.Name), today.Year(), today.Month()) {
			status = StatusPaid
		} else if !occurrence.After(today.Time) {
			status = StatusDue
		}

		events = append(events, ScheduledEvent{
			Date:     occurrence,
			Amount:   rt.Amount,
			Category: rt.Category,
			Label:    rt.Name,
			Status:   status,
		})
	}
	return events
}
