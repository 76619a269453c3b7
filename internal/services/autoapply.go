package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"budgetbuddy/internal/core"
)

// AppliedPayment describes one posting made by the auto-apply pass,
// surfaced to the user in the startup banner.
type AppliedPayment struct {
	TemplateName string
	Amount       core.Money
}

// FailedApplication records a template whose posting failed. Failures
// are isolated: one failing template never aborts the run.
type FailedApplication struct {
	TemplateID   int64
	TemplateName string
	Reason       string
}

// RunResult is the outcome of one auto-apply pass.
type RunResult struct {
	// SkippedRun is true when the pass already ran today and nothing
	// was attempted.
	SkippedRun bool
	Applied    []AppliedPayment
	Failed     []FailedApplication
}

// AutoApplyController posts due recurring templates as expense
// transactions, at most once per calendar day. The persisted run
// marker replaces any in-process "already ran" flag: the controller
// holds no state between calls.
type AutoApplyController struct {
	templates TemplateStore
	reader    LedgerReader
	writer    LedgerWriter
	marker    RunMarkerStore
}

func NewAutoApplyController(templates TemplateStore, reader LedgerReader, writer LedgerWriter, marker RunMarkerStore) *AutoApplyController {
	return &AutoApplyController{
		templates: templates,
		reader:    reader,
		writer:    writer,
		marker:    marker,
	}
}

// RunOnce performs the daily auto-apply pass.
//
// When the stored marker equals today the pass is a no-op with zero
// side effects. Otherwise the marker is advanced first (durably, so a
// crash mid-run cannot double-post on relaunch), then every template
// whose occurrence date is today and whose canonical description has
// not been posted this month is applied as an expense dated today.
func (c *AutoApplyController) RunOnce(ctx context.Context, today core.Date) (RunResult, error) {
	var result RunResult

	lastRun, err := c.marker.GetRunMarker(ctx)
	if err != nil {
		return result, fmt.Errorf("read run marker: %w", err)
	}
	if !lastRun.IsZero() && lastRun.SameDay(today) {
		slog.DebugContext(ctx, "Auto-apply already ran today", "last_run", lastRun.String())
		result.SkippedRun = true
		return result, nil
	}

	if err := c.marker.SetRunMarker(ctx, today); err != nil {
		return result, fmt.Errorf("advance run marker: %w", err)
	}

	templates, err := c.templates.ListTemplates(ctx)
	if err != nil {
		return result, fmt.Errorf("list templates: %w", err)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })

	postedTxs, err := c.reader.ListByDescriptionPrefix(ctx, RecurringPrefix, today.Year(), today.Month())
	if err != nil {
		return result, fmt.Errorf("list posted recurring transactions: %w", err)
	}
	posted := NewPostedIndex(postedTxs)

	for _, rt := range templates {
		occurrence := OccurrenceDate(today.Year(), today.Month(), rt.DueDay)
		if !occurrence.SameDay(today) {
			continue
		}

		description := CanonicalDescription(rt.Name)
		if posted.SatisfiedIn(description, today.Year(), today.Month()) {
			continue
		}

		tx := core.Transaction{
			Date:        today,
			Amount:      rt.Amount,
			Kind:        core.Expense,
			Category:    rt.Category,
			Description: description,
		}
		if _, err := c.writer.InsertTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to post recurring payment",
				"template_id", rt.ID,
				"name", rt.Name,
				"error", err)
			result.Failed = append(result.Failed, FailedApplication{
				TemplateID:   rt.ID,
				TemplateName: rt.Name,
				Reason:       err.Error(),
			})
			continue
		}

		// Keeps a second template with the same name from posting again
		// in this pass, matching what a re-read of the store would see.
		posted.Add(description, today.Year(), today.Month())

		result.Applied = append(result.Applied, AppliedPayment{
			TemplateName: rt.Name,
			Amount:       rt.Amount,
		})
		slog.InfoContext(ctx, "Posted recurring payment",
			"template_id", rt.ID,
			"name", rt.Name,
			"amount_cents", rt.Amount.Cents,
			"date", today.String())
	}

	slog.InfoContext(ctx, "Auto-apply pass complete",
		"date", today.String(),
		"applied", len(result.Applied),
		"failed", len(result.Failed),
		"templates_checked", len(templates))

	return result, nil
}
