package services

import (
	"context"
	"errors"
	"testing"

	"budgetbuddy/internal/core"
)

// fakeStore implements the scheduling ports in memory.
type fakeStore struct {
	templates []core.RecurringTemplate
	posted    []core.Transaction
	marker    core.Date

	inserted  []core.Transaction
	nextID    int64
	failNames map[string]error
	markerErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{failNames: map[string]error{}}
}

func (f *fakeStore) ListTemplates(context.Context) ([]core.RecurringTemplate, error) {
	return f.templates, nil
}

func (f *fakeStore) ListTransactionsInRange(_ context.Context, from, to core.Date) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tx := range f.posted {
		if !tx.Date.Before(from.Time) && !tx.Date.After(to.Time) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByDescriptionPrefix(_ context.Context, prefix string, year, month int) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tx := range f.posted {
		if tx.Date.Year() == year && tx.Date.Month() == month && len(tx.Description) >= len(prefix) && tx.Description[:len(prefix)] == prefix {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	for name, err := range f.failNames {
		if tx.Description == CanonicalDescription(name) {
			return 0, err
		}
	}
	f.nextID++
	tx.ID = f.nextID
	f.inserted = append(f.inserted, tx)
	f.posted = append(f.posted, tx)
	return tx.ID, nil
}

func (f *fakeStore) GetRunMarker(context.Context) (core.Date, error) {
	return f.marker, f.markerErr
}

func (f *fakeStore) SetRunMarker(_ context.Context, day core.Date) error {
	if f.markerErr != nil {
		return f.markerErr
	}
	f.marker = day
	return nil
}

func newController(f *fakeStore) *AutoApplyController {
	return NewAutoApplyController(f, f, f, f)
}

func TestRunOnce_PostsDueTemplates(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 1, Name: "Rent", Amount: core.Money{Cents: 80000}, Category: "Housing", DueDay: 15},
		{ID: 2, Name: "Gym", Amount: core.Money{Cents: 3500}, Category: "Health", DueDay: 20},
	}
	today := core.NewDate(2025, 6, 15)

	result, err := newController(store).RunOnce(context.Background(), today)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if result.SkippedRun {
		t.Fatal("first run should not be skipped")
	}
	if len(result.Applied) != 1 || result.Applied[0].TemplateName != "Rent" {
		t.Fatalf("applied = %+v, want just Rent", result.Applied)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d transactions, want 1", len(store.inserted))
	}

	tx := store.inserted[0]
	if tx.Description != "Recurring payment: Rent" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.Amount.Cents != 80000 || tx.Category != "Housing" || tx.Kind != core.Expense {
		t.Errorf("posted transaction fields wrong: %+v", tx)
	}
	if !tx.Date.SameDay(today) {
		t.Errorf("posted date = %v, want %v", tx.Date, today)
	}
	if !store.marker.SameDay(today) {
		t.Errorf("marker = %v, want %v", store.marker, today)
	}
}

func TestRunOnce_IdempotentWithinDay(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 1, Name: "Rent", Amount: core.Money{Cents: 80000}, Category: "Housing", DueDay: 15},
	}
	today := core.NewDate(2025, 6, 15)
	ctl := newController(store)

	// Marker initially unset: first run posts and advances the marker.
	first, err := ctl.RunOnce(context.Background(), today)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if len(first.Applied) != 1 {
		t.Fatalf("first run applied %d, want 1", len(first.Applied))
	}

	second, err := ctl.RunOnce(context.Background(), today)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !second.SkippedRun {
		t.Error("second run on the same day should be skipped")
	}
	if len(second.Applied) != 0 || len(store.inserted) != 1 {
		t.Errorf("second run posted transactions: applied=%d inserted=%d", len(second.Applied), len(store.inserted))
	}
}

func TestRunOnce_SkipsSatisfiedThisMonth(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 1, Name: "Rent", Amount: core.Money{Cents: 80000}, Category: "Housing", DueDay: 15},
	}
	store.posted = []core.Transaction{
		{Description: "Recurring payment: Rent", Date: core.NewDate(2025, 6, 2), Kind: core.Expense},
	}

	result, err := newController(store).RunOnce(context.Background(), core.NewDate(2025, 6, 15))
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(result.Applied) != 0 {
		t.Errorf("already-satisfied template was applied: %+v", result.Applied)
	}
	if !store.marker.SameDay(core.NewDate(2025, 6, 15)) {
		t.Error("marker should advance even when nothing is posted")
	}
}

func TestRunOnce_ClampedDueDayAppliesOnMonthEnd(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 1, Name: "Rent", Amount: core.Money{Cents: 80000}, Category: "Housing", DueDay: 31},
	}

	// June has 30 days, so day 31 clamps to the 30th.
	result, err := newController(store).RunOnce(context.Background(), core.NewDate(2025, 6, 30))
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(result.Applied) != 1 {
		t.Fatalf("clamped template not applied on month end: %+v", result)
	}
}

func TestRunOnce_IsolatesFailures(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 1, Name: "Rent", Amount: core.Money{Cents: 80000}, Category: "Housing", DueDay: 15},
		{ID: 2, Name: "Netflix", Amount: core.Money{Cents: 1299}, Category: "Subscription", DueDay: 15},
	}
	store.failNames["Rent"] = errors.New("disk full")

	result, err := newController(store).RunOnce(context.Background(), core.NewDate(2025, 6, 15))
	if err != nil {
		t.Fatalf("RunOnce should not fail the whole pass: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].TemplateName != "Netflix" {
		t.Errorf("applied = %+v, want Netflix only", result.Applied)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("failed = %+v, want one entry", result.Failed)
	}
	if result.Failed[0].TemplateID != 1 || result.Failed[0].Reason != "disk full" {
		t.Errorf("failure detail wrong: %+v", result.Failed[0])
	}
}

func TestRunOnce_DuplicateNamesShareOneKey(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 1, Name: "Gym", Amount: core.Money{Cents: 3500}, Category: "Health", DueDay: 15},
		{ID: 2, Name: "Gym", Amount: core.Money{Cents: 2000}, Category: "Health", DueDay: 15},
	}

	result, err := newController(store).RunOnce(context.Background(), core.NewDate(2025, 6, 15))
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	// Description is the sole de-duplication key, so the second template
	// with the same name is seen as satisfied by the first posting.
	if len(result.Applied) != 1 {
		t.Errorf("applied %d postings for duplicate names, want 1", len(result.Applied))
	}
	if len(store.inserted) != 1 || store.inserted[0].Amount.Cents != 3500 {
		t.Errorf("lowest-ID template should win: %+v", store.inserted)
	}
}

func TestRunOnce_DeterministicOrder(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 9, Name: "Water", Amount: core.Money{Cents: 3000}, Category: "Housing", DueDay: 15},
		{ID: 2, Name: "Power", Amount: core.Money{Cents: 6000}, Category: "Housing", DueDay: 15},
		{ID: 5, Name: "Internet", Amount: core.Money{Cents: 4000}, Category: "Housing", DueDay: 15},
	}

	result, err := newController(store).RunOnce(context.Background(), core.NewDate(2025, 6, 15))
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	want := []string{"Power", "Internet", "Water"}
	if len(result.Applied) != len(want) {
		t.Fatalf("applied %d, want %d", len(result.Applied), len(want))
	}
	for i, name := range want {
		if result.Applied[i].TemplateName != name {
			t.Errorf("applied[%d] = %s, want %s", i, result.Applied[i].TemplateName, name)
		}
	}
}

func TestRunOnce_MarkerErrorAbortsBeforePosting(t *testing.T) {
	store := newFakeStore()
	store.templates = []core.RecurringTemplate{
		{ID: 1, Name: "Rent", Amount: core.Money{Cents: 80000}, Category: "Housing", DueDay: 15},
	}
	store.markerErr = errors.New("store unavailable")

	_, err := newController(store).RunOnce(context.Background(), core.NewDate(2025, 6, 15))
	if err == nil {
		t.Fatal("expected error when the marker cannot be read")
	}
	if len(store.inserted) != 0 {
		t.Error("nothing should be posted when the marker store fails")
	}
}
