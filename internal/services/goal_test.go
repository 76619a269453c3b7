package services

import (
	"context"
	"errors"
	"testing"

	"budgetbuddy/internal/core"
)

// fakeGoalStore implements GoalStore in memory.
type fakeGoalStore struct {
	goal   core.SavingsGoal
	addErr error
}

func (f *fakeGoalStore) GetSavingsGoal(context.Context) (core.SavingsGoal, error) {
	return f.goal, nil
}

func (f *fakeGoalStore) SetSavingsTarget(_ context.Context, target core.Money) error {
	f.goal.Target = target
	return nil
}

func (f *fakeGoalStore) AddToSavings(_ context.Context, amount core.Money) (core.SavingsGoal, error) {
	if f.addErr != nil {
		return core.SavingsGoal{}, f.addErr
	}
	f.goal.Saved.Cents += amount.Cents
	return f.goal, nil
}

func newGoalFixture() (*GoalService, *fakeGoalStore, *fakeLedgerStore) {
	goals := &fakeGoalStore{}
	txs := &fakeLedgerStore{}
	return NewGoalService(goals, NewLedgerService(txs, nil)), goals, txs
}

func TestAddToSavings_RequiresGoal(t *testing.T) {
	svc, _, txs := newGoalFixture()

	_, err := svc.AddToSavings(context.Background(), core.Money{Cents: 5000}, core.NewDate(2025, 6, 15))
	if !errors.Is(err, ErrGoalNotSet) {
		t.Fatalf("AddToSavings() error = %v, want ErrGoalNotSet", err)
	}
	if len(txs.txs) != 0 {
		t.Errorf("contribution without a goal posted transactions: %+v", txs.txs)
	}
}

func TestAddToSavings_RejectsInvalidAmount(t *testing.T) {
	svc, goals, txs := newGoalFixture()
	goals.goal.Target = core.Money{Cents: 100000}

	for _, cents := range []int64{0, -500} {
		_, err := svc.AddToSavings(context.Background(), core.Money{Cents: cents}, core.NewDate(2025, 6, 15))
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("AddToSavings(%d) error = %v, want ErrInvalidAmount", cents, err)
		}
	}
	if goals.goal.Saved.Cents != 0 || len(txs.txs) != 0 {
		t.Error("invalid amount mutated the goal or the ledger")
	}
}

func TestAddToSavings_IncrementsAndMirrorsExpense(t *testing.T) {
	svc, goals, txs := newGoalFixture()
	goals.goal.Target = core.Money{Cents: 100000}
	today := core.NewDate(2025, 6, 15)

	updated, err := svc.AddToSavings(context.Background(), core.Money{Cents: 5000}, today)
	if err != nil {
		t.Fatalf("AddToSavings() error = %v", err)
	}
	if updated.Saved.Cents != 5000 {
		t.Errorf("saved = %d, want 5000", updated.Saved.Cents)
	}
	if goals.goal.Saved.Cents != 5000 {
		t.Errorf("stored saved = %d, want 5000", goals.goal.Saved.Cents)
	}

	if len(txs.txs) != 1 {
		t.Fatalf("posted %d transactions, want exactly 1", len(txs.txs))
	}
	tx := txs.txs[0]
	if tx.Kind != core.Expense {
		t.Errorf("kind = %v, want expense", tx.Kind)
	}
	if tx.Category != SavingsCategory {
		t.Errorf("category = %q, want %q", tx.Category, SavingsCategory)
	}
	if tx.Description != "Savings transfer" {
		t.Errorf("description = %q, want %q", tx.Description, "Savings transfer")
	}
	if tx.Amount.Cents != 5000 || !tx.Date.SameDay(today) {
		t.Errorf("mirrored expense fields wrong: %+v", tx)
	}
}

func TestAddToSavings_FailedPostingLeavesGoalUnchanged(t *testing.T) {
	svc, goals, txs := newGoalFixture()
	goals.goal.Target = core.Money{Cents: 100000}
	txs.insertErr = errors.New("disk full")

	_, err := svc.AddToSavings(context.Background(), core.Money{Cents: 5000}, core.NewDate(2025, 6, 15))
	if err == nil {
		t.Fatal("AddToSavings() should fail when the expense cannot be posted")
	}
	if goals.goal.Saved.Cents != 0 {
		t.Errorf("saved = %d after failed posting, want 0", goals.goal.Saved.Cents)
	}
}

func TestAddToSavings_RemovesExpenseWhenIncrementFails(t *testing.T) {
	svc, goals, txs := newGoalFixture()
	goals.goal.Target = core.Money{Cents: 100000}
	goals.addErr = errors.New("store unavailable")

	_, err := svc.AddToSavings(context.Background(), core.Money{Cents: 5000}, core.NewDate(2025, 6, 15))
	if err == nil {
		t.Fatal("AddToSavings() should fail when the increment fails")
	}
	if len(txs.txs) != 0 {
		t.Errorf("mirrored expense left behind after increment failure: %+v", txs.txs)
	}
	if len(txs.deleted) != 1 {
		t.Errorf("deleted = %v, want the posted expense removed", txs.deleted)
	}
}

func TestSetTarget_ValidatesAmount(t *testing.T) {
	svc, goals, _ := newGoalFixture()

	if err := svc.SetTarget(context.Background(), core.Money{Cents: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("SetTarget(-1) error = %v, want ErrInvalidAmount", err)
	}

	if err := svc.SetTarget(context.Background(), core.Money{Cents: 100000}); err != nil {
		t.Fatalf("SetTarget() error = %v", err)
	}
	if !goals.goal.IsSet() || goals.goal.Target.Cents != 100000 {
		t.Errorf("goal after SetTarget = %+v, want target 100000", goals.goal)
	}
}
