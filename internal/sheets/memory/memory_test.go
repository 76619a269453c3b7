package memory

import (
	"context"
	"testing"

	"budgetbuddy/internal/core"
)

func validTx(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        core.NewDate(2025, 6, 15),
		Amount:      core.Money{Cents: 1250},
		Kind:        core.Expense,
		Category:    "Food",
		Description: "Groceries",
	}
}

func TestStore_AppendAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, validTx(7))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "mem:7" {
		t.Errorf("Append() ref = %q, want %q", ref, "mem:7")
	}
	if _, ok := s.Get(7); !ok {
		t.Error("Get(7) should find the appended transaction")
	}

	if err := s.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := s.Get(7); ok {
		t.Error("Get(7) should not find a deleted transaction")
	}

	// Deleting an absent ID is a no-op
	if err := s.Delete(ctx, 99); err != nil {
		t.Errorf("Delete(99) error = %v, want nil", err)
	}
}

func TestStore_AppendRejectsInvalid(t *testing.T) {
	s := New()
	tx := validTx(1)
	tx.Amount.Cents = 0

	if _, err := s.Append(context.Background(), tx); err == nil {
		t.Error("Append() should reject a transaction with zero amount")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}
