package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbuddy/internal/core"
)

// SavingsCategory is the protected category used for the expense
// posted alongside every savings contribution.
const SavingsCategory = "Savings"

const savingsDescription = "Savings transfer"

var ErrGoalNotSet = errors.New("no savings goal set")

// GoalService manages the singleton savings goal. Adding to savings
// mirrors an expense into the ledger so the balance reflects the
// money moved aside.
type GoalService struct {
	storage GoalStore
	ledger  SavingsLedger
}

func NewGoalService(storage GoalStore, ledger SavingsLedger) *GoalService {
	return &GoalService{storage: storage, ledger: ledger}
}

func (s *GoalService) Goal(ctx context.Context) (core.SavingsGoal, error) {
	return s.storage.GetSavingsGoal(ctx)
}

// SetTarget overwrites the goal target, preserving the saved amount.
func (s *GoalService) SetTarget(ctx context.Context, target core.Money) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := s.storage.SetSavingsTarget(ctx, target); err != nil {
		return fmt.Errorf("set savings target: %w", err)
	}
	return nil
}

// AddToSavings posts the mirrored expense and then increments the
// saved amount. Requires a goal target to be set first. The expense
// goes first so a failed posting leaves the goal untouched; if the
// increment itself fails, the posted expense is deleted again.
func (s *GoalService) AddToSavings(ctx context.Context, amount core.Money, today core.Date) (core.SavingsGoal, error) {
	if err := amount.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	goal, err := s.storage.GetSavingsGoal(ctx)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get savings goal: %w", err)
	}
	if !goal.IsSet() {
		return core.SavingsGoal{}, ErrGoalNotSet
	}

	tx := core.Transaction{
		Date:        today,
		Amount:      amount,
		Kind:        core.Expense,
		Category:    SavingsCategory,
		Description: savingsDescription,
	}
	txID, err := s.ledger.PostTransaction(ctx, tx)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("post savings transfer: %w", err)
	}

	updated, err := s.storage.AddToSavings(ctx, amount)
	if err != nil {
		if delErr := s.ledger.DeleteTransaction(ctx, txID); delErr != nil {
			slog.ErrorContext(ctx, "Failed to remove savings transfer after increment error",
				"id", txID, "error", delErr)
		}
		return core.SavingsGoal{}, fmt.Errorf("add to savings: %w", err)
	}

	return updated, nil
}
