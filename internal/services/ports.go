package services

import (
	"context"

	"budgetbuddy/internal/core"
)

// Ports consumed by the scheduling engine. The SQLite repository
// implements all of them; tests substitute fakes.
type (
	TemplateStore interface {
		ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error)
	}

	LedgerReader interface {
		// ListTransactionsInRange returns transactions with from <= date <= to.
		ListTransactionsInRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error)

		// ListByDescriptionPrefix returns transactions in the given
		// year+month whose description starts with prefix.
		ListByDescriptionPrefix(ctx context.Context, prefix string, year, month int) ([]core.Transaction, error)
	}

	LedgerWriter interface {
		InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)
	}

	// RunMarkerStore persists the last auto-apply day so repeated
	// process launches within one calendar day stay idempotent.
	RunMarkerStore interface {
		// GetRunMarker returns the zero Date when no run was recorded yet.
		GetRunMarker(ctx context.Context) (core.Date, error)
		SetRunMarker(ctx context.Context, day core.Date) error
	}

	// LedgerStore is the repository surface the ledger service drives.
	LedgerStore interface {
		LedgerWriter
		DeleteTransaction(ctx context.Context, id int64) error
		ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
		ListTransactionsByCategory(ctx context.Context, filter string) ([]core.Transaction, error)
		ListTransactionsInRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error)
		GetBalance(ctx context.Context) (int64, error)
		GetTotals(ctx context.Context) (income, expense int64, err error)
		Close() error
	}

	// GoalStore persists the singleton savings goal.
	GoalStore interface {
		GetSavingsGoal(ctx context.Context) (core.SavingsGoal, error)
		SetSavingsTarget(ctx context.Context, target core.Money) error
		AddToSavings(ctx context.Context, amount core.Money) (core.SavingsGoal, error)
	}

	// SavingsLedger is the slice of the ledger the goal service writes
	// through when mirroring a contribution into the transaction log.
	SavingsLedger interface {
		PostTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}
)
