package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/core"
)

// LedgerService orchestrates ledger writes across SQLite and the
// optional AMQP mirror queue. The local write is authoritative; a
// failed publish is logged and never fails the operation.
type LedgerService struct {
	storage    LedgerStore
	amqpClient *amqp.Client
}

func NewLedgerService(storage LedgerStore, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// PostTransaction validates and persists a transaction, then queues a
// mirror message for the sync worker.
func (s *LedgerService) PostTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.InsertTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishLedgerSync(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
		}
	}

	return id, nil
}

// DeleteTransaction removes a posted transaction and queues the
// matching delete for the mirror.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishLedgerDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
		}
	}

	return nil
}

// ApplyTemplate posts a template as an expense dated today, using the
// canonical description so the scheduler sees it as satisfied for the
// month.
func (s *LedgerService) ApplyTemplate(ctx context.Context, rt core.RecurringTemplate, today core.Date) (int64, error) {
	tx := core.Transaction{
		Date:        today,
		Amount:      rt.Amount,
		Kind:        core.Expense,
		Category:    rt.Category,
		Description: CanonicalDescription(rt.Name),
	}
	return s.PostTransaction(ctx, tx)
}

func (s *LedgerService) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	return s.storage.ListRecentTransactions(ctx, limit)
}

func (s *LedgerService) TransactionsByCategory(ctx context.Context, filter string) ([]core.Transaction, error) {
	return s.storage.ListTransactionsByCategory(ctx, filter)
}

// Balance returns the signed all-time balance in cents.
func (s *LedgerService) Balance(ctx context.Context) (int64, error) {
	return s.storage.GetBalance(ctx)
}

// Totals returns the all-time income and expense sums, both positive.
func (s *LedgerService) Totals(ctx context.Context) (income, expense core.Money, err error) {
	in, out, err := s.storage.GetTotals(ctx)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("get totals: %w", err)
	}
	return core.Money{Cents: in}, core.Money{Cents: out}, nil
}

// FlowSummary aggregates one (kind, category) pair over a period.
type FlowSummary struct {
	Kind     core.TxKind
	Category string
	Total    core.Money
}

// PeriodSummary breaks a date range down by category and flow.
type PeriodSummary struct {
	From    core.Date
	To      core.Date
	Income  core.Money
	Expense core.Money
	Flows   []FlowSummary
}

// Summarize aggregates transactions between from and to inclusive,
// grouped by kind+category and ordered by descending amount.
func (s *LedgerService) Summarize(ctx context.Context, from, to core.Date) (PeriodSummary, error) {
	summary := PeriodSummary{From: from, To: to}

	txs, err := s.storage.ListTransactionsInRange(ctx, from, to)
	if err != nil {
		return summary, fmt.Errorf("list transactions in range: %w", err)
	}

	type key struct {
		kind     core.TxKind
		category string
	}
	grouped := make(map[key]int64)
	for _, tx := range txs {
		grouped[key{tx.Kind, tx.Category}] += tx.Amount.Cents
		if tx.Kind == core.Income {
			summary.Income.Cents += tx.Amount.Cents
		} else {
			summary.Expense.Cents += tx.Amount.Cents
		}
	}

	for k, cents := range grouped {
		summary.Flows = append(summary.Flows, FlowSummary{
			Kind:     k.kind,
			Category: k.category,
			Total:    core.Money{Cents: cents},
		})
	}
	sort.Slice(summary.Flows, func(i, j int) bool {
		if summary.Flows[i].Total.Cents != summary.Flows[j].Total.Cents {
			return summary.Flows[i].Total.Cents > summary.Flows[j].Total.Cents
		}
		return summary.Flows[i].Category < summary.Flows[j].Category
	})

	return summary, nil
}

// Net returns income minus expense for a summary.
func (p PeriodSummary) Net() core.Money {
	return core.Money{Cents: p.Income.Cents - p.Expense.Cents}
}

// Close closes storage and the AMQP connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
