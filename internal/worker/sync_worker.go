package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/sheets"
)

// LedgerSource is the slice of the repository the worker needs.
type LedgerSource interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListUnsyncedTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkSynced(ctx context.Context, id int64) error
}

// SyncWorker mirrors ledger transactions from SQLite to the spreadsheet.
type SyncWorker struct {
	storage   LedgerSource
	mirror    sheets.LedgerAppender
	deleter   sheets.LedgerDeleter
	batchSize int
}

func NewSyncWorker(storage LedgerSource, mirror sheets.LedgerAppender, deleter sheets.LedgerDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single upsert notification from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	tx, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.mirrorTransaction(ctx, tx); err != nil {
		return fmt.Errorf("mirror transaction: %w", err)
	}

	return nil
}

// HandleDeleteMessage processes a single delete notification from AMQP.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No mirror deleter configured, skipping deletion", "id", msg.ID)
		return nil
	}

	if err := w.deleter.Delete(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete mirrored transaction: %w", err)
	}

	slog.InfoContext(ctx, "Deleted mirrored transaction", "id", msg.ID)
	return nil
}

// ProcessPendingTransactions mirrors any transactions that have not been
// synced yet. This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.ListUnsyncedTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unsynced transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, tx := range pending {
		if err := w.mirrorTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction", "id", tx.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck mirrors pending transactions at worker startup. This
// recovers from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.ListUnsyncedTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unsynced transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, tx := range pending {
		if err := w.mirrorTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup",
				"id", tx.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// Run consumes AMQP notifications and periodically retries pending
// transactions until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeMessages(ctx,
			func(msg *amqp.LedgerSyncMessage) error {
				return w.HandleSyncMessage(ctx, msg)
			},
			func(msg *amqp.LedgerSyncMessage) error {
				return w.HandleDeleteMessage(ctx, msg)
			})
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPendingTransactions(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic sync pass failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func (w *SyncWorker) mirrorTransaction(ctx context.Context, tx core.Transaction) error {
	ref, err := w.mirror.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, tx.ID); err != nil {
		// The mirror write succeeded, so log and carry on. The periodic
		// pass will retry and the duplicate row is harmless.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"id", tx.ID,
		"mirror_ref", ref,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents)

	return nil
}
