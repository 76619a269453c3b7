package sheets

import (
	"context"

	"budgetbuddy/internal/core"
)

// Ports for outbound mirror adapters.
type (
	LedgerAppender interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	LedgerDeleter interface {
		Delete(ctx context.Context, id int64) error
	}
)
