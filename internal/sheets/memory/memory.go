package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetbuddy/internal/core"
)

// Store is an in-memory mirror used when no spreadsheet is configured
// and as a stand-in for the Sheets adapter in tests.
type Store struct {
	mu    sync.Mutex
	items map[int64]core.Transaction
}

func New() *Store {
	return &Store{items: make(map[int64]core.Transaction)}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tx.ID] = tx
	return fmt.Sprintf("mem:%d", tx.ID), nil
}

// Delete removes a mirrored transaction. Missing IDs are not an error,
// matching the Sheets adapter.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Get returns the mirrored transaction, if present.
func (s *Store) Get(id int64) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	return tx, ok
}

// Len returns the number of mirrored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
