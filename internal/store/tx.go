package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/jackc/pgx/v5"
)

// txScope tracks the single transaction a writer may hold.
// Writers embed it to get the transaction half of core.Writer.
type txScope struct {
	db core.TxBeginner
	tx pgx.Tx
}

// BeginTransaction opens a transaction. It fails with
// core.ErrTransactionOpen while another one is still open.
func (s *txScope) BeginTransaction(ctx context.Context) error {
	if s.tx != nil {
		return core.ErrTransactionOpen
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// CommitTransaction commits the open transaction. Without one it does nothing.
// The writer is released even when the commit fails.
func (s *txScope) CommitTransaction(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction discards the open transaction. Without one it does nothing.
func (s *txScope) RollbackTransaction(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// current returns the open transaction or core.ErrNoTransaction.
func (s *txScope) current() (pgx.Tx, error) {
	if s.tx == nil {
		return nil, core.ErrNoTransaction
	}
	return s.tx, nil
}
