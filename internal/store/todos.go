package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/jackc/pgx/v5"
)

var todoColumns = []string{"title", "assignee", "is_completed"}

// TodoWriter replaces the todo_items table on each import.
type TodoWriter struct {
	txScope
}

// NewTodoWriter returns a writer that opens transactions on db.
func NewTodoWriter(db core.TxBeginner) *TodoWriter {
	return &TodoWriter{txScope{db: db}}
}

func (w *TodoWriter) ClearAll(ctx context.Context) error {
	tx, err := w.current()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM todo_items"); err != nil {
		return fmt.Errorf("clear todo items: %w", err)
	}
	return nil
}

// LoadReferences returns an empty snapshot; todo items link to nothing.
func (w *TodoWriter) LoadReferences(ctx context.Context) (core.References, error) {
	if _, err := w.current(); err != nil {
		return core.References{}, err
	}
	return core.References{}, nil
}

func (w *TodoWriter) WriteRecords(ctx context.Context, items []*core.TodoItem) error {
	tx, err := w.current()
	if err != nil {
		return err
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"todo_items"}, todoColumns,
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{it.Title, it.Assignee, it.IsCompleted}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy todo items: %w", err)
	}
	return nil
}
