package core

import "context"

// Writer persists one format's records with clear-then-write semantics.
//
// ClearAll, LoadReferences and WriteRecords require an open transaction
// and fail with ErrNoTransaction otherwise. BeginTransaction fails with
// ErrTransactionOpen if one is already open. CommitTransaction and
// RollbackTransaction are no-ops without an open transaction, so a
// rollback after a failed commit is safe.
type Writer[T any] interface {
	BeginTransaction(ctx context.Context) error

	// ClearAll removes the records previously imported for this format.
	// Reference entities (employees, projects, categories) are kept.
	ClearAll(ctx context.Context) error

	// LoadReferences returns the persisted reference entities records
	// may link to.
	LoadReferences(ctx context.Context) (References, error)

	// WriteRecords stores records and any reference entities they link to
	// that are not yet persisted.
	WriteRecords(ctx context.Context, records []T) error

	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}
