package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Runner is the format-independent entry point of an import.
type Runner interface {
	// ImportFrom imports the file at sourcePath and returns the number of
	// records parsed. With dryRun set every change is rolled back.
	ImportFrom(ctx context.Context, sourcePath string, dryRun bool) (int, error)
}

// Importer drives one format through
// begin → clear → read → parse → write → commit or rollback.
//
// Content and read errors are returned unchanged so callers can match
// them with errors.Is. The writer is rolled back on every failure.
type Importer[T any] struct {
	format   string
	reader   FileReader
	parser   Parser[T]
	writer   Writer[T]
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewImporter wires a reader, parser and writer for one format.
func NewImporter[T any](format string, reader FileReader, parser Parser[T], writer Writer[T]) *Importer[T] {
	return &Importer[T]{
		format: format,
		reader: reader,
		parser: parser,
		writer: writer,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// WithRecorder stores a history entry for every run.
func (im *Importer[T]) WithRecorder(r Recorder) *Importer[T] {
	im.recorder = r
	return im
}

// WithLogger replaces the default logger.
func (im *Importer[T]) WithLogger(l *slog.Logger) *Importer[T] {
	if l != nil {
		im.logger = l
	}
	return im
}

// ImportFrom implements Runner.
func (im *Importer[T]) ImportFrom(ctx context.Context, sourcePath string, dryRun bool) (int, error) {
	run := ImportRun{
		ID:        uuid.New(),
		Format:    im.format,
		Source:    sourcePath,
		DryRun:    dryRun,
		StartedAt: im.now(),
	}
	logger := im.logger.With("run_id", run.ID, "format", im.format, "source", sourcePath, "dry_run", dryRun)

	count, status, err := im.execute(ctx, logger, sourcePath, dryRun)

	run.Status = status
	run.Records = count
	run.FinishedAt = im.now()
	if err != nil {
		run.Error = err.Error()
	}
	im.record(ctx, logger, run)

	if err != nil {
		logger.Warn("import failed", "error", err, "duration", run.Duration())
		return 0, err
	}

	logger.Info("import finished", "status", status, "records", count, "duration", run.Duration())
	return count, nil
}

func (im *Importer[T]) execute(ctx context.Context, logger *slog.Logger, sourcePath string, dryRun bool) (int, RunStatus, error) {
	if err := im.writer.BeginTransaction(ctx); err != nil {
		return 0, RunFailed, fmt.Errorf("begin import transaction: %w", err)
	}
	logger.Debug("transaction opened")

	// Rollback and commit must still reach the database when ctx is done.
	cleanupCtx := context.WithoutCancel(ctx)

	count, err := im.stages(ctx, sourcePath)
	if err != nil {
		if rbErr := im.writer.RollbackTransaction(cleanupCtx); rbErr != nil {
			logger.Error("rollback after failed import", "error", rbErr)
		}
		return 0, RunFailed, err
	}

	if dryRun {
		if err := im.writer.RollbackTransaction(cleanupCtx); err != nil {
			return 0, RunFailed, fmt.Errorf("roll back dry run: %w", err)
		}
		return count, RunRolledBack, nil
	}

	if err := im.writer.CommitTransaction(ctx); err != nil {
		if rbErr := im.writer.RollbackTransaction(cleanupCtx); rbErr != nil {
			logger.Error("rollback after failed commit", "error", rbErr)
		}
		return 0, RunFailed, err
	}
	return count, RunCommitted, nil
}

func (im *Importer[T]) stages(ctx context.Context, sourcePath string) (int, error) {
	if err := im.writer.ClearAll(ctx); err != nil {
		return 0, err
	}

	content, err := im.reader.ReadAllText(ctx, sourcePath)
	if err != nil {
		return 0, err
	}

	refs, err := im.writer.LoadReferences(ctx)
	if err != nil {
		return 0, err
	}

	records, err := im.parser.Parse(content, refs)
	if err != nil {
		return 0, err
	}

	if err := im.writer.WriteRecords(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (im *Importer[T]) record(ctx context.Context, logger *slog.Logger, run ImportRun) {
	if im.recorder == nil {
		return
	}
	if err := im.recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("record import run", "error", err)
	}
}
