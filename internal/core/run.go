package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the outcome of an import run.
type RunStatus string

const (
	RunCommitted  RunStatus = "committed"
	RunRolledBack RunStatus = "rolled_back"
	RunFailed     RunStatus = "failed"
)

// ImportRun is the history entry written for every import attempt,
// including dry runs and failures.
type ImportRun struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Format     string    `json:"format" yaml:"format"`
	Source     string    `json:"source" yaml:"source"`
	DryRun     bool      `json:"dryRun" yaml:"dryRun"`
	Status     RunStatus `json:"status" yaml:"status"`
	Records    int       `json:"records" yaml:"records"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`
}

// Duration returns how long the run took.
func (r ImportRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Recorder stores import history outside the import transaction.
type Recorder interface {
	RecordRun(ctx context.Context, run ImportRun) error
}
