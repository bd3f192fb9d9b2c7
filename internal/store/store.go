package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultRunLimit caps ListRuns when no positive limit is given.
const DefaultRunLimit = 50

// Store reads imported data outside of import transactions and records
// import history.
type Store struct {
	pool *pgxpool.Pool
	db   DBTX
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Pool returns the underlying pool, which also serves as the
// transaction source for the format writers.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// =============================================================================
// Listings
// =============================================================================

func (s *Store) ListTodos(ctx context.Context) ([]*core.TodoItem, error) {
	rows, err := s.db.Query(ctx, "SELECT id, title, assignee, is_completed FROM todo_items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query todo items: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*core.TodoItem, error) {
		var t core.TodoItem
		err := row.Scan(&t.ID, &t.Title, &t.Assignee, &t.IsCompleted)
		return &t, err
	})
}

func (s *Store) ListEmployees(ctx context.Context) ([]*core.Employee, error) {
	return listEmployees(ctx, s.db)
}

func (s *Store) ListProjects(ctx context.Context) ([]*core.Project, error) {
	return listProjects(ctx, s.db)
}

func (s *Store) ListGiftCategories(ctx context.Context) ([]*core.GiftCategory, error) {
	return listGiftCategories(ctx, s.db)
}

func (s *Store) ListWishlists(ctx context.Context) ([]*core.Wishlist, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name FROM wishlists ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query wishlists: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*core.Wishlist, error) {
		var w core.Wishlist
		err := row.Scan(&w.ID, &w.Name)
		return &w, err
	})
}

// ListTimeEntries returns time entries in import order with their
// employee and project attached. Entries sharing an employee or project
// share the pointer.
func (s *Store) ListTimeEntries(ctx context.Context, filter core.TimeEntryFilter) ([]*core.TimeEntry, error) {
	query, args := timeEntryQuery(filter)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}

	employees := make(map[int64]*core.Employee)
	projects := make(map[int64]*core.Project)

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*core.TimeEntry, error) {
		var (
			e          core.TimeEntry
			emp        core.Employee
			proj       core.Project
			date       pgtype.Date
			start, end pgtype.Time
		)
		err := row.Scan(&e.ID, &date, &start, &end, &e.Description,
			&emp.ID, &emp.EmployeeID, &emp.Name, &proj.ID, &proj.Code)
		if err != nil {
			return nil, err
		}

		e.Date = date.Time
		e.Start = clockFromPg(start)
		e.End = clockFromPg(end)

		if cached, ok := employees[emp.ID]; ok {
			e.Employee = cached
		} else {
			e.Employee = &emp
			employees[emp.ID] = &emp
		}
		if cached, ok := projects[proj.ID]; ok {
			e.Project = cached
		} else {
			e.Project = &proj
			projects[proj.ID] = &proj
		}
		return &e, nil
	})
}

func timeEntryQuery(filter core.TimeEntryFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	if filter.EmployeeID != 0 {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("t.employee_id = $%d", len(args)))
	}
	if filter.ProjectID != 0 {
		args = append(args, filter.ProjectID)
		conditions = append(conditions, fmt.Sprintf("t.project_id = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT t.id, t.entry_date, t.start_time, t.end_time, t.description,
       e.id, e.employee_id, e.name, p.id, p.code
FROM time_entries t
JOIN employees e ON e.id = t.employee_id
JOIN projects p ON p.id = t.project_id`)
	if len(conditions) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString("\nORDER BY t.id")
	return b.String(), args
}

// =============================================================================
// Import history
// =============================================================================

// RecordRun implements core.Recorder.
func (s *Store) RecordRun(ctx context.Context, run core.ImportRun) error {
	_, err := s.db.Exec(ctx, `INSERT INTO import_runs
    (id, format, source, dry_run, status, records, error, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pgtype.UUID{Bytes: run.ID, Valid: true},
		run.Format,
		run.Source,
		run.DryRun,
		string(run.Status),
		run.Records,
		pgText(run.Error),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent import runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]core.ImportRun, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	rows, err := s.db.Query(ctx, `SELECT id, format, source, dry_run, status, records, error, started_at, finished_at
FROM import_runs
ORDER BY started_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ImportRun, error) {
		var (
			run    core.ImportRun
			id     pgtype.UUID
			status string
			errMsg pgtype.Text
		)
		err := row.Scan(&id, &run.Format, &run.Source, &run.DryRun, &status,
			&run.Records, &errMsg, &run.StartedAt, &run.FinishedAt)
		run.ID = uuid.UUID(id.Bytes)
		run.Status = core.RunStatus(status)
		run.Error = errMsg.String
		return run, err
	})
}
