package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/jackc/pgx/v5"
)

var timeEntryColumns = []string{"employee_id", "project_id", "entry_date", "start_time", "end_time", "description"}

// TimesheetWriter replaces time_entries on each import. Employees and
// projects outlive imports; new ones are inserted and employee names
// are brought up to date.
type TimesheetWriter struct {
	txScope
}

// NewTimesheetWriter returns a writer that opens transactions on db.
func NewTimesheetWriter(db core.TxBeginner) *TimesheetWriter {
	return &TimesheetWriter{txScope{db: db}}
}

func (w *TimesheetWriter) ClearAll(ctx context.Context) error {
	tx, err := w.current()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM time_entries"); err != nil {
		return fmt.Errorf("clear time entries: %w", err)
	}
	return nil
}

func (w *TimesheetWriter) LoadReferences(ctx context.Context) (core.References, error) {
	tx, err := w.current()
	if err != nil {
		return core.References{}, err
	}

	employees, err := listEmployees(ctx, tx)
	if err != nil {
		return core.References{}, err
	}
	projects, err := listProjects(ctx, tx)
	if err != nil {
		return core.References{}, err
	}
	return core.References{Employees: employees, Projects: projects}, nil
}

func (w *TimesheetWriter) WriteRecords(ctx context.Context, entries []*core.TimeEntry) error {
	tx, err := w.current()
	if err != nil {
		return err
	}

	employees := make([]*core.Employee, len(entries))
	projects := make([]*core.Project, len(entries))
	for i, e := range entries {
		employees[i] = e.Employee
		projects[i] = e.Project
	}

	if err := saveEmployees(ctx, tx, employees); err != nil {
		return err
	}
	err = insertReturningIDs(ctx, tx, unsaved(projects, func(p *core.Project) int64 { return p.ID }),
		"INSERT INTO projects (code) VALUES ($1) RETURNING id",
		func(p *core.Project) []any { return []any{p.Code} },
		func(p *core.Project, id int64) { p.ID = id })
	if err != nil {
		return fmt.Errorf("insert projects: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"time_entries"}, timeEntryColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{e.Employee.ID, e.Project.ID, pgDate(e.Date), pgTime(e.Start), pgTime(e.End), e.Description}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy time entries: %w", err)
	}
	return nil
}

// saveEmployees inserts new employees and renames existing ones whose
// name changed in the imported file.
func saveEmployees(ctx context.Context, db DBTX, refs []*core.Employee) error {
	err := insertReturningIDs(ctx, db, unsaved(refs, func(e *core.Employee) int64 { return e.ID }),
		"INSERT INTO employees (employee_id, name) VALUES ($1, $2) RETURNING id",
		func(e *core.Employee) []any { return []any{e.EmployeeID, e.Name} },
		func(e *core.Employee, id int64) { e.ID = id })
	if err != nil {
		return fmt.Errorf("insert employees: %w", err)
	}

	seen := make(map[*core.Employee]bool)
	for _, e := range refs {
		if e == nil || seen[e] {
			continue
		}
		seen[e] = true
		if _, err := db.Exec(ctx, "UPDATE employees SET name = $2 WHERE id = $1 AND name <> $2", e.ID, e.Name); err != nil {
			return fmt.Errorf("update employee %s: %w", e.EmployeeID, err)
		}
	}
	return nil
}
