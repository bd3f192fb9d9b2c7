package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// testPool connects to TEST_DATABASE_URL and migrates it, or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := Migrate(pool, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestTimesheetWriter_Postgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := New(pool)

	content := "EMP-ID: 77001\nEMP-NAME: Jane Doe\nTIMESHEETS: 2024-01-15\n" +
		"09:00;12:00;\"Feature\";ITEST1\n13:00;14:00;\"Review\";ITEST1\n"

	imp := core.NewImporter[*core.TimeEntry]("timesheet",
		core.StaticReader{Content: []byte(content)},
		core.TimesheetParser{},
		NewTimesheetWriter(pool),
	).WithRecorder(s)

	n, err := imp.ImportFrom(ctx, "inline", false)
	if err != nil {
		t.Fatalf("ImportFrom() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d entries, want 2", n)
	}

	entries, err := s.ListTimeEntries(ctx, core.TimeEntryFilter{})
	if err != nil {
		t.Fatalf("ListTimeEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("listed %d entries, want 2", len(entries))
	}
	if entries[0].Project != entries[1].Project {
		t.Error("listed entries with one project code must share the Project")
	}
	if entries[0].Start != (core.Clock{Hour: 9}) || entries[0].Description != "Feature" {
		t.Errorf("first entry = %+v", entries[0])
	}

	// A second import replaces entries but keeps and renames the employee.
	renamed := "EMP-ID: 77001\nEMP-NAME: Jane Smith\nTIMESHEETS: 2024-01-16\n08:00;09:00;\"Standup\";ITEST1\n"
	imp = core.NewImporter[*core.TimeEntry]("timesheet",
		core.StaticReader{Content: []byte(renamed)},
		core.TimesheetParser{},
		NewTimesheetWriter(pool),
	)
	if _, err := imp.ImportFrom(ctx, "inline", false); err != nil {
		t.Fatalf("second ImportFrom() error = %v", err)
	}

	entries, err = s.ListTimeEntries(ctx, core.TimeEntryFilter{EmployeeID: entries[0].Employee.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Employee.Name != "Jane Smith" {
		t.Errorf("after re-import got %d entries, employee %+v", len(entries), entries)
	}
}

func TestStore_RecordRun_Postgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	s := New(pool)

	started := time.Now().UTC().Truncate(time.Microsecond)
	run := core.ImportRun{
		ID:         uuid.New(),
		Format:     "todo",
		Source:     "todos.txt",
		DryRun:     true,
		Status:     core.RunRolledBack,
		Records:    4,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, err := s.ListRuns(ctx, 100)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	for _, r := range runs {
		if r.ID == run.ID {
			if r.Status != core.RunRolledBack || r.Records != 4 || !r.DryRun || r.Error != "" {
				t.Errorf("stored run = %+v", r)
			}
			return
		}
	}
	t.Errorf("run %s not listed", run.ID)
}
