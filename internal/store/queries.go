package store

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// Reference entity queries
// =============================================================================

func listEmployees(ctx context.Context, db DBTX) ([]*core.Employee, error) {
	rows, err := db.Query(ctx, "SELECT id, employee_id, name FROM employees ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*core.Employee, error) {
		var e core.Employee
		err := row.Scan(&e.ID, &e.EmployeeID, &e.Name)
		return &e, err
	})
}

func listProjects(ctx context.Context, db DBTX) ([]*core.Project, error) {
	rows, err := db.Query(ctx, "SELECT id, code FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*core.Project, error) {
		var p core.Project
		err := row.Scan(&p.ID, &p.Code)
		return &p, err
	})
}

func listGiftCategories(ctx context.Context, db DBTX) ([]*core.GiftCategory, error) {
	rows, err := db.Query(ctx, "SELECT id, name FROM gift_categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query gift categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*core.GiftCategory, error) {
		var c core.GiftCategory
		err := row.Scan(&c.ID, &c.Name)
		return &c, err
	})
}

// =============================================================================
// Inserts
// =============================================================================

// insertReturningIDs queues one INSERT ... RETURNING id per entity and
// stores each generated key through setID.
func insertReturningIDs[E any](ctx context.Context, db DBTX, entities []E, sql string, args func(E) []any, setID func(E, int64)) error {
	if len(entities) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entities {
		batch.Queue(sql, args(e)...).QueryRow(func(row pgx.Row) error {
			var id int64
			if err := row.Scan(&id); err != nil {
				return err
			}
			setID(e, id)
			return nil
		})
	}
	return db.SendBatch(ctx, batch).Close()
}

// unsaved returns the distinct entities in refs that have no ID yet,
// in first-seen order.
func unsaved[E comparable](refs []E, id func(E) int64) []E {
	var zero E
	seen := make(map[E]bool)
	var out []E
	for _, r := range refs {
		if r == zero || seen[r] || id(r) != 0 {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// =============================================================================
// pgtype conversion
// =============================================================================

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func pgTime(c core.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: c.Duration().Microseconds(), Valid: true}
}

func clockFromPg(t pgtype.Time) core.Clock {
	return core.ClockFromDuration(time.Duration(t.Microseconds) * time.Microsecond)
}

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
