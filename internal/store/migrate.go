package store

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationLogger adapts slog to migrate.Logger.
type migrationLogger struct {
	logger *slog.Logger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l migrationLogger) Verbose() bool {
	return false
}

// MigrationResult reports the schema state after Migrate.
type MigrationResult struct {
	Version uint `json:"version" yaml:"version"`
	Applied bool `json:"applied" yaml:"applied"`
}

// Migrate applies all pending embedded migrations.
func Migrate(pool *pgxpool.Pool, logger *slog.Logger) (MigrationResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := newMigrate(pool)
	if err != nil {
		return MigrationResult{}, err
	}
	defer m.Close()
	m.Log = migrationLogger{logger: logger}

	var result MigrationResult
	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("no new migrations to apply")
	case err != nil:
		version, dirty, _ := m.Version()
		logger.Error("migration failed", "version", version, "dirty", dirty, "error", err)
		return MigrationResult{}, fmt.Errorf("apply migrations: %w", err)
	default:
		result.Applied = true
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("read migration version: %w", err)
	}
	result.Version = version

	if result.Applied {
		logger.Info("applied migrations", "version", version)
	}
	return result, nil
}

func newMigrate(pool *pgxpool.Pool) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(pool), &migratepgx.Config{})
	if err != nil {
		return nil, fmt.Errorf("open migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
