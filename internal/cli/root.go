// Package cli implements the importer command line.
//
//	importer import <format> <path> [--dry-run] [--output text|json|yaml]
//	importer formats
//	importer migrate
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/lineimport/internal/config"
	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/JonMunkholm/lineimport/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// app carries what the subcommands share.
type app struct {
	output  string
	verbose bool

	stdout io.Writer
	stderr io.Writer

	// loadConfig and connect are replaced in tests.
	loadConfig func() (*config.Config, error)
	connect    func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error)

	logger *slog.Logger
}

// NewRootCommand builds the importer command tree.
func NewRootCommand() *cobra.Command {
	a := &app{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.Load,
		connect:    connect,
	}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "importer",
		Short: "Import todo lists, timesheets and wishlists from text files",
		Long: `importer reads a line-oriented text file, validates every line and
replaces the stored records of that format in one transaction.

A file with any invalid line is rejected as a whole; the error names the
line and the problem. Use --dry-run to validate without changing data.

Example Usage:
  importer formats
  importer import timesheet ./jane.txt --dry-run
  importer import todo ./todos.txt --output json
  importer migrate`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.stdout = cmd.OutOrStdout()
			a.stderr = cmd.ErrOrStderr()
		},
	}

	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "Output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.importCommand(), a.formatsCommand(), a.migrateCommand())
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", core.FormatUserError(err))
		os.Exit(1)
	}
}

// setup loads configuration and installs the logger.
func (a *app) setup() (*config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.Setup(level, cfg.Logging.Format, a.stderr)
	return cfg, nil
}

// connect opens and verifies a pool sized from cfg.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
