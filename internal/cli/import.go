package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/JonMunkholm/lineimport/internal/store"
	"github.com/spf13/cobra"
)

// importResult is printed after a successful import.
type importResult struct {
	Format     string `json:"format" yaml:"format"`
	Source     string `json:"source" yaml:"source"`
	DryRun     bool   `json:"dryRun" yaml:"dryRun"`
	Records    int    `json:"records" yaml:"records"`
	DurationMs int64  `json:"durationMs" yaml:"durationMs"`
}

func (a *app) importCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <format> <path>",
		Short: "Import a text file, replacing the stored records of its format",
		Long: `Import parses the file at <path> with the grammar of <format> and, if
every line is valid, replaces all stored records of that format.
Employees, projects and gift categories are kept and linked.

Run "importer formats" for the available formats and examples.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), args[0], args[1], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and roll back without changing data")
	return cmd
}

func (a *app) runImport(ctx context.Context, format, path string, dryRun bool) error {
	if _, ok := core.Get(format); !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownFormat, format)
	}

	cfg, err := a.setup()
	if err != nil {
		return err
	}

	pool, err := a.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if _, err := store.Migrate(pool, a.logger); err != nil {
			return err
		}
	}

	runner, err := core.NewRunner(format, core.Env{
		DB:       pool,
		Reader:   core.OSFileReader{MaxSize: cfg.Import.MaxFileSize},
		Recorder: store.New(pool),
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Import.Timeout)
	defer cancel()

	start := time.Now()
	n, err := runner.ImportFrom(ctx, path, dryRun)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	result := importResult{
		Format:     format,
		Source:     path,
		DryRun:     dryRun,
		Records:    n,
		DurationMs: elapsed.Milliseconds(),
	}
	return render(a.stdout, a.output, result, func(w io.Writer) error {
		verb := "Imported"
		if dryRun {
			verb = "Validated (dry run, nothing saved)"
		}
		_, err := fmt.Fprintf(w, "%s %d %s records from %s in %s\n",
			verb, n, format, path, elapsed.Round(time.Millisecond))
		return err
	})
}
