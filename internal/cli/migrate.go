package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/lineimport/internal/store"
	"github.com/spf13/cobra"
)

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMigrate(cmd.Context())
		},
	}
}

func (a *app) runMigrate(ctx context.Context) error {
	cfg, err := a.setup()
	if err != nil {
		return err
	}

	pool, err := a.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	result, err := store.Migrate(pool, a.logger)
	if err != nil {
		return err
	}

	return render(a.stdout, a.output, result, func(w io.Writer) error {
		state := "already up to date"
		if result.Applied {
			state = "migrated"
		}
		_, err := fmt.Fprintf(w, "Schema %s at version %d\n", state, result.Version)
		return err
	})
}
