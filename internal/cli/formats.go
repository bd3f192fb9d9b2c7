package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/spf13/cobra"
)

func (a *app) formatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the import formats with an example of each",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runFormats()
		},
	}
}

func (a *app) runFormats() error {
	defs := core.All()
	infos := make([]core.FormatInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}

	return render(a.stdout, a.output, infos, func(w io.Writer) error {
		for i, info := range infos {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s - %s\n  %s\n\n", info.Key, info.Label, info.Description)
			for _, line := range strings.Split(info.Example, "\n") {
				if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
