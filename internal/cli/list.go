package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, t := range app.Registry.Tasks() {
				fmt.Fprintln(out, t.Describe())
				if globs := t.WatchGlobs(); len(globs) > 0 {
					fmt.Fprintf(out, "  watch: %v\n", globs)
				}
			}
			return nil
		},
	}
}
