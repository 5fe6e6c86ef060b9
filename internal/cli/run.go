package cli

import (
	"github.com/spf13/cobra"
)

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run [task...]",
		Short: "Run tasks once",
		Long:  "Run the named tasks in registration order. With no arguments, every\nregistered task runs once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				return app.Registry.RunEach(ctx)
			}
			for _, name := range args {
				if err := app.Registry.RunAll(ctx, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
