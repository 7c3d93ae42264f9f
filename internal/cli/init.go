package cli

import (
	"closenote/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file and create the storage directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, created, err := store.EnsureConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := app.persistence()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"config":        cfgPath,
					"configCreated": created,
					"dir":           app.Dir,
					"backend":       app.Backend,
					"storage":       p.KV.Location(),
				},
			})
		},
	}
	return cmd
}
