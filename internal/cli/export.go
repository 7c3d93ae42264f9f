package cli

import (
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the whole draft (header, units, validation) in --format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := writeOut(cmd, app, map[string]any{"data": newDraftView(s.Draft())}); err != nil {
				return err
			}
			return closeSession(cmd, s)
		},
	}
	return cmd
}
