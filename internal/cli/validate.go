package cli

import (
	"github.com/spf13/cobra"
)

func newValidateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the required fields (exits non-zero when any is missing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			res := s.Validate()
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			if err := writeOut(cmd, app, map[string]any{"data": res}); err != nil {
				return err
			}
			if err := res.Err(); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	return cmd
}
