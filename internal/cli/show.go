package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var workstations bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the closing note as it would be copied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			text := s.Report()
			if workstations {
				text = s.WorkstationsReport()
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
				return err
			}
			return closeSession(cmd, s)
		},
	}
	cmd.Flags().BoolVar(&workstations, "workstations", false, "Print only the workstations block")
	return cmd
}
