package cli

import (
	"closenote/internal/session"

	"github.com/spf13/cobra"
)

func newCopyCmd(app *App) *cobra.Command {
	var workstations bool
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Validate and copy the closing note to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			variant := session.VariantFull
			if workstations {
				variant = session.VariantWorkstations
			}
			out, copyErr := s.Copy(ctx(cmd), variant)
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			if err := writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"variant":    variant.String(),
					"status":     out.Status.String(),
					"message":    out.Message,
					"validation": out.Validation,
				},
			}); err != nil {
				return err
			}
			if copyErr != nil {
				return writeErr(cmd, copyErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&workstations, "workstations", false, "Copy only the workstations block")
	return cmd
}
