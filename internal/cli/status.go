package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the draft lives and whether it is ready to copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.persistence()
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			d := s.Draft()
			savedAt := ""
			if !d.SavedAt.IsZero() {
				savedAt = d.SavedAt.Format(time.RFC3339)
			}
			data := map[string]any{
				"dir":         app.Dir,
				"backend":     app.Backend,
				"storage":     p.KV.Location(),
				"hasDraft":    p.HasDraft(ctx(cmd)),
				"restored":    s.Loaded(),
				"savedAt":     savedAt,
				"saveStatus":  s.SaveStatus(),
				"activeUnits": len(d.ActiveUnits()),
				"units":       len(d.Units),
				"valid":       s.Validate().OK,
			}
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	return cmd
}
