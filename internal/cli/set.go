package cli

import (
	"errors"

	"closenote/internal/session"

	"github.com/spf13/cobra"
)

func newSetCmd(app *App) *cobra.Command {
	var (
		date, lead, revenue, budget, notes string
		showOnlyActive                     bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set header fields (only the flags given are changed)",
		Args:  cobra.NoArgs,
		Example: `  closenote set --date today --lead "Sam K"
  closenote set --notes $'Front door sticks\nCall vendor'
  closenote set --show-only-active=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			type setter struct {
				flag  string
				apply func(*session.Session) error
			}
			setters := []setter{
				{"date", func(s *session.Session) error { return s.SetClosingDate(date) }},
				{"lead", func(s *session.Session) error { return s.SetLead(lead) }},
				{"revenue", func(s *session.Session) error { return s.SetRevenue(revenue) }},
				{"budget", func(s *session.Session) error { return s.SetBudget(budget) }},
				{"notes", func(s *session.Session) error { return s.SetNotes(notes) }},
				{"show-only-active", func(s *session.Session) error { return s.SetShowOnlyActive(showOnlyActive) }},
			}

			var todo []setter
			for _, st := range setters {
				if cmd.Flags().Changed(st.flag) {
					todo = append(todo, st)
				}
			}
			if len(todo) == 0 {
				return writeErr(cmd, errors.New("nothing to set; pass at least one of --date --lead --revenue --budget --notes --show-only-active"))
			}

			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, st := range todo {
				if err := st.apply(s); err != nil {
					_ = s.Close(ctx(cmd))
					return writeErr(cmd, err)
				}
			}
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": newDraftView(s.Draft())})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Closing date (YYYY-MM-DD, today, yesterday; empty unsets)")
	cmd.Flags().StringVar(&lead, "lead", "", "Closing agent name")
	cmd.Flags().StringVar(&revenue, "revenue", "", "Revenue (free text)")
	cmd.Flags().StringVar(&budget, "budget", "", "Budget (free text)")
	cmd.Flags().StringVar(&notes, "notes", "", "Important notes (one per line)")
	cmd.Flags().BoolVar(&showOnlyActive, "show-only-active", false, "Hide units without items in the editor")
	return cmd
}
