package cli

import (
	"errors"
	"os"
	"strings"
	"time"

	"closenote/internal/model"
	"closenote/internal/session"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// headerAnswers holds the wizard's form values.
type headerAnswers struct {
	Date           string
	Lead           string
	Revenue        string
	Budget         string
	Notes          string
	ShowOnlyActive bool
}

func answersFrom(d *model.Draft) headerAnswers {
	return headerAnswers{
		Date:           d.ClosingDate,
		Lead:           d.Lead,
		Revenue:        d.Revenue,
		Budget:         d.Budget,
		Notes:          d.ImportantNotes,
		ShowOnlyActive: d.ShowOnlyActive,
	}
}

// apply writes only the answers that differ from the draft, so an unchanged
// wizard run does not schedule a save.
func (a headerAnswers) apply(s *session.Session) error {
	cur := answersFrom(s.Draft())
	var errs []error
	if a.Date != cur.Date {
		errs = append(errs, s.SetClosingDate(a.Date))
	}
	if a.Lead != cur.Lead {
		errs = append(errs, s.SetLead(a.Lead))
	}
	if a.Revenue != cur.Revenue {
		errs = append(errs, s.SetRevenue(a.Revenue))
	}
	if a.Budget != cur.Budget {
		errs = append(errs, s.SetBudget(a.Budget))
	}
	if a.Notes != cur.Notes {
		errs = append(errs, s.SetNotes(a.Notes))
	}
	if a.ShowOnlyActive != cur.ShowOnlyActive {
		errs = append(errs, s.SetShowOnlyActive(a.ShowOnlyActive))
	}
	return errors.Join(errs...)
}

func validateDateAnswer(now func() time.Time) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("date is required (YYYY-MM-DD or today)")
		}
		_, err := model.NormalizeDate(v, now())
		return err
	}
}

func headerForm(a *headerAnswers, now func() time.Time) *huh.Form {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Closing date").
				Description("YYYY-MM-DD, today or yesterday").
				Placeholder(now().Format(model.DateLayout)).
				Validate(validateDateAnswer(now)).
				Value(&a.Date),
			huh.NewInput().
				Title("Closing agent").
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return errors.New("closing agent name is required")
					}
					return nil
				}).
				Value(&a.Lead),
			huh.NewInput().
				Title("Revenue").
				Value(&a.Revenue),
			huh.NewInput().
				Title("Budget").
				Value(&a.Budget),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Important notes").
				Description("One note per line").
				Value(&a.Notes),
			huh.NewConfirm().
				Title("Show only active units in the editor?").
				Value(&a.ShowOnlyActive),
		),
	)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}

func newWizardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill the header fields with an interactive form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			now := app.now
			if now == nil {
				now = time.Now
			}

			answers := answersFrom(s.Draft())
			if err := headerForm(&answers, now).RunWithContext(ctx(cmd)); err != nil {
				_ = s.Close(ctx(cmd))
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return writeErr(cmd, err)
			}
			if err := answers.apply(s); err != nil {
				_ = s.Close(ctx(cmd))
				return writeErr(cmd, err)
			}
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": newDraftView(s.Draft())})
		},
	}
	return cmd
}
