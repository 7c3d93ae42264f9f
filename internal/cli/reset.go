package cli

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errResetNotConfirmed = errors.New("reset not confirmed; pass --yes to skip the prompt")

func newResetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved draft and start over with the default roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirmReset()
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeErr(cmd, errResetNotConfirmed)
				}
			}

			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Reset(ctx(cmd)); err != nil {
				_ = s.Close(ctx(cmd))
				return writeErr(cmd, err)
			}
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"reset": true}})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirmReset asks on a terminal; without one there is nobody to ask.
func confirmReset() (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}
	ok := false
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Reset the closing note?").
			Description("This clears every field and deletes the saved draft.").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&ok),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
