package cli

import (
	"errors"
	"fmt"
	"strings"

	"closenote/internal/model"
	"closenote/internal/session"

	"github.com/spf13/cobra"
)

func newUnitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "unit",
		Aliases: []string{"units"},
		Short:   "Inspect and edit roster units",
	}
	cmd.AddCommand(newUnitListCmd(app))
	cmd.AddCommand(newUnitShowCmd(app))
	cmd.AddCommand(newUnitSetCmd(app))
	cmd.AddCommand(newUnitClearCmd(app))
	cmd.AddCommand(newUnitCollapseCmd(app))
	return cmd
}

func resolveUnitKey(arg string) (string, error) {
	key, ok := model.LookupKey(arg)
	if !ok {
		return "", fmt.Errorf("unknown unit %q (want one of: %s)", arg, strings.Join(model.UnitKeys(), ", "))
	}
	return key, nil
}

func newUnitListCmd(app *App) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List units in roster order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			d := s.Draft()
			units := d.Units
			if activeOnly {
				units = d.ActiveUnits()
			}
			out := make([]unitView, 0, len(units))
			for _, u := range units {
				out = append(out, newUnitView(u))
			}
			if err := writeOut(cmd, app, map[string]any{"data": out}); err != nil {
				return err
			}
			return closeSession(cmd, s)
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only units with at least one item")
	return cmd
}

func newUnitShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <unit>",
		Short: "Show one unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveUnitKey(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			u, _ := s.Draft().Unit(key)
			if err := writeOut(cmd, app, map[string]any{"data": newUnitView(*u)}); err != nil {
				return err
			}
			return closeSession(cmd, s)
		},
	}
}

func newUnitSetCmd(app *App) *cobra.Command {
	var (
		name, priority                   string
		completed, inProgress, remaining string
	)
	cmd := &cobra.Command{
		Use:   "set <unit>",
		Short: "Set a unit's name, priority or item lists",
		Args:  cobra.ExactArgs(1),
		Example: `  closenote unit set Charlie --priority high --completed "RAM, SSD"
  closenote unit set shipping --remaining $'Label printer\nReturns'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveUnitKey(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var edits []func(*session.Session) error
			if cmd.Flags().Changed("name") {
				edits = append(edits, func(s *session.Session) error { return s.SetUnitName(key, name) })
			}
			if cmd.Flags().Changed("priority") {
				p, ok := model.ParsePriority(priority)
				if !ok {
					return writeErr(cmd, fmt.Errorf("invalid priority %q (want Low|Medium|High)", priority))
				}
				edits = append(edits, func(s *session.Session) error { return s.SetUnitPriority(key, p) })
			}
			items := map[string]model.Category{
				"completed":   model.CategoryCompleted,
				"in-progress": model.CategoryInProgress,
				"remaining":   model.CategoryRemaining,
			}
			values := map[string]*string{
				"completed":   &completed,
				"in-progress": &inProgress,
				"remaining":   &remaining,
			}
			for _, flag := range []string{"completed", "in-progress", "remaining"} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				c, text := items[flag], *values[flag]
				edits = append(edits, func(s *session.Session) error { return s.SetUnitItems(key, c, text) })
			}
			if len(edits) == 0 {
				return writeErr(cmd, errors.New("nothing to set; pass --name, --priority, --completed, --in-progress or --remaining"))
			}

			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, edit := range edits {
				if err := edit(s); err != nil {
					_ = s.Close(ctx(cmd))
					return writeErr(cmd, err)
				}
			}
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			u, _ := s.Draft().Unit(key)
			return writeOut(cmd, app, map[string]any{"data": newUnitView(*u)})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (empty resets to the roster key)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (Low|Medium|High)")
	cmd.Flags().StringVar(&completed, "completed", "", "Completed items (comma or newline separated)")
	cmd.Flags().StringVar(&inProgress, "in-progress", "", "In-progress items")
	cmd.Flags().StringVar(&remaining, "remaining", "", "Remaining items")
	return cmd
}

func newUnitClearCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <unit>",
		Short: "Reset a unit's priority and items (name and collapse state are kept)",
		Long: strings.TrimSpace(`
Reset a unit's priority and items. The name and collapse state are kept.

Undo is only offered in the interactive editor; a clear from the command line
is final once the command exits.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveUnitKey(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.ClearUnit(key); err != nil {
				_ = s.Close(ctx(cmd))
				return writeErr(cmd, err)
			}
			if err := closeSession(cmd, s); err != nil {
				return err
			}
			u, _ := s.Draft().Unit(key)
			return writeOut(cmd, app, map[string]any{"data": newUnitView(*u)})
		},
	}
	return cmd
}

func newUnitCollapseCmd(app *App) *cobra.Command {
	var all, expand bool
	cmd := &cobra.Command{
		Use:   "collapse [<unit>]",
		Short: "Collapse (or --expand) one unit or --all units in the editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return writeErr(cmd, errors.New("pass exactly one of <unit> or --all"))
			}
			var key string
			if !all {
				k, err := resolveUnitKey(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				key = k
			}

			s, err := openSession(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if all {
				err = s.SetAllCollapsed(!expand)
			} else {
				err = s.SetCollapsed(key, !expand)
			}
			if err != nil {
				_ = s.Close(ctx(cmd))
				return writeErr(cmd, err)
			}
			if err := closeSession(cmd, s); err != nil {
				return err
			}

			out := make([]unitView, 0)
			for _, u := range s.Draft().Units {
				if all || u.Key == key {
					out = append(out, newUnitView(u))
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Apply to every unit")
	cmd.Flags().BoolVar(&expand, "expand", false, "Expand instead of collapse")
	return cmd
}
