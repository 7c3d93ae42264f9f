package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"closenote/internal/clipboard"
	"closenote/internal/format"
	"closenote/internal/logging"
	"closenote/internal/report"
	"closenote/internal/session"
	"closenote/internal/store"
	"closenote/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Dir       string
	Backend   string
	Format    string
	Pretty    bool
	Verbose   bool
	LogFile   string
	Ephemeral bool

	title string
	log   *zap.Logger

	// clip and now are replaced in tests.
	clip *clipboard.Clipboard
	now  func() time.Time
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "closenote",
		Short:         "Write the end-of-day closing note (TUI + CLI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor
  closenote

  # Fill the header and a unit from scripts
  closenote set --date today --lead "Sam K" --revenue 1200
  closenote unit set Charlie --priority high --completed "RAM, SSD"

  # Print or copy the report
  closenote show
  closenote copy --workstations
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.resolve(cmd)
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CLOSENOTE_DIR", ""), "Directory holding the draft storage (default: config dir)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("CLOSENOTE_BACKEND", ""), "Storage backend (sqlite|file|memory)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CLOSENOTE_FORMAT", format.JSON), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging (stderr unless --log-file is set)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("CLOSENOTE_LOG", ""), "Write logs to this file")
	cmd.PersistentFlags().BoolVar(&app.Ephemeral, "ephemeral", false, "Keep the draft in memory only (nothing is read or written)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newSetCmd(app))
	cmd.AddCommand(newUnitCmd(app))
	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newCopyCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newWizardCmd(app))

	return cmd
}

// resolve applies config-file defaults under flags and env, then builds the logger.
func (app *App) resolve(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	if strings.TrimSpace(app.Dir) == "" {
		app.Dir = cfg.Dir
	}
	if strings.TrimSpace(app.Dir) == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Dir = d
	}
	if strings.TrimSpace(app.Backend) == "" {
		app.Backend = cfg.Backend
	}
	if app.Ephemeral {
		app.Backend = string(store.BackendMemory)
	}
	backend, err := store.ParseBackend(app.Backend)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Backend = string(backend)
	if strings.TrimSpace(app.LogFile) == "" {
		app.LogFile = cfg.LogFile
	}
	app.title = cfg.Title
	if app.Format, err = format.Parse(app.Format); err != nil {
		return writeErr(cmd, err)
	}

	log, err := logging.New(logging.Options{
		Path:        app.LogFile,
		Verbose:     app.Verbose,
		Interactive: cmd == cmd.Root(),
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = log.With(zap.String("cmd", cmd.CommandPath()))
	return nil
}

func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func (app *App) persistence() (*store.Persistence, error) {
	backend, err := store.ParseBackend(app.Backend)
	if err != nil {
		return nil, err
	}
	kv, err := store.Store{Dir: app.Dir, Backend: backend}.KV()
	if err != nil {
		return nil, err
	}
	return store.NewPersistence(kv, app.logger()), nil
}

func (app *App) clipboardFor(cmd *cobra.Command) *clipboard.Clipboard {
	if app.clip != nil {
		return app.clip
	}
	return clipboard.System(func(text string) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Clipboard unavailable; select and copy the text below:")
		fmt.Fprintln(cmd.ErrOrStderr(), text)
	})
}

func openSession(cmd *cobra.Command, app *App, onChange func()) (*session.Session, error) {
	p, err := app.persistence()
	if err != nil {
		return nil, err
	}
	return session.Open(ctx(cmd), session.Options{
		Persistence: p,
		Clipboard:   app.clipboardFor(cmd),
		Formatter:   report.Formatter{Title: app.title},
		Log:         app.logger(),
		Now:         app.now,
		OnChange:    onChange,
	}), nil
}

// closeSession flushes pending edits; a failed final save is the command's error.
func closeSession(cmd *cobra.Command, s *session.Session) error {
	if err := s.Close(ctx(cmd)); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}

func runTUI(cmd *cobra.Command, app *App) error {
	p, err := app.persistence()
	if err != nil {
		return writeErr(cmd, err)
	}
	notifier := &tui.Notifier{}
	s := session.Open(ctx(cmd), session.Options{
		Persistence: p,
		Clipboard:   clipboard.System(nil),
		Formatter:   report.Formatter{Title: app.title},
		Log:         app.logger(),
		OnChange:    notifier.Notify,
	})
	runErr := tui.Run(ctx(cmd), s, tui.Options{
		Persistence: p,
		Notifier:    notifier,
		Log:         app.logger(),
	})
	if err := s.Close(ctx(cmd)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
