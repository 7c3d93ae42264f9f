// Package tui is the interactive closing-note editor.
package tui

import (
	"context"
	"errors"
	"sync/atomic"

	"closenote/internal/session"
	"closenote/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	// Persistence, when backed by disk, is watched so edits made by another
	// process show up here.
	Persistence *store.Persistence
	// Notifier must be the OnChange hook of the session passed to Run.
	Notifier *Notifier
	Log      *zap.Logger
}

// Notifier forwards session callbacks into the running program. It is
// created before the program exists, so it is attached late.
type Notifier struct {
	p atomic.Pointer[tea.Program]
}

func (n *Notifier) attach(p *tea.Program) {
	if n != nil {
		n.p.Store(p)
	}
}

// Notify is safe to call from any goroutine and never blocks.
func (n *Notifier) Notify() {
	if n == nil {
		return
	}
	if p := n.p.Load(); p != nil {
		go p.Send(sessionChangedMsg{})
	}
}

func Run(ctx context.Context, s *session.Session, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newAppModel(s, log)
	if opts.Persistence != nil {
		if dir, prefix, ok := opts.Persistence.WatchTarget(); ok {
			ch, err := store.Watch(ctx, dir, prefix)
			if err != nil {
				log.Warn("store watch unavailable", zap.String("dir", dir), zap.Error(err))
			} else {
				m.storeEvents = ch
			}
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	opts.Notifier.attach(p)
	defer opts.Notifier.attach(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
