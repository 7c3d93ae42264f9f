// Package session ties the draft to its report, validation, undo and storage.
//
// Every edit goes through a Session mutator, which updates the in-memory
// draft and schedules a debounced save. Reports and validation are computed
// on demand from the current draft, so they are never stale. Storage and
// clipboard failures are turned into status text; the in-memory draft is
// never lost because of them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"closenote/internal/clipboard"
	"closenote/internal/model"
	"closenote/internal/report"
	"closenote/internal/store"
	"closenote/internal/undo"
	"closenote/internal/validate"

	"go.uber.org/zap"
)

const (
	MsgSaveFailed  = "Could not save (storage blocked)."
	MsgResetFailed = "Could not delete saved draft (storage blocked)."
	MsgCopyFailed  = "Copy failed. Try selecting text manually."
)

var ErrUnknownUnit = errors.New("unknown unit")

type Options struct {
	Persistence *store.Persistence
	Clipboard   *clipboard.Clipboard
	Formatter   report.Formatter
	Log         *zap.Logger

	// SaveDebounce defaults to store.DefaultSaveDebounce.
	SaveDebounce time.Duration
	// UndoWindow defaults to undo.DefaultWindow.
	UndoWindow time.Duration
	Now        func() time.Time

	// OnChange is called from timer goroutines after a background save or an
	// undo expiry changed what the UI shows. It must not block.
	OnChange func()
}

type Session struct {
	mu     sync.Mutex
	draft  *model.Draft
	loaded bool
	gen    uint64
	// rev counts edits; Reload uses it to notice an edit made while it read storage.
	rev uint64
	// savedAt is the stamp of the blob this session last wrote or loaded.
	savedAt time.Time

	saveStatus  string
	copyStatus  string
	lastSaveErr error

	persist  *store.Persistence
	clip     *clipboard.Clipboard
	format   report.Formatter
	undo     *undo.Controller
	saver    *store.DebouncedSaver
	log      *zap.Logger
	now      func() time.Time
	onChange func()
}

// Open loads the stored draft (or the default roster) and starts a session.
func Open(ctx context.Context, opts Options) *Session {
	s := &Session{
		persist:  opts.Persistence,
		clip:     opts.Clipboard,
		format:   opts.Formatter,
		log:      opts.Log,
		now:      opts.Now,
		onChange: opts.OnChange,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.persist == nil {
		s.persist = store.NewPersistence(store.NewMemKV(), s.log)
	}
	if s.clip == nil {
		s.clip = clipboard.System(nil)
	}
	s.undo = &undo.Controller{Window: opts.UndoWindow, Now: s.now, OnExpire: s.undoExpired}
	s.saver = store.NewDebouncedSaver(opts.SaveDebounce, s.saveNow)

	s.draft, s.loaded = s.persist.Load(ctx)
	if s.loaded && !s.draft.SavedAt.IsZero() {
		s.saveStatus = savedStatus(s.draft.SavedAt)
		s.savedAt = s.draft.SavedAt
	}
	s.log.Debug("session opened", zap.Bool("restored", s.loaded), zap.String("storage", s.persist.KV.Location()))
	return s
}

func savedStatus(ts time.Time) string {
	return "Last saved: " + ts.Local().Format("15:04")
}

// Close writes any pending edit and drops undo slots. It returns the error of
// the final save, if that save failed.
func (s *Session) Close(ctx context.Context) error {
	s.saver.Stop()
	s.undo.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// Loaded reports whether the session started from a stored draft.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() *model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Session) Report() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format.Full(s.draft)
}

func (s *Session) WorkstationsReport() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format.WorkstationsOnly(s.draft)
}

func (s *Session) Validate() validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validate.Validate(s.draft)
}

func (s *Session) SaveStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveStatus
}

func (s *Session) CopyStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStatus
}

// Dirty reports whether an edit is waiting for its debounced save.
func (s *Session) Dirty() bool {
	return s.saver.Pending()
}

func (s *Session) UndoPending(key string) bool {
	return s.undo.Pending(key)
}

func (s *Session) UndoRemaining(key string) time.Duration {
	return s.undo.Remaining(key)
}

// Flush runs a pending save immediately.
func (s *Session) Flush() error {
	s.saver.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// Reload replaces the draft with the stored one. Local edits win: nothing is
// replaced while a save is scheduled or running, when an edit lands during
// the read, or when the stored blob is the one this session wrote last.
// It reports whether the draft was replaced.
func (s *Session) Reload(ctx context.Context) bool {
	if s.saver.Busy() {
		return false
	}
	s.mu.Lock()
	rev := s.rev
	s.mu.Unlock()

	d, ok := s.persist.Load(ctx)

	s.mu.Lock()
	if s.rev != rev || s.saver.Busy() {
		s.mu.Unlock()
		return false
	}
	if ok && !d.SavedAt.IsZero() && d.SavedAt.Equal(s.savedAt) {
		s.mu.Unlock()
		return false
	}
	if !ok {
		// Storage emptied elsewhere (reset from another process).
		s.saveStatus = ""
		s.savedAt = time.Time{}
	} else {
		s.savedAt = d.SavedAt
		if !d.SavedAt.IsZero() {
			s.saveStatus = savedStatus(d.SavedAt)
		}
	}
	s.draft = d
	s.loaded = ok
	s.mu.Unlock()

	// Snapshots taken from the replaced draft must not be applied over it.
	s.undo.Reset()
	s.log.Debug("draft reloaded from storage", zap.Bool("stored", ok))
	return true
}

// Reset deletes the stored draft and returns to the default roster.
func (s *Session) Reset(ctx context.Context) error {
	// Drop the scheduled save and wait out one already running, so nothing
	// re-creates the blob after it is removed.
	s.saver.Cancel()
	s.saver.Flush()
	s.undo.Reset()

	s.mu.Lock()
	s.gen++
	s.draft = model.NewDraft()
	s.loaded = false
	s.saveStatus = ""
	s.copyStatus = ""
	s.lastSaveErr = nil
	s.savedAt = time.Time{}
	s.mu.Unlock()

	if err := s.persist.Reset(ctx); err != nil {
		s.log.Warn("reset: removing stored draft failed", zap.Error(err))
		s.mu.Lock()
		s.saveStatus = MsgResetFailed
		s.mu.Unlock()
		return err
	}
	s.log.Info("draft reset")
	return nil
}

func (s *Session) saveNow() {
	s.mu.Lock()
	snapshot := s.draft.Clone()
	gen := s.gen
	s.mu.Unlock()

	ts, err := s.persist.Save(context.Background(), snapshot)

	s.mu.Lock()
	if gen != s.gen {
		// Reset happened while saving; its state wins.
		s.mu.Unlock()
		return
	}
	s.lastSaveErr = err
	if err != nil {
		s.saveStatus = MsgSaveFailed
		s.log.Warn("draft save failed", zap.Error(err))
	} else {
		s.draft.SavedAt = ts
		s.savedAt = ts
		s.saveStatus = savedStatus(ts)
		s.log.Debug("draft saved", zap.Time("savedAt", ts))
	}
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (s *Session) undoExpired(key string) {
	s.log.Debug("undo window closed", zap.String("unit", key))
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Session) mutate(fn func(d *model.Draft) error) error {
	s.mu.Lock()
	err := fn(s.draft)
	if err == nil {
		s.rev++
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.saver.Notify()
	return nil
}

func (s *Session) mutateUnit(key string, fn func(u *model.Unit)) error {
	return s.mutate(func(d *model.Draft) error {
		u, ok := d.Unit(key)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownUnit, key)
		}
		fn(u)
		return nil
	})
}
