package store

import (
	"sync"
	"time"
)

// DefaultSaveDebounce is the quiet period after the last edit before a save.
const DefaultSaveDebounce = 350 * time.Millisecond

// DebouncedSaver coalesces bursts of Notify calls into a single save.
// Every Notify restarts the countdown; the save runs once the edits pause.
// Saves never overlap: a Notify during a running save schedules another one.
type DebouncedSaver struct {
	debounce time.Duration
	save     func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
	stopped bool

	// runMu serializes save runs between the timer goroutine and Flush.
	runMu sync.Mutex
}

func NewDebouncedSaver(debounce time.Duration, save func()) *DebouncedSaver {
	if debounce <= 0 {
		debounce = DefaultSaveDebounce
	}
	return &DebouncedSaver{debounce: debounce, save: save}
}

func (d *DebouncedSaver) Notify() {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.debounce, d.run)
		return
	}
	d.timer.Reset(d.debounce)
}

// Pending reports whether a save is scheduled but has not started yet.
func (d *DebouncedSaver) Pending() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Busy reports whether a save is scheduled or currently running.
func (d *DebouncedSaver) Busy() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending || d.running
}

// Flush runs a scheduled save now, on the calling goroutine.
func (d *DebouncedSaver) Flush() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.run()
}

// Cancel drops a scheduled save without running it.
func (d *DebouncedSaver) Cancel() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Stop flushes any scheduled save and ignores later notifications.
func (d *DebouncedSaver) Stop() {
	if d == nil {
		return
	}
	d.Flush()
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
}

func (d *DebouncedSaver) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()
	if d.save != nil {
		d.save()
	}
}
