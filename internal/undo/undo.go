// Package undo keeps the single-step undo for a per-unit clear.
//
// Each unit key owns at most one slot. A slot holds the unit state captured
// right before the clear and lives for Window; a second clear of the same
// unit replaces the slot and restarts the countdown.
package undo

import (
	"sync"
	"time"

	"closenote/internal/model"
)

const DefaultWindow = 5 * time.Second

type Controller struct {
	// Window is how long a clear stays undoable. Zero means DefaultWindow.
	Window time.Duration
	// Now is the clock used for deadlines. Nil means time.Now.
	Now func() time.Time
	// OnExpire is called (on a timer goroutine) when a slot times out unused.
	OnExpire func(key string)

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	state    model.UnitState
	deadline time.Time
	timer    *time.Timer
}

func New(onExpire func(key string)) *Controller {
	return &Controller{OnExpire: onExpire}
}

func (c *Controller) window() time.Duration {
	if c.Window <= 0 {
		return DefaultWindow
	}
	return c.Window
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Clear snapshots u, clears it and starts the undo countdown for u.Key.
func (c *Controller) Clear(u *model.Unit) {
	if u == nil {
		return
	}
	w := c.window()

	c.mu.Lock()
	if c.slots == nil {
		c.slots = map[string]*slot{}
	}
	if old := c.slots[u.Key]; old != nil {
		old.timer.Stop()
	}
	s := &slot{state: u.State(), deadline: c.now().Add(w)}
	key := u.Key
	s.timer = time.AfterFunc(w, func() { c.expire(key, s) })
	c.slots[key] = s
	c.mu.Unlock()

	u.Clear()
}

// Undo restores the snapshot taken by the last Clear of u.Key. It returns
// false (and leaves u alone) when there is nothing to undo or the window passed.
func (c *Controller) Undo(u *model.Unit) bool {
	if u == nil {
		return false
	}
	c.mu.Lock()
	s := c.slots[u.Key]
	if s == nil {
		c.mu.Unlock()
		return false
	}
	delete(c.slots, u.Key)
	s.timer.Stop()
	live := c.now().Before(s.deadline)
	c.mu.Unlock()

	if !live {
		return false
	}
	u.Apply(s.state)
	return true
}

// Pending reports whether key has an undoable clear.
func (c *Controller) Pending(key string) bool {
	return c.Remaining(key) > 0
}

// Remaining returns the time left to undo key, or 0.
func (c *Controller) Remaining(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slots[key]
	if s == nil {
		return 0
	}
	left := s.deadline.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

// Reset drops every slot and stops all countdowns.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, s := range c.slots {
		s.timer.Stop()
		delete(c.slots, k)
	}
}

func (c *Controller) expire(key string, s *slot) {
	c.mu.Lock()
	if c.slots[key] != s {
		// Replaced or consumed since this timer was armed.
		c.mu.Unlock()
		return
	}
	delete(c.slots, key)
	cb := c.OnExpire
	c.mu.Unlock()

	if cb != nil {
		cb(key)
	}
}
