package session

import (
	"closenote/internal/model"
)

// SetClosingDate accepts YYYY-MM-DD, "today", "yesterday" or blank (unset).
func (s *Session) SetClosingDate(v string) error {
	iso, err := model.NormalizeDate(v, s.now())
	if err != nil {
		return err
	}
	return s.mutate(func(d *model.Draft) error {
		d.ClosingDate = iso
		return nil
	})
}

func (s *Session) SetLead(v string) error {
	return s.mutate(func(d *model.Draft) error {
		d.Lead = v
		return nil
	})
}

func (s *Session) SetRevenue(v string) error {
	return s.mutate(func(d *model.Draft) error {
		d.Revenue = v
		return nil
	})
}

func (s *Session) SetBudget(v string) error {
	return s.mutate(func(d *model.Draft) error {
		d.Budget = v
		return nil
	})
}

func (s *Session) SetNotes(v string) error {
	return s.mutate(func(d *model.Draft) error {
		d.ImportantNotes = v
		return nil
	})
}

func (s *Session) SetShowOnlyActive(on bool) error {
	return s.mutate(func(d *model.Draft) error {
		d.ShowOnlyActive = on
		return nil
	})
}

// SetUnitName renames a unit. A blank name falls back to the key.
func (s *Session) SetUnitName(key, name string) error {
	return s.mutateUnit(key, func(u *model.Unit) {
		u.DisplayName = name
	})
}

func (s *Session) SetUnitPriority(key string, p model.Priority) error {
	return s.mutateUnit(key, func(u *model.Unit) {
		u.Priority = p
	})
}

// SetUnitItems stores the raw text for one category; normalization happens
// when the report is built.
func (s *Session) SetUnitItems(key string, c model.Category, text string) error {
	return s.mutateUnit(key, func(u *model.Unit) {
		u.SetItems(c, text)
	})
}

func (s *Session) ToggleCollapsed(key string) error {
	return s.mutateUnit(key, func(u *model.Unit) {
		u.Collapsed = !u.Collapsed
	})
}

func (s *Session) SetCollapsed(key string, collapsed bool) error {
	return s.mutateUnit(key, func(u *model.Unit) {
		u.Collapsed = collapsed
	})
}

func (s *Session) SetAllCollapsed(collapsed bool) error {
	return s.mutate(func(d *model.Draft) error {
		d.SetAllCollapsed(collapsed)
		return nil
	})
}

// ToggleAllCollapsed expands everything when all units are collapsed and
// collapses everything otherwise. It returns the new collapsed state.
func (s *Session) ToggleAllCollapsed() bool {
	var next bool
	_ = s.mutate(func(d *model.Draft) error {
		next = !d.AllCollapsed()
		d.SetAllCollapsed(next)
		return nil
	})
	return next
}

// ClearUnit resets the unit's priority and items and opens its undo window.
func (s *Session) ClearUnit(key string) error {
	return s.mutateUnit(key, func(u *model.Unit) {
		s.undo.Clear(u)
	})
}

// UndoClear restores the unit cleared last, if its window is still open.
// Nothing is saved when there was nothing to restore.
func (s *Session) UndoClear(key string) bool {
	s.mu.Lock()
	u, ok := s.draft.Unit(key)
	restored := ok && s.undo.Undo(u)
	if restored {
		s.rev++
	}
	s.mu.Unlock()

	if restored {
		s.saver.Notify()
	}
	return restored
}
