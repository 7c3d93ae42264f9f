package tui

import (
	"context"
	"fmt"
	"strings"

	"closenote/internal/clipboard"
	"closenote/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case sessionChangedMsg:
		m.refreshKeepCursor()
		return m, nil

	case storeChangedMsg:
		m.reloadFromStore()
		return m, waitForStore(m.storeEvents)

	case storeClosedMsg:
		m.storeEvents = nil
		return m, nil

	case undoTickMsg:
		m.undoTicking = false
		if m.lastCleared != "" && m.s.UndoPending(m.lastCleared) {
			m.undoTicking = true
			return m, undoTick()
		}
		m.lastCleared = ""
		m.refreshKeepCursor()
		return m, nil

	case copyDoneMsg:
		m.flash = ""
		if msg.err != nil {
			m.log.Debug("copy finished with error", zap.Error(msg.err))
		}
		if msg.out.Validation.OK && msg.out.Status == clipboard.Failed {
			m.manualText = msg.out.Text
			m.modal = modalManualCopy
		}
		return m, nil

	case resetDoneMsg:
		m.cursor, m.formTop = 0, 0
		m.lastCleared = ""
		m.refresh()
		if msg.err != nil {
			m.flash = "Reset done, but the saved draft could not be deleted."
		} else {
			m.flash = "Draft reset."
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.editing {
		return m, m.updateEditor(msg)
	}
	return m, nil
}

func (m *appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.modal != modalNone {
		return m.updateModal(msg)
	}
	if m.editing {
		return m, m.updateEditing(msg)
	}

	m.flash = ""
	r, _ := m.current()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k", "shift+tab":
		m.moveCursor(-1)
	case "down", "j", "tab":
		m.moveCursor(1)
	case "home", "g":
		m.cursor = 0
		m.scrollForm()
	case "end", "G":
		m.cursor = len(m.rows) - 1
		m.scrollForm()
	case "pgdown", "ctrl+d":
		m.preview.HalfViewDown()
	case "pgup", "ctrl+u":
		m.preview.HalfViewUp()

	case "enter", "e":
		return m, m.activate(r)
	case " ":
		switch {
		case r.kind == fieldShowOnlyActive:
			m.toggleShowOnlyActive()
		case r.unit != "":
			m.toggleCollapsed(r.unit)
		}
	case "left", "h":
		m.step(r, -1)
	case "right", "l":
		m.step(r, 1)

	case "x":
		if r.unit != "" {
			m.clearUnit(r.unit)
			if !m.undoTicking {
				m.undoTicking = true
				return m, undoTick()
			}
		}
	case "u":
		m.undo(r.unit)
	case "a":
		m.toggleShowOnlyActive()
	case "z":
		m.s.ToggleAllCollapsed()
		m.refreshKeepCursor()

	case "c":
		m.flash = "Copying…"
		return m, copyCmd(m.s, session.VariantFull)
	case "w":
		m.flash = "Copying…"
		return m, copyCmd(m.s, session.VariantWorkstations)
	case "R":
		m.modal = modalConfirmReset
		m.confirmFocus = confirmFocusCancel

	case "p":
		m.showPreview = !m.showPreview
		m.layout()
	case "v":
		m.rawPreview = !m.rawPreview
		m.refreshPreview()
	case "?":
		m.modal = modalHelp
	}
	return m, nil
}

func copyCmd(s *session.Session, v session.Variant) tea.Cmd {
	return func() tea.Msg {
		out, err := s.Copy(context.Background(), v)
		return copyDoneMsg{out: out, err: err}
	}
}

func resetCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return resetDoneMsg{err: s.Reset(context.Background())}
	}
}

func (m *appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirmReset:
		switch msg.String() {
		case "tab", "shift+tab", "left", "right", "h", "l":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
		case "y":
			m.modal = modalNone
			return m, resetCmd(m.s)
		case "enter":
			m.modal = modalNone
			if m.confirmFocus == confirmFocusConfirm {
				return m, resetCmd(m.s)
			}
		case "n", "esc", "ctrl+g", "q":
			m.modal = modalNone
		}
	default:
		switch msg.String() {
		case "esc", "enter", "q", "ctrl+g", "?":
			m.modal = modalNone
			m.manualText = ""
		}
	}
	return m, nil
}

func (m *appModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.scrollForm()
}

// activate is enter on a row: edit text fields, toggle the rest.
func (m *appModel) activate(r row) tea.Cmd {
	switch r.kind {
	case fieldUnitHeader:
		m.toggleCollapsed(r.unit)
		return nil
	case fieldShowOnlyActive:
		m.toggleShowOnlyActive()
		return nil
	case fieldUnitPriority:
		m.step(r, 1)
		return nil
	}
	return m.startEditing(r)
}

// step cycles priority on a priority row, or collapses (-1) / expands (+1)
// the unit on its header row.
func (m *appModel) step(r row, dir int) {
	switch r.kind {
	case fieldUnitPriority:
		p := m.unit(r.unit).Priority
		if dir < 0 {
			p = p.Prev()
		} else {
			p = p.Next()
		}
		m.report(m.s.SetUnitPriority(r.unit, p))
	case fieldUnitHeader:
		m.report(m.s.SetCollapsed(r.unit, dir < 0))
	default:
		return
	}
	m.refreshKeepCursor()
}

func (m *appModel) toggleCollapsed(key string) {
	m.report(m.s.ToggleCollapsed(key))
	m.refreshKeepCursorOn(row{kind: fieldUnitHeader, unit: key})
}

func (m *appModel) toggleShowOnlyActive() {
	m.report(m.s.SetShowOnlyActive(!m.draft.ShowOnlyActive))
	m.refreshKeepCursor()
}

func (m *appModel) clearUnit(key string) {
	if err := m.s.ClearUnit(key); err != nil {
		m.report(err)
		return
	}
	m.lastCleared = key
	m.flash = fmt.Sprintf("Cleared %s. Press u to undo.", m.unit(key).Label())
	m.refreshKeepCursorOn(row{kind: fieldUnitHeader, unit: key})
}

// undo restores the unit under the cursor if it has a pending clear,
// otherwise the unit cleared last.
func (m *appModel) undo(key string) {
	if key == "" || !m.s.UndoPending(key) {
		key = m.lastCleared
	}
	if key != "" && m.s.UndoClear(key) {
		m.flash = fmt.Sprintf("Restored %s.", m.unit(key).Label())
		if key == m.lastCleared {
			m.lastCleared = ""
		}
	} else {
		m.flash = "Nothing to undo."
	}
	m.refreshKeepCursor()
}

func (m *appModel) report(err error) {
	if err != nil {
		m.flash = err.Error()
		m.log.Debug("edit rejected", zap.Error(err))
	}
}

func (m *appModel) reloadFromStore() {
	if m.editing {
		return
	}
	if m.s.Reload(context.Background()) {
		m.refreshKeepCursor()
	}
}

func (m *appModel) refreshKeepCursor() {
	r, ok := m.current()
	if !ok {
		m.refresh()
		return
	}
	m.refreshKeepCursorOn(r)
}

// refreshKeepCursorOn rebuilds rows and puts the cursor back on target, or on
// its unit header, or leaves it where it was.
func (m *appModel) refreshKeepCursorOn(target row) {
	m.refresh()
	for i, r := range m.rows {
		if r == target {
			m.cursor = i
			m.scrollForm()
			return
		}
	}
	if target.unit != "" {
		for i, r := range m.rows {
			if r.kind == fieldUnitHeader && r.unit == target.unit {
				m.cursor = i
				break
			}
		}
	}
	m.scrollForm()
}

func (m *appModel) refreshPreview() {
	text := m.s.Report()
	if !m.rawPreview {
		text = renderMarkdown(text, m.preview.Width)
	}
	m.preview.SetContent(strings.TrimRight(text, "\n"))
}
