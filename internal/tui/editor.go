package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Text fields are edited in a panel under the form. Every keystroke is
// applied to the session, so the preview and the save follow live; the
// date is the exception and is applied on enter, since partial dates do not
// parse.

func (m *appModel) startEditing(r row) tea.Cmd {
	if !r.editable() {
		return nil
	}
	m.editing = true
	m.editRow = r
	m.editErr = ""
	v := m.value(r)
	m.layout()
	if r.multiline() {
		m.area.SetValue(v)
		m.area.CursorEnd()
		return m.area.Focus()
	}
	m.line.SetValue(v)
	m.line.CursorEnd()
	if r.kind == fieldDate {
		m.line.Placeholder = "YYYY-MM-DD, today or yesterday"
	} else {
		m.line.Placeholder = ""
	}
	return m.line.Focus()
}

func (m *appModel) stopEditing() {
	m.editing = false
	m.editErr = ""
	m.line.Blur()
	m.area.Blur()
	m.layout()
	m.refreshKeepCursorOn(m.editRow)
}

func (m *appModel) updateEditing(msg tea.KeyMsg) tea.Cmd {
	r := m.editRow
	switch msg.String() {
	case "esc", "ctrl+g":
		// Live fields are already applied; a date not yet applied is dropped.
		m.stopEditing()
		return nil
	case "ctrl+s":
		if r.multiline() {
			m.stopEditing()
			return nil
		}
	case "enter", "tab":
		if r.multiline() && msg.String() == "enter" {
			break
		}
		if r.kind == fieldDate {
			if err := m.apply(r, m.line.Value()); err != nil {
				m.editErr = err.Error()
				return nil
			}
		}
		m.stopEditing()
		if msg.String() == "tab" {
			m.moveCursor(1)
		}
		return nil
	}
	return m.updateEditor(msg)
}

// updateEditor forwards msg to the active input and applies a changed value.
func (m *appModel) updateEditor(msg tea.Msg) tea.Cmd {
	r := m.editRow
	var cmd tea.Cmd
	var before, after string
	if r.multiline() {
		before = m.area.Value()
		m.area, cmd = m.area.Update(msg)
		after = m.area.Value()
	} else {
		before = m.line.Value()
		m.line, cmd = m.line.Update(msg)
		after = m.line.Value()
	}
	if after != before && r.kind != fieldDate {
		m.report(m.apply(r, after))
		m.draft = m.s.Draft()
		m.refreshPreview()
	}
	return cmd
}

func (m *appModel) editorHeight() int {
	if !m.editing {
		return 0
	}
	if m.editRow.multiline() {
		return m.area.Height() + 3
	}
	return 4
}

func (m *appModel) renderEditor(width int) string {
	r := m.editRow
	title := m.label(r)
	if r.unit != "" && r.kind != fieldUnitHeader {
		title = m.unit(r.unit).Label() + " · " + title
	}
	hint := "enter: done   esc: done"
	switch {
	case r.kind == fieldDate:
		hint = "enter: apply   esc: cancel"
	case r.multiline():
		hint = "enter: new line   ctrl+s/esc: done   (items: one per line or comma separated)"
	}

	var input string
	if r.multiline() {
		input = m.area.View()
	} else {
		input = renderInputLine(width-4, m.line.View())
	}
	lines := []string{styleTitle().Render(title), input}
	if m.editErr != "" {
		lines = append(lines, styleError().Render(m.editErr))
	} else {
		lines = append(lines, styleMuted().Render(hint))
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(colorBorder).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func sizeTextarea(a *textarea.Model, width int) {
	if width < 20 {
		width = 20
	}
	a.SetWidth(width - 2)
}
