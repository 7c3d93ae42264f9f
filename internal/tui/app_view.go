package tui

import (
	"fmt"
	"strings"
	"time"

	"closenote/internal/model"
	"closenote/internal/validate"

	"github.com/charmbracelet/lipgloss"
)

const (
	labelWidth      = 16
	sideBySideWidth = 90
)

type dims struct {
	width, height   int
	formW, formH    int
	previewW        int
	previewH        int
	sideBySide      bool
	previewOnScreen bool
}

func (m *appModel) dims() dims {
	d := dims{width: m.width, height: m.height}
	if d.width <= 0 {
		d.width = 100
	}
	if d.height <= 0 {
		d.height = 30
	}
	body := d.height - 3 - m.editorHeight()
	if body < 3 {
		body = 3
	}
	d.formW, d.formH = d.width, body
	if !m.showPreview {
		return d
	}
	d.previewOnScreen = true
	if d.width >= sideBySideWidth {
		d.sideBySide = true
		d.formW = d.width * 11 / 20
		d.previewW = d.width - d.formW
		d.previewH = body
		return d
	}
	d.formH = body / 2
	d.previewW = d.width
	d.previewH = body - d.formH
	return d
}

// layout resizes the preview and editors after a size or mode change.
func (m *appModel) layout() {
	d := m.dims()
	if d.previewOnScreen {
		// Border and padding take two columns each side; border and title take three lines.
		m.preview.Width = max(d.previewW-4, 10)
		m.preview.Height = max(d.previewH-3, 1)
	}
	m.line.Width = max(d.width-8, 10)
	sizeTextarea(&m.area, d.width)
	m.refreshPreview()
	m.scrollForm()
}

func (m *appModel) scrollForm() {
	h := m.dims().formH
	if m.cursor < m.formTop {
		m.formTop = m.cursor
	}
	if m.cursor >= m.formTop+h {
		m.formTop = m.cursor - h + 1
	}
	if m.formTop < 0 {
		m.formTop = 0
	}
}

func (m *appModel) View() string {
	d := m.dims()

	switch m.modal {
	case modalConfirmReset:
		box := renderConfirmModal(d.width, "Reset closing note",
			"This clears every field, restores the default roster and deletes the saved draft.",
			"Reset", "Cancel", m.confirmFocus)
		return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, box)
	case modalManualCopy:
		box := renderModalBox(d.width, "Copy failed",
			"Select the text below and copy it by hand (esc to close):\n\n"+m.manualText)
		return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, box)
	case modalHelp:
		box := renderModalBox(d.width, "Keys", helpText)
		return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, box)
	}

	v := validate.Validate(m.draft)
	form := normalizePane(m.renderForm(d.formW, d.formH, v), d.formW, d.formH)

	var body string
	switch {
	case d.sideBySide:
		body = lipgloss.JoinHorizontal(lipgloss.Top, form, m.renderPreview(d))
	case d.previewOnScreen:
		body = lipgloss.JoinVertical(lipgloss.Left, form, m.renderPreview(d))
	default:
		body = form
	}

	parts := []string{m.renderHeader(d.width), body}
	if m.editing {
		parts = append(parts, m.renderEditor(d.width))
	}
	parts = append(parts, m.renderStatus(d.width, v), m.renderHelpLine(d.width))
	return strings.Join(parts, "\n")
}

func (m *appModel) renderHeader(width int) string {
	left := styleTitle().Render("Closing note")
	status := m.s.SaveStatus()
	var right string
	switch {
	case status == "":
	case strings.HasPrefix(status, "Last saved"):
		right = styleMuted().Render(status)
	default:
		right = styleError().Render(status)
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return truncate(left+" "+right, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *appModel) renderPreview(d dims) string {
	title := "Preview"
	if m.rawPreview {
		title = "Preview (raw)"
	}
	content := styleMuted().Render(title) + "\n" + m.preview.View()
	return stylePane().
		Width(d.previewW - 2).
		Height(d.previewH - 2).
		Render(normalizePane(content, d.previewW-4, d.previewH-2))
}

func (m *appModel) renderForm(width, height int, v validate.Result) string {
	end := m.formTop + height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	lines := make([]string, 0, height)
	for i := m.formTop; i < end; i++ {
		ln := m.renderRow(m.rows[i], v)
		if i == m.cursor {
			ln = styleSelected().Render(fitLine(glyphCursor()+" "+ln, width))
		} else {
			ln = "  " + ln
		}
		lines = append(lines, ln)
	}
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return fmt.Sprintf("%-*s %s", labelWidth, label, value)
}

func placeholder(s string) string {
	return styleMuted().Render(s)
}

func (m *appModel) renderRow(r row, v validate.Result) string {
	switch r.kind {
	case fieldDate:
		val := m.draft.ClosingDate
		if val == "" {
			val = placeholder("YYYY-MM-DD")
		} else if t, err := model.ParseDate(val); err == nil {
			val += styleMuted().Render("  " + t.Format("Mon, Jan 2"))
		}
		if v.DateError != "" {
			val += "  " + styleError().Render(v.DateError)
		}
		return field(m.label(r), val)
	case fieldLead:
		val := m.draft.Lead
		if strings.TrimSpace(val) == "" {
			val = placeholder("name")
		}
		if v.LeadError != "" {
			val += "  " + styleError().Render(v.LeadError)
		}
		return field(m.label(r), val)
	case fieldRevenue, fieldBudget, fieldNotes:
		val := oneLine(m.value(r))
		if val == "" {
			val = placeholder("–")
		}
		return field(m.label(r), val)
	case fieldShowOnlyActive:
		box := "[ ]"
		if m.draft.ShowOnlyActive {
			box = "[x]"
		}
		return field(m.label(r), box)
	case fieldUnitHeader:
		return m.renderUnitHeader(m.unit(r.unit))
	case fieldUnitName:
		return "    " + field(m.label(r), m.unit(r.unit).DisplayName)
	case fieldUnitPriority:
		p := string(m.unit(r.unit).Priority)
		return "    " + field(m.label(r), "‹ "+stylePriority(p).Render(p)+" ›")
	case fieldUnitItems:
		val := oneLine(m.value(r))
		if val == "" {
			val = placeholder("–")
		}
		return "    " + field(m.label(r), val)
	}
	return ""
}

func (m *appModel) renderUnitHeader(u model.Unit) string {
	p := string(u.Priority)
	parts := []string{
		glyphTwisty(u.Collapsed) + " " + lipgloss.NewStyle().Bold(true).Render(u.Label()),
		stylePriority(p).Render(p),
	}
	if n := itemCount(u); n > 0 {
		parts = append(parts, styleOK().Render(fmt.Sprintf("%d item(s)", n)))
	} else {
		parts = append(parts, placeholder("empty"))
	}
	if m.s.UndoPending(u.Key) {
		parts = append(parts, styleError().Render("cleared · u to undo"))
	}
	return strings.Join(parts, "  ")
}

func (m *appModel) renderStatus(width int, v validate.Result) string {
	var msg string
	switch {
	case m.flash != "":
		msg = m.flash
	case m.s.CopyStatus() != "":
		msg = m.s.CopyStatus()
	case !v.OK:
		msg = styleMuted().Render(validate.MsgFixRequired)
	default:
		msg = styleOK().Render("Ready to copy.")
	}
	if m.lastCleared != "" && m.s.UndoPending(m.lastCleared) {
		left := m.s.UndoRemaining(m.lastCleared).Round(time.Second)
		msg += styleMuted().Render(fmt.Sprintf("  (undo %s: %s)", m.unit(m.lastCleared).Label(), left))
	}
	return truncate(msg, width)
}

const helpLine = "↑/↓ move · enter edit · space fold · ←/→ priority · x clear · u undo · a active · z fold all · c copy · w workstations · R reset · p preview · ? keys · q quit"

func (m *appModel) renderHelpLine(width int) string {
	return styleMuted().Render(truncate(helpLine, width))
}

var helpText = strings.TrimSpace(`
up/down, j/k, tab   move between fields
enter, e            edit field / toggle
space               collapse or expand the unit
left/right, h/l     change priority (or fold on a unit header)
x                   clear the unit (priority and items)
u                   undo the last clear (5 seconds)
a                   show only units with items
z                   collapse or expand all units
c                   copy the full note
w                   copy the workstations block
R                   reset everything
p / v               toggle preview / raw preview
pgup/pgdown         scroll the preview
q, ctrl+c           quit (pending edits are saved)
`)
