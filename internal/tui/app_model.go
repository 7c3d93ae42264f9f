package tui

import (
	"strings"
	"time"

	"closenote/internal/itemlist"
	"closenote/internal/model"
	"closenote/internal/session"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type appModel struct {
	s   *session.Session
	log *zap.Logger

	width  int
	height int

	// draft is the snapshot the view renders; refreshed after every change.
	draft *model.Draft
	rows  []row
	// cursor indexes rows; formTop is the first row shown.
	cursor  int
	formTop int

	editing bool
	editRow row
	line    textinput.Model
	area    textarea.Model
	editErr string

	preview     viewport.Model
	showPreview bool
	rawPreview  bool

	modal        modalKind
	confirmFocus confirmModalFocus
	manualText   string

	// flash is a one-off message shown in the status line until the next key.
	flash       string
	lastCleared string
	undoTicking bool

	storeEvents <-chan struct{}
}

func newAppModel(s *session.Session, log *zap.Logger) *appModel {
	if log == nil {
		log = zap.NewNop()
	}
	line := textinput.New()
	line.Prompt = ""
	line.CharLimit = 200

	area := textarea.New()
	area.ShowLineNumbers = false
	area.Prompt = ""
	area.SetHeight(4)

	m := &appModel{
		s:           s,
		log:         log,
		line:        line,
		area:        area,
		preview:     viewport.New(40, 10),
		showPreview: true,
	}
	m.refresh()
	return m
}

func (m *appModel) Init() tea.Cmd {
	return waitForStore(m.storeEvents)
}

func waitForStore(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return storeClosedMsg{}
		}
		return storeChangedMsg{}
	}
}

func undoTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return undoTickMsg{} })
}

// refresh re-reads the session and rebuilds rows and preview.
func (m *appModel) refresh() {
	m.draft = m.s.Draft()
	m.rows = buildRows(m.draft)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshPreview()
}

func buildRows(d *model.Draft) []row {
	rows := []row{
		{kind: fieldDate},
		{kind: fieldLead},
		{kind: fieldRevenue},
		{kind: fieldBudget},
		{kind: fieldNotes},
		{kind: fieldShowOnlyActive},
	}
	for _, u := range d.VisibleUnits() {
		rows = append(rows, row{kind: fieldUnitHeader, unit: u.Key})
		if u.Collapsed {
			continue
		}
		rows = append(rows,
			row{kind: fieldUnitName, unit: u.Key},
			row{kind: fieldUnitPriority, unit: u.Key},
		)
		for _, c := range model.Categories() {
			rows = append(rows, row{kind: fieldUnitItems, unit: u.Key, cat: c})
		}
	}
	return rows
}

func (m *appModel) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *appModel) unit(key string) model.Unit {
	if u, ok := m.draft.Unit(key); ok {
		return *u
	}
	return model.DefaultUnit(key)
}

// value is the raw text a row edits.
func (m *appModel) value(r row) string {
	switch r.kind {
	case fieldDate:
		return m.draft.ClosingDate
	case fieldLead:
		return m.draft.Lead
	case fieldRevenue:
		return m.draft.Revenue
	case fieldBudget:
		return m.draft.Budget
	case fieldNotes:
		return m.draft.ImportantNotes
	case fieldUnitName:
		return m.unit(r.unit).DisplayName
	case fieldUnitPriority:
		return string(m.unit(r.unit).Priority)
	case fieldUnitItems:
		return m.unit(r.unit).Items(r.cat)
	}
	return ""
}

// apply writes v into the session for row r.
func (m *appModel) apply(r row, v string) error {
	switch r.kind {
	case fieldDate:
		return m.s.SetClosingDate(v)
	case fieldLead:
		return m.s.SetLead(v)
	case fieldRevenue:
		return m.s.SetRevenue(v)
	case fieldBudget:
		return m.s.SetBudget(v)
	case fieldNotes:
		return m.s.SetNotes(v)
	case fieldUnitName:
		return m.s.SetUnitName(r.unit, v)
	case fieldUnitItems:
		return m.s.SetUnitItems(r.unit, r.cat, v)
	}
	return nil
}

func (m *appModel) label(r row) string {
	switch r.kind {
	case fieldDate:
		return "Date"
	case fieldLead:
		return "Closing agent"
	case fieldRevenue:
		return "Revenue"
	case fieldBudget:
		return "Budget"
	case fieldNotes:
		return "Important notes"
	case fieldShowOnlyActive:
		return "Show only active"
	case fieldUnitHeader:
		return m.unit(r.unit).Label()
	case fieldUnitName:
		return "Name"
	case fieldUnitPriority:
		return "Priority"
	case fieldUnitItems:
		return r.cat.Label()
	}
	return ""
}

// itemCount is shown on collapsed unit headers.
func itemCount(u model.Unit) int {
	n := 0
	for _, c := range model.Categories() {
		n += len(itemlist.Normalize(u.Items(c)))
	}
	return n
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ⏎ ")
}
