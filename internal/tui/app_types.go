package tui

import (
	"closenote/internal/model"
	"closenote/internal/session"
)

// fieldKind identifies one editable line of the form.
type fieldKind int

const (
	fieldDate fieldKind = iota
	fieldLead
	fieldRevenue
	fieldBudget
	fieldNotes
	fieldShowOnlyActive
	fieldUnitHeader
	fieldUnitName
	fieldUnitPriority
	fieldUnitItems
)

type row struct {
	kind fieldKind
	unit string
	cat  model.Category
}

// multiline fields are edited in a textarea; the rest in a single-line input.
func (r row) multiline() bool {
	return r.kind == fieldNotes || r.kind == fieldUnitItems
}

func (r row) editable() bool {
	switch r.kind {
	case fieldShowOnlyActive, fieldUnitHeader, fieldUnitPriority:
		return false
	}
	return true
}

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmReset
	modalManualCopy
	modalHelp
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type (
	// sessionChangedMsg arrives from timer goroutines (save finished, undo expired).
	sessionChangedMsg struct{}
	// storeChangedMsg means another process wrote the draft storage.
	storeChangedMsg struct{}
	storeClosedMsg  struct{}
	undoTickMsg     struct{}
	copyDoneMsg     struct {
		out session.CopyOutcome
		err error
	}
	resetDoneMsg struct{ err error }
)
