package model

import (
	"strings"
	"time"

	"closenote/internal/itemlist"
)

// DefaultOpenCount is how many leading roster units start expanded in a fresh draft.
const DefaultOpenCount = 5

var unitKeys = []string{
	"Alpha",
	"Bravo",
	"Charlie",
	"Delta",
	"Echo",
	"Foxtrot",
	"Golf",
	"Hotel",
	"India",
	"Juliet",
	"Shipping",
}

// UnitKeys returns the fixed roster in report order.
func UnitKeys() []string {
	out := make([]string, len(unitKeys))
	copy(out, unitKeys)
	return out
}

// LookupKey resolves a roster key case-insensitively.
func LookupKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, k := range unitKeys {
		if strings.EqualFold(k, s) {
			return k, true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the selectable priorities, lowest first.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority accepts any casing. ok is false for unknown values.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities() {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return PriorityMedium, false
}

// Next cycles Low -> Medium -> High -> Low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Prev cycles in the opposite direction of Next.
func (p Priority) Prev() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	default:
		return PriorityHigh
	}
}

type Category int

const (
	CategoryCompleted Category = iota
	CategoryInProgress
	CategoryRemaining
)

// Categories returns the item categories in report order.
func Categories() []Category {
	return []Category{CategoryCompleted, CategoryInProgress, CategoryRemaining}
}

// Code is the short tag printed in reports.
func (c Category) Code() string {
	switch c {
	case CategoryCompleted:
		return "C"
	case CategoryInProgress:
		return "IP"
	default:
		return "R"
	}
}

func (c Category) Label() string {
	switch c {
	case CategoryCompleted:
		return "Completed"
	case CategoryInProgress:
		return "In progress"
	default:
		return "Remaining"
	}
}

// Unit is one roster slot.
type Unit struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Priority    Priority `json:"priority"`
	Completed   string   `json:"completed"`
	InProgress  string   `json:"inProgress"`
	Remaining   string   `json:"remaining"`
	Collapsed   bool     `json:"collapsed"`
}

// UnitState is the part of a Unit that a clear resets and an undo restores.
type UnitState struct {
	Priority   Priority
	Completed  string
	InProgress string
	Remaining  string
	Collapsed  bool
}

func NewUnit(key string) Unit {
	return Unit{Key: key, DisplayName: key, Priority: PriorityMedium}
}

// Label is the name printed in reports; a blank display name falls back to the key.
func (u Unit) Label() string {
	if v := strings.TrimSpace(u.DisplayName); v != "" {
		return v
	}
	return u.Key
}

func (u Unit) Items(c Category) string {
	switch c {
	case CategoryCompleted:
		return u.Completed
	case CategoryInProgress:
		return u.InProgress
	default:
		return u.Remaining
	}
}

func (u *Unit) SetItems(c Category, text string) {
	switch c {
	case CategoryCompleted:
		u.Completed = text
	case CategoryInProgress:
		u.InProgress = text
	default:
		u.Remaining = text
	}
}

// HasContent reports whether any item field holds at least one item.
func (u Unit) HasContent() bool {
	for _, c := range Categories() {
		if itemlist.HasItems(u.Items(c)) {
			return true
		}
	}
	return false
}

func (u Unit) State() UnitState {
	return UnitState{
		Priority:   u.Priority,
		Completed:  u.Completed,
		InProgress: u.InProgress,
		Remaining:  u.Remaining,
		Collapsed:  u.Collapsed,
	}
}

func (u *Unit) Apply(st UnitState) {
	u.Priority = st.Priority
	u.Completed = st.Completed
	u.InProgress = st.InProgress
	u.Remaining = st.Remaining
	u.Collapsed = st.Collapsed
}

// Clear resets priority and item fields. Name and collapse state are kept.
func (u *Unit) Clear() {
	u.Priority = PriorityMedium
	u.Completed = ""
	u.InProgress = ""
	u.Remaining = ""
}

// Draft is the whole closing note being edited.
type Draft struct {
	// ClosingDate is YYYY-MM-DD; empty means not set.
	ClosingDate    string    `json:"closingDate"`
	Lead           string    `json:"lead"`
	Revenue        string    `json:"revenue"`
	Budget         string    `json:"budget"`
	ImportantNotes string    `json:"importantNotes"`
	ShowOnlyActive bool      `json:"showOnlyActive"`
	Units          []Unit    `json:"units"`
	SavedAt        time.Time `json:"savedAt"`
}

// NewDraft returns the default draft: every roster unit, first few expanded.
func NewDraft() *Draft {
	d := &Draft{Units: make([]Unit, 0, len(unitKeys))}
	for i, k := range unitKeys {
		u := NewUnit(k)
		u.Collapsed = i >= DefaultOpenCount
		d.Units = append(d.Units, u)
	}
	return d
}

// DefaultUnit returns the unit a fresh draft holds for key.
func DefaultUnit(key string) Unit {
	u := NewUnit(key)
	for i, k := range unitKeys {
		if k == key {
			u.Collapsed = i >= DefaultOpenCount
		}
	}
	return u
}

func (d *Draft) Unit(key string) (*Unit, bool) {
	for i := range d.Units {
		if d.Units[i].Key == key {
			return &d.Units[i], true
		}
	}
	return nil, false
}

func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	out.Units = make([]Unit, len(d.Units))
	copy(out.Units, d.Units)
	return &out
}

// ActiveUnits returns units with at least one item, in roster order.
func (d *Draft) ActiveUnits() []Unit {
	var out []Unit
	for _, u := range d.Units {
		if u.HasContent() {
			out = append(out, u)
		}
	}
	return out
}

// VisibleUnits applies the show-only-active filter.
func (d *Draft) VisibleUnits() []Unit {
	if !d.ShowOnlyActive {
		out := make([]Unit, len(d.Units))
		copy(out, d.Units)
		return out
	}
	return d.ActiveUnits()
}

func (d *Draft) SetAllCollapsed(collapsed bool) {
	for i := range d.Units {
		d.Units[i].Collapsed = collapsed
	}
}

// AllCollapsed reports whether every unit is collapsed.
func (d *Draft) AllCollapsed() bool {
	for _, u := range d.Units {
		if !u.Collapsed {
			return false
		}
	}
	return len(d.Units) > 0
}

// ClosingTime parses ClosingDate. ok is false when unset or malformed.
func (d *Draft) ClosingTime() (time.Time, bool) {
	t, err := ParseDate(d.ClosingDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
