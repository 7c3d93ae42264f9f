// Package report renders a draft into the text pasted into the team chat.
//
// Output is deterministic: the same draft always yields the same bytes.
// Lines are joined with "\n" and there is no trailing newline.
package report

import (
	"fmt"
	"strings"

	"closenote/internal/itemlist"
	"closenote/internal/model"
)

const (
	DefaultTitle = "**Geek Squad Closing Note**"

	notesHeader        = "**Important notes**"
	workstationsHeader = "**Workstations**"

	dateDisplayLayout = "Mon, Jan 2, 2006"

	placeholderDate     = "(date not set)"
	placeholderLead     = "(name not set)"
	placeholderMissing  = "(not provided)"
	placeholderNoNotes  = "- (none)"
	placeholderNoActive = "(none)"
)

// Formatter renders reports. The zero value uses DefaultTitle.
type Formatter struct {
	Title string
}

func (f Formatter) title() string {
	if t := strings.TrimSpace(f.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// Full renders header, important notes and workstations.
func (f Formatter) Full(d *model.Draft) string {
	lines := []string{
		f.title(),
		fmt.Sprintf("Date of closing: %s | Closing agent: %s",
			orDefault(FormatDate(d.ClosingDate), placeholderDate),
			orDefault(d.Lead, placeholderLead)),
		"Revenue: " + orDefault(d.Revenue, placeholderMissing),
		"Budget: " + orDefault(d.Budget, placeholderMissing),
		"",
		notesHeader,
		notesLine(d.ImportantNotes),
		"",
	}
	lines = append(lines, workstationsBlock(d)...)
	return strings.Join(lines, "\n")
}

// WorkstationsOnly renders just the workstations block.
func (f Formatter) WorkstationsOnly(d *model.Draft) string {
	return strings.Join(workstationsBlock(d), "\n")
}

// FormatFull renders the full report with the default title.
func FormatFull(d *model.Draft) string {
	return Formatter{}.Full(d)
}

// FormatWorkstationsOnly renders the workstations block.
func FormatWorkstationsOnly(d *model.Draft) string {
	return Formatter{}.WorkstationsOnly(d)
}

// FormatDate renders a YYYY-MM-DD date as "Mon, Oct 19, 2026".
// Empty or malformed input yields "".
func FormatDate(iso string) string {
	t, err := model.ParseDate(iso)
	if err != nil {
		return ""
	}
	return t.Format(dateDisplayLayout)
}

// UnitLines returns the numbered lines for every unit with content, or
// a single "(none)" line when no unit qualifies.
func UnitLines(d *model.Draft) []string {
	var out []string
	n := 0
	for _, u := range d.Units {
		cats := model.Categories()
		items := make([][]string, len(cats))
		has := false
		for i, c := range cats {
			items[i] = itemlist.Normalize(u.Items(c))
			has = has || len(items[i]) > 0
		}
		if !has {
			continue
		}

		n++
		out = append(out, fmt.Sprintf("%d. %s | Priority: %s", n, u.Label(), priorityLabel(u.Priority)))
		for i, c := range cats {
			if len(items[i]) == 0 {
				continue
			}
			out = append(out, fmt.Sprintf("   - %s: %s", c.Code(), itemlist.Join(items[i])))
		}
	}
	if len(out) == 0 {
		return []string{placeholderNoActive}
	}
	return out
}

func workstationsBlock(d *model.Draft) []string {
	return append([]string{workstationsHeader}, UnitLines(d)...)
}

func notesLine(notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return placeholderNoNotes
	}
	notes = strings.ReplaceAll(notes, "\r\n", "\n")
	return "- " + strings.ReplaceAll(notes, "\n", "\n- ")
}

func priorityLabel(p model.Priority) string {
	if p == "" {
		return string(model.PriorityMedium)
	}
	return string(p)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
