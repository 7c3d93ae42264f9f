package cli

import (
	"time"

	"closenote/internal/itemlist"
	"closenote/internal/model"
	"closenote/internal/validate"
)

type unitView struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Priority    string   `json:"priority"`
	Completed   []string `json:"completed"`
	InProgress  []string `json:"inProgress"`
	Remaining   []string `json:"remaining"`
	Collapsed   bool     `json:"collapsed"`
	Active      bool     `json:"active"`
}

type draftView struct {
	ClosingDate    string          `json:"closingDate"`
	Lead           string          `json:"lead"`
	Revenue        string          `json:"revenue"`
	Budget         string          `json:"budget"`
	ImportantNotes string          `json:"importantNotes"`
	ShowOnlyActive bool            `json:"showOnlyActive"`
	SavedAt        string          `json:"savedAt,omitempty"`
	Units          []unitView      `json:"units"`
	Validation     validate.Result `json:"validation"`
}

func newUnitView(u model.Unit) unitView {
	return unitView{
		Key:         u.Key,
		DisplayName: u.Label(),
		Priority:    string(u.Priority),
		Completed:   itemlist.Normalize(u.Completed),
		InProgress:  itemlist.Normalize(u.InProgress),
		Remaining:   itemlist.Normalize(u.Remaining),
		Collapsed:   u.Collapsed,
		Active:      u.HasContent(),
	}
}

func newDraftView(d *model.Draft) draftView {
	v := draftView{
		ClosingDate:    d.ClosingDate,
		Lead:           d.Lead,
		Revenue:        d.Revenue,
		Budget:         d.Budget,
		ImportantNotes: d.ImportantNotes,
		ShowOnlyActive: d.ShowOnlyActive,
		Units:          make([]unitView, 0, len(d.Units)),
		Validation:     validate.Validate(d),
	}
	if !d.SavedAt.IsZero() {
		v.SavedAt = d.SavedAt.Format(time.RFC3339)
	}
	for _, u := range d.Units {
		v.Units = append(v.Units, newUnitView(u))
	}
	return v
}
