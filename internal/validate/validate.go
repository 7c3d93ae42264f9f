// Package validate checks the fields a closing note cannot be sent without.
package validate

import (
	"strings"

	"closenote/internal/model"
)

const (
	MsgDateRequired = "Date is required."
	MsgLeadRequired = "Closing agent name is required."

	// MsgFixRequired is shown when a copy is refused.
	MsgFixRequired = "Please fill the required fields (date + closing agent)."
)

// Result carries per-field messages; an empty message means the field is fine.
type Result struct {
	OK        bool   `json:"ok"`
	DateError string `json:"dateError,omitempty"`
	LeadError string `json:"leadError,omitempty"`
}

// Error is returned by Result.Err when required fields are missing.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	var parts []string
	if e.Result.DateError != "" {
		parts = append(parts, e.Result.DateError)
	}
	if e.Result.LeadError != "" {
		parts = append(parts, e.Result.LeadError)
	}
	return "validation failed: " + strings.Join(parts, " ")
}

func Validate(d *model.Draft) Result {
	r := Result{OK: true}
	if d == nil {
		d = model.NewDraft()
	}
	if _, ok := d.ClosingTime(); !ok {
		r.OK = false
		r.DateError = MsgDateRequired
	}
	if strings.TrimSpace(d.Lead) == "" {
		r.OK = false
		r.LeadError = MsgLeadRequired
	}
	return r
}

func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Result: r}
}
