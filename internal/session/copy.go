package session

import (
	"context"

	"closenote/internal/clipboard"
	"closenote/internal/validate"

	"go.uber.org/zap"
)

// Variant selects which report a copy sends.
type Variant int

const (
	VariantFull Variant = iota
	VariantWorkstations
)

func (v Variant) String() string {
	if v == VariantWorkstations {
		return "workstations"
	}
	return "full"
}

// CopyOutcome is what a copy attempt produced.
type CopyOutcome struct {
	Variant    Variant
	Status     clipboard.Status
	Message    string
	Text       string
	Validation validate.Result
}

func (o CopyOutcome) OK() bool {
	return o.Validation.OK && o.Status != clipboard.Failed
}

func copiedMessage(v Variant, st clipboard.Status) string {
	switch {
	case st == clipboard.Failed:
		return MsgCopyFailed
	case v == VariantWorkstations && st == clipboard.CopiedFallback:
		return "Copied workstations with fallback ✅"
	case v == VariantWorkstations:
		return "Copied workstations ✅"
	case st == clipboard.CopiedFallback:
		return "Copied with fallback ✅ Paste into Teams."
	default:
		return "Copied ✅ Paste into Teams."
	}
}

// Copy validates the draft and puts the selected report on the clipboard.
// A draft missing required fields is never copied; the returned error is then
// a *validate.Error. A clipboard failure returns a *clipboard.Error.
func (s *Session) Copy(ctx context.Context, v Variant) (CopyOutcome, error) {
	s.mu.Lock()
	res := validate.Validate(s.draft)
	out := CopyOutcome{Variant: v, Validation: res, Status: clipboard.Failed}
	if !res.OK {
		s.copyStatus = validate.MsgFixRequired
		s.mu.Unlock()
		out.Message = validate.MsgFixRequired
		return out, res.Err()
	}
	if v == VariantWorkstations {
		out.Text = s.format.WorkstationsOnly(s.draft)
	} else {
		out.Text = s.format.Full(s.draft)
	}
	s.mu.Unlock()

	r := s.clip.Copy(ctx, out.Text)
	out.Status = r.Status
	out.Message = copiedMessage(v, r.Status)
	if r.Err != nil {
		s.log.Warn("copy failed", zap.Stringer("variant", v), zap.Error(r.Err))
	} else {
		s.log.Debug("copied report", zap.Stringer("variant", v), zap.Stringer("status", r.Status))
	}

	s.mu.Lock()
	s.copyStatus = out.Message
	s.mu.Unlock()
	return out, r.Err
}
